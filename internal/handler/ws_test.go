package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/middleware/metrics"
)

// wsURL rewrites an httptest server URL into a ws:// dial target.
func wsURL(serverURL, path string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + path
}

func TestSubscribe(t *testing.T) {
	t.Run("upgrade succeeds through the full middleware stack", func(t *testing.T) {
		h, router := setupTestHandler(&MockStorage{}, customerPrincipal())

		// the production router wraps every route, the websocket one
		// included, so the test dials through the same wrapper
		server := httptest.NewServer(metrics.Middleware(router))
		defer server.Close()

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/v1/requests/42/ws"), nil)
		require.NoError(t, err, "handshake failed")
		defer conn.Close()
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

		staffId := domain.UserId("staff-1")
		sent, err := h.thread.Send(context.Background(), domain.MessageCreationData{
			RequestId: 42,
			Sender:    domain.RoleAdmin,
			SenderId:  &staffId,
			Body:      "We received your request",
		})
		require.NoError(t, err)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var got domain.Message
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, sent.Id, got.Id)
		assert.Equal(t, "We received your request", got.Body)
	})

	t.Run("foreign customer rejected before upgrade", func(t *testing.T) {
		p := customerPrincipal()
		p.Id = "intruder"
		_, router := setupTestHandler(&MockStorage{}, p)

		server := httptest.NewServer(metrics.Middleware(router))
		defer server.Close()

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/v1/requests/42/ws"), nil)
		require.Error(t, err)
		if conn != nil {
			conn.Close()
		}
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing principal rejected before upgrade", func(t *testing.T) {
		_, router := setupTestHandler(&MockStorage{}, nil)

		server := httptest.NewServer(metrics.Middleware(router))
		defer server.Close()

		_, resp, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/v1/requests/42/ws"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
