package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

func TestTransitionStatus(t *testing.T) {
	t.Run("pending to contacted", func(t *testing.T) {
		var gotFrom, gotTo domain.RequestStatus
		storage := &MockStorage{
			SetRequestStatusFunc: func(id domain.RequestId, from, to domain.RequestStatus) error {
				gotFrom, gotTo = from, to
				return nil
			},
		}
		_, router := setupTestHandler(storage, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPut, "/v1/requests/42/status", []byte(`{"status": "contacted"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.StatusPending, gotFrom)
		assert.Equal(t, domain.StatusContacted, gotTo)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		storage := &MockStorage{
			GetRequestFunc: func(id domain.RequestId) (*domain.Request, error) {
				return &domain.Request{Id: id, Status: domain.StatusCompleted, CustomerId: "cust-1"}, nil
			},
		}
		_, router := setupTestHandler(storage, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPut, "/v1/requests/42/status", []byte(`{"status": "contacted"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, router := setupTestHandler(&MockStorage{}, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPut, "/v1/requests/42/status", []byte(`{"status": "archived"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOfferSet(t *testing.T) {
	t.Run("injects system message and emails customer", func(t *testing.T) {
		var injectedBody string
		storage := &MockStorage{
			AppendMessageFunc: func(data domain.MessageCreationData) (*domain.Message, error) {
				injectedBody = data.Body
				assert.Equal(t, domain.RoleSystem, data.Sender)
				assert.Nil(t, data.SenderId)
				return &domain.Message{Id: 1, RequestId: data.RequestId, Sender: data.Sender, Body: data.Body}, nil
			},
		}
		_, router := setupTestHandler(storage, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/v1/requests/42/offer", []byte(`{"amount": 15000}`)))

		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.Equal(t, "Final offer set: €15,000", injectedBody)
	})

	t.Run("202 even when injection fails", func(t *testing.T) {
		storage := &MockStorage{
			AppendMessageFunc: func(data domain.MessageCreationData) (*domain.Message, error) {
				return nil, assert.AnError
			},
		}
		_, router := setupTestHandler(storage, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/v1/requests/42/offer", []byte(`{"amount": 15000}`)))

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		_, router := setupTestHandler(&MockStorage{}, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/v1/requests/42/offer", []byte(`{"amount": -5}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAppointmentSet(t *testing.T) {
	t.Run("valid timestamp accepted", func(t *testing.T) {
		var injectedBody string
		storage := &MockStorage{
			AppendMessageFunc: func(data domain.MessageCreationData) (*domain.Message, error) {
				injectedBody = data.Body
				return &domain.Message{Id: 1, RequestId: data.RequestId, Sender: data.Sender, Body: data.Body}, nil
			},
		}
		_, router := setupTestHandler(storage, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/v1/requests/42/appointment", []byte(`{"when": "2026-09-14T10:30:00Z"}`)))

		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.Contains(t, injectedBody, "14 September 2026")
	})

	t.Run("malformed timestamp rejected", func(t *testing.T) {
		_, router := setupTestHandler(&MockStorage{}, adminPrincipal())

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/v1/requests/42/appointment", []byte(`{"when": "next tuesday"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
