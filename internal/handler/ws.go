package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/logger"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/realtime"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/utils"
)

// Subscribe upgrades to a websocket and streams every message appended to
// the thread as a JSON frame. Authorization happens before the upgrade so a
// rejected caller gets a plain HTTP error, not a handshake followed by a
// close frame.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	requestId, err := requestIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	p, err := principal(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.thread.Authorize(requestId, p.Role, p.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logger.Log.Debug("websocket upgrade failed", "error", err)
		return
	}

	rt := h.cfg.Public.Realtime
	conn := realtime.NewConnection(ws, realtime.ConnOptions{
		SendBuffer:    rt.SendBuffer,
		PingPeriod:    rt.PingPeriod,
		WriteDeadline: rt.WriteDeadline,
	})
	conn.Start()

	sub, err := h.thread.Subscribe(requestId, p.Role, p.Id, func(msg *domain.Message) {
		payload, err := json.Marshal(msg)
		if err != nil {
			logger.Log.Error("marshaling realtime message", "error", err)
			return
		}
		if err := conn.Send(payload); err != nil {
			logger.Log.Debug("realtime send failed", "request_id", requestId, "error", err)
		}
	})
	if err != nil {
		conn.Close(websocket.ClosePolicyViolation, err.Error())
		return
	}
	defer sub.Unsubscribe()
	defer conn.Close(websocket.CloseNormalClosure, "")

	// Clients never send data frames; the read loop only detects close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.Public.Http.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
