package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// handleWebSocket analyzes each text message and replies with the body
// /api/analyze would have returned for it. Replies with an "error" field
// correspond to a 400.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		s.log.Debug("WebSocket upgrade failed", "request", RequestID(r.Context()), "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.cfg.MaxBodyBytes)
	ctx := r.Context()
	s.log.Debug("WebSocket connected", "request", RequestID(ctx), "remote", r.RemoteAddr)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("WebSocket read failed", "request", RequestID(ctx), "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		_, body := s.analyze(ctx, string(message))
		if err := conn.WriteJSON(body); err != nil {
			s.log.Debug("WebSocket write failed", "request", RequestID(ctx), "error", err)
			return
		}
	}
}
