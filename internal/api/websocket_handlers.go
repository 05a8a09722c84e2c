package api

import (
	"encoding/json"
	"log"
	"net/http"

	"mikroblog/internal/websocket"
)

// ServeWsHandler subscribes the client to the live timeline feed. The feed
// mirrors what GET /api/posts serves, so no credentials are required.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn)
	s.wsHub.Register <- client

	go client.ReadPump()
	go client.WritePump()
}

// publishEvent broadcasts a timeline change to connected feed clients.
func (s *Server) publishEvent(eventType string, payload interface{}) {
	if s.wsHub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"event_type": eventType,
		"payload":    payload,
	})
	if err != nil {
		log.Printf("failed to marshal feed event: %v", err)
		return
	}
	s.wsHub.Publish(msg)
}
