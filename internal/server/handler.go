package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/hub"
	"github.com/soar/padremap/internal/remap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local use
	},
}

func handleWebSocket(h *hub.Hub, b *hub.Broadcaster, svc remap.Service, timeout time.Duration, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := hub.NewClient(h, conn)
		h.Register(client)

		// Send current device list to the new client
		b.SendInitialState(client)

		go client.WritePump()
		go client.ReadPumpWithHandler(svc, timeout)
	}
}

type devicesResponse struct {
	Devices []gamepad.ID `json:"devices"`
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.svc.Devices()
	if devices == nil {
		devices = []gamepad.ID{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&devicesResponse{devices}); err != nil {
		s.log.Warn("encode devices", zap.Error(err))
	}
}
