package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/soar/padremap/internal/hub"
	"github.com/soar/padremap/internal/remap"
)

type Server struct {
	log           *zap.Logger
	hub           *hub.Hub
	broadcaster   *hub.Broadcaster
	svc           remap.Service
	frontendFS    fs.FS
	addr          string
	assignTimeout time.Duration
	httpServer    *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, svc remap.Service, frontendFS fs.FS, addr string, assignTimeout time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		log:           log.With(zap.String("component", "server")),
		hub:           h,
		broadcaster:   b,
		svc:           svc,
		frontendFS:    frontendFS,
		addr:          addr,
		assignTimeout: assignTimeout,
	}
}

// Handler builds the HTTP routes: the WebSocket endpoint, a JSON device
// list, and the minified frontend.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.svc, s.assignTimeout, s.log))
	mux.HandleFunc("GET /api/devices", s.handleDevices)

	if s.frontendFS != nil {
		static, err := loadAssets(s.frontendFS)
		if err != nil {
			return nil, err
		}
		mux.Handle("/", static)
	}

	return mux, nil
}

func (s *Server) ListenAndServe() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	s.log.Info("HTTP server listening", zap.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.log.Info("shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
