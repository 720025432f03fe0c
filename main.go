package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soar/padremap/internal/config"
	"github.com/soar/padremap/internal/events"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/hub"
	"github.com/soar/padremap/internal/remap"
	"github.com/soar/padremap/internal/server"
	"github.com/soar/padremap/internal/tray"
)

// On Windows os.Interrupt is sent for Ctrl+C; on Unix it is SIGINT.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// browserURL turns a listen address such as ":8080" into a local URL.
func browserURL(listen string) string {
	host := listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("padremap failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	driver := gamepad.NewSDL(gamepad.Deadzones{
		Left:  cfg.Controller.DeadzoneLeft,
		Right: cfg.Controller.DeadzoneRight,
	}, log)

	pump := remap.NewPump(driver, remap.Options{
		PollInterval:     cfg.PollInterval,
		TriggerThreshold: cfg.Controller.TriggerThreshold,
	}, log)

	svc := remap.LoggingMiddleware(log)(pump)

	h := hub.NewHub(log)
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, svc)
	go broadcaster.Run(ctx)

	unsubscribe := svc.Subscribe(broadcaster.Listen)
	defer unsubscribe()

	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer nc.Drain()

		pub := events.NewPublisher(nc, cfg.NATS.Subject, log)
		unsubscribe := svc.Subscribe(pub.Listen)
		defer unsubscribe()

		log.Info("publishing gamepad events",
			zap.String("url", cfg.NATS.URL),
			zap.String("subject", cfg.NATS.Subject))
	}

	srv := server.New(h, broadcaster, svc, getFrontendFS(), cfg.Listen, cfg.AssignTimeout, log)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	url := browserURL(cfg.Listen)
	log.Info("padremap started", zap.String("url", url))

	shutdownRequested := make(chan struct{})
	if cfg.Tray {
		t := tray.New(url, func() { close(shutdownRequested) }, log)
		go t.Run(tray.GetIcon())
		defer t.Quit()
	} else {
		log.Info("press Ctrl+C to exit")
	}

	// The pump locks its goroutine to the OS thread SDL was initialized on.
	pumpErrCh := make(chan error, 1)
	go func() {
		pumpErrCh <- pump.Run(ctx)
	}()

	var runErr error
	select {
	case <-sigCh:
		log.Info("shutting down")
	case <-shutdownRequested:
		log.Info("shutdown requested from tray")
	case runErr = <-serverErrCh:
		log.Error("HTTP server error", zap.Error(runErr))
	case runErr = <-pumpErrCh:
		log.Error("gamepad pump stopped", zap.Error(runErr))
		pumpErrCh <- runErr
	}
	cancel()

	if err := <-pumpErrCh; err != nil && runErr == nil {
		runErr = err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("padremap stopped")
	return runErr
}
