package remap

import (
	"context"

	"go.uber.org/zap"

	"github.com/soar/padremap/internal/assign"
	"github.com/soar/padremap/internal/gamepad"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		log := log.With(
			zap.String("service", "remap"),
		)

		log.Info("service built")

		return &loggingMiddleware{log, next}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Devices() []gamepad.ID {
	return mw.next.Devices()
}

func (mw *loggingMiddleware) Assign(ctx context.Context, id gamepad.ID, mode assign.Mode) (string, error) {
	log := mw.log.With(
		zap.String("action", "assign"),
		zap.String("id", string(id)),
		zap.String("mode", mode.String()),
	)

	log.Info("waiting for input")

	control, err := mw.next.Assign(ctx, id, mode)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("control assigned", zap.String("control", control))
	return control, nil
}

func (mw *loggingMiddleware) Subscribe(l gamepad.Listener) func() {
	return mw.next.Subscribe(l)
}
