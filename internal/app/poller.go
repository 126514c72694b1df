package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/state"
)

const (
	defaultHealthInterval = 5 * time.Second
	healthTimeout         = 3 * time.Second
	maxBackoff            = 30 * time.Second
)

// HealthSource reports backend readiness. *genapi.Client implements it.
type HealthSource interface {
	FetchHealth(ctx context.Context) (*genapi.Health, error)
}

// StartPoller launches a background goroutine that refreshes backend health
// in the store. Consecutive failures back off exponentially up to maxBackoff.
// It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, src HealthSource, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			_ = refresh(ctx, store, src, logger)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, src HealthSource, logger *slog.Logger) error {
	reqCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	health, err := src.FetchHealth(reqCtx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		store.SetHealth(nil, err)
		logger.Warn("health poll failed", slog.String("error", err.Error()))
		return err
	}
	store.SetHealth(health, nil)
	logger.Debug("health poll", slog.Bool("ready", health.Ready()), slog.String("model", health.ModelName))
	return nil
}

// calculateBackoff doubles base for each consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
