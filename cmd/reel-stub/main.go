package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/five82/reel/internal/logging"
	"github.com/five82/reel/internal/stub"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("REEL_STUB_ADDR", "127.0.0.1:5000"), "listen address")
	mode := flag.String("mode", envOr("REEL_STUB_MODE", stub.ModeVideo), "backend flavour: video, chat or image")
	jobDuration := flag.Duration("job-duration", 20*time.Second, "time a video job takes to finish")
	logLevel := flag.String("log-level", envOr("REEL_LOG_LEVEL", "info"), "log level")
	logFormat := flag.String("log-format", envOr("REEL_LOG_FORMAT", "console"), "log format: console or json")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: *logFormat, Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reel-stub: %v\n", err)
		return 1
	}
	defer logger.Close()

	server, err := stub.New(stub.Options{Mode: *mode, Logger: logger.Logger, JobDuration: *jobDuration})
	if err != nil {
		logger.Error("invalid options", slog.String("error", err.Error()))
		return 2
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub backend listening", slog.String("address", *addr), slog.String("mode", server.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
