// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/logging"
	"github.com/yourusername/bookshelf/internal/server"
)

const (
	janitorInterval = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("error", os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	gin.SetMode(cfg.GinMode)
	logger := newLogger(cfg)

	cat, err := server.LoadCatalog(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	app, err := server.New(cfg, cat, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.RunJanitor(ctx, janitorInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newLogger は release モードでは JSON、それ以外では整形出力のロガーを返します。
func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.GinMode == gin.ReleaseMode {
		return logging.New(cfg.LogLevel, os.Stdout)
	}
	return logging.NewConsole(cfg.LogLevel)
}
