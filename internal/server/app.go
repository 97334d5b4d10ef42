package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/catalog"
	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/reviews"
	"github.com/yourusername/bookshelf/internal/users"
)

// App は組み立て済みのサーバーです。
type App struct {
	Router   *gin.Engine
	Sessions *auth.MemorySessionStore
	now      func() time.Time
}

// LoadCatalog は設定に従ってカタログを読み込みます。
func LoadCatalog(cfg *config.Config) (catalog.Catalog, error) {
	var (
		mem *catalog.Memory
		err error
	)
	if cfg.CatalogFile != "" {
		mem, err = catalog.LoadFile(cfg.CatalogFile)
	} else {
		mem, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	return catalog.WithLatency(mem, cfg.CatalogLatency()), nil
}

// New はコンポーネントを生成してルーターを組み立てます。now が nil なら time.Now を使います。
func New(cfg *config.Config, cat catalog.Catalog, logger zerolog.Logger, now func() time.Time) (*App, error) {
	if now == nil {
		now = time.Now
	}
	keys, err := auth.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	directory := users.NewMemoryDirectory()
	sessions := auth.NewMemorySessionStore()
	signer := auth.NewJWTSigner(keys.Token, cfg.TokenTTL(), auth.WithClock(now))
	authManager := auth.NewManager(directory, sessions, signer, logger.With().Str("component", "auth").Logger(), auth.WithSessionClock(now))
	reviewManager := reviews.NewManager(cat, reviews.WithClock(now))

	router := NewRouter(cfg, Deps{
		Catalog:   cat,
		Directory: directory,
		Auth:      authManager,
		Reviews:   reviewManager,
		Keys:      keys,
		Logger:    logger,
	})
	return &App{Router: router, Sessions: sessions, now: now}, nil
}

// RunJanitor は期限切れセッションの掃除を ctx が終了するまで続けます。
func (a *App) RunJanitor(ctx context.Context, interval time.Duration) {
	a.Sessions.RunJanitor(ctx, interval, a.now)
}
