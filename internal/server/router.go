// Package server はルーターの組み立てを行います。
package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/catalog"
	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/logging"
	"github.com/yourusername/bookshelf/internal/reviews"
	"github.com/yourusername/bookshelf/internal/users"
)

const (
	serviceName    = "bookshelf-api"
	serviceVersion = "0.1.0"
)

// Deps はルーターが利用するコンポーネントです。
type Deps struct {
	Catalog   catalog.Catalog
	Directory users.Directory
	Auth      *auth.Manager
	Reviews   *reviews.Manager
	Keys      auth.Keys
	Logger    zerolog.Logger
}

// NewRouter はミドルウェアとルートを設定した Gin エンジンを返します。
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(logging.Middleware(deps.Logger), gin.Recovery())

	// セッションクッキーにはセッションIDだけを載せ、状態はサーバー側で持つ
	store := cookie.NewStore(deps.Keys.CookieHash, deps.Keys.CookieBlock)
	store.Options(auth.SessionOptions(cfg.TokenTTL(), cfg.GinMode == gin.ReleaseMode))
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.CORSAllowedOrigins)
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		logging.RequestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, deps)
	return router
}

func setupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handleHealth)

	// 認証不要
	router.POST("/register", users.RegisterHandler(deps.Directory))
	router.POST("/login", deps.Auth.HandleLogin)

	router.GET("/", catalog.ListHandler(deps.Catalog, deps.Reviews))
	router.GET("/isbn/:isbn", catalog.ISBNHandler(deps.Catalog, deps.Reviews))
	router.GET("/author/:author", catalog.AuthorHandler(deps.Catalog, deps.Reviews))
	router.GET("/title/:title", catalog.TitleHandler(deps.Catalog, deps.Reviews))
	router.GET("/review/:isbn", reviews.ListHandler(deps.Reviews))

	router.POST("/logout", deps.Auth.RequireLogin(), deps.Auth.HandleLogout)

	protected := router.Group("/auth")
	protected.Use(deps.Auth.RequireLogin())
	{
		protected.PUT("/review/:isbn", reviews.UpsertHandler(deps.Reviews))
		protected.DELETE("/review/:isbn", reviews.DeleteHandler(deps.Reviews))
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return origins
}
