package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/auth"
	"github.com/vovakirdan/wirerelay/internal/config"
	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/metrics"
	"github.com/vovakirdan/wirerelay/internal/store"
)

// WSRoute is the WebSocket endpoint.
const WSRoute = "/ws"

// NewServer builds the HTTP server. The WebSocket endpoint is served straight
// from the mux; gin's response writer does not hand frames through after an upgrade.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.Handle(WSRoute, NewWSHandler(hub, authService, WSOptions{
		QueueSize:       cfg.OutboundQueueSize,
		MaxMessageBytes: cfg.MaxMessageBytes,
		PingInterval:    cfg.PingInterval,
		WriteTimeout:    cfg.WriteTimeout,
		EventsPerSecond: cfg.EventsPerSecond,
		EventsBurst:     cfg.EventsBurst,
	}, logger))
	mux.Handle("/", NewRouter(authService, st, cfg, logger))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine serving REST, upload, health and metrics routes.
func NewRouter(authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	authHandlers := NewAuthHandlers(authService, cfg.SecureCookies, logger)
	channelHandlers := NewChannelHandlers(st, cfg.HistoryLimit, logger)
	uploadHandler := NewUploadHandler(cfg.UploadDir, cfg.MaxUploadBytes, logger)
	loginLimiter := newKeyedLimiter(cfg.LoginAttempts, cfg.LoginWindow)

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.Static(UploadsRoute, cfg.UploadDir)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandlers.Register)
		api.POST("/auth/login", LoginRateLimit(loginLimiter, logger), authHandlers.Login)
		api.POST("/auth/logout", authHandlers.Logout)

		protected := api.Group("")
		protected.Use(AuthMiddleware(authService, logger))
		{
			protected.GET("/auth/me", authHandlers.Me)
			protected.GET("/channels", channelHandlers.ListChannels)
			protected.GET("/channels/:id/messages", channelHandlers.History)
			protected.POST("/upload", uploadHandler.Upload)
		}
	}

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
