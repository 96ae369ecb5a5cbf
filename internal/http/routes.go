package http

import (
	"cardtable/internal/config"
	"cardtable/internal/http/handlers"
	"cardtable/internal/http/middleware"
	"cardtable/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// RegisterRoutes wires the websocket endpoint, health probes and static
// frontend onto the router. redisClient and dbPool may be nil in tests.
func RegisterRoutes(r *gin.Engine, hub *ws.Hub, redisClient *redis.Client, dbPool *pgxpool.Pool, cfg *config.Config, version string) {
	h := handlers.NewHandler(hub, cfg.AllowedOrigin)
	healthHandler := handlers.NewHealthHandler(redisClient, dbPool, version)

	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	middleware.InitRateLimiter(redisClient)
	r.GET("/ws", middleware.RateLimit(cfg.WSRateLimit, cfg.WSRateWindow), h.WS())

	// Frontend assets
	r.StaticFS("/assets", gin.Dir(cfg.StaticDir, false))
	r.NoRoute(func(c *gin.Context) {
		c.File(cfg.StaticDir + "/index.html")
	})
}
