package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardtable/internal/config"
	"cardtable/internal/db"
	httpServer "cardtable/internal/http"
	"cardtable/internal/logger"
	"cardtable/internal/repository"
	"cardtable/internal/store"
	"cardtable/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()

	st, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SnapshotTTL)
	if err != nil {
		logger.Fatal("connect durable store", "addr", cfg.RedisAddr, "error", err)
	}
	logger.Info("durable store connected", "addr", cfg.RedisAddr)

	// Optional match archive
	var dbPool *pgxpool.Pool
	var matches *repository.MatchRepository
	if cfg.DatabaseURL != "" {
		if dbPool = db.Connect(ctx, cfg.DatabaseURL); dbPool != nil {
			defer dbPool.Close()
			matches = repository.NewMatchRepository(dbPool)
		}
	}

	hub := ws.NewHub(st, matches)
	hub.StartCleanup()

	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpServer.RegisterRoutes(r, hub, st.Client(), dbPool, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
