package db

import (
	"context"

	"cardtable/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the optional match-archive pool. Unlike the durable store the
// archive is best effort, so failures disable it instead of aborting startup.
func Connect(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Error("create database pool", "error", err)
		return nil
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("ping database, match archive disabled", "error", err)
		pool.Close()
		return nil
	}

	logger.Info("match archive database connected")
	return pool
}
