package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cardtable/internal/game"
	"cardtable/internal/logger"
	"cardtable/internal/repository"
	"cardtable/internal/store"
)

const (
	cleanupInterval = 10 * time.Minute
	idleThreshold   = time.Hour
)

// Hub resolves room names to running room actors. The first connection for a
// name performs the cold-start load from the durable store before any session
// is registered.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	store   store.Store
	matches *repository.MatchRepository
}

// NewHub builds a hub over the durable store. matches may be nil when no
// archive database is configured.
func NewHub(st store.Store, matches *repository.MatchRepository) *Hub {
	return &Hub{
		rooms:   make(map[string]*Room),
		store:   st,
		matches: matches,
	}
}

// Room returns the actor for name, cold-starting it on first use. A store
// read failure is returned to the caller: the room does not come up and the
// connection attempt fails.
func (h *Hub) Room(ctx context.Context, name string) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.rooms[name]; ok {
		return r, nil
	}

	engine, err := h.coldStart(ctx, name)
	if err != nil {
		return nil, err
	}

	r := newRoom(name, engine, h.store, h.matches)
	h.rooms[name] = r
	go r.Run()
	return r, nil
}

func (h *Hub) coldStart(ctx context.Context, name string) (*game.Engine, error) {
	data, err := h.store.Load(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Info("no snapshot, starting fresh table", "room", name)
		return game.New(), nil
	case err != nil:
		return nil, fmt.Errorf("cold start room %q: %w", name, err)
	}

	engine, err := game.Restore(data)
	if err != nil {
		// Fail closed: an unreadable or mismatched snapshot becomes a
		// fresh table instead of a half-restored one.
		logger.Warn("discarding invalid snapshot", "room", name, "error", err)
		return game.New(), nil
	}
	logger.Info("restored table from snapshot", "room", name, "players", len(engine.Players()))
	return engine, nil
}

// StartCleanup periodically drops rooms that have been empty and idle for a
// while. Their snapshots stay in the store, so the next join cold-starts them
// right back.
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			h.sweepIdleRooms()
		}
	}()
}

func (h *Hub) sweepIdleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, r := range h.rooms {
		if r.Idle(idleThreshold) {
			r.Stop()
			delete(h.rooms, name)
			logger.Info("cleaned up idle room", "room", name)
		}
	}
}
