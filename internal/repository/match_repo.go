package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Match is one finished game: who won at which table, and who was seated.
type Match struct {
	ID         int64
	Room       string
	Winner     string
	Players    []string
	FinishedAt time.Time
}

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m *Match) error {
	playersJSON, err := json.Marshal(m.Players)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO matches (room, winner, players)
		 VALUES ($1, $2, $3)
		 RETURNING id, finished_at`,
		m.Room,
		m.Winner,
		playersJSON,
	).Scan(&m.ID, &m.FinishedAt)
}

// RecentByRoom lists the latest finished games for a table, newest first.
func (r *MatchRepository) RecentByRoom(ctx context.Context, room string, limit int) ([]*Match, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room, winner, players, finished_at
		 FROM matches
		 WHERE room = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		room, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Match
	for rows.Next() {
		var (
			m           Match
			playersJSON []byte
		)
		if err := rows.Scan(&m.ID, &m.Room, &m.Winner, &playersJSON, &m.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(playersJSON, &m.Players); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}
