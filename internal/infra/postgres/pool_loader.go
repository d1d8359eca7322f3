package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"iso-games-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// PoolLoader loads scenario JSONB rows from Postgres.
type PoolLoader struct {
	pool *pgxpool.Pool
}

func NewPoolLoader(pool *pgxpool.Pool) *PoolLoader {
	return &PoolLoader{pool: pool}
}

// LoadPool returns the game's scenarios ordered by id. A game with no rows is unknown.
func (l *PoolLoader) LoadPool(ctx context.Context, gameID string) ([]domain.Scenario, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM scenarios WHERE game_id=$1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	defer rows.Close()

	var pool []domain.Scenario
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		var sc domain.Scenario
		if err := json.Unmarshal(raw, &sc); err != nil {
			return nil, fmt.Errorf("unmarshal scenario: %w", err)
		}
		pool = append(pool, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no scenarios for %s: %w", gameID, domain.ErrGameNotFound)
	}
	return pool, nil
}
