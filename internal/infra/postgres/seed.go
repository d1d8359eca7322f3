package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"iso-games-service/internal/domain"

	"github.com/uptrace/bun"
)

const upsertScenarioSQL = `INSERT INTO scenarios (id, game_id, data) VALUES (?, ?, ?::jsonb)
ON CONFLICT (id) DO UPDATE SET game_id=EXCLUDED.game_id, data=EXCLUDED.data`

type seedRow struct {
	ID     string
	GameID string
	Data   string
}

// Seed upserts every scenario of pools in one transaction and returns the row count.
func Seed(ctx context.Context, db *bun.DB, pools map[string][]domain.Scenario) (int, error) {
	rows, err := seedRows(pools)
	if err != nil {
		return 0, err
	}
	err = db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, upsertScenarioSQL, row.ID, row.GameID, row.Data); err != nil {
				return fmt.Errorf("upsert scenario %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// seedRows flattens pools in game then scenario order.
func seedRows(pools map[string][]domain.Scenario) ([]seedRow, error) {
	games := make([]string, 0, len(pools))
	for game := range pools {
		games = append(games, game)
	}
	sort.Strings(games)

	var rows []seedRow
	for _, game := range games {
		for _, sc := range pools[game] {
			if sc.ID == "" {
				return nil, fmt.Errorf("seed %s: scenario without id", game)
			}
			data, err := json.Marshal(sc)
			if err != nil {
				return nil, fmt.Errorf("marshal scenario %s: %w", sc.ID, err)
			}
			rows = append(rows, seedRow{ID: sc.ID, GameID: game, Data: string(data)})
		}
	}
	return rows, nil
}
