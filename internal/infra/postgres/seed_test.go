package postgres

import (
	"encoding/json"
	"testing"

	"iso-games-service/internal/domain"
)

func TestSeedRowsOrderedAndEncoded(t *testing.T) {
	rows, err := seedRows(map[string][]domain.Scenario{
		"usability-universe": {{ID: "uu_001", CorrectOption: "C"}},
		"quality-quest":      {{ID: "qq_001", CorrectOption: "A"}, {ID: "qq_002", CorrectOption: "B"}},
	})
	if err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].GameID != "quality-quest" || rows[2].GameID != "usability-universe" {
		t.Fatalf("expected game order, got %+v", rows)
	}

	var sc domain.Scenario
	if err := json.Unmarshal([]byte(rows[1].Data), &sc); err != nil {
		t.Fatalf("decode row: %v", err)
	}
	if sc.ID != "qq_002" || sc.CorrectOption != "B" {
		t.Fatalf("unexpected row payload %+v", sc)
	}
}

func TestSeedRowsRejectsMissingID(t *testing.T) {
	if _, err := seedRows(map[string][]domain.Scenario{"g": {{}}}); err == nil {
		t.Fatalf("expected error for scenario without id")
	}
}
