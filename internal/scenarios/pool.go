// Package scenarios holds the built-in scenario pools and the helpers that
// describe and validate a pool.
package scenarios

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"

	"iso-games-service/internal/domain"
)

// Built-in game ids.
const (
	QualityQuest      = "quality-quest"
	RequirementRally  = "requirement-rally"
	UsabilityUniverse = "usability-universe"
)

//go:embed data/*.json
var dataFS embed.FS

// File is the on-disk layout of a pool.
type File struct {
	Game      string            `json:"game"`
	Scenarios []domain.Scenario `json:"scenarios"`
}

// Parse decodes a pool file.
func Parse(r io.Reader) (File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode pool: %w", err)
	}
	if f.Game == "" {
		return File{}, fmt.Errorf("decode pool: missing game id")
	}
	return f, nil
}

// LoadFile reads a pool from a JSON file on disk.
func LoadFile(p string) (File, error) {
	fh, err := os.Open(p)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Embedded returns the built-in pools keyed by game id.
func Embedded() (map[string][]domain.Scenario, error) {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil, err
	}
	pools := make(map[string][]domain.Scenario, len(entries))
	for _, entry := range entries {
		fh, err := dataFS.Open(path.Join("data", entry.Name()))
		if err != nil {
			return nil, err
		}
		f, err := Parse(fh)
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		pools[f.Game] = f.Scenarios
	}
	return pools, nil
}
