package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// menuYAML embeds the default drink menu shipped with the binary.
//
//go:embed menu.yaml
var menuYAML []byte

// seedDrink mirrors one entry of menu.yaml.
type seedDrink struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	VolumeML    int    `yaml:"volume_ml"`
	HasAlcohol  bool   `yaml:"has_alcohol"`
}

type seedMenu struct {
	Drinks []seedDrink `yaml:"drinks"`
}

// Seed inserts the embedded menu into an empty drink table.
// Existing rows are left untouched (INSERT OR IGNORE keyed on id), so running
// Seed on an already-populated database is a no-op; embeddings computed by a
// previous reindex are never overwritten.
func Seed(ctx context.Context, db *sql.DB) (int, error) {
	menu, err := parseMenu(menuYAML)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("catalog: seed begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `
		INSERT OR IGNORE INTO drink (id, name, description, category, volume_ml, has_alcohol)
		VALUES (?, ?, ?, ?, ?, ?)`

	inserted := 0
	for _, d := range menu.Drinks {
		res, execErr := tx.ExecContext(ctx, q, d.ID, d.Name, d.Description, d.Category, d.VolumeML, boolToInt(d.HasAlcohol))
		if execErr != nil {
			return 0, fmt.Errorf("catalog: seed insert %q: %w", d.Name, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("catalog: seed commit: %w", err)
	}
	return inserted, nil
}

// parseMenu decodes and validates the YAML menu.
func parseMenu(raw []byte) (*seedMenu, error) {
	var menu seedMenu
	if err := yaml.Unmarshal(raw, &menu); err != nil {
		return nil, fmt.Errorf("catalog: parse menu yaml: %w", err)
	}
	if len(menu.Drinks) == 0 {
		return nil, fmt.Errorf("catalog: menu yaml contains no drinks")
	}
	seen := map[string]struct{}{}
	for _, d := range menu.Drinks {
		if d.ID == "" || d.Name == "" {
			return nil, fmt.Errorf("catalog: menu entry missing id or name: %+v", d)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate menu id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return &menu, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
