// Package oasis scores nature garrisons and picks a hero raid target.
package oasis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/portal"
)

// ErrNoTarget is returned when no candidate oasis falls inside the strength window
var ErrNoTarget = errors.New("no oasis within strength bounds")

// StrengthTable maps nature unit names to their combat value
type StrengthTable struct {
	units []unit
}

type unit struct {
	name     string
	strength int
}

// NewStrengthTable builds a table. Longer names are matched first so
// "Wild Boar" wins over a shorter key it contains.
func NewStrengthTable(values map[string]int) StrengthTable {
	units := make([]unit, 0, len(values))
	for name, strength := range values {
		units = append(units, unit{name: strings.ToLower(name), strength: strength})
	}
	slices.SortFunc(units, func(a, b unit) int {
		if c := cmp.Compare(len(b.name), len(a.name)); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return StrengthTable{units: units}
}

// Lookup returns the strength of a unit row name
func (t StrengthTable) Lookup(name string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return 0, false
	}
	for _, u := range t.units {
		if strings.Contains(lower, u.name) {
			return u.strength, true
		}
	}
	return 0, false
}

// Strength sums count x strength over rows. Unknown names and negative
// counts contribute nothing; unknown names are reported through logf.
func (t StrengthTable) Strength(rows []models.GarrisonRow, logf func(string, ...any)) int {
	total := 0
	for _, row := range rows {
		strength, ok := t.Lookup(row.Name)
		if !ok {
			if logf != nil {
				logf("Hero: unknown nature unit %q", row.Name)
			}
			continue
		}
		if row.Count <= 0 {
			continue
		}
		total += row.Count * strength
	}
	return total
}

// Portal is the detail query the evaluator needs
type Portal interface {
	TileDetail(ctx context.Context, x, y int) ([]models.GarrisonRow, error)
}

// Evaluator picks the first shuffled oasis whose garrison is in [Min, Max]
type Evaluator struct {
	portal Portal
	table  StrengthTable
	min    int
	max    int
	rnd    *rand.Rand
	logger *log.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithRand sets the shuffle source
func WithRand(rnd *rand.Rand) Option {
	return func(e *Evaluator) {
		e.rnd = rnd
	}
}

// WithLogger sets the evaluator logger
func WithLogger(logger *log.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates an evaluator with inclusive strength bounds
func NewEvaluator(p Portal, table StrengthTable, min, max int, opts ...Option) *Evaluator {
	e := &Evaluator{
		portal: p,
		table:  table,
		min:    min,
		max:    max,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select shuffles the candidates and returns the first one in bounds with
// its GarrisonStrength filled. Tiles whose detail view is missing are skipped.
func (e *Evaluator) Select(ctx context.Context, tiles []models.OasisTile) (models.OasisTile, error) {
	candidates := slices.Clone(tiles)
	shuffle := rand.Shuffle
	if e.rnd != nil {
		shuffle = e.rnd.Shuffle
	}
	shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, tile := range candidates {
		if err := ctx.Err(); err != nil {
			return models.OasisTile{}, err
		}

		rows, err := e.portal.TileDetail(ctx, tile.X, tile.Y)
		if errors.Is(err, portal.ErrNotFound) {
			e.logger.Printf("Hero: no detail for oasis (%d|%d)", tile.X, tile.Y)
			continue
		}
		if err != nil {
			return models.OasisTile{}, fmt.Errorf("failed to read oasis (%d|%d): %w", tile.X, tile.Y, err)
		}

		tile.GarrisonStrength = e.table.Strength(rows, e.logger.Printf)
		if tile.GarrisonStrength >= e.min && tile.GarrisonStrength <= e.max {
			return tile, nil
		}
	}
	return models.OasisTile{}, ErrNoTarget
}
