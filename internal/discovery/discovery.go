// Package discovery scans the map around configured centres and fills
// farm lists with the filtered targets.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"

	"github.com/esemi/travian-manager/internal/extract"
	"github.com/esemi/travian-manager/internal/farmlist"
	"github.com/esemi/travian-manager/internal/filter"
	"github.com/esemi/travian-manager/internal/models"
)

// Portal is what discovery needs beyond the farm-list manager
type Portal interface {
	ScanTiles(ctx context.Context, x, y, zoom int) ([]byte, error)
}

// Config is one target-discovery configuration
type Config struct {
	List       string // "<village> - <list>"
	CenterX    int
	CenterY    int
	Offset     int
	Zoom       int
	TroopID    int
	TroopCount int
	Rule       filter.Rule
}

// Point is a map coordinate
type Point struct {
	X, Y int
}

// Centers returns the scan centres of a config: the centre alone when
// offset is not positive, otherwise the centre followed by its eight
// neighbours at distance offset going counter-clockwise from east.
func Centers(x, y, offset int) []Point {
	if offset <= 0 {
		return []Point{{x, y}}
	}
	o := offset
	return []Point{
		{x, y},
		{x + o, y},
		{x + o, y + o},
		{x, y + o},
		{x - o, y + o},
		{x - o, y},
		{x - o, y - o},
		{x, y - o},
		{x + o, y - o},
	}
}

// Discoverer runs the update-farm-lists feature
type Discoverer struct {
	portal  Portal
	manager *farmlist.Manager
	logger  *log.Logger
}

// New creates a discoverer. logger may be nil.
func New(p Portal, manager *farmlist.Manager, logger *log.Logger) *Discoverer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Discoverer{portal: p, manager: manager, logger: logger}
}

// Update runs every config once and returns how many targets were added.
// The assigned set is read fresh at the start of the pass and grows as
// targets are added, so overlapping scans never assign a target twice.
// A failing config is logged and the next config still runs.
func (d *Discoverer) Update(ctx context.Context, configs []Config) (int, error) {
	assigned, err := d.manager.ExistingMasks(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	var errs []error
	for _, cfg := range configs {
		n, err := d.Run(ctx, cfg, assigned)
		added += n
		if err != nil {
			if ctx.Err() != nil {
				return added, ctx.Err()
			}
			d.logger.Printf("Update: %s failed: %v", cfg.List, err)
			errs = append(errs, err)
		}
	}
	return added, errors.Join(errs...)
}

// Run scans, filters and assigns the targets of one config
func (d *Discoverer) Run(ctx context.Context, cfg Config, assigned models.MaskSet) (int, error) {
	f, err := filter.New(cfg.Rule)
	if err != nil {
		return 0, err
	}

	targets := d.scan(ctx, cfg)
	accepted := f.Apply(targets, assigned)
	if len(accepted) == 0 {
		d.logger.Printf("Update: %s - no new targets", cfg.List)
		return 0, nil
	}

	var list *models.FarmList
	added := 0
	for _, target := range accepted {
		if list == nil || !list.HasCapacity() {
			list, err = d.manager.FindOrCreateCapacity(ctx, cfg.List)
			if err != nil {
				return added, err
			}
		}
		if err := d.manager.Assign(ctx, list.ID, target, cfg.TroopID, cfg.TroopCount); err != nil {
			return added, err
		}
		list.Used++
		assigned.Add(target.Mask())
		added++
	}

	d.logger.Printf("Update: %s - added %d targets", cfg.List, added)
	return added, nil
}

// Preview returns the targets Run would add for cfg without touching
// any farm list
func (d *Discoverer) Preview(ctx context.Context, cfg Config, assigned models.MaskSet) ([]models.Target, error) {
	f, err := filter.New(cfg.Rule)
	if err != nil {
		return nil, err
	}
	return f.Apply(d.scan(ctx, cfg), assigned), nil
}

// scan collects the targets of every centre. A malformed payload drops
// that centre only.
func (d *Discoverer) scan(ctx context.Context, cfg Config) []models.Target {
	var targets []models.Target
	seen := make(map[string]bool)

	for _, c := range Centers(cfg.CenterX, cfg.CenterY, cfg.Offset) {
		payload, err := d.portal.ScanTiles(ctx, c.X, c.Y, cfg.Zoom)
		if err != nil {
			d.logger.Printf("Update: scan (%d|%d) failed: %v", c.X, c.Y, err)
			continue
		}
		seq, err := extract.Targets(payload)
		if err != nil {
			d.logger.Printf("Update: scan (%d|%d): %v", c.X, c.Y, err)
			continue
		}
		for t := range seq {
			if seen[t.Mask()] {
				continue
			}
			seen[t.Mask()] = true
			targets = append(targets, t)
		}
	}
	return slices.Clip(targets)
}

// ScanOases returns the raidable oases around (x, y)
func ScanOases(ctx context.Context, p Portal, x, y, zoom int) ([]models.OasisTile, error) {
	payload, err := p.ScanTiles(ctx, x, y, zoom)
	if err != nil {
		return nil, fmt.Errorf("failed to scan (%d|%d): %w", x, y, err)
	}
	return extract.Oases(payload)
}
