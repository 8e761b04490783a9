// Package farmlist maps targets onto capacity-bounded farm lists.
package farmlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/esemi/travian-manager/internal/models"
)

// ErrCapacityExhausted is returned when every suffixed list up to the
// configured depth is full.
var ErrCapacityExhausted = errors.New("farm list capacity exhausted")

// ListCreationError is returned when the village embedded in a list name
// ("<village> - <list>") matches none of the account's villages.
type ListCreationError struct {
	Name    string
	Village string
}

func (e *ListCreationError) Error() string {
	if e.Village == "" {
		return fmt.Sprintf("cannot create list %q: name has no village part", e.Name)
	}
	return fmt.Sprintf("cannot create list %q: unknown village %q", e.Name, e.Village)
}

// Portal is the subset of the game portal the manager drives
type Portal interface {
	Villages(ctx context.Context) ([]models.Village, error)
	FarmLists(ctx context.Context) ([]models.FarmList, error)
	ListView(ctx context.Context, listID string) (*models.FarmList, error)
	CreateList(ctx context.Context, villageID, name string) (string, error)
	AddSlot(ctx context.Context, listID string, x, y, troopID, troopCount int) error
	ClearList(ctx context.Context, listID string) error
}

// Manager owns no state between calls; every method re-reads the portal
type Manager struct {
	portal   Portal
	maxDepth int
	logger   *log.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxSuffixDepth bounds how many underscores are appended to a full list name
func WithMaxSuffixDepth(depth int) Option {
	return func(m *Manager) {
		m.maxDepth = depth
	}
}

// WithLogger sets the manager logger
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager over the portal
func NewManager(p Portal, opts ...Option) *Manager {
	m := &Manager{
		portal:   p,
		maxDepth: 8,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SplitName splits "<village> - <list>" into its parts
func SplitName(fullName string) (village, list string, ok bool) {
	village, list, ok = strings.Cut(fullName, " - ")
	if !ok || village == "" || list == "" {
		return "", fullName, false
	}
	return village, list, true
}

// FindOrCreateCapacity returns a list named fullName, fullName+"_", ...
// that has a free slot, creating the first missing name when every
// existing candidate is full.
func (m *Manager) FindOrCreateCapacity(ctx context.Context, fullName string) (*models.FarmList, error) {
	village, listName, ok := SplitName(fullName)
	if !ok {
		return nil, &ListCreationError{Name: fullName}
	}

	lists, err := m.portal.FarmLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read farm lists: %w", err)
	}

	for depth := 0; depth <= m.maxDepth; depth++ {
		name := listName + strings.Repeat("_", depth)
		header, found := findList(lists, village, name)
		if !found {
			return m.create(ctx, fullName, village, name)
		}

		view, err := m.portal.ListView(ctx, header.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to open list %s: %w", name, err)
		}
		if view.HasCapacity() {
			return view, nil
		}
		m.logger.Printf("Update: list %s - %s is full (%d/%d)", village, name, view.Used, view.Total)
	}

	return nil, fmt.Errorf("%s: %w", fullName, ErrCapacityExhausted)
}

func (m *Manager) create(ctx context.Context, fullName, village, name string) (*models.FarmList, error) {
	villages, err := m.portal.Villages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read villages: %w", err)
	}

	var owner *models.Village
	for i := range villages {
		if villages[i].Name == village {
			owner = &villages[i]
			break
		}
	}
	if owner == nil {
		return nil, &ListCreationError{Name: fullName, Village: village}
	}

	id, err := m.portal.CreateList(ctx, owner.ID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create list %s: %w", name, err)
	}
	m.logger.Printf("Update: created list %s - %s", village, name)

	view, err := m.portal.ListView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open new list %s: %w", name, err)
	}
	return view, nil
}

// Assign adds one slot for target to the list. The list has no uniqueness
// constraint, so callers must filter by ExistingMasks first.
func (m *Manager) Assign(ctx context.Context, listID string, target models.Target, troopID, troopCount int) error {
	if err := m.portal.AddSlot(ctx, listID, target.X, target.Y, troopID, troopCount); err != nil {
		return fmt.Errorf("failed to add %s to list %s: %w", target.Mask(), listID, err)
	}
	return nil
}

// ExistingMasks reads every visible slot of every list and returns the
// set of assigned target masks. The result is never cached.
func (m *Manager) ExistingMasks(ctx context.Context) (models.MaskSet, error) {
	lists, err := m.portal.FarmLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read farm lists: %w", err)
	}

	masks := models.MaskSet{}
	for _, header := range lists {
		view, err := m.portal.ListView(ctx, header.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to open list %s: %w", header.Name, err)
		}
		for _, slot := range view.Slots {
			masks.Add(slot.Mask())
		}
	}
	return masks, nil
}

// Matching returns the list headers whose "<village> - <name>" matches any
// of the glob patterns. An empty pattern set matches every list.
func (m *Manager) Matching(ctx context.Context, patterns []string) ([]models.FarmList, error) {
	lists, err := m.portal.FarmLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read farm lists: %w", err)
	}
	if len(patterns) == 0 {
		return lists, nil
	}

	var matched []models.FarmList
	for _, l := range lists {
		if MatchAny(patterns, FullName(l)) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// Clear removes every slot of the lists matching the patterns and returns
// how many lists were cleared.
func (m *Manager) Clear(ctx context.Context, patterns []string) (int, error) {
	lists, err := m.Matching(ctx, patterns)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, l := range lists {
		if err := m.portal.ClearList(ctx, l.ID); err != nil {
			return cleared, fmt.Errorf("failed to clear list %s: %w", FullName(l), err)
		}
		cleared++
		m.logger.Printf("Clear: emptied list %s", FullName(l))
	}
	return cleared, nil
}

// FullName renders the "<village> - <list>" form of a list
func FullName(l models.FarmList) string {
	return l.Village + " - " + l.Name
}

// MatchAny reports whether name matches one of the glob patterns. A pattern
// with no glob metacharacters is compared exactly.
func MatchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func findList(lists []models.FarmList, village, name string) (models.FarmList, bool) {
	for _, l := range lists {
		if l.Village == village && l.Name == name {
			return l, true
		}
	}
	return models.FarmList{}, false
}
