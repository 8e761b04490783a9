// Package raid sends classified farm-list slots in tier order.
package raid

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/esemi/travian-manager/internal/classify"
	"github.com/esemi/travian-manager/internal/farmlist"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/portal"
)

// Portal is the subset of the game portal the sender drives
type Portal interface {
	Villages(ctx context.Context) ([]models.Village, error)
	FarmLists(ctx context.Context) ([]models.FarmList, error)
	ListView(ctx context.Context, listID string) (*models.FarmList, error)
	Send(ctx context.Context, listID string, slotIDs []string) (string, error)
	SendEscort(ctx context.Context, villageID string, x, y, unit, count int) error
}

// Journal records what was sent
type Journal interface {
	Record(ctx context.Context, entry models.RaidEntry) error
}

// Settings selects which lists are raided and how orange slots are handled
type Settings struct {
	Lists       []string // "<village> - <list>" glob patterns
	SendOrange  bool
	EscortUnit  int
	EscortCount int
}

// Result counts what one Send pass dispatched per tier
type Result map[models.Tier]int

// Total returns the number of targets dispatched
func (r Result) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// Sender runs the send-farm feature
type Sender struct {
	portal     Portal
	classifier classify.Classifier
	settings   Settings
	journal    Journal
	rnd        *rand.Rand
	pause      func(context.Context) error
	now        func() time.Time
	logger     *log.Logger
}

// Option configures a Sender
type Option func(*Sender)

// WithJournal records every dispatched target
func WithJournal(j Journal) Option {
	return func(s *Sender) {
		s.journal = j
	}
}

// WithRand sets the list-order shuffle source
func WithRand(rnd *rand.Rand) Option {
	return func(s *Sender) {
		s.rnd = rnd
	}
}

// WithPause sets the wait between dependent portal actions
func WithPause(d time.Duration) Option {
	return func(s *Sender) {
		s.pause = func(ctx context.Context) error {
			return sleep(ctx, d)
		}
	}
}

// WithClock overrides the server clock
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		s.now = now
	}
}

// WithLogger sets the sender logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// NewSender creates a sender
func NewSender(p Portal, classifier classify.Classifier, settings Settings, opts ...Option) *Sender {
	s := &Sender{
		portal:     p,
		classifier: classifier,
		settings:   settings,
		pause:      func(context.Context) error { return nil },
		now:        time.Now,
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send raids every list matching the configured patterns. Patterns are
// visited in random order; a list matched by several patterns is sent once.
// A failing list is logged and the remaining lists are still sent.
func (s *Sender) Send(ctx context.Context, cycleID string) (Result, error) {
	villages, err := s.portal.Villages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read villages: %w", err)
	}
	lists, err := s.portal.FarmLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read farm lists: %w", err)
	}

	patterns := slices.Clone(s.settings.Lists)
	if s.rnd != nil {
		s.rnd.Shuffle(len(patterns), func(i, j int) { patterns[i], patterns[j] = patterns[j], patterns[i] })
	} else {
		rand.Shuffle(len(patterns), func(i, j int) { patterns[i], patterns[j] = patterns[j], patterns[i] })
	}

	result := Result{}
	done := make(map[string]bool)
	escortSpent := make(map[string]bool)
	var errs []error

	for _, pattern := range patterns {
		for _, header := range lists {
			if done[header.ID] || !farmlist.MatchAny([]string{pattern}, farmlist.FullName(header)) {
				continue
			}
			done[header.ID] = true

			if err := s.sendList(ctx, cycleID, header, villages, escortSpent, result); err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				s.logger.Printf("Farm: list %s failed: %v", farmlist.FullName(header), err)
				errs = append(errs, err)
			}
		}
	}

	return result, errors.Join(errs...)
}

func (s *Sender) sendList(ctx context.Context, cycleID string, header models.FarmList, villages []models.Village, escortSpent map[string]bool, result Result) error {
	name := farmlist.FullName(header)
	view, err := s.portal.ListView(ctx, header.ID)
	if err != nil {
		return fmt.Errorf("failed to open list %s: %w", name, err)
	}

	home, homeKnown := findVillage(villages, header.Village)
	if !homeKnown {
		s.logger.Printf("Farm: %s - village %s not found, keeping list order and skipping escorts", name, header.Village)
	}
	tiers := s.classifier.Partition(view.Slots, s.now().Unix())

	greenFull := tiers[models.TierGreenFull]
	if homeKnown {
		SortByDistance(greenFull, home)
	}
	if err := s.bulkSend(ctx, cycleID, view, models.TierGreenFull, greenFull, result); err != nil {
		return err
	}

	greenOther := tiers[models.TierGreenOther]
	SortOldestFirst(greenOther)
	if err := s.bulkSend(ctx, cycleID, view, models.TierGreenOther, greenOther, result); err != nil {
		return err
	}

	if !s.settings.SendOrange || !homeKnown || escortSpent[home.ID] {
		return nil
	}
	for _, tier := range []models.Tier{models.TierOrangeFull, models.TierOrangeOther} {
		slots := tiers[tier]
		SortByDistance(slots, home)
		exhausted, err := s.escort(ctx, cycleID, view, home, tier, slots, result)
		if err != nil {
			return err
		}
		if exhausted {
			escortSpent[home.ID] = true
			return nil
		}
	}
	return nil
}

func (s *Sender) bulkSend(ctx context.Context, cycleID string, list *models.FarmList, tier models.Tier, slots []models.Slot, result Result) error {
	if len(slots) == 0 {
		return nil
	}

	ids := make([]string, len(slots))
	for i, slot := range slots {
		ids[i] = slot.CheckboxID
	}

	text, err := s.portal.Send(ctx, list.ID, ids)
	if err != nil {
		return fmt.Errorf("failed to send %s of %s: %w", tier, farmlist.FullName(*list), err)
	}
	if text == "" {
		s.logger.Printf("Farm: %s - %d %s slots sent, no confirmation", farmlist.FullName(*list), len(ids), tier)
	} else {
		s.logger.Printf("Farm: %s - %d %s slots sent: %s", farmlist.FullName(*list), len(ids), tier, text)
	}
	result[tier] += len(slots)

	for _, slot := range slots {
		s.record(ctx, models.RaidEntry{
			CycleID: cycleID,
			List:    farmlist.FullName(*list),
			Tier:    tier,
			Mask:    slot.Mask(),
			X:       slot.X,
			Y:       slot.Y,
		})
	}
	return s.pause(ctx)
}

// escort sends one army per slot and reports whether troops ran out
func (s *Sender) escort(ctx context.Context, cycleID string, list *models.FarmList, home models.Village, tier models.Tier, slots []models.Slot, result Result) (bool, error) {
	for _, slot := range slots {
		err := s.portal.SendEscort(ctx, home.ID, slot.X, slot.Y, s.settings.EscortUnit, s.settings.EscortCount)
		if errors.Is(err, portal.ErrInsufficientTroops) {
			s.logger.Printf("Farm: %s - not enough troops for escort", home.Name)
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to escort to %s: %w", slot.Mask(), err)
		}
		result[tier]++
		s.record(ctx, models.RaidEntry{
			CycleID: cycleID,
			List:    farmlist.FullName(*list),
			Tier:    tier,
			Mask:    slot.Mask(),
			X:       slot.X,
			Y:       slot.Y,
			Escort:  true,
		})
		if err := s.pause(ctx); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *Sender) record(ctx context.Context, entry models.RaidEntry) {
	if s.journal == nil {
		return
	}
	entry.SentAt = s.now()
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Printf("Farm: failed to journal %s: %v", entry.Mask, err)
	}
}

// SortByDistance orders slots closest to home first
func SortByDistance(slots []models.Slot, home models.Village) {
	slices.SortStableFunc(slots, func(a, b models.Slot) int {
		return cmp.Compare(home.Distance(a.X, a.Y), home.Distance(b.X, b.Y))
	})
}

// SortOldestFirst orders slots by time since their last raid, longest first.
// Slots without a report come first, then raids from before today, then
// today's raids by time of day.
func SortOldestFirst(slots []models.Slot) {
	slices.SortStableFunc(slots, func(a, b models.Slot) int {
		if c := cmp.Compare(ageRank(a.LastReport), ageRank(b.LastReport)); c != 0 {
			return c
		}
		return cmp.Compare(attackSeconds(a.LastReport), attackSeconds(b.LastReport))
	})
}

func ageRank(r *models.Report) int {
	switch {
	case r == nil:
		return 0
	case !r.IsToday:
		return 1
	default:
		return 2
	}
}

func attackSeconds(r *models.Report) int {
	if r == nil || r.AttackTime == nil {
		return 0
	}
	return r.AttackTime.SecondsOfDay()
}

func findVillage(villages []models.Village, name string) (models.Village, bool) {
	for _, v := range villages {
		if v.Name == name {
			return v, true
		}
	}
	return models.Village{Name: name}, false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
