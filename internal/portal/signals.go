package portal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/esemi/travian-manager/internal/models"
)

// LanguagePack holds the localized UI strings that mark report signals
type LanguagePack struct {
	WithoutLosses    string
	WithLosses       string
	Lost             string
	FullCarry        string
	AlreadyAttacking string
	Today            string
}

// EnglishPack matches the English game interface
var EnglishPack = LanguagePack{
	WithoutLosses:    "without losses",
	WithLosses:       "with losses",
	Lost:             "lost",
	FullCarry:        "full",
	AlreadyAttacking: "Own attacking troops",
	Today:            "today",
}

var (
	hourMinuteRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	capacityRe   = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
)

// Signals translates the alt texts of one slot row into signal flags.
// Matching is case-insensitive substring matching; an empty marker never matches.
func (p LanguagePack) Signals(reportAlt, carryAlt, attackAlt, lastRaid string) models.Signal {
	var s models.Signal
	// A lost raid's text may also read "with losses"; the worst marker wins
	switch {
	case contains(reportAlt, p.Lost):
		s |= models.SignalLost
	case contains(reportAlt, p.WithoutLosses):
		s |= models.SignalWithoutLosses
	case contains(reportAlt, p.WithLosses):
		s |= models.SignalWithLosses
	}
	if contains(carryAlt, p.FullCarry) {
		s |= models.SignalFullCarry
	}
	if contains(attackAlt, p.AlreadyAttacking) {
		s |= models.SignalOwnAttack
	}
	if contains(lastRaid, p.Today) {
		s |= models.SignalToday
	}
	return s
}

// ParseSlot converts a wire slot into a model slot with its report.
// A row without any report or attack marker has no last report.
func (p LanguagePack) ParseSlot(w wireSlot) models.Slot {
	slot := models.Slot{
		CheckboxID:  w.CheckboxID,
		VillageName: w.VillageName,
		X:           w.X,
		Y:           w.Y,
	}

	signals := p.Signals(w.ReportAlt, w.CarryAlt, w.AttackAlt, w.LastRaid)
	if w.ReportAlt == "" && !signals.Has(models.SignalOwnAttack) {
		return slot
	}
	slot.LastReport = models.NewReport(signals, ParseHourMinute(w.LastRaid))
	return slot
}

// ParseHourMinute extracts the first hh:mm of text, or nil
func ParseHourMinute(text string) *models.HourMinute {
	m := hourMinuteRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return nil
	}
	return &models.HourMinute{Hour: h, Minute: min}
}

// ParseCapacity reads a "used/total" counter. Unreadable text yields 0/0,
// which callers see as a full list.
func ParseCapacity(text string) (used, total int) {
	m := capacityRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0
	}
	used, _ = strconv.Atoi(m[1])
	total, _ = strconv.Atoi(m[2])
	return used, total
}

func contains(text, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(marker))
}
