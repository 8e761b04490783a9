// Package classify assigns farm-list slots to raid tiers from their last report.
package classify

import (
	"time"

	"github.com/esemi/travian-manager/internal/models"
)

// Classifier holds the policy inputs that are not part of a report
type Classifier struct {
	// MinReraidInterval is how long a green slot rests after a raid
	MinReraidInterval time.Duration
	// Location is the game server time zone; nil means UTC
	Location *time.Location
}

// Classify returns the tier of one slot at server time now (unix seconds).
// The first matching rule wins.
func (c Classifier) Classify(r *models.Report, now int64) models.Tier {
	switch {
	case r != nil && r.AlreadyAttacking:
		return models.TierExcluded
	case r == nil:
		return models.TierGreenOther
	case r.Outcome == models.OutcomeGreen && r.FullCarry:
		return models.TierGreenFull
	case r.Outcome == models.OutcomeOrange && r.FullCarry:
		return models.TierOrangeFull
	case r.Outcome == models.OutcomeGreen && !c.RecentlyAttacked(r.AttackTime, now):
		return models.TierGreenOther
	case r.Outcome == models.OutcomeOrange && !r.IsToday:
		return models.TierOrangeOther
	}
	return models.TierNone
}

// RecentlyAttacked reports whether an attack at hour:minute of the current
// server day happened no more than MinReraidInterval before now. A time later
// than now on the same day is treated as recent.
func (c Classifier) RecentlyAttacked(at *models.HourMinute, now int64) bool {
	if at == nil {
		return false
	}
	elapsed := c.secondsOfDay(now) - at.SecondsOfDay()
	if elapsed < 0 {
		return true
	}
	return time.Duration(elapsed)*time.Second <= c.MinReraidInterval
}

func (c Classifier) secondsOfDay(now int64) int {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(now, 0).In(loc)
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// Partition groups slots by tier, keeping list order inside every tier.
// Slots with TierNone and TierExcluded are returned under their own keys.
func (c Classifier) Partition(slots []models.Slot, now int64) map[models.Tier][]models.Slot {
	tiers := make(map[models.Tier][]models.Slot)
	for _, s := range slots {
		tier := c.Classify(s.LastReport, now)
		tiers[tier] = append(tiers[tier], s)
	}
	return tiers
}
