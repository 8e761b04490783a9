package models

import "fmt"

// Outcome is the loss severity of a raid for the attacker
type Outcome int

const (
	OutcomeUnknown Outcome = iota // a report exists but no loss marker matched
	OutcomeGreen                  // no losses
	OutcomeOrange                 // some losses
	OutcomeRed                    // everything lost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGreen:
		return "green"
	case OutcomeOrange:
		return "orange"
	case OutcomeRed:
		return "red"
	default:
		return "unknown"
	}
}

// Signal is a language-independent marker read from a slot's report icons.
// The portal adapter translates localized UI text into signals once.
type Signal uint8

const (
	SignalWithoutLosses Signal = 1 << iota
	SignalWithLosses
	SignalLost
	SignalFullCarry
	SignalOwnAttack
	SignalToday
)

// Has reports whether all bits of flag are set
func (s Signal) Has(flag Signal) bool {
	return s&flag == flag
}

// HourMinute is a server wall-clock time of day
type HourMinute struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (hm HourMinute) String() string {
	return fmt.Sprintf("%02d:%02d", hm.Hour, hm.Minute)
}

// SecondsOfDay returns the offset of the time from midnight
func (hm HourMinute) SecondsOfDay() int {
	return hm.Hour*3600 + hm.Minute*60
}

// Report is the last raid outcome of a slot. A slot that was never raided
// has no report at all.
type Report struct {
	Outcome          Outcome     `json:"outcome"`
	FullCarry        bool        `json:"full_carry"`
	AlreadyAttacking bool        `json:"already_attacking"`
	IsToday          bool        `json:"is_today"`
	AttackTime       *HourMinute `json:"attack_time,omitempty"`
}

// NewReport builds a report from parsed signals. Loss markers are checked
// worst first so a row carrying several markers never looks better than it is.
func NewReport(signals Signal, attackTime *HourMinute) *Report {
	r := &Report{
		FullCarry:        signals.Has(SignalFullCarry),
		AlreadyAttacking: signals.Has(SignalOwnAttack),
		IsToday:          signals.Has(SignalToday),
		AttackTime:       attackTime,
	}
	switch {
	case signals.Has(SignalLost):
		r.Outcome = OutcomeRed
	case signals.Has(SignalWithLosses):
		r.Outcome = OutcomeOrange
	case signals.Has(SignalWithoutLosses):
		r.Outcome = OutcomeGreen
	}
	return r
}

// Tier is the action class a slot is assigned to for one cycle
type Tier string

const (
	TierNone        Tier = ""             // skipped this cycle
	TierExcluded    Tier = "excluded"     // an own attack is already on the way
	TierGreenFull   Tier = "green_full"   // no losses and full carry
	TierOrangeFull  Tier = "orange_full"  // losses but full carry
	TierGreenOther  Tier = "green_other"  // no losses, not raided recently
	TierOrangeOther Tier = "orange_other" // losses, not raided today
)

// Sendable reports whether slots of the tier are ever sent
func (t Tier) Sendable() bool {
	switch t {
	case TierGreenFull, TierOrangeFull, TierGreenOther, TierOrangeOther:
		return true
	}
	return false
}
