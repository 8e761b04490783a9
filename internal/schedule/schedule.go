// Package schedule gates loop features on modular cycle counters.
package schedule

import (
	"math/rand/v2"
	"time"
)

// Due reports whether a feature with the given factor runs on cycle.
// Non-positive cycles and factors never fire.
func Due(cycle, factor int) bool {
	return cycle > 0 && factor > 0 && cycle%factor == 0
}

// SendDue is Due with the first cycle always firing
func SendDue(cycle, factor int) bool {
	return cycle > 0 && factor > 0 && (cycle == 1 || cycle%factor == 0)
}

// Cadence holds the per-feature factors of the farm pipeline
type Cadence struct {
	SendFactor   int
	UpdateFactor int
	ClearFactor  int
	ClearEnabled bool
}

// Plan is the set of farm features to run on one cycle
type Plan struct {
	Send   bool
	Update bool
	Clear  bool
}

// Plan evaluates every gate for cycle independently
func (c Cadence) Plan(cycle int) Plan {
	return Plan{
		Send:   SendDue(cycle, c.SendFactor),
		Update: Due(cycle, c.UpdateFactor),
		Clear:  c.ClearEnabled && Due(cycle, c.ClearFactor),
	}
}

// State is the process-lifetime loop counter. It starts at zero on every
// process start and is never persisted.
type State struct {
	Cycle int
}

// Next advances the counter and returns the new cycle number
func (s *State) Next() int {
	s.Cycle++
	return s.Cycle
}

// Interval returns a random pause in [base, 2*base)
func Interval(base time.Duration, rnd *rand.Rand) time.Duration {
	if base <= 0 {
		return 0
	}
	var n int64
	if rnd != nil {
		n = rnd.Int64N(int64(base))
	} else {
		n = rand.Int64N(int64(base))
	}
	return base + time.Duration(n)
}
