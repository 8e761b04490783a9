package schedule

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

func firing(until int, gate func(int) bool) []int {
	var out []int
	for c := -5; c <= until; c++ {
		if gate(c) {
			out = append(out, c)
		}
	}
	return out
}

func TestSendDue(t *testing.T) {
	got := firing(40, func(c int) bool { return SendDue(c, 10) })
	want := []int{1, 10, 20, 30, 40}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDue(t *testing.T) {
	got := firing(100, func(c int) bool { return Due(c, 25) })
	want := []int{25, 50, 75, 100}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNonPositiveNeverFires(t *testing.T) {
	for _, cycle := range []int{0, -1, -10, -25} {
		if Due(cycle, 1) || Due(cycle, 25) || SendDue(cycle, 10) {
			t.Errorf("cycle %d should never fire", cycle)
		}
	}
	if Due(10, 0) || SendDue(1, 0) || Due(10, -5) {
		t.Error("non-positive factor should disable the feature")
	}
}

func TestPlan(t *testing.T) {
	c := Cadence{SendFactor: 10, UpdateFactor: 50, ClearFactor: 25}

	p := c.Plan(50)
	if !p.Send || !p.Update || p.Clear {
		t.Errorf("expected send and update without clear, got %+v", p)
	}

	c.ClearEnabled = true
	p = c.Plan(50)
	if !p.Send || !p.Update || !p.Clear {
		t.Errorf("expected all features, got %+v", p)
	}

	p = c.Plan(7)
	if p.Send || p.Update || p.Clear {
		t.Errorf("expected nothing on cycle 7, got %+v", p)
	}
}

func TestStateNext(t *testing.T) {
	var s State
	for want := 1; want <= 3; want++ {
		if got := s.Next(); got != want {
			t.Errorf("expected cycle %d, got %d", want, got)
		}
	}
}

func TestInterval(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	base := 10 * time.Minute
	for i := 0; i < 100; i++ {
		d := Interval(base, rnd)
		if d < base || d >= 2*base {
			t.Fatalf("interval %s outside [%s, %s)", d, base, 2*base)
		}
	}
	if Interval(0, rnd) != 0 {
		t.Error("expected zero base to give zero interval")
	}
}
