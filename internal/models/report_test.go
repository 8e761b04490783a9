package models

import "testing"

func TestNewReport(t *testing.T) {
	tests := []struct {
		name    string
		signals Signal
		want    Outcome
	}{
		{"no markers", 0, OutcomeUnknown},
		{"green", SignalWithoutLosses, OutcomeGreen},
		{"orange", SignalWithLosses, OutcomeOrange},
		{"red", SignalLost, OutcomeRed},
		{"worst wins", SignalWithoutLosses | SignalWithLosses, OutcomeOrange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport(tt.signals, nil)
			if r.Outcome != tt.want {
				t.Errorf("expected outcome %s, got %s", tt.want, r.Outcome)
			}
		})
	}
}

func TestNewReportFlags(t *testing.T) {
	at := &HourMinute{Hour: 9, Minute: 5}
	r := NewReport(SignalWithoutLosses|SignalFullCarry|SignalToday|SignalOwnAttack, at)

	if !r.FullCarry || !r.IsToday || !r.AlreadyAttacking {
		t.Errorf("expected all flags set, got %+v", r)
	}
	if r.AttackTime.String() != "09:05" {
		t.Errorf("expected 09:05, got %s", r.AttackTime)
	}
	if r.AttackTime.SecondsOfDay() != 9*3600+5*60 {
		t.Errorf("unexpected seconds of day %d", r.AttackTime.SecondsOfDay())
	}
}

func TestTargetMask(t *testing.T) {
	a := TargetMask("Oak", 1, 23)
	b := TargetMask("Oak", 12, 3)
	if a == b {
		t.Errorf("expected distinct masks, both %q", a)
	}

	target := Target{VillageName: "Oak", X: 1, Y: 23}
	slot := Slot{VillageName: "Oak", X: 1, Y: 23}
	if target.Mask() != slot.Mask() {
		t.Errorf("expected target and slot masks to match: %q vs %q", target.Mask(), slot.Mask())
	}
}

func TestMaskSet(t *testing.T) {
	var empty MaskSet
	if empty.Has("x") {
		t.Error("nil set should hold nothing")
	}

	s := NewMaskSet("a")
	s.Add("b")
	if !s.Has("a") || !s.Has("b") || s.Has("c") {
		t.Errorf("unexpected set contents %v", s)
	}
}
