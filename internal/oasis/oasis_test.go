package oasis

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/portal"
	"github.com/esemi/travian-manager/internal/portal/portaltest"
)

func TestStrength(t *testing.T) {
	table := NewStrengthTable(map[string]int{"Rat": 45, "Wolf": 150})
	rows := []models.GarrisonRow{{Name: "Rat", Count: 3}, {Name: "Wolf", Count: 2}}

	if got := table.Strength(rows, nil); got != 435 {
		t.Errorf("expected 435, got %d", got)
	}
}

func TestStrength_UnknownUnit(t *testing.T) {
	table := NewStrengthTable(map[string]int{"Rat": 45, "Wolf": 150})
	rows := []models.GarrisonRow{
		{Name: "Rat", Count: 3},
		{Name: "Dragon", Count: 100},
		{Name: "Wolf", Count: 2},
	}

	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}

	if got := table.Strength(rows, logf); got != 435 {
		t.Errorf("expected 435, got %d", got)
	}
	if len(logged) != 1 {
		t.Errorf("expected one log line for the unknown unit, got %v", logged)
	}
}

func TestStrength_NeverNegative(t *testing.T) {
	table := NewStrengthTable(map[string]int{"Rat": 45})
	rows := []models.GarrisonRow{{Name: "Rat", Count: -4}}
	if got := table.Strength(rows, nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestLookup(t *testing.T) {
	table := NewStrengthTable(map[string]int{"Boar": 1, "Wild Boar": 140, "Rat": 45})

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"Wild Boar", 140, true},
		{"wild boars", 140, true},
		{"  RATS ", 45, true},
		{"Boar", 1, true},
		{"", 0, false},
		{"Phoenix", 0, false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%q) = %d, %v; expected %d, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSelect(t *testing.T) {
	f := portaltest.New()
	f.Details[[2]int{1, 1}] = []models.GarrisonRow{{Name: "Rat", Count: 1}}   // 45
	f.Details[[2]int{2, 2}] = []models.GarrisonRow{{Name: "Wolf", Count: 2}}  // 300
	f.Details[[2]int{3, 3}] = []models.GarrisonRow{{Name: "Bear", Count: 10}} // 2500

	table := NewStrengthTable(map[string]int{"Rat": 45, "Wolf": 150, "Bear": 250})
	tiles := []models.OasisTile{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}

	e := NewEvaluator(f, table, 300, 300, WithRand(rand.New(rand.NewPCG(7, 7))))
	got, err := e.Select(context.Background(), tiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.X != 2 || got.GarrisonStrength != 300 {
		t.Errorf("expected oasis (2|2) with 300, got %+v", got)
	}
}

func TestSelect_NoTarget(t *testing.T) {
	f := portaltest.New()
	f.Details[[2]int{1, 1}] = []models.GarrisonRow{{Name: "Rat", Count: 1}}

	table := NewStrengthTable(map[string]int{"Rat": 45})
	tiles := []models.OasisTile{{X: 1, Y: 1}, {X: 9, Y: 9}}

	e := NewEvaluator(f, table, 100, 200)
	_, err := e.Select(context.Background(), tiles)
	if !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
	if f.CallCount(portal.MethodTileDetail) != 2 {
		t.Errorf("expected every candidate to be inspected, got %d calls", f.CallCount(portal.MethodTileDetail))
	}
}

func TestSelect_PortalFailure(t *testing.T) {
	f := portaltest.New()
	f.Fail(portal.MethodTileDetail, errors.New("bridge down"))

	e := NewEvaluator(f, NewStrengthTable(nil), 0, 100)
	_, err := e.Select(context.Background(), []models.OasisTile{{X: 1, Y: 1}})
	if err == nil || errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected portal error, got %v", err)
	}
}
