// Package filter applies ignore-lists, race rules, population bounds and
// the already-assigned exclusion to scanned targets.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/esemi/travian-manager/internal/models"
)

// Rule is the typed filtering rule of one discovery config.
// A nil MinPopulation means 0, a nil MaxPopulation means unbounded.
type Rule struct {
	IgnorePlayers   []string
	IgnoreAlliances []string
	IgnoreNPC       bool
	OnlyNPC         bool
	MinPopulation   *int
	MaxPopulation   *int
	Where           string // optional expr predicate over Env
}

// Env is the variable set a Where expression can read
type Env struct {
	Name       string `expr:"name"`
	Ally       string `expr:"ally"`
	Race       int    `expr:"race"`
	Population int    `expr:"population"`
	Village    string `expr:"village"`
	X          int    `expr:"x"`
	Y          int    `expr:"y"`
}

// Filter is a compiled Rule
type Filter struct {
	rule            Rule
	ignorePlayers   map[string]bool
	ignoreAlliances map[string]bool
	program         *vm.Program
}

// New compiles a rule. A Where expression that does not compile to a
// boolean over Env is rejected here, never at match time.
func New(rule Rule) (*Filter, error) {
	f := &Filter{
		rule:            rule,
		ignorePlayers:   toSet(rule.IgnorePlayers),
		ignoreAlliances: toSet(rule.IgnoreAlliances),
	}
	if rule.Where != "" {
		program, err := expr.Compile(rule.Where, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("invalid where expression %q: %w", rule.Where, err)
		}
		f.program = program
	}
	return f, nil
}

// Accept reports whether a target passes every rule and is not yet assigned
func (f *Filter) Accept(t models.Target, assigned models.MaskSet) bool {
	if f.ignorePlayers[t.Name] || f.ignoreAlliances[t.Ally] {
		return false
	}
	if f.rule.IgnoreNPC && t.IsNPC() {
		return false
	}
	if f.rule.OnlyNPC && !t.IsNPC() {
		return false
	}
	if f.rule.MinPopulation != nil && t.Population < *f.rule.MinPopulation {
		return false
	}
	if f.rule.MaxPopulation != nil && t.Population > *f.rule.MaxPopulation {
		return false
	}
	if assigned.Has(t.Mask()) {
		return false
	}
	if f.program != nil && !f.match(t) {
		return false
	}
	return true
}

func (f *Filter) match(t models.Target) bool {
	out, err := expr.Run(f.program, Env{
		Name:       t.Name,
		Ally:       t.Ally,
		Race:       t.Race,
		Population: t.Population,
		Village:    t.VillageName,
		X:          t.X,
		Y:          t.Y,
	})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Apply keeps the accepted targets in source order
func (f *Filter) Apply(targets []models.Target, assigned models.MaskSet) []models.Target {
	var kept []models.Target
	for _, t := range targets {
		if f.Accept(t, assigned) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Apply compiles rule and filters targets with it
func Apply(targets []models.Target, rule Rule, assigned models.MaskSet) ([]models.Target, error) {
	f, err := New(rule)
	if err != nil {
		return nil, err
	}
	return f.Apply(targets, assigned), nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
