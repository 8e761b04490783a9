package models

import "math"

// Village is one of the player's own villages
type Village struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Distance returns the straight-line map distance from the village to (x, y)
func (v Village) Distance(x, y int) float64 {
	dx := float64(v.X - x)
	dy := float64(v.Y - y)
	return math.Sqrt(dx*dx + dy*dy)
}

// IncomingAttack is a hostile movement towards one of the player's villages
type IncomingAttack struct {
	ID       string `json:"id"`
	Village  string `json:"village"`
	Attacker string `json:"attacker"`
	ArriveIn string `json:"arrive_in"`
}

// HeroStatus is the state of the player's hero
type HeroStatus struct {
	HealthPercent int  `json:"health_percent"`
	Home          bool `json:"home"`
	Adventures    int  `json:"adventures"`
}
