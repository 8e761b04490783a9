package models

import "time"

// FeatureRun is the outcome of one feature inside a cycle
type FeatureRun struct {
	Name     string        `json:"name"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Cycle summarizes one pass of the run loop
type Cycle struct {
	ID        string       `json:"id"`
	Number    int          `json:"number"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   time.Time    `json:"ended_at,omitempty"`
	Features  []FeatureRun `json:"features,omitempty"`
	Sent      map[Tier]int `json:"sent,omitempty"`
	Added     int          `json:"added,omitempty"`
}

// Failed returns the names of the features that errored
func (c *Cycle) Failed() []string {
	var names []string
	for _, f := range c.Features {
		if f.Error != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// TotalSent returns the number of targets dispatched in the cycle
func (c *Cycle) TotalSent() int {
	n := 0
	for _, v := range c.Sent {
		n += v
	}
	return n
}
