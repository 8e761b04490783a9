package models

import "time"

// RaidEntry is one journal row: a slot sent by bulk send or a target
// reached by an escort army.
type RaidEntry struct {
	CycleID string    `json:"cycle_id"`
	List    string    `json:"list"`
	Tier    Tier      `json:"tier"`
	Mask    string    `json:"mask"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Escort  bool      `json:"escort"`
	SentAt  time.Time `json:"sent_at"`
}
