package models

import "fmt"

// NPCRace is the race id the game assigns to Natar villages
const NPCRace = 5

// Target represents an owned village found on a map scan.
// A scan is a point-in-time snapshot; targets are never merged across scans.
type Target struct {
	ID          int    `json:"id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Ally        string `json:"ally"`
	Name        string `json:"name"` // owning player
	Race        int    `json:"race"`
	Population  int    `json:"population"`
	VillageName string `json:"village_name"`
}

// Mask returns the de-duplication key of the target
func (t Target) Mask() string {
	return TargetMask(t.VillageName, t.X, t.Y)
}

// IsNPC reports whether the target belongs to the NPC race
func (t Target) IsNPC() bool {
	return t.Race == NPCRace
}

// TargetMask builds the key that identifies a raid target across all lists.
// Coordinates are separated so (1,23) and (12,3) never collide.
func TargetMask(villageName string, x, y int) string {
	return fmt.Sprintf("%s|%d|%d", villageName, x, y)
}

// MaskSet is a set of target masks
type MaskSet map[string]struct{}

// NewMaskSet creates a set holding the given masks
func NewMaskSet(masks ...string) MaskSet {
	s := make(MaskSet, len(masks))
	for _, m := range masks {
		s[m] = struct{}{}
	}
	return s
}

// Has reports whether mask is in the set. A nil set holds nothing.
func (s MaskSet) Has(mask string) bool {
	_, ok := s[mask]
	return ok
}

// Add inserts mask into the set
func (s MaskSet) Add(mask string) {
	s[mask] = struct{}{}
}

// OasisTile is an unoccupied oasis found on a map scan
type OasisTile struct {
	X                int `json:"x"`
	Y                int `json:"y"`
	GarrisonStrength int `json:"garrison_strength"`
}

// GarrisonRow is one unit line of a tile detail view
type GarrisonRow struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
