package models

// FarmList is a capacity-bounded raid list bound to one village
type FarmList struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Village string `json:"village"`
	Used    int    `json:"used"`
	Total   int    `json:"total"`
	Slots   []Slot `json:"slots,omitempty"`
}

// HasCapacity reports whether another slot fits in the list
func (l FarmList) HasCapacity() bool {
	return l.Used < l.Total
}

// Slot is one target row of a farm list
type Slot struct {
	CheckboxID  string  `json:"checkbox_id"`
	VillageName string  `json:"village_name"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	LastReport  *Report `json:"last_report,omitempty"`
}

// Mask returns the de-duplication key of the slot target
func (s Slot) Mask() string {
	return TargetMask(s.VillageName, s.X, s.Y)
}
