package attendance

// Tally counts records by status.
type Tally struct {
	Present   int `json:"present"`
	Late      int `json:"late"`
	Sick      int `json:"sick"`
	Permitted int `json:"permitted"`
	Alpha     int `json:"alpha"`
	Total     int `json:"total"`
}

// Count tallies records by status.
func Count(records []Record) Tally {
	var t Tally
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			t.Present++
		case StatusLate:
			t.Late++
		case StatusSick:
			t.Sick++
		case StatusPermitted:
			t.Permitted++
		case StatusAlpha:
			t.Alpha++
		}
		t.Total++
	}
	return t
}
