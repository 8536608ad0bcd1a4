package attendance

import (
	"errors"
	"fmt"

	"abdig/internal/roster"
)

const (
	// DateLayout is the calendar date format of Record.Date.
	DateLayout = "2006-01-02"
	// ClockLayout is the HH:mm format of Record.TimeIn and Record.TimeOut.
	ClockLayout = "15:04"
)

// ErrUnknownStatus is returned when a status string is not one of the five statuses.
var ErrUnknownStatus = errors.New("unknown attendance status")

// Status is the attendance outcome of a record.
type Status string

const (
	StatusPresent   Status = "Hadir"
	StatusPermitted Status = "Izin"
	StatusSick      Status = "Sakit"
	StatusAlpha     Status = "Alpha"
	StatusLate      Status = "Terlambat"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusPermitted, StatusSick, StatusAlpha, StatusLate:
		return true
	default:
		return false
	}
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// RollCallStatuses are the choices offered on the class roll-call screen, in display order.
var RollCallStatuses = []Status{StatusPresent, StatusSick, StatusPermitted, StatusAlpha}

// Record is one attendance event. Records are never modified after they are
// added to a Journal.
type Record struct {
	ID       string      `json:"id"`
	UserID   string      `json:"user_id"`
	UserName string      `json:"user_name"`
	UserRole roster.Role `json:"user_role"`
	Date     string      `json:"date"`
	TimeIn   string      `json:"time_in,omitempty"`
	TimeOut  string      `json:"time_out,omitempty"`
	Status   Status      `json:"status"`
	Notes    string      `json:"notes,omitempty"`
	Class    string      `json:"class,omitempty"`
}

// SeedRecords returns the demo records for the given date.
func SeedRecords(date string) []Record {
	return []Record{
		{
			ID:       "a1",
			UserID:   "2",
			UserName: "Budi Santoso",
			UserRole: roster.RoleTeacher,
			Date:     date,
			TimeIn:   "06:45",
			Status:   StatusPresent,
		},
		{
			ID:       "a2",
			UserID:   "4",
			UserName: "Ahmad Rizki",
			UserRole: roster.RoleStudent,
			Class:    "XII-IPA-1",
			Date:     date,
			TimeIn:   "07:00",
			Status:   StatusPresent,
		},
		{
			ID:       "a3",
			UserID:   "5",
			UserName: "Dewi Lestari",
			UserRole: roster.RoleStudent,
			Class:    "XII-IPA-1",
			Date:     date,
			Status:   StatusSick,
			Notes:    "Demam tinggi",
		},
	}
}
