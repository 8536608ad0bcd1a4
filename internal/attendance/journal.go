package attendance

import (
	"sync"

	"abdig/internal/roster"
)

// Journal keeps attendance records in memory, newest first.
type Journal struct {
	mu      sync.RWMutex
	records []Record
}

// NewJournal creates a journal holding seed in the given order.
func NewJournal(seed []Record) *Journal {
	cp := make([]Record, len(seed))
	copy(cp, seed)
	return &Journal{records: cp}
}

// Prepend adds recs in front of the existing records, keeping their order.
func (j *Journal) Prepend(recs ...Record) {
	if len(recs) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	next := make([]Record, 0, len(recs)+len(j.records))
	next = append(next, recs...)
	next = append(next, j.records...)
	j.records = next
}

// All returns a copy of every record, newest first.
func (j *Journal) All() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	cp := make([]Record, len(j.records))
	copy(cp, j.records)
	return cp
}

// Len returns the number of records.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}

// Query filters records; empty fields match everything.
type Query struct {
	UserID string
	Date   string
	Class  string
	Role   roster.Role
	Limit  int
}

// Find returns records matching q, newest first.
func (j *Journal) Find(q Query) []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Record
	for _, r := range j.records {
		if q.UserID != "" && r.UserID != q.UserID {
			continue
		}
		if q.Date != "" && r.Date != q.Date {
			continue
		}
		if q.Class != "" && r.Class != q.Class {
			continue
		}
		if q.Role != "" && r.UserRole != q.Role {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
