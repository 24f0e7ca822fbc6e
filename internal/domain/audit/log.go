package audit

import (
	"sync"
	"time"
)

// Log is an append-only, insertion-ordered audit trail held in memory.
// Append never fails and never drops entries; nothing removes entries.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

// Append stores the entry at the end of the trail.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// QueryFilter narrows a trail query. Zero-valued fields are ignored; supplied
// fields combine with AND.
type QueryFilter struct {
	DataID string
	Start  *time.Time
	End    *time.Time
}

// Query returns matching entries in insertion order.
func (l *Log) Query(f QueryFilter) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	matched := make([]Entry, 0)
	for _, e := range l.entries {
		if f.DataID != "" && e.DataID != f.DataID {
			continue
		}
		if f.Start != nil && e.Timestamp.Before(*f.Start) {
			continue
		}
		if f.End != nil && e.Timestamp.After(*f.End) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

// Len returns the number of entries appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
