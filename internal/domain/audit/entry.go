package audit

import (
	"time"
)

// Operation identifies the lifecycle action an audit entry describes.
type Operation string

const (
	OperationCreate        Operation = "CREATE"
	OperationAnonymize     Operation = "ANONYMIZE"
	OperationSoftDelete    Operation = "SOFT_DELETE"
	OperationHardDelete    Operation = "HARD_DELETE"
	OperationDetectOnly    Operation = "DETECT_ONLY"
	OperationSystemCleanup Operation = "SYSTEM_CLEANUP"
)

// Entry is an immutable audit record of a single data-handling operation.
// Entries are never mutated or removed once appended, even when the record
// they describe is hard-deleted.
type Entry struct {
	Timestamp   time.Time      `json:"timestamp"`
	Operation   Operation      `json:"operation"`
	DataID      string         `json:"data_id"`
	Purpose     string         `json:"purpose"`
	UserConsent bool           `json:"user_consent"`
	Details     map[string]any `json:"details,omitempty"`
}

// NewEntry stamps the current time and defensively copies the details map so
// later caller mutations cannot reach the stored entry.
func NewEntry(op Operation, dataID, purpose string, consent bool, details map[string]any) Entry {
	var copied map[string]any
	if len(details) > 0 {
		copied = make(map[string]any, len(details))
		for k, v := range details {
			copied[k] = v
		}
	}
	return Entry{
		Timestamp:   time.Now().UTC(),
		Operation:   op,
		DataID:      dataID,
		Purpose:     purpose,
		UserConsent: consent,
		Details:     copied,
	}
}
