package privacy

import (
	"time"

	"github.com/google/uuid"

	"github.com/dataguard-br/privacy-engine/internal/domain/errors"
)

// DataRecord is a retained fragment of processed content together with the
// privacy metadata that drives its lifecycle. ID and RetentionPolicy are
// immutable after construction; Content changes only through anonymization;
// IsDeleted moves from false to true exactly once.
type DataRecord struct {
	ID                string          `json:"id"`
	Content           string          `json:"content"`
	Category          DataCategory    `json:"category"`
	RetentionPolicy   RetentionPolicy `json:"retention_policy"`
	CreatedAt         time.Time       `json:"created_at"`
	AnonymizedAt      *time.Time      `json:"anonymized_at,omitempty"`
	AgentID           string          `json:"agent_id"`
	UserConsent       bool            `json:"user_consent"`
	ProcessingPurpose string          `json:"processing_purpose"`
	IsDeleted         bool            `json:"is_deleted"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
}

// NewDataRecord validates required fields and constructs a record. Validation
// happens here so no invalid record ever reaches the store or the audit log.
func NewDataRecord(content, agentID, purpose string, consent bool, category DataCategory, policy RetentionPolicy) (*DataRecord, error) {
	if agentID == "" {
		return nil, errors.NewValidationError("MISSING_AGENT_ID", "agent ID is required")
	}
	if purpose == "" {
		return nil, errors.NewValidationError("MISSING_PURPOSE", "processing purpose is required")
	}
	if !category.IsValid() {
		return nil, errors.NewValidationError("INVALID_CATEGORY", "unknown data category")
	}
	if !policy.IsValid() {
		return nil, errors.NewValidationError("INVALID_RETENTION_POLICY", "unknown retention policy")
	}

	return &DataRecord{
		ID:                uuid.NewString(),
		Content:           content,
		Category:          category,
		RetentionPolicy:   policy,
		CreatedAt:         time.Now().UTC(),
		AgentID:           agentID,
		UserConsent:       consent,
		ProcessingPurpose: purpose,
	}, nil
}

// ExpiresAt returns the retention deadline, or nil for permanent records.
func (r *DataRecord) ExpiresAt() *time.Time {
	days := r.RetentionPolicy.Days()
	if days == PermanentDays {
		return nil
	}
	t := r.CreatedAt.Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

// IsExpired reports whether the record passed its retention deadline at the
// given instant. Permanent records never expire.
func (r *DataRecord) IsExpired(now time.Time) bool {
	expires := r.ExpiresAt()
	if expires == nil {
		return false
	}
	return now.After(*expires)
}

// IsAnonymized reports whether anonymization has already been applied.
func (r *DataRecord) IsAnonymized() bool {
	return r.AnonymizedAt != nil
}

// MarkAnonymized replaces the content with its anonymized form and advances the
// category. Only PERSONAL and SENSITIVE records may transition to ANONYMOUS;
// the transition never runs backwards.
func (r *DataRecord) MarkAnonymized(content string, at time.Time) error {
	if r.IsAnonymized() {
		return errors.NewConflictError("ALREADY_ANONYMIZED", "record is already anonymized")
	}
	if !r.Category.RequiresProtection() {
		return errors.NewValidationError("INVALID_CATEGORY_TRANSITION",
			"only personal or sensitive records can be anonymized")
	}

	r.Content = content
	r.Category = CategoryAnonymous
	t := at
	r.AnonymizedAt = &t
	return nil
}

// MarkDeleted flags the record as soft-deleted. Returns false when the record
// was already deleted, so callers can keep the one-entry-per-transition audit
// guarantee.
func (r *DataRecord) MarkDeleted(at time.Time) bool {
	if r.IsDeleted {
		return false
	}
	r.IsDeleted = true
	t := at
	r.DeletedAt = &t
	return true
}
