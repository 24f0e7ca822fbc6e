package privacy

import (
	"github.com/dataguard-br/privacy-engine/internal/domain/errors"
)

// RetentionPolicy maps to a fixed retention window in days. The policy is fixed
// at record creation and never changes afterwards.
type RetentionPolicy string

const (
	RetentionShortTerm    RetentionPolicy = "short_term"    // 30 days
	RetentionMediumTerm   RetentionPolicy = "medium_term"   // 180 days
	RetentionLongTerm     RetentionPolicy = "long_term"     // 365 days
	RetentionLegalMinimum RetentionPolicy = "legal_minimum" // 1825 days (5 years)
	RetentionPermanent    RetentionPolicy = "permanent"     // no expiry, anonymous data only
)

// PermanentDays marks a policy without an expiry window.
const PermanentDays = -1

var retentionDays = map[RetentionPolicy]int{
	RetentionShortTerm:    30,
	RetentionMediumTerm:   180,
	RetentionLongTerm:     365,
	RetentionLegalMinimum: 1825,
	RetentionPermanent:    PermanentDays,
}

// Days returns the retention window in days, or PermanentDays when the policy
// has no expiry.
func (p RetentionPolicy) Days() int {
	days, ok := retentionDays[p]
	if !ok {
		return PermanentDays
	}
	return days
}

func (p RetentionPolicy) IsValid() bool {
	_, ok := retentionDays[p]
	return ok
}

// ParseRetentionPolicy converts the wire representation into a policy. An empty
// string selects the medium-term default used throughout the engine.
func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	if s == "" {
		return RetentionMediumTerm, nil
	}
	p := RetentionPolicy(s)
	if !p.IsValid() {
		return "", errors.NewValidationError("INVALID_RETENTION_POLICY",
			"retention policy must be one of short_term, medium_term, long_term, legal_minimum, permanent")
	}
	return p, nil
}
