package lifecycle

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/anonymize"
	"github.com/dataguard-br/privacy-engine/internal/domain/audit"
	"github.com/dataguard-br/privacy-engine/internal/domain/errors"
	"github.com/dataguard-br/privacy-engine/internal/domain/privacy"
)

// ErrSweepInProgress is returned when a cleanup sweep is invoked while an
// earlier sweep is still running.
var ErrSweepInProgress = errors.NewConflictError("SWEEP_IN_PROGRESS", "cleanup sweep already running")

// CleanupStats reports what one sweep did.
type CleanupStats struct {
	Anonymized  int `json:"anonymized"`
	HardDeleted int `json:"hard_deleted"`
	Skipped     int `json:"skipped"`
}

// CleanupExpiredData advances every expired, non-deleted record: PERSONAL and
// SENSITIVE records are anonymized with masking, ANONYMOUS records are skipped
// (already protected, indefinite retention permitted), anything else is hard
// deleted. Per-record failures are counted as skipped without aborting the
// sweep. Only one sweep runs at a time, the lock is held per record
// transition, and the context is checked between records so an operator can
// abort a long sweep.
func (m *Manager) CleanupExpiredData(ctx context.Context) (CleanupStats, error) {
	var stats CleanupStats
	if !m.sweeping.CompareAndSwap(false, true) {
		m.metrics.SweepSkips.Inc()
		return stats, ErrSweepInProgress
	}
	defer m.sweeping.Store(false)

	timer := prometheus.NewTimer(m.metrics.SweepDuration)
	defer timer.ObserveDuration()

	now := time.Now().UTC()

	m.mu.RLock()
	candidates := make([]string, 0)
	for id, record := range m.records {
		if !record.IsDeleted && record.IsExpired(now) {
			candidates = append(candidates, id)
		}
	}
	m.mu.RUnlock()
	sort.Strings(candidates)

	var ctxErr error
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		m.sweepRecord(id, now, &stats)
	}

	m.appendAudit(audit.NewEntry(audit.OperationSystemCleanup, "system", "Automated data retention compliance", false, map[string]any{
		"anonymized":   stats.Anonymized,
		"hard_deleted": stats.HardDeleted,
		"skipped":      stats.Skipped,
	}))

	m.logger.Info("cleanup sweep finished",
		zap.Int("anonymized", stats.Anonymized),
		zap.Int("hard_deleted", stats.HardDeleted),
		zap.Int("skipped", stats.Skipped),
		zap.Bool("cancelled", ctxErr != nil),
	)
	return stats, ctxErr
}

// sweepRecord applies the expiry transition to a single record under the
// lock. The record is re-checked because unrelated mutations may have landed
// since the candidate snapshot was taken.
func (m *Manager) sweepRecord(id string, now time.Time, stats *CleanupStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok || record.IsDeleted || !record.IsExpired(now) {
		stats.Skipped++
		return
	}

	switch {
	case record.Category.RequiresProtection():
		if err := m.anonymizeLocked(record, anonymize.StrategyMasking, now); err != nil {
			stats.Skipped++
			m.logger.Warn("cleanup anonymization failed",
				zap.String("record_id", id),
				zap.Error(err),
			)
			return
		}
		stats.Anonymized++
	case record.Category == privacy.CategoryAnonymous:
		// Already protected.
		stats.Skipped++
	default:
		m.hardDeleteLocked(record, "Retention policy expired")
		stats.HardDeleted++
	}
}
