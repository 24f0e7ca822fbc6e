package lifecycle

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/anonymize"
	"github.com/dataguard-br/privacy-engine/internal/detection"
	"github.com/dataguard-br/privacy-engine/internal/domain/audit"
	"github.com/dataguard-br/privacy-engine/internal/domain/privacy"
	"github.com/dataguard-br/privacy-engine/internal/infrastructure/telemetry"
	"github.com/dataguard-br/privacy-engine/internal/risk"
)

// Config holds the manager's startup configuration.
type Config struct {
	// DetectionOnlyMode forces every create operation to behave like
	// CreateDetectionOnlyRecord regardless of caller intent.
	DetectionOnlyMode bool
	// DefaultRetention applies when a create call passes an empty policy.
	DefaultRetention privacy.RetentionPolicy
}

// Manager owns the in-memory record store and composes detector, classifier,
// anonymizer, risk scorer and audit log into the record lifecycle. A single
// instance is constructed at process start and shared by reference; all
// mutations are serialized through its lock.
type Manager struct {
	mu      sync.RWMutex
	records map[string]*privacy.DataRecord

	detector   *detection.Detector
	classifier *detection.Classifier
	anonymizer *anonymize.Anonymizer
	scorer     *risk.Scorer
	auditLog   *audit.Log

	logger  *zap.Logger
	metrics *telemetry.Metrics

	detectionOnly    atomic.Bool
	sweeping         atomic.Bool
	defaultRetention privacy.RetentionPolicy
}

func NewManager(cfg Config, logger *zap.Logger, metrics *telemetry.Metrics) *Manager {
	defaultRetention := cfg.DefaultRetention
	if !defaultRetention.IsValid() {
		defaultRetention = privacy.RetentionMediumTerm
	}

	m := &Manager{
		records:          make(map[string]*privacy.DataRecord),
		detector:         detection.NewDetector(logger.Named("detector")),
		classifier:       detection.NewClassifier(),
		anonymizer:       anonymize.New(logger.Named("anonymizer")),
		scorer:           risk.NewScorer(logger.Named("risk")),
		auditLog:         audit.NewLog(),
		logger:           logger,
		metrics:          metrics,
		defaultRetention: defaultRetention,
	}
	m.detectionOnly.Store(cfg.DetectionOnlyMode)
	return m
}

// SetDetectionOnlyMode toggles the process-wide detection-only switch.
func (m *Manager) SetDetectionOnlyMode(enabled bool) {
	m.detectionOnly.Store(enabled)
	m.logger.Info("detection-only mode changed", zap.Bool("enabled", enabled))
}

func (m *Manager) DetectionOnlyMode() bool {
	return m.detectionOnly.Load()
}

// CreateDataRecord classifies the content, stores a record and audits CREATE.
// Validation failures happen before any state mutation or audit write. In
// detection-only mode the call is redirected to CreateDetectionOnlyRecord.
func (m *Manager) CreateDataRecord(content, agentID, purpose string, consent bool, policy privacy.RetentionPolicy) (*privacy.DataRecord, error) {
	if m.detectionOnly.Load() {
		record, _, err := m.CreateDetectionOnlyRecord(content, agentID, purpose)
		return record, err
	}

	if policy == "" {
		policy = m.defaultRetention
	}

	det := m.detector.Detect(content)
	category := m.classifier.Classify(content, det)

	record, err := privacy.NewDataRecord(content, agentID, purpose, consent, category, policy)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.records[record.ID] = record
	m.mu.Unlock()

	m.appendAudit(audit.NewEntry(audit.OperationCreate, record.ID, purpose, consent, map[string]any{
		"category":       string(category),
		"retention_days": policy.Days(),
		"agent_id":       agentID,
	}))
	m.metrics.RecordsCreated.WithLabelValues(string(category)).Inc()

	m.logger.Info("data record created",
		zap.String("record_id", record.ID),
		zap.String("category", string(category)),
		zap.String("agent_id", agentID),
	)
	return record, nil
}

// CreateDetectionOnlyRecord stores a record without ever touching its content.
// Retention is forced to SHORT_TERM and consent is implicit, since the content
// is only inspected, never transformed.
func (m *Manager) CreateDetectionOnlyRecord(content, agentID, purpose string) (*privacy.DataRecord, detection.Result, error) {
	det := m.detector.Detect(content)
	det.DataCategory = m.classifier.Classify(content, det)
	m.metrics.DetectionRuns.Inc()

	record, err := privacy.NewDataRecord(content, agentID, purpose, true, det.DataCategory, privacy.RetentionShortTerm)
	if err != nil {
		return nil, detection.Result{}, err
	}

	m.mu.Lock()
	m.records[record.ID] = record
	m.mu.Unlock()

	m.appendAudit(audit.NewEntry(audit.OperationDetectOnly, record.ID, purpose, true, map[string]any{
		"agent_id":          agentID,
		"detected_types":    det.DetectedTypes,
		"total_occurrences": det.TotalOccurrences,
		"content_preserved": true,
	}))
	m.metrics.RecordsCreated.WithLabelValues(string(det.DataCategory)).Inc()

	m.logger.Info("detection-only record created",
		zap.String("record_id", record.ID),
		zap.Strings("detected_types", det.DetectedTypes),
	)
	return record, det, nil
}

// AnonymizeRecord anonymizes a stored record in place. Returns false when the
// id is unknown; an already-anonymized record is a no-op success. On failure
// the record keeps its content and category and no audit entry is written.
func (m *Manager) AnonymizeRecord(id string, method anonymize.Strategy) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return false, nil
	}
	if record.IsAnonymized() || record.Category == privacy.CategoryAnonymous {
		return true, nil
	}

	if err := m.anonymizeLocked(record, method, time.Now().UTC()); err != nil {
		return false, err
	}
	return true, nil
}

// anonymizeLocked performs the detect-rewrite-mark sequence on one record.
// Caller must hold m.mu. The substitution mapping stays local; only its size
// reaches the audit trail.
func (m *Manager) anonymizeLocked(record *privacy.DataRecord, method anonymize.Strategy, now time.Time) error {
	det := m.detector.Detect(record.Content)
	anonymized, mapping, err := m.anonymizer.Anonymize(record.Content, det, method)
	if err != nil {
		return err
	}
	if err := record.MarkAnonymized(anonymized, now); err != nil {
		return err
	}

	m.appendAudit(audit.NewEntry(audit.OperationAnonymize, record.ID, "Data protection compliance", record.UserConsent, map[string]any{
		"method":        string(method),
		"mapping_count": len(mapping),
	}))
	m.metrics.RecordsAnonymized.Inc()
	return nil
}

// SoftDeleteRecord marks a record deleted while retaining its content.
// Idempotent: repeating the call succeeds without a second audit entry.
func (m *Manager) SoftDeleteRecord(id, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return false
	}
	if !record.MarkDeleted(time.Now().UTC()) {
		return true
	}

	m.appendAudit(audit.NewEntry(audit.OperationSoftDelete, id, reason, record.UserConsent, nil))
	m.metrics.RecordsDeleted.WithLabelValues("soft").Inc()
	m.logger.Info("record soft-deleted", zap.String("record_id", id))
	return true
}

// HardDeleteRecord permanently purges a record. The HARD_DELETE entry is
// written before removal so the trail always outlives its subject data.
func (m *Manager) HardDeleteRecord(id, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return false
	}
	m.hardDeleteLocked(record, reason)
	return true
}

// hardDeleteLocked audits then purges. Caller must hold m.mu.
func (m *Manager) hardDeleteLocked(record *privacy.DataRecord, reason string) {
	m.appendAudit(audit.NewEntry(audit.OperationHardDelete, record.ID, reason, record.UserConsent, nil))
	delete(m.records, record.ID)
	m.metrics.RecordsDeleted.WithLabelValues("hard").Inc()
	m.logger.Info("record hard-deleted", zap.String("record_id", record.ID))
}

// DetectPersonalDataOnly runs pure detection: no record is created and the
// content is never touched.
func (m *Manager) DetectPersonalDataOnly(content string, detailed bool) detection.Result {
	det := m.detector.Detect(content)
	det.DataCategory = m.classifier.Classify(content, det)
	m.metrics.DetectionRuns.Inc()
	if !detailed {
		return det.WithoutDetails()
	}
	return det
}

// AnonymizeText rewrites content on the fly for callers that do not want a
// persisted record, e.g. the conversational layer sanitizing a prompt. Only
// the substitution count is returned; the mapping never leaves the engine.
func (m *Manager) AnonymizeText(content string, method anonymize.Strategy) (string, int, error) {
	det := m.detector.Detect(content)
	out, mapping, err := m.anonymizer.Anonymize(content, det, method)
	if err != nil {
		return "", 0, err
	}
	return out, len(mapping), nil
}

// AnalyzeDocumentPrivacyRisks detects and scores the content without storing
// anything.
func (m *Manager) AnalyzeDocumentPrivacyRisks(content string) risk.Assessment {
	det := m.detector.Detect(content)
	det.DataCategory = m.classifier.Classify(content, det)
	m.metrics.DetectionRuns.Inc()
	return m.scorer.Assess(det)
}

// Summary is a read-only snapshot of the record store.
type Summary struct {
	TotalRecords      int            `json:"total_records"`
	ActiveRecords     int            `json:"active_records"`
	DeletedRecords    int            `json:"deleted_records"`
	ByCategory        map[string]int `json:"by_category"`
	ExpiredRecords    int            `json:"expired_records"`
	AnonymizedRecords int            `json:"anonymized_records"`
}

// GetDataSummary counts records by lifecycle state and category.
func (m *Manager) GetDataSummary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now().UTC()
	summary := Summary{ByCategory: make(map[string]int, len(privacy.AllCategories()))}
	for _, category := range privacy.AllCategories() {
		summary.ByCategory[string(category)] = 0
	}

	for _, record := range m.records {
		summary.TotalRecords++
		if record.IsDeleted {
			summary.DeletedRecords++
		} else {
			summary.ActiveRecords++
		}
		summary.ByCategory[string(record.Category)]++
		if record.IsExpired(now) {
			summary.ExpiredRecords++
		}
		if record.IsAnonymized() {
			summary.AnonymizedRecords++
		}
	}
	return summary
}

// AuditTrail exposes the append-only trail to the reporting layer.
func (m *Manager) AuditTrail(filter audit.QueryFilter) []audit.Entry {
	return m.auditLog.Query(filter)
}

func (m *Manager) appendAudit(entry audit.Entry) {
	m.auditLog.Append(entry)
	m.metrics.AuditEntries.WithLabelValues(string(entry.Operation)).Inc()
}
