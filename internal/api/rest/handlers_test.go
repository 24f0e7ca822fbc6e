package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/api/rest"
	"github.com/dataguard-br/privacy-engine/internal/infrastructure/telemetry"
	"github.com/dataguard-br/privacy-engine/internal/service/lifecycle"
)

func newTestAPI(t *testing.T) (*lifecycle.Manager, http.Handler) {
	t.Helper()
	manager := lifecycle.NewManager(lifecycle.Config{}, zap.NewNop(), telemetry.NewMetrics(prometheus.NewRegistry()))
	handler := rest.NewHandler(manager, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", handler.Detect)
		r.Post("/risk", handler.AnalyzeRisk)
		r.Post("/anonymize", handler.AnonymizeText)
		r.Post("/records", handler.CreateRecord)
		r.Post("/records/{id}/anonymize", handler.AnonymizeRecord)
		r.Delete("/records/{id}", handler.DeleteRecord)
		r.Get("/summary", handler.Summary)
		r.Get("/audit", handler.AuditTrail)
		r.Post("/cleanup", handler.Cleanup)
	})
	return manager, r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestDetectEndpoint(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/detect", map[string]any{
		"content":  "João Silva, CPF 123.456.789-00, e-mail joao@x.com",
		"detailed": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		HasPersonalData  bool     `json:"has_personal_data"`
		TotalOccurrences int      `json:"total_occurrences"`
		DetectedTypes    []string `json:"detected_types"`
		DataCategory     string   `json:"data_category"`
	}
	decodeBody(t, rec, &body)
	assert.True(t, body.HasPersonalData)
	assert.Equal(t, 3, body.TotalOccurrences)
	assert.ElementsMatch(t, []string{"cpf", "email", "proper_name"}, body.DetectedTypes)
	assert.Equal(t, "personal", body.DataCategory)
}

func TestDetectEndpointRejectsMissingContent(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/detect", map[string]any{"detailed": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "MISSING_FIELDS", body.Code)
}

func TestRiskEndpoint(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/risk", map[string]any{
		"content": "João Silva, CPF 123.456.789-00, e-mail joao@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Score              int    `json:"risk_score"`
		Level              string `json:"risk_level"`
		ComplianceRequired bool   `json:"compliance_required"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 21, body.Score)
	assert.Equal(t, "MEDIUM", body.Level)
	assert.False(t, body.ComplianceRequired)
}

func TestAnonymizeTextEndpoint(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/anonymize", map[string]any{
		"content": "CPF 123.456.789-00",
		"method":  "masking",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AnonymizedText string `json:"anonymized_text"`
		Substitutions  int    `json:"substitutions"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "CPF ***.***.789-00", body.AnonymizedText)
	assert.Equal(t, 1, body.Substitutions)
}

func TestAnonymizeTextEndpointRejectsUnknownMethod(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/anonymize", map[string]any{
		"content": "CPF 123.456.789-00",
		"method":  "rot13",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecordEndpoint(t *testing.T) {
	manager, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/records", map[string]any{
		"content":          "CPF 123.456.789-00",
		"agent_id":         "agent-1",
		"purpose":          "Document analysis",
		"user_consent":     true,
		"retention_policy": "short_term",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		ID       string `json:"id"`
		Category string `json:"category"`
	}
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "personal", body.Category)
	assert.Equal(t, 1, manager.GetDataSummary().TotalRecords)
}

func TestCreateRecordEndpointValidation(t *testing.T) {
	manager, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/records", map[string]any{
		"content": "CPF 123.456.789-00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/records", map[string]any{
		"content":          "CPF 123.456.789-00",
		"agent_id":         "agent-1",
		"purpose":          "test",
		"retention_policy": "forever",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, manager.GetDataSummary().TotalRecords)
}

func TestAnonymizeRecordEndpoint(t *testing.T) {
	manager, h := newTestAPI(t)

	record, err := manager.CreateDataRecord("CPF 123.456.789-00", "agent-1", "test", false, "short_term")
	require.NoError(t, err)

	// Empty body falls back to the default method.
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/records/%s/anonymize", record.ID), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, record.Content, "<CPF_")

	rec = doJSON(t, h, http.MethodPost, "/api/v1/records/unknown/anonymize", map[string]any{"method": "masking"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRecordEndpoint(t *testing.T) {
	manager, h := newTestAPI(t)

	record, err := manager.CreateDataRecord("CPF 123.456.789-00", "agent-1", "test", false, "short_term")
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/records/"+record.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Deleted bool   `json:"deleted"`
		Mode    string `json:"mode"`
	}
	decodeBody(t, rec, &body)
	assert.True(t, body.Deleted)
	assert.Equal(t, "soft", body.Mode)
	assert.True(t, record.IsDeleted)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/records/"+record.ID+"?mode=hard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, manager.GetDataSummary().TotalRecords)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/records/"+record.ID+"?mode=hard", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/records/"+record.ID+"?mode=shred", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	manager, h := newTestAPI(t)

	_, err := manager.CreateDataRecord("CPF 123.456.789-00", "agent-1", "test", false, "short_term")
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TotalRecords int            `json:"total_records"`
		ByCategory   map[string]int `json:"by_category"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 1, body.TotalRecords)
	assert.Equal(t, 1, body.ByCategory["personal"])
}

func TestAuditEndpoint(t *testing.T) {
	manager, h := newTestAPI(t)

	record, err := manager.CreateDataRecord("CPF 123.456.789-00", "agent-1", "test", false, "short_term")
	require.NoError(t, err)
	manager.SoftDeleteRecord(record.ID, "User request")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/audit?data_id="+record.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Operation string `json:"operation"`
		DataID    string `json:"data_id"`
	}
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "CREATE", entries[0].Operation)
	assert.Equal(t, "SOFT_DELETE", entries[1].Operation)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/audit?start=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCleanupEndpoint(t *testing.T) {
	manager, h := newTestAPI(t)

	record, err := manager.CreateDataRecord("CPF 123.456.789-00", "agent-1", "test", false, "short_term")
	require.NoError(t, err)
	record.CreatedAt = record.CreatedAt.AddDate(0, 0, -31)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cleanup", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Anonymized  int `json:"anonymized"`
		HardDeleted int `json:"hard_deleted"`
		Skipped     int `json:"skipped"`
	}
	decodeBody(t, rec, &stats)
	assert.Equal(t, 1, stats.Anonymized)
	assert.NotNil(t, record.AnonymizedAt)
}
