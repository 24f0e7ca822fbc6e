package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/anonymize"
	"github.com/dataguard-br/privacy-engine/internal/domain/audit"
	domainerrors "github.com/dataguard-br/privacy-engine/internal/domain/errors"
	"github.com/dataguard-br/privacy-engine/internal/domain/privacy"
	"github.com/dataguard-br/privacy-engine/internal/service/lifecycle"
)

// Handler binds the lifecycle manager to the HTTP surface.
type Handler struct {
	manager  *lifecycle.Manager
	logger   *zap.Logger
	validate *validator.Validate
}

func NewHandler(manager *lifecycle.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		manager:  manager,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type detectRequest struct {
	Content  string `json:"content" validate:"required"`
	Detailed bool   `json:"detailed"`
}

// Detect runs pure detection; nothing is stored and content is untouched.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.manager.DetectPersonalDataOnly(req.Content, req.Detailed))
}

type riskRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) AnalyzeRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.manager.AnalyzeDocumentPrivacyRisks(req.Content))
}

type anonymizeTextRequest struct {
	Content string `json:"content" validate:"required"`
	Method  string `json:"method"`
}

type anonymizeTextResponse struct {
	AnonymizedText string `json:"anonymized_text"`
	Substitutions  int    `json:"substitutions"`
}

// AnonymizeText rewrites content on the fly without persisting a record. The
// substitution mapping is deliberately not part of the response.
func (h *Handler) AnonymizeText(w http.ResponseWriter, r *http.Request) {
	var req anonymizeTextRequest
	if !h.decode(w, r, &req) {
		return
	}
	method, err := anonymize.ParseStrategy(req.Method)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out, count, err := h.manager.AnonymizeText(req.Content, method)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, anonymizeTextResponse{AnonymizedText: out, Substitutions: count})
}

type createRecordRequest struct {
	Content         string `json:"content" validate:"required"`
	AgentID         string `json:"agent_id" validate:"required"`
	Purpose         string `json:"purpose" validate:"required"`
	UserConsent     bool   `json:"user_consent"`
	RetentionPolicy string `json:"retention_policy"`
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if !h.decode(w, r, &req) {
		return
	}
	policy, err := privacy.ParseRetentionPolicy(req.RetentionPolicy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	record, err := h.manager.CreateDataRecord(req.Content, req.AgentID, req.Purpose, req.UserConsent, policy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

type anonymizeRecordRequest struct {
	Method string `json:"method"`
}

func (h *Handler) AnonymizeRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req anonymizeRecordRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	method, err := anonymize.ParseStrategy(req.Method)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ok, err := h.manager.AnonymizeRecord(id, method)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		h.writeError(w, domainerrors.NewNotFoundError("data record"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"anonymized": true, "record_id": id})
}

// DeleteRecord handles both deletion modes: ?mode=soft (default) keeps the
// content, ?mode=hard purges the record while its audit entries survive.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mode := r.URL.Query().Get("mode")
	reason := r.URL.Query().Get("reason")

	var ok bool
	switch mode {
	case "", "soft":
		if reason == "" {
			reason = "User request"
		}
		ok = h.manager.SoftDeleteRecord(id, reason)
	case "hard":
		if reason == "" {
			reason = "Erasure request"
		}
		ok = h.manager.HardDeleteRecord(id, reason)
	default:
		h.writeError(w, domainerrors.NewValidationError("INVALID_DELETE_MODE", "mode must be soft or hard"))
		return
	}

	if !ok {
		h.writeError(w, domainerrors.NewNotFoundError("data record"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "record_id": id, "mode": modeOrDefault(mode)})
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return "soft"
	}
	return mode
}

func (h *Handler) Summary(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.manager.GetDataSummary())
}

// AuditTrail serves the reporting layer. Filters combine with AND; times are
// RFC 3339.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{DataID: r.URL.Query().Get("data_id")}

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, domainerrors.NewValidationError("INVALID_START_TIME", "start must be RFC 3339"))
			return
		}
		filter.Start = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, domainerrors.NewValidationError("INVALID_END_TIME", "end must be RFC 3339"))
			return
		}
		filter.End = &t
	}

	h.writeJSON(w, http.StatusOK, h.manager.AuditTrail(filter))
}

// Cleanup lets ops tooling trigger a sweep outside the schedule.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.CleanupExpiredData(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// decode unmarshals and validates the request body, writing the error
// response itself when the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, domainerrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, domainerrors.NewValidationError("MISSING_FIELDS", err.Error()))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		h.writeJSON(w, appErr.StatusCode, appErr)
		return
	}
	h.logger.Error("unhandled error", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "internal error",
	})
}
