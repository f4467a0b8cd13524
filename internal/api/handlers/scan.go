package handlers

import (
	"encoding/json"
	"net/http"

	"parsaban/internal/domain/models"
	"parsaban/internal/engine"
	"parsaban/pkg/logger"
)

// ScanHandler exposes synchronous classification endpoints. Unlike the
// signal intake, these return the verdict in the response body and bypass
// the dedup throttle.
type ScanHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(e *engine.Engine, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		engine: e,
		logger: log.WithComponent("scan-handler"),
	}
}

// CheckURLRequest is the request body for URL classification
type CheckURLRequest struct {
	URL string `json:"url"`
}

// CheckURL handles POST /api/v1/url/check
func (h *ScanHandler) CheckURL(w http.ResponseWriter, r *http.Request) {
	var req CheckURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	verdict := h.engine.CheckURL(r.Context(), models.URLSignal{
		Source: models.SourceManual,
		URL:    req.URL,
	})

	h.logger.Info().
		Str("kind", string(verdict.Kind)).
		Str("domain", verdict.Domain).
		Msg("url checked")
	respondJSON(w, http.StatusOK, verdict)
}

// AnalyzeSMSRequest is the request body for SMS classification
type AnalyzeSMSRequest struct {
	Sender          string `json:"sender"`
	Body            string `json:"body"`
	EventTimeMillis int64  `json:"event_time_millis,omitempty"`
}

// AnalyzeSMS handles POST /api/v1/sms/analyze
func (h *ScanHandler) AnalyzeSMS(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		respondError(w, http.StatusBadRequest, "body is required")
		return
	}

	verdict := h.engine.CheckSMS(r.Context(), models.SMSSignal{
		Sender:          req.Sender,
		Body:            req.Body,
		EventTimeMillis: req.EventTimeMillis,
	})

	h.logger.Info().
		Str("kind", string(verdict.Kind)).
		Int("reasons", len(verdict.Reasons)).
		Msg("sms analyzed")
	respondJSON(w, http.StatusOK, verdict)
}

// AnalyzeAppRequest is the request body for app classification
type AnalyzeAppRequest struct {
	PackageName   string   `json:"package_name"`
	SignatureSHA1 string   `json:"signature_sha1,omitempty"`
	ContentHash   string   `json:"content_hash,omitempty"`
	APKPath       string   `json:"apk_path,omitempty"`
	SplitAPKPaths []string `json:"split_apk_paths,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
}

// AnalyzeApp handles POST /api/v1/app/analyze
func (h *ScanHandler) AnalyzeApp(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PackageName == "" {
		respondError(w, http.StatusBadRequest, "package_name is required")
		return
	}

	verdict := h.engine.CheckApp(r.Context(), models.AppSignal{
		PackageName:   req.PackageName,
		SignatureSHA1: req.SignatureSHA1,
		ContentHash:   req.ContentHash,
		APKPath:       req.APKPath,
		SplitAPKPaths: req.SplitAPKPaths,
		Permissions:   req.Permissions,
	})

	h.logger.Info().
		Str("package", req.PackageName).
		Str("kind", string(verdict.Kind)).
		Str("reason", string(verdict.Reason)).
		Msg("app analyzed")
	respondJSON(w, http.StatusOK, verdict)
}
