package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"parsaban/internal/domain/models"
	"parsaban/internal/engine"
	"parsaban/pkg/logger"
)

// SignalsHandler is the asynchronous intake: captured signals are queued to
// the dispatcher, which throttles duplicates and classifies in order. The
// caller gets an acceptance response, not a verdict.
type SignalsHandler struct {
	dispatcher *engine.Dispatcher
	logger     *logger.Logger
}

// NewSignalsHandler creates a new signal intake handler
func NewSignalsHandler(d *engine.Dispatcher, log *logger.Logger) *SignalsHandler {
	return &SignalsHandler{
		dispatcher: d,
		logger:     log.WithComponent("signals-handler"),
	}
}

// SignalRequest is one captured signal of any kind. Exactly one of URL,
// SMS, App must be set.
type SignalRequest struct {
	URL *models.URLSignal `json:"url,omitempty"`
	SMS *models.SMSSignal `json:"sms,omitempty"`
	App *models.AppSignal `json:"app,omitempty"`
}

// SignalResponse reports queue acceptance. ID lets callers correlate their
// submission with the verdict log line it eventually produces.
type SignalResponse struct {
	Accepted bool   `json:"accepted"`
	ID       string `json:"id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Submit handles POST /api/v1/signals
func (h *SignalsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set := 0
	for _, present := range []bool{req.URL != nil, req.SMS != nil, req.App != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		respondError(w, http.StatusBadRequest, "exactly one of url, sms, app must be set")
		return
	}

	var accepted bool
	switch {
	case req.URL != nil:
		if req.URL.EventTimeMillis == 0 {
			req.URL.EventTimeMillis = time.Now().UnixMilli()
		}
		accepted = h.dispatcher.EnqueueURL(*req.URL)
	case req.SMS != nil:
		if req.SMS.EventTimeMillis == 0 {
			req.SMS.EventTimeMillis = time.Now().UnixMilli()
		}
		accepted = h.dispatcher.EnqueueSMS(*req.SMS)
	case req.App != nil:
		if req.App.EventTimeMillis == 0 {
			req.App.EventTimeMillis = time.Now().UnixMilli()
		}
		accepted = h.dispatcher.EnqueueApp(*req.App)
	}

	if !accepted {
		respondJSON(w, http.StatusServiceUnavailable, SignalResponse{
			Accepted: false,
			Detail:   "signal queue full",
		})
		return
	}

	id := uuid.NewString()
	h.logger.Debug().Str("signal_id", id).Msg("signal accepted")
	respondJSON(w, http.StatusAccepted, SignalResponse{Accepted: true, ID: id})
}
