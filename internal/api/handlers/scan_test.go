package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parsaban/internal/domain/models"
	"parsaban/internal/engine"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/pkg/logger"
)

// emptyStore satisfies the engine store interfaces with no signatures
type emptyStore struct{}

func (emptyStore) MatchExact(context.Context, string) (*repository.URLMatch, error)  { return nil, nil }
func (emptyStore) MatchDomain(context.Context, string) (*repository.URLMatch, error) { return nil, nil }
func (emptyStore) IsSuspiciousSender(context.Context, string) (bool, error)          { return false, nil }
func (emptyStore) IsSuspiciousMessageHash(context.Context, string) (bool, error)     { return false, nil }
func (emptyStore) Keywords(context.Context) ([]string, error)                        { return nil, nil }
func (emptyStore) Match(context.Context, string, string, string) (*repository.AppMatch, error) {
	return nil, nil
}
func (emptyStore) IsTrusted(context.Context, string, string) (bool, error) { return false, nil }
func (emptyStore) Increment(context.Context, string) error                 { return nil }

func newTestScanHandler() *ScanHandler {
	s := emptyStore{}
	e := engine.New(engine.Config{DomainCacheSize: 10}, s, s, s, s, logger.NewDefault())
	return NewScanHandler(e, logger.NewDefault())
}

func TestCheckURL_GatewayIsSafe(t *testing.T) {
	h := newTestScanHandler()
	body := bytes.NewBufferString(`{"url":"https://sep.shaparak.ir/payment"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/url/check", body)
	rec := httptest.NewRecorder()

	h.CheckURL(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var verdict models.URLVerdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatal(err)
	}
	if verdict.Kind != models.VerdictSafe {
		t.Fatalf("kind = %s, want safe", verdict.Kind)
	}
}

func TestCheckURL_BadRequests(t *testing.T) {
	h := newTestScanHandler()
	cases := []string{
		`{`,
		`{"url":""}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/url/check", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		h.CheckURL(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestAnalyzeSMS_CleanMessage(t *testing.T) {
	h := newTestScanHandler()
	body := bytes.NewBufferString(`{"sender":"+98912","body":"سلام خوبی"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sms/analyze", body)
	rec := httptest.NewRecorder()

	h.AnalyzeSMS(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var verdict models.SMSVerdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatal(err)
	}
	if verdict.Kind != models.VerdictNeutral {
		t.Fatalf("kind = %s, want neutral", verdict.Kind)
	}
}

func TestAnalyzeApp_PermissionHeuristic(t *testing.T) {
	h := newTestScanHandler()
	payload := AnalyzeAppRequest{
		PackageName: "com.evil.app",
		Permissions: []string{
			"android.permission.SEND_SMS",
			"android.permission.BIND_ACCESSIBILITY_SERVICE",
		},
	}
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/app/analyze", bytes.NewReader(raw))
	rec := httptest.NewRecorder()

	h.AnalyzeApp(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var verdict models.AppVerdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatal(err)
	}
	if verdict.Kind != models.VerdictSuspicious {
		t.Fatalf("kind = %s, want suspicious", verdict.Kind)
	}
	if verdict.Reason != models.AppFlagPermissions {
		t.Fatalf("reason = %s, want permissions", verdict.Reason)
	}
}

func TestSubmitSignal_Validation(t *testing.T) {
	s := emptyStore{}
	e := engine.New(engine.Config{DomainCacheSize: 10}, s, s, s, s, logger.NewDefault())
	d := engine.NewDispatcher(e, time.Minute, 4, nil, logger.NewDefault())
	d.Start(context.Background())
	defer d.Close()
	h := NewSignalsHandler(d, logger.NewDefault())

	cases := []struct {
		body string
		want int
	}{
		{`{}`, http.StatusBadRequest},
		{`{"url":{"url":"a.ir"},"sms":{"body":"x"}}`, http.StatusBadRequest},
		{`{"url":{"source":"browser","url":"https://example.com"}}`, http.StatusAccepted},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/signals", bytes.NewBufferString(c.body))
		rec := httptest.NewRecorder()
		h.Submit(rec, req)
		if rec.Code != c.want {
			t.Errorf("body %s: status = %d, want %d", c.body, rec.Code, c.want)
		}
	}
}
