package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database/repository"
)

func TestEmbeddedSeedParses(t *testing.T) {
	var payload models.Payload
	if err := json.Unmarshal(seedPayload, &payload); err != nil {
		t.Fatalf("embedded seed does not parse: %v", err)
	}
	if len(payload.SuspiciousLinks) == 0 {
		t.Error("seed has no link signatures")
	}
	if len(payload.SuspiciousSenders) == 0 {
		t.Error("seed has no sender signatures")
	}
	if len(payload.Tips) == 0 {
		t.Error("seed has no tips")
	}

	keys := map[string]bool{}
	for _, s := range payload.UserStats {
		keys[s.StatKey] = true
	}
	for _, want := range []string{
		models.StatVerifiedGateway,
		models.StatFlaggedLink,
		models.StatFlaggedSMS,
		models.StatFlaggedApp,
		models.StatTotalScannedLinks,
		models.StatTotalScannedSMS,
		models.StatTotalScannedApps,
	} {
		if !keys[want] {
			t.Errorf("seed user_stats missing key %s", want)
		}
	}
}

func TestMergeStateKeepsLastSuccess(t *testing.T) {
	prev := State{
		Status:     StatusUpdating,
		LastUpdate: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		LastCounts: repository.ApplyCounts{Links: 7, Senders: 3},
		LastType:   models.UpdateManual,
		Sponsor:    &models.Sponsor{Title: "sponsor"},
	}

	failed := mergeState(prev, State{Status: StatusError, LastError: "data fetch failed"})
	if failed.Status != StatusError || failed.LastError == "" {
		t.Fatalf("failure outcome lost: %+v", failed)
	}
	if failed.LastCounts.Links != 7 || failed.LastCounts.Senders != 3 {
		t.Errorf("counts not carried forward: %+v", failed.LastCounts)
	}
	if failed.LastType != models.UpdateManual || failed.Sponsor == nil {
		t.Errorf("type/sponsor not carried forward: %+v", failed)
	}
	if !failed.LastUpdate.Equal(prev.LastUpdate) {
		t.Errorf("last update not carried forward: %v", failed.LastUpdate)
	}

	skippedAt := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	skipped := mergeState(prev, State{Status: StatusSkipped, LastUpdate: skippedAt})
	if skipped.LastCounts.Links != 7 || skipped.Sponsor == nil {
		t.Errorf("skip erased prior snapshot: %+v", skipped)
	}
	if !skipped.LastUpdate.Equal(skippedAt) {
		t.Errorf("skip lost its own timestamp: %v", skipped.LastUpdate)
	}

	succeeded := mergeState(prev, State{
		Status:     StatusSuccess,
		LastCounts: repository.ApplyCounts{Links: 1},
		LastType:   models.UpdateAuto,
	})
	if succeeded.LastCounts.Links != 1 || succeeded.Sponsor != nil {
		t.Errorf("success did not replace snapshot: %+v", succeeded)
	}
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing accept header")
		}
		w.Write([]byte(`{"title":"حامی","link":"https://sponsor.example.ir"}`))
	}))
	defer srv.Close()

	m := &Manager{client: &http.Client{Timeout: 5 * time.Second}}
	var sponsor models.Sponsor
	if err := m.fetchJSON(context.Background(), srv.URL, &sponsor); err != nil {
		t.Fatalf("fetchJSON: %v", err)
	}
	if sponsor.Title != "حامی" {
		t.Fatalf("title = %q", sponsor.Title)
	}
}

func TestFetchJSON_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := &Manager{client: &http.Client{Timeout: 5 * time.Second}}
	var dest map[string]any
	if err := m.fetchJSON(context.Background(), srv.URL, &dest); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFeedPayloadFieldNames(t *testing.T) {
	// The wire format keys are fixed by the published feed; a tag rename
	// here would silently drop every section.
	raw := []byte(`{
		"suspicious_links": [{"url": "x.ir", "type": 1, "is_phishing": 1}],
		"suspicious_senders": [{"sender_number": "5000"}],
		"suspicious_messages": [{"sender_number": "", "message": "متن"}],
		"suspicious_keywords": ["کلمه"],
		"suspicious_apps": [{"package_name": "com.x", "sha1": "a", "apk_sha1": "b"}],
		"user_stats": [{"stat_key": "k", "stat_count": 3}]
	}`)
	var p models.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatal(err)
	}
	if len(p.SuspiciousLinks) != 1 || p.SuspiciousLinks[0].IsSpecificURL != 1 {
		t.Errorf("links not decoded: %+v", p.SuspiciousLinks)
	}
	if len(p.SuspiciousSenders) != 1 || p.SuspiciousSenders[0].SenderNumber != "5000" {
		t.Errorf("senders not decoded: %+v", p.SuspiciousSenders)
	}
	if len(p.SuspiciousApps) != 1 || p.SuspiciousApps[0].APKSHA1 != "b" {
		t.Errorf("apps not decoded: %+v", p.SuspiciousApps)
	}
	if len(p.UserStats) != 1 || p.UserStats[0].StatCount != 3 {
		t.Errorf("stats not decoded: %+v", p.UserStats)
	}
}
