package engine

import (
	"context"
	"sync"
	"testing"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/pkg/logger"
)

// fakeStore is an in-memory signature store for engine tests
type fakeStore struct {
	mu           sync.Mutex
	exactURLs    map[string]*repository.URLMatch
	domains      map[string]*repository.URLMatch
	senders      map[string]bool
	messageHexes map[string]bool
	keywords     []string
	flaggedApps  map[string]models.AppFlagReason
	trusted      map[string]bool
	stats        map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exactURLs:    map[string]*repository.URLMatch{},
		domains:      map[string]*repository.URLMatch{},
		senders:      map[string]bool{},
		messageHexes: map[string]bool{},
		flaggedApps:  map[string]models.AppFlagReason{},
		trusted:      map[string]bool{},
		stats:        map[string]int64{},
	}
}

func (f *fakeStore) MatchExact(_ context.Context, canonical string) (*repository.URLMatch, error) {
	return f.exactURLs[canonical], nil
}

func (f *fakeStore) MatchDomain(_ context.Context, domain string) (*repository.URLMatch, error) {
	return f.domains[domain], nil
}

func (f *fakeStore) IsSuspiciousSender(_ context.Context, sender string) (bool, error) {
	return f.senders[sender], nil
}

func (f *fakeStore) IsSuspiciousMessageHash(_ context.Context, hash string) (bool, error) {
	return f.messageHexes[hash], nil
}

func (f *fakeStore) Keywords(_ context.Context) ([]string, error) {
	return f.keywords, nil
}

func (f *fakeStore) Match(_ context.Context, pkg, sig, hash string) (*repository.AppMatch, error) {
	for _, key := range []string{pkg, sig, hash} {
		if key == "" {
			continue
		}
		if reason, ok := f.flaggedApps[key]; ok {
			return &repository.AppMatch{PackageName: pkg, Reason: reason}, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) IsTrusted(_ context.Context, pkg, _ string) (bool, error) {
	return f.trusted[pkg], nil
}

func (f *fakeStore) Increment(_ context.Context, key string) error {
	f.mu.Lock()
	f.stats[key]++
	f.mu.Unlock()
	return nil
}

func newTestEngine(store *fakeStore) *Engine {
	return New(Config{DomainCacheSize: 10}, store, store, store, store, logger.NewDefault())
}

func TestCheckURL_DomainLevelMatch(t *testing.T) {
	store := newFakeStore()
	store.domains["phish.example.com"] = &repository.URLMatch{
		URL:        "phish.example.com",
		ThreatType: models.ThreatTypePhishing,
		Level:      models.MatchDomain,
	}
	e := newTestEngine(store)

	v := e.CheckURL(context.Background(), models.URLSignal{
		URL: "http://www.phish.example.com/login?id=5",
	})
	if v.Kind != models.VerdictSuspicious {
		t.Fatalf("kind = %s, want suspicious", v.Kind)
	}
	if v.MatchLevel != models.MatchDomain {
		t.Fatalf("match level = %s, want domain", v.MatchLevel)
	}
	if v.ThreatType != models.ThreatTypePhishing {
		t.Fatalf("threat type = %s", v.ThreatType)
	}
	if store.stats[models.StatFlaggedLink] != 1 {
		t.Errorf("flagged link stat = %d, want 1", store.stats[models.StatFlaggedLink])
	}
}

func TestCheckURL_SpecificBeatsDomain(t *testing.T) {
	store := newFakeStore()
	store.exactURLs["evil.example.com/steal"] = &repository.URLMatch{
		ThreatType: models.ThreatTypeScam,
		Level:      models.MatchSpecificURL,
	}
	store.domains["example.com"] = &repository.URLMatch{
		ThreatType: models.ThreatTypePhishing,
		Level:      models.MatchDomain,
	}
	e := newTestEngine(store)

	v := e.CheckURL(context.Background(), models.URLSignal{URL: "https://evil.example.com/steal?x=1"})
	if v.MatchLevel != models.MatchSpecificURL {
		t.Fatalf("match level = %s, want specific_url", v.MatchLevel)
	}
	if v.ThreatType != models.ThreatTypeScam {
		t.Fatalf("threat type = %s, want scam", v.ThreatType)
	}
}

func TestCheckURL_GatewaySafeWithEmptyStore(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	v := e.CheckURL(context.Background(), models.URLSignal{URL: "https://ipg.shaparak.ir/pay"})
	if v.Kind != models.VerdictSafe {
		t.Fatalf("kind = %s, want safe", v.Kind)
	}
	if store.stats[models.StatVerifiedGateway] != 1 {
		t.Errorf("verified gateway stat = %d, want 1", store.stats[models.StatVerifiedGateway])
	}
}

func TestCheckURL_InvalidInputNeutral(t *testing.T) {
	e := newTestEngine(newFakeStore())
	for _, in := range []string{"", "not a url", "   "} {
		v := e.CheckURL(context.Background(), models.URLSignal{URL: in})
		if v.Kind != models.VerdictNeutral {
			t.Errorf("CheckURL(%q) kind = %s, want neutral", in, v.Kind)
		}
	}
}

func TestCheckURL_UnknownNeutral(t *testing.T) {
	e := newTestEngine(newFakeStore())
	v := e.CheckURL(context.Background(), models.URLSignal{URL: "https://unknown.example.org/page"})
	if v.Kind != models.VerdictNeutral {
		t.Fatalf("kind = %s, want neutral", v.Kind)
	}
}

func TestCheckSMS_CleanShortMessageNeutral(t *testing.T) {
	e := newTestEngine(newFakeStore())
	v := e.CheckSMS(context.Background(), models.SMSSignal{
		Sender: "+989120000000",
		Body:   "سلام خوبی",
	})
	if v.Kind != models.VerdictNeutral {
		t.Fatalf("kind = %s, want neutral", v.Kind)
	}
	if v.ContainsLink {
		t.Error("clean message reported as link-bearing")
	}
	if len(v.Reasons) != 0 {
		t.Errorf("unexpected reasons %v", v.Reasons)
	}
}

func TestCheckSMS_FlaggedSender(t *testing.T) {
	store := newFakeStore()
	store.senders["5000123"] = true
	e := newTestEngine(store)

	v := e.CheckSMS(context.Background(), models.SMSSignal{Sender: "5000123", Body: "متن بی‌خطر"})
	if v.Kind != models.VerdictSuspicious {
		t.Fatalf("kind = %s, want suspicious", v.Kind)
	}
	if len(v.Reasons) != 1 || v.Reasons[0] != models.SMSReasonSender {
		t.Fatalf("reasons = %v, want [sender]", v.Reasons)
	}
}

func TestCheckSMS_KeywordAndLink(t *testing.T) {
	store := newFakeStore()
	store.keywords = []string{"جایزه"}
	store.domains["evil-prize.ir"] = &repository.URLMatch{Level: models.MatchDomain}
	e := newTestEngine(store)

	v := e.CheckSMS(context.Background(), models.SMSSignal{
		Sender: "unknown",
		Body:   "شما برنده جایزه شدید! www.evil-prize.ir/win",
	})
	if v.Kind != models.VerdictSuspicious {
		t.Fatalf("kind = %s, want suspicious", v.Kind)
	}
	if !v.ContainsLink {
		t.Error("link-bearing message not reported as such")
	}
	reasons := map[models.SMSReason]bool{}
	for _, r := range v.Reasons {
		reasons[r] = true
	}
	if !reasons[models.SMSReasonKeyword] || !reasons[models.SMSReasonLink] {
		t.Fatalf("reasons = %v, want keyword and link", v.Reasons)
	}
}

func TestCheckSMS_CleanLinkIsSafe(t *testing.T) {
	e := newTestEngine(newFakeStore())
	v := e.CheckSMS(context.Background(), models.SMSSignal{
		Sender: "friend",
		Body:   "ببین این صفحه را example.com/article",
	})
	if v.Kind != models.VerdictSafe {
		t.Fatalf("kind = %s, want safe for clean link-bearing message", v.Kind)
	}
}

func TestCheckApp_RiskyPermissionsWithoutStoreMatch(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(store)

	v := e.CheckApp(context.Background(), models.AppSignal{
		PackageName: "com.evil.app",
		Permissions: []string{
			"android.permission.SEND_SMS",
			"android.permission.BIND_ACCESSIBILITY_SERVICE",
		},
	})
	if v.Kind != models.VerdictSuspicious {
		t.Fatalf("kind = %s, want suspicious", v.Kind)
	}
	if v.Reason != models.AppFlagPermissions {
		t.Fatalf("reason = %s, want permissions", v.Reason)
	}
	if v.Description == "" {
		t.Error("permission match produced no description")
	}
}

func TestCheckApp_StoreMatchBeatsTrusted(t *testing.T) {
	store := newFakeStore()
	store.flaggedApps["com.bad.app"] = models.AppFlagPackage
	store.trusted["com.bad.app"] = true
	e := newTestEngine(store)

	v := e.CheckApp(context.Background(), models.AppSignal{PackageName: "com.bad.app"})
	if v.Kind != models.VerdictSuspicious {
		t.Fatalf("kind = %s, want suspicious", v.Kind)
	}
	if v.Reason != models.AppFlagPackage {
		t.Fatalf("reason = %s, want package", v.Reason)
	}
}

func TestCheckApp_TrustedSkipsPermissionHeuristic(t *testing.T) {
	store := newFakeStore()
	store.trusted["com.good.bank"] = true
	e := newTestEngine(store)

	v := e.CheckApp(context.Background(), models.AppSignal{
		PackageName: "com.good.bank",
		Permissions: []string{
			"android.permission.SEND_SMS",
			"android.permission.READ_CONTACTS",
		},
	})
	if v.Kind != models.VerdictSafe {
		t.Fatalf("kind = %s, want safe for trusted package", v.Kind)
	}
}

func TestCheckApp_UnknownNeutral(t *testing.T) {
	e := newTestEngine(newFakeStore())
	v := e.CheckApp(context.Background(), models.AppSignal{PackageName: "com.plain.app"})
	if v.Kind != models.VerdictNeutral {
		t.Fatalf("kind = %s, want neutral", v.Kind)
	}
}
