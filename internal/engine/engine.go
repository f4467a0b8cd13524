// Package engine classifies captured signals against the signature store.
// Each check is a small state machine ending in one of three verdicts:
// neutral, safe, or suspicious. Store reads fail open: a broken database
// yields "no match", never a blocked classification.
package engine

import (
	"context"
	"strings"

	"parsaban/internal/domain/models"
	"parsaban/internal/hashing"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/internal/normalize"
	"parsaban/pkg/logger"
)

// URLStore is the link-signature lookup surface the engine needs
type URLStore interface {
	MatchExact(ctx context.Context, canonical string) (*repository.URLMatch, error)
	MatchDomain(ctx context.Context, domain string) (*repository.URLMatch, error)
}

// SMSStore is the SMS-signature lookup surface
type SMSStore interface {
	IsSuspiciousSender(ctx context.Context, sender string) (bool, error)
	IsSuspiciousMessageHash(ctx context.Context, hash string) (bool, error)
	Keywords(ctx context.Context) ([]string, error)
}

// AppStore is the app-signature lookup surface
type AppStore interface {
	Match(ctx context.Context, packageName, signatureSHA1, contentHash string) (*repository.AppMatch, error)
	IsTrusted(ctx context.Context, packageName, signatureSHA1 string) (bool, error)
}

// StatStore records user-facing counters
type StatStore interface {
	Increment(ctx context.Context, key string) error
}

// Config tunes the engine's caches
type Config struct {
	DomainCacheSize int
}

// Engine evaluates signals. Construct once and share; all methods are safe
// for concurrent use.
type Engine struct {
	urls    URLStore
	sms     SMSStore
	apps    AppStore
	stats   StatStore
	domains *domainCache
	log     *logger.Logger
}

// New creates an engine over the given store surfaces
func New(cfg Config, urls URLStore, sms SMSStore, apps AppStore, stats StatStore, log *logger.Logger) *Engine {
	return &Engine{
		urls:    urls,
		sms:     sms,
		apps:    apps,
		stats:   stats,
		domains: newDomainCache(cfg.DomainCacheSize),
		log:     log.WithComponent("engine"),
	}
}

// CheckURL classifies a URL signal. Invalid input is neutral; a trusted
// gateway subdomain is safe without any store lookup; otherwise an exact
// link match beats a domain match; no match is neutral, since absence of
// evidence is not evidence of safety.
func (e *Engine) CheckURL(ctx context.Context, sig models.URLSignal) models.URLVerdict {
	raw := strings.TrimSpace(sig.URL)
	if !normalize.ValidateURL(raw) {
		return models.URLVerdict{Kind: models.VerdictNeutral, URL: raw}
	}
	e.bumpStat(ctx, models.StatTotalScannedLinks)

	if normalize.IsTrustedGatewaySubdomain(raw) {
		e.bumpStat(ctx, models.StatVerifiedGateway)
		return models.URLVerdict{Kind: models.VerdictSafe, URL: raw}
	}

	canonical := normalize.CanonicalURL(raw)
	domain := e.extractDomain(canonical)

	verdict := models.URLVerdict{Kind: models.VerdictNeutral, URL: raw, Domain: domain}

	match := e.lookupURL(ctx, canonical, domain)
	if match != nil {
		verdict.Kind = models.VerdictSuspicious
		verdict.ThreatType = match.ThreatType
		verdict.MatchLevel = match.Level
		e.bumpStat(ctx, models.StatFlaggedLink)
	}
	return verdict
}

// CheckSMS classifies a received message. Sender, message hash, embedded
// links, and keywords are independent checks; every one that fires adds a
// reason tag so alert copy can name the cause. A clean link-bearing message
// is safe (a soft confirmation), a clean plain message is neutral.
func (e *Engine) CheckSMS(ctx context.Context, sig models.SMSSignal) models.SMSVerdict {
	e.bumpStat(ctx, models.StatTotalScannedSMS)

	verdict := models.SMSVerdict{
		Kind:         models.VerdictNeutral,
		ContainsLink: normalize.ContainsLink(sig.Body),
	}

	if flagged, err := e.sms.IsSuspiciousSender(ctx, sig.Sender); err != nil {
		e.log.Error().Err(err).Msg("sender lookup failed, treating as no match")
	} else if flagged {
		verdict.Reasons = append(verdict.Reasons, models.SMSReasonSender)
	}

	if hash := normalize.MessageHash(sig.Body); hash != "" {
		if flagged, err := e.sms.IsSuspiciousMessageHash(ctx, hash); err != nil {
			e.log.Error().Err(err).Msg("message hash lookup failed, treating as no match")
		} else if flagged {
			verdict.Reasons = append(verdict.Reasons, models.SMSReasonPattern)
		}
	}

	if e.hasSuspiciousLink(ctx, sig.Body) {
		verdict.Reasons = append(verdict.Reasons, models.SMSReasonLink)
	}

	if e.containsKeyword(ctx, sig.Body) {
		verdict.Reasons = append(verdict.Reasons, models.SMSReasonKeyword)
	}

	if len(verdict.Reasons) > 0 {
		verdict.Kind = models.VerdictSuspicious
		e.bumpStat(ctx, models.StatFlaggedSMS)
	} else if verdict.ContainsLink {
		verdict.Kind = models.VerdictSafe
	}
	return verdict
}

// CheckApp classifies an installed app. Store matches win over everything;
// a trusted package short-circuits the heuristics; otherwise the risky
// permission combinations are checked.
func (e *Engine) CheckApp(ctx context.Context, sig models.AppSignal) models.AppVerdict {
	e.bumpStat(ctx, models.StatTotalScannedApps)

	contentHash := sig.ContentHash
	hashMethod := ""
	if contentHash == "" && sig.APKPath != "" {
		hash, method, err := hashing.APKContentHash(sig.APKPath, sig.SplitAPKPaths)
		if err != nil {
			e.log.Warn().Err(err).Str("package", sig.PackageName).Msg("content hash unavailable")
		} else {
			contentHash, hashMethod = hash, method
		}
	}

	verdict := models.AppVerdict{
		Kind:        models.VerdictNeutral,
		PackageName: sig.PackageName,
		HashMethod:  hashMethod,
	}

	match, err := e.apps.Match(ctx, sig.PackageName, sig.SignatureSHA1, contentHash)
	if err != nil {
		e.log.Error().Err(err).Str("package", sig.PackageName).Msg("app lookup failed, treating as no match")
	}
	if match != nil {
		verdict.Kind = models.VerdictSuspicious
		verdict.Reason = match.Reason
		e.bumpStat(ctx, models.StatFlaggedApp)
		return verdict
	}

	trusted, err := e.apps.IsTrusted(ctx, sig.PackageName, sig.SignatureSHA1)
	if err != nil {
		e.log.Error().Err(err).Str("package", sig.PackageName).Msg("trusted lookup failed, treating as untrusted")
	}
	if trusted {
		verdict.Kind = models.VerdictSafe
		return verdict
	}

	if labels, risky := MatchRiskyPermissions(sig.Permissions); risky {
		verdict.Kind = models.VerdictSuspicious
		verdict.Reason = models.AppFlagPermissions
		verdict.Description = labels
		e.bumpStat(ctx, models.StatFlaggedApp)
	}
	return verdict
}

// extractDomain memoizes domain extraction through the LRU
func (e *Engine) extractDomain(url string) string {
	if domain, ok := e.domains.get(url); ok {
		return domain
	}
	domain := normalize.ExtractDomain(url)
	e.domains.put(url, domain)
	return domain
}

// lookupURL resolves a canonical URL against the store: exact link first,
// then the full host as a domain entry, then the two-label registrable
// domain. Lookup errors are logged and treated as no match.
func (e *Engine) lookupURL(ctx context.Context, canonical, domain string) *repository.URLMatch {
	match, err := e.urls.MatchExact(ctx, canonical)
	if err != nil {
		e.log.Error().Err(err).Str("url", canonical).Msg("exact url lookup failed, treating as no match")
	}
	if match != nil {
		return match
	}

	host := canonical
	if i := strings.IndexByte(host, '/'); i > 0 {
		host = host[:i]
	}
	for _, key := range []string{host, domain} {
		if key == "" {
			continue
		}
		match, err = e.urls.MatchDomain(ctx, key)
		if err != nil {
			e.log.Error().Err(err).Str("domain", key).Msg("domain lookup failed, treating as no match")
			continue
		}
		if match != nil {
			return match
		}
		if host == domain {
			break
		}
	}
	return nil
}

func (e *Engine) hasSuspiciousLink(ctx context.Context, body string) bool {
	for _, link := range normalize.ExtractLinks(body) {
		canonical := normalize.CanonicalURL(link)
		if e.lookupURL(ctx, canonical, e.extractDomain(canonical)) != nil {
			return true
		}
	}
	return false
}

func (e *Engine) containsKeyword(ctx context.Context, body string) bool {
	keywords, err := e.sms.Keywords(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("keyword load failed, treating as no match")
		return false
	}
	normalized := normalize.NormalizeText(body)
	for _, k := range keywords {
		if k != "" && strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}

// bumpStat increments a counter, logging failures instead of propagating
// them into classification results
func (e *Engine) bumpStat(ctx context.Context, key string) {
	if e.stats == nil {
		return
	}
	if err := e.stats.Increment(ctx, key); err != nil {
		e.log.Warn().Err(err).Str("stat", key).Msg("stat increment failed")
	}
}
