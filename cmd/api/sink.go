package main

import (
	"parsaban/internal/domain/models"
	"parsaban/pkg/logger"
)

// verdictLogger is the default dispatcher sink: suspicious verdicts are
// logged at warn level so downstream alerting can tail them, everything
// else at debug.
type verdictLogger struct {
	log *logger.Logger
}

func (s verdictLogger) OnURLVerdict(sig models.URLSignal, v models.URLVerdict) {
	ev := s.log.Debug()
	if v.Kind == models.VerdictSuspicious {
		ev = s.log.Warn()
	}
	ev.Str("source", string(sig.Source)).
		Str("url", sig.URL).
		Str("kind", string(v.Kind)).
		Str("match_level", string(v.MatchLevel)).
		Msg("url verdict")
}

func (s verdictLogger) OnSMSVerdict(sig models.SMSSignal, v models.SMSVerdict) {
	ev := s.log.Debug()
	if v.Kind == models.VerdictSuspicious {
		ev = s.log.Warn()
	}
	reasons := make([]string, len(v.Reasons))
	for i, r := range v.Reasons {
		reasons[i] = string(r)
	}
	ev.Str("sender", sig.Sender).
		Str("kind", string(v.Kind)).
		Strs("reasons", reasons).
		Msg("sms verdict")
}

func (s verdictLogger) OnAppVerdict(sig models.AppSignal, v models.AppVerdict) {
	ev := s.log.Debug()
	if v.Kind == models.VerdictSuspicious {
		ev = s.log.Warn()
	}
	ev.Str("package", sig.PackageName).
		Str("kind", string(v.Kind)).
		Str("reason", string(v.Reason)).
		Msg("app verdict")
}
