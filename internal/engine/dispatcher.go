package engine

import (
	"context"
	"sync"
	"time"

	"parsaban/internal/domain/models"
	"parsaban/internal/normalize"
	"parsaban/pkg/logger"
)

// VerdictSink receives classification results from the dispatcher. Only
// non-suppressed signals reach it.
type VerdictSink interface {
	OnURLVerdict(sig models.URLSignal, v models.URLVerdict)
	OnSMSVerdict(sig models.SMSSignal, v models.SMSVerdict)
	OnAppVerdict(sig models.AppSignal, v models.AppVerdict)
}

// DedupMirror persists suppression state outside the process so a restart
// does not replay signals seen just before it.
type DedupMirror interface {
	MarkSeen(ctx context.Context, source, signal string, window time.Duration) error
	WasSeen(ctx context.Context, source, signal string) (bool, error)
}

// Dispatcher serializes signal classification: every enqueued signal flows
// through one channel into one goroutine, so the engine never sees
// concurrent events of the same kind out of order. The throttle gates
// before any engine work happens.
type Dispatcher struct {
	engine   *Engine
	throttle *Throttle
	window   time.Duration
	mirror   DedupMirror
	sink     VerdictSink
	log      *logger.Logger

	events  chan event
	quit    chan struct{}
	done    chan struct{}
	started bool
	closed  bool

	mu        sync.Mutex
	processed int64
	dropped   int64
}

type event struct {
	url *models.URLSignal
	sms *models.SMSSignal
	app *models.AppSignal
}

// NewDispatcher creates a dispatcher but does not start it
func NewDispatcher(e *Engine, window time.Duration, queueSize int, sink VerdictSink, log *logger.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		engine:   e,
		throttle: NewThrottle(window),
		window:   window,
		sink:     sink,
		log:      log.WithComponent("dispatcher"),
		events:   make(chan event, queueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// UseDedupMirror attaches external suppression state, consulted after the
// in-memory throttle. Call before Start.
func (d *Dispatcher) UseDedupMirror(m DedupMirror) {
	d.mirror = m
}

// Start launches the consumer goroutine. It runs until ctx is cancelled or
// Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()
	go func() {
		defer close(d.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.quit:
				// Close has already stopped producers; drain what made
				// it into the buffer, then stop.
				for {
					select {
					case ev := <-d.events:
						d.handle(ctx, ev)
					default:
						return
					}
				}
			case ev := <-d.events:
				d.handle(ctx, ev)
			}
		}
	}()
}

// Close stops accepting signals and waits for in-flight work to finish.
// The events channel is never closed; producers are fenced off by the
// closed flag, which is checked under the same lock that guards the send.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	started := d.started
	d.mu.Unlock()
	close(d.quit)
	if started {
		<-d.done
	}
}

// EnqueueURL submits a URL signal; false means the queue is full and the
// signal was dropped.
func (d *Dispatcher) EnqueueURL(sig models.URLSignal) bool {
	return d.enqueue(event{url: &sig})
}

// EnqueueSMS submits an SMS signal
func (d *Dispatcher) EnqueueSMS(sig models.SMSSignal) bool {
	return d.enqueue(event{sms: &sig})
}

// EnqueueApp submits an app signal
func (d *Dispatcher) EnqueueApp(sig models.AppSignal) bool {
	return d.enqueue(event{app: &sig})
}

func (d *Dispatcher) enqueue(ev event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	// Non-blocking send under the lock, so Close cannot slip in between
	// the closed check and the send.
	select {
	case d.events <- ev:
		return true
	default:
		d.dropped++
		d.log.Warn().Msg("signal queue full, dropping signal")
		return false
	}
}

// Processed returns how many signals reached the engine and how many were
// dropped at the queue.
func (d *Dispatcher) Processed() (processed, dropped int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.processed, d.dropped
}

// allow runs the in-memory throttle first, then the mirror. Mirror errors
// fail open; the local throttle already caught the common case.
func (d *Dispatcher) allow(ctx context.Context, source, signal string, eventTimeMillis int64) bool {
	if !d.throttle.Allow(source, signal, eventTimeMillis) {
		return false
	}
	if d.mirror == nil {
		return true
	}
	if seen, err := d.mirror.WasSeen(ctx, source, signal); err != nil {
		d.log.Debug().Err(err).Msg("dedup mirror read failed, allowing signal")
	} else if seen {
		return false
	}
	if err := d.mirror.MarkSeen(ctx, source, signal, d.window); err != nil {
		d.log.Debug().Err(err).Msg("dedup mirror write failed")
	}
	return true
}

func (d *Dispatcher) handle(ctx context.Context, ev event) {
	switch {
	case ev.url != nil:
		sig := *ev.url
		if !d.allow(ctx, string(sig.Source)+":"+sig.SourcePackage, sig.URL, sig.EventTimeMillis) {
			d.log.Debug().Str("url", sig.URL).Msg("suppressed duplicate url signal")
			return
		}
		v := d.engine.CheckURL(ctx, sig)
		d.bump()
		if d.sink != nil {
			d.sink.OnURLVerdict(sig, v)
		}
	case ev.sms != nil:
		sig := *ev.sms
		key := sig.Sender + ":" + normalize.MessageHash(sig.Body)
		if !d.allow(ctx, string(models.SourceSMS), key, sig.EventTimeMillis) {
			d.log.Debug().Str("sender", sig.Sender).Msg("suppressed duplicate sms signal")
			return
		}
		v := d.engine.CheckSMS(ctx, sig)
		d.bump()
		if d.sink != nil {
			d.sink.OnSMSVerdict(sig, v)
		}
	case ev.app != nil:
		sig := *ev.app
		if !d.allow(ctx, string(models.SourceAppInstall), sig.PackageName, sig.EventTimeMillis) {
			d.log.Debug().Str("package", sig.PackageName).Msg("suppressed duplicate app signal")
			return
		}
		v := d.engine.CheckApp(ctx, sig)
		d.bump()
		if d.sink != nil {
			d.sink.OnAppVerdict(sig, v)
		}
	}
}

func (d *Dispatcher) bump() {
	d.mu.Lock()
	d.processed++
	d.mu.Unlock()
}
