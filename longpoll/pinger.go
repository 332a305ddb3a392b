package longpoll

import (
	"context"
	"sync"
	"time"

	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/internal/metrics"
	"github.com/sagemsg/gmweb/rpc"
)

// repingStart/repingMax bound the exponential "ditto" reping ticker
// (spec §4.5.4): it starts at one minute and doubles on every failed
// ping, capped at 64 minutes.
const (
	repingStart = 60 * time.Second
	repingMax   = 64 * time.Minute
)

// dataReceiveCheckInterval is the default idle bound before the
// engine synthesizes a GET_UPDATES poll to confirm the stream is
// still alive (spec §4.5.4); it shrinks to 5m/1m/30s as consecutive
// ping failures accumulate.
const dataReceiveCheckInterval = bugleDefaultCheckInterval

// pingSender issues one ditto ping RPC and reports whether the phone
// answered before ctx's deadline.
type pingSender func(ctx context.Context) error

// pinger runs the ditto keep-alive cycle against the phone: a pulse
// channel coalesces repeated "ping now" requests into one in-flight
// ping, a short-circuit channel lets a caller race an external signal
// against the ping's own timeout, and a one-shot resetter barrier lets
// a fresh stream connection cancel a ping cycle that's using a stale
// session.
//
// Modeled on the handshake package's one-shot Session/SecureSession
// state transitions: a sync.Once-guarded channel close stands in for
// "this object resets exactly once, and every waiter observes it."
type pinger struct {
	send pingSender
	emit events.Callback

	mu           sync.Mutex
	pulseCh      chan struct{}
	shortCircuit chan struct{}
	resetCh      chan struct{}
	resetOnce    sync.Once

	failureCount int
}

func newPinger(send pingSender, emit events.Callback) *pinger {
	return &pinger{
		send:         send,
		emit:         emit,
		pulseCh:      make(chan struct{}, 1),
		shortCircuit: make(chan struct{}),
		resetCh:      make(chan struct{}),
	}
}

// Pulse requests a ping as soon as possible, coalescing with any
// already-pending request.
func (p *pinger) Pulse() {
	select {
	case p.pulseCh <- struct{}{}:
	default:
	}
}

// ShortCircuit wakes exactly one waiter currently blocked on a ping
// cycle's timeout, e.g. because data arrived on the stream and the
// keep-alive is no longer needed.
func (p *pinger) ShortCircuit() {
	select {
	case p.shortCircuit <- struct{}{}:
	default:
	}
}

// Reset cancels any in-flight ping cycle exactly once; safe to call
// more than once.
func (p *pinger) Reset() {
	p.resetOnce.Do(func() { close(p.resetCh) })
	p.mu.Lock()
	p.resetCh = make(chan struct{})
	p.resetOnce = sync.Once{}
	p.mu.Unlock()
}

func (p *pinger) resetSignal() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resetCh
}

// Run drives the reping ticker until ctx is canceled. Each tick races
// the ping response against the short-circuit signal, a reset, and a
// per-attempt timeout; a successful ping resets both the failure
// count and the ticker interval, a failed or timed-out ping doubles
// the interval (capped) and emits phone-not-responding / ping-failed
// events per spec's threshold.
func (p *pinger) Run(ctx context.Context) {
	interval := repingStart
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.pulseCh:
			interval = p.cycle(ctx, interval)
			ticker.Reset(interval)
		case <-ticker.C:
			interval = p.cycle(ctx, interval)
			ticker.Reset(interval)
		}
	}
}

// cycle runs one ping attempt and returns the next tick interval.
func (p *pinger) cycle(parent context.Context, currentInterval time.Duration) time.Duration {
	ctx, cancel := context.WithTimeout(parent, currentInterval)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() { resultCh <- p.send(ctx) }()

	select {
	case err := <-resultCh:
		return p.onOutcome(err, currentInterval)
	case <-p.shortCircuit:
		return currentInterval
	case <-p.resetSignal():
		return repingStart
	case <-ctx.Done():
		return p.onOutcome(ctx.Err(), currentInterval)
	case <-parent.Done():
		return currentInterval
	}
}

func (p *pinger) onOutcome(err error, currentInterval time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		wasFailing := p.failureCount > 0
		p.failureCount = 0
		if wasFailing {
			p.emit(events.Event{Kind: events.KindPhoneRespondingAgain})
		}
		return repingStart
	}

	p.failureCount++
	p.emit(events.Event{Kind: events.KindPingFailed, Err: err, FailureCount: p.failureCount})
	if p.failureCount == 1 {
		p.emit(events.Event{Kind: events.KindPhoneNotResponding})
	}

	next := currentInterval * 2
	if next > repingMax {
		next = repingMax
	}
	return next
}

// sendDittoPing issues one short-lived GET_UPDATES-style ditto RPC
// through engine, discarding its payload: only whether the phone
// answered in time matters to the pinger.
func sendDittoPing(engine *rpc.Engine, requestBuilder func() []byte) pingSender {
	return func(ctx context.Context) error {
		_, err := engine.Send(ctx, requestBuilder(), rpc.SendOptions{Action: rpc.ActionGetUpdates})
		if err != nil {
			metrics.EventsDispatched.WithLabelValues("ping_failed").Inc()
		}
		return err
	}
}
