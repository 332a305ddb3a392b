package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sagemsg/gmweb/internal/metrics"
)

// slowTimerDelay is the "slow" timer spec §4.4 describes: it may
// fire once while a request is still pending, without ever failing
// the request.
const slowTimerDelay = 5 * time.Second

// Result is what a waiter is eventually handed: either a decoded
// response payload or a failure.
type Result struct {
	Payload []byte
	Err     error
}

type waiter struct {
	ch   chan Result
	once sync.Once
}

func (w *waiter) deliver(r Result) {
	w.once.Do(func() {
		w.ch <- r
		close(w.ch)
	})
}

// waiterMap correlates outgoing requests with their eventual
// response, grounded on the teacher's pendingResponses map
// (register-before-send, deliver-once channel, cleanup on both
// success and cancellation paths).
type waiterMap struct {
	mu      sync.Mutex
	waiters map[string]*waiter
}

func newWaiterMap() *waiterMap {
	return &waiterMap{waiters: make(map[string]*waiter)}
}

// register inserts a waiter keyed by request-id before the request is
// sent.
func (m *waiterMap) register(requestID string) *waiter {
	w := &waiter{ch: make(chan Result, 1)}
	m.mu.Lock()
	m.waiters[requestID] = w
	count := len(m.waiters)
	m.mu.Unlock()
	metrics.RPCsPending.Set(float64(count))
	return w
}

// remove deletes a waiter without delivering, used when the caller
// cancels: any later arrival for that id is dropped.
func (m *waiterMap) remove(requestID string) {
	m.mu.Lock()
	delete(m.waiters, requestID)
	count := len(m.waiters)
	m.mu.Unlock()
	metrics.RPCsPending.Set(float64(count))
}

// deliver completes the waiter for requestID, if one is still
// registered (as looked up by the envelope's session_id per spec's
// lookup-key quirk). Returns false if no waiter was found.
func (m *waiterMap) deliver(requestID string, result Result) bool {
	m.mu.Lock()
	w, ok := m.waiters[requestID]
	if ok {
		delete(m.waiters, requestID)
	}
	count := len(m.waiters)
	m.mu.Unlock()
	if !ok {
		return false
	}
	metrics.RPCsPending.Set(float64(count))
	status := "success"
	if result.Err != nil {
		status = "error"
	}
	metrics.RPCsAcked.WithLabelValues(status).Inc()
	w.deliver(result)
	return true
}

// failAll delivers err to every currently-registered waiter, e.g.
// when the long-poll stream dies and outstanding requests can no
// longer complete.
func (m *waiterMap) failAll(err error) {
	m.mu.Lock()
	waiters := m.waiters
	m.waiters = make(map[string]*waiter)
	m.mu.Unlock()
	for _, w := range waiters {
		w.deliver(Result{Err: err})
	}
}

// Sender is the minimum the engine needs from the HTTP layer: POST an
// encoded envelope to the messaging endpoint, ignoring the response
// body (spec §4.4: the real response arrives on the long-poll stream).
type Sender func(ctx context.Context, requestID string) error

// Wait registers a waiter, invokes send to post the envelope, and
// blocks for the eventual response delivered via Deliver, honoring
// ctx cancellation and the 5s slow callback.
func (m *waiterMap) Wait(ctx context.Context, action Action, requestID string, send Sender, slowCallback func()) ([]byte, error) {
	started := time.Now()
	w := m.register(requestID)

	metrics.RPCsSent.WithLabelValues(actionLabel(action)).Inc()
	if err := send(ctx, requestID); err != nil {
		m.remove(requestID)
		return nil, fmt.Errorf("rpc: post failed: %w", err)
	}

	var slowTimer *time.Timer
	var slowFired <-chan time.Time
	if slowCallback != nil {
		slowTimer = time.NewTimer(slowTimerDelay)
		slowFired = slowTimer.C
		defer slowTimer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			m.remove(requestID)
			return nil, ctx.Err()
		case <-slowFired:
			slowCallback()
			slowFired = nil
		case result := <-w.ch:
			metrics.RPCRoundTrip.Observe(time.Since(started).Seconds())
			return result.Payload, result.Err
		}
	}
}

func actionLabel(a Action) string {
	switch a {
	case ActionGetUpdates:
		return "get_updates"
	case ActionSendMessage:
		return "send_message"
	case ActionAckMessages:
		return "ack_messages"
	case ActionSignInGaia:
		return "sign_in_gaia"
	case ActionClientFinished:
		return "client_finished"
	case ActionFirstConversationFetch:
		return "first_conversation_fetch"
	default:
		return "unknown"
	}
}
