package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/internal/metrics"
)

// ackFlushInterval is the ack-batch ticker period (spec §4.4).
const ackFlushInterval = 5 * time.Second

// AckSender posts a batch of message ids to the AckMessages RPC.
type AckSender func(ctx context.Context, ids []string) error

// AckBatcher queues incoming-message ids and flushes them to an ack
// RPC on a 5s ticker, generalizing the teacher's
// core/session.Manager.runCleanup sweep (select over ticker.C/stopCh)
// from "sweep expired sessions" to "flush queued ack ids".
type AckBatcher struct {
	state  *auth.State
	send   AckSender

	mu      sync.Mutex
	pending []string

	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAckBatcher starts the background flush ticker immediately.
func NewAckBatcher(state *auth.State, send AckSender) *AckBatcher {
	b := &AckBatcher{
		state:  state,
		send:   send,
		ticker: time.NewTicker(ackFlushInterval),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go b.run()
	return b
}

// Queue adds a message id to the next ack batch.
func (b *AckBatcher) Queue(id string) {
	b.mu.Lock()
	b.pending = append(b.pending, id)
	depth := len(b.pending)
	b.mu.Unlock()
	metrics.AckQueueDepth.Set(float64(depth))
}

func (b *AckBatcher) run() {
	defer close(b.doneCh)
	for {
		select {
		case <-b.ticker.C:
			b.flush(context.Background())
		case <-b.stopCh:
			return
		}
	}
}

// flush posts the current batch. If the POST fails, or AuthState
// lacks a token or browser identity (ack requires both), the ids are
// re-queued rather than dropped.
func (b *AckBatcher) flush(ctx context.Context) {
	b.mu.Lock()
	ids := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	token, _, _ := b.state.Token()
	_, hasBrowser := b.state.Browser()
	if len(token) == 0 || !hasBrowser {
		b.requeue(ids)
		metrics.AckBatchesFlushed.WithLabelValues("requeued_not_logged_in").Inc()
		return
	}

	if err := b.send(ctx, ids); err != nil {
		b.requeue(ids)
		metrics.AckBatchesFlushed.WithLabelValues("requeued_send_error").Inc()
		return
	}
	metrics.AckBatchesFlushed.WithLabelValues("ok").Inc()
}

func (b *AckBatcher) requeue(ids []string) {
	b.mu.Lock()
	b.pending = append(ids, b.pending...)
	depth := len(b.pending)
	b.mu.Unlock()
	metrics.AckQueueDepth.Set(float64(depth))
}

// Flush posts whatever is currently queued immediately, without
// waiting for the next ticker tick (spec §4.6 postConnect).
func (b *AckBatcher) Flush(ctx context.Context) {
	b.flush(ctx)
}

// Stop halts the ticker. If flushOnStop is true, any still-queued ids
// are flushed once before returning.
func (b *AckBatcher) Stop(flushOnStop bool) {
	b.ticker.Stop()
	close(b.stopCh)
	<-b.doneCh
	if flushOnStop {
		b.flush(context.Background())
	}
}
