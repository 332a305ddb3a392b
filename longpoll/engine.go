// Package longpoll owns the 30-minute long-poll HTTP stream: opening
// it, framing its nested-JSON-array body into discrete elements,
// decoding and dispatching them, deduping replayed updates, keeping
// the phone alive with ditto pings, and refreshing the tachyon token
// inline before each reconnect (spec §4.5).
package longpoll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/internal/metrics"
	"github.com/sagemsg/gmweb/rpc"
	"github.com/sagemsg/gmweb/transport/httpclient"
)

// newListenRequestID returns a fresh lowercased UUID string to
// correlate one stream open with its eventual close.
func newListenRequestID() string {
	return strings.ToLower(uuid.NewString())
}

// Hostname variants for the receive-messages endpoint (spec §6.1),
// selected by the same AuthState.ShouldUseGoogleHost predicate the
// rpc engine uses for sends.
const (
	receiveGoogleHost  = "instantmessaging-pa.googleapis.com"
	receiveClientsHost = "instantmessaging-pa.clients6.google.com"
	receivePath        = "/$rpc/google.internal.communications.instantmessaging.v1.Messaging/ReceiveMessages"
)

// RequestEncoder serializes the outgoing ReceiveMessagesRequest body.
// Callers supply the listen-request-id; the returned bytes are posted
// as-is.
type RequestEncoder func(listenRequestID string) ([]byte, error)

// Engine supervises the poll loop, the ditto pinger, and the ack
// batcher as one unit sharing a lifetime context, via errgroup —
// mirroring the teacher's session manager pattern of one goroutine
// group per connected session.
type Engine struct {
	state     *auth.State
	http      *httpclient.Client
	rpcEngine *rpc.Engine
	emit      events.Callback
	encodeReq RequestEncoder
	refresh   auth.RefreshFunc

	dispatcher *dispatcher
	pinger     *pinger
	acks       *rpc.AckBatcher

	firstConnect chan struct{}
	connected    bool

	elementsSeen atomic.Int64
	dataSeen     atomic.Bool
}

// ElementsSeen is the running count of stream elements decoded across
// every stream attempt, used by connectBackground to notice forward
// progress (spec §4.6).
func (e *Engine) ElementsSeen() int64 { return e.elementsSeen.Load() }

// DataPayloadReceived reports whether at least one data-event payload
// has ever been dispatched.
func (e *Engine) DataPayloadReceived() bool { return e.dataSeen.Load() }

// BacklogRemaining is how many leading replayed messages are still
// expected before the stream catches up to live traffic (spec §4.6
// postConnect's backlog-drain poll).
func (e *Engine) BacklogRemaining() int { return e.dispatcher.remaining() }

// PingNow short-circuits the ditto pinger's normal wait, used for the
// best-effort "ping the phone" step of postConnect.
func (e *Engine) PingNow() { e.pinger.ShortCircuit() }

// Config bundles an Engine's collaborators.
type Config struct {
	State         *auth.State
	HTTP          *httpclient.Client
	RPCEngine     *rpc.Engine
	Emit          events.Callback
	EncodeRequest RequestEncoder
	RefreshToken  auth.RefreshFunc
	AckSend       rpc.AckSender
}

// NewEngine constructs an Engine ready to Run. The ack batcher's
// ticker starts immediately, independent of Run/Stop, matching
// AckBatcher's own lifecycle.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		state:        cfg.State,
		http:         cfg.HTTP,
		rpcEngine:    cfg.RPCEngine,
		emit:         cfg.Emit,
		encodeReq:    cfg.EncodeRequest,
		refresh:      cfg.RefreshToken,
		dispatcher:   newDispatcher(cfg.State, cfg.RPCEngine, cfg.Emit),
		firstConnect: make(chan struct{}),
	}
	e.pinger = newPinger(sendDittoPing(cfg.RPCEngine, func() []byte { return nil }), cfg.Emit)
	if cfg.AckSend != nil {
		e.acks = rpc.NewAckBatcher(cfg.State, cfg.AckSend)
		e.dispatcher.setAckQueuer(e.acks)
	}
	return e
}

// Acks exposes the ack batcher so the client facade can queue
// incoming message ids for batched acknowledgement.
func (e *Engine) Acks() *rpc.AckBatcher { return e.acks }

// Run supervises the poll loop and ditto pinger for as long as ctx
// stays alive, stopping the ack batcher (flushing what's queued) on
// the way out. It returns when ctx is canceled or the poll loop hits
// a fatal (non-retryable) error.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return e.pollLoop(gctx) })
	g.Go(func() error { e.pinger.Run(gctx); return nil })

	err := g.Wait()
	if e.acks != nil {
		e.acks.Stop(true)
	}
	return err
}

// WaitFirstConnect blocks until the first stream open succeeds, or
// ctx is done.
func (e *Engine) WaitFirstConnect(ctx context.Context) error {
	select {
	case <-e.firstConnect:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollLoop is the spec §4.5.1 "while connected" loop: refresh the
// token if due, open a stream, read framed elements until it ends,
// and retry with backoff.
func (e *Engine) pollLoop(ctx context.Context) error {
	attempt := 0
	firstConnectDone := false

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := e.refreshIfNeeded(ctx); err != nil {
			e.emit(events.Event{Kind: events.KindListenTemporaryError, Err: err})
			if !e.sleepBackoff(ctx, attempt) {
				return nil
			}
			attempt++
			continue
		}

		if err := e.runOneStream(ctx, &firstConnectDone); err != nil {
			metrics.StreamOpens.WithLabelValues("failure").Inc()
			if attempt > 0 {
				e.emit(events.Event{Kind: events.KindListenTemporaryError, Err: err})
			}
			if !e.sleepBackoff(ctx, attempt) {
				return nil
			}
			attempt++
			continue
		}

		if attempt > 0 {
			e.emit(events.Event{Kind: events.KindListenRecovered})
		}
		attempt = 0
	}
}

// sleepBackoff waits min(5*(attempt+1), 60) seconds, or returns false
// if ctx ends first.
func (e *Engine) sleepBackoff(ctx context.Context, attempt int) bool {
	wait := time.Duration(5*(attempt+1)) * time.Second
	if wait > 60*time.Second {
		wait = 60 * time.Second
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) refreshIfNeeded(ctx context.Context) error {
	if _, ok := e.state.Browser(); !ok {
		return nil
	}
	if !e.state.NeedsTokenRefresh() {
		return nil
	}
	if e.refresh == nil {
		return nil
	}
	if err := e.state.RefreshToken(ctx, e.refresh); err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return fmt.Errorf("longpoll: refreshing token: %w", err)
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	e.emit(events.Event{Kind: events.KindTokenRefreshed})
	return nil
}

func (e *Engine) receiveHost() string {
	if e.state.ShouldUseGoogleHost() {
		return receiveGoogleHost
	}
	return receiveClientsHost
}

// runOneStream opens one stream, reads it to completion, and returns
// the error that ended it (nil for a clean "]]"/EOF close).
func (e *Engine) runOneStream(ctx context.Context, firstConnectDone *bool) error {
	listenRequestID := newListenRequestID()
	body, err := e.encodeReq(listenRequestID)
	if err != nil {
		return fmt.Errorf("longpoll: encoding receive-messages request: %w", err)
	}

	url := "https://" + e.receiveHost() + receivePath
	headers := httpclient.BuildAuthHeaders(e.state.Cookies(), url)

	stream, _, err := e.http.OpenStream(ctx, url, httpclient.ContentTypePblite, body, headers)
	if err != nil {
		return err
	}
	defer stream.Close()

	metrics.StreamOpens.WithLabelValues("success").Inc()
	metrics.StreamActive.Set(1)
	defer metrics.StreamActive.Set(0)

	if !*firstConnectDone {
		*firstConnectDone = true
		close(e.firstConnect)
	}

	framer := NewFramer(stream)
	for {
		element, err := framer.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			e.rpcEngine.FailAll(err)
			return err
		}
		metrics.ElementsReceived.Inc()
		e.elementsSeen.Add(1)

		payload, err := DecodePayload(element)
		if err != nil {
			continue
		}
		if payload.Variant == VariantAck {
			e.dispatcher.setSkipCount(int(payload.AckCount))
			continue
		}
		if payload.Variant != VariantData {
			continue
		}

		route, err := DecodeBugleRoute(payload.DataRaw)
		if err != nil {
			continue
		}
		fields := payloadForRoute(route, payload.DataRaw)
		if fields == nil {
			continue
		}
		if err := e.dispatcher.dispatch(route, fields); err != nil {
			continue
		}
		if route == RouteData {
			e.dataSeen.Store(true)
			e.pinger.ShortCircuit()
		}
	}
}
