package rpc

import (
	"context"
	"fmt"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/transport/httpclient"
)

// Hostname variants for the messaging endpoint (spec §6.1).
const (
	googleHost    = "instantmessaging-pa.googleapis.com"
	clientsHost   = "instantmessaging-pa.clients6.google.com"
	messagingPath = "/$rpc/google.internal.communications.instantmessaging.v1.Messaging/SendMessage"
)

// Encoder serializes an Envelope to wire bytes, e.g. pblite.Encode
// applied to the envelope's pblite.Message adapter.
type Encoder func(Envelope) ([]byte, error)

// Engine builds envelopes, posts them, and correlates eventual
// responses delivered on the long-poll stream with their waiters.
type Engine struct {
	state   *auth.State
	http    *httpclient.Client
	encode  Encoder
	waiters *waiterMap
}

// NewEngine constructs an Engine bound to one AuthState and HTTP
// client.
func NewEngine(state *auth.State, client *httpclient.Client, encode Encoder) *Engine {
	return &Engine{state: state, http: client, encode: encode, waiters: newWaiterMap()}
}

// messagingHost picks the hostname variant per AuthState.ShouldUseGoogleHost.
func (e *Engine) messagingHost() string {
	if e.state.ShouldUseGoogleHost() {
		return googleHost
	}
	return clientsHost
}

// Send builds an envelope for payload, posts it, and waits for the
// correlated response delivered via Deliver. The HTTP POST's own
// response body is ignored per spec §4.4.
func (e *Engine) Send(ctx context.Context, payload []byte, opts SendOptions) ([]byte, error) {
	env, err := BuildEnvelope(e.state, payload, opts)
	if err != nil {
		return nil, fmt.Errorf("rpc: building envelope: %w", err)
	}

	send := func(ctx context.Context, requestID string) error {
		wire, err := e.encode(env)
		if err != nil {
			return err
		}
		url := "https://" + e.messagingHost() + messagingPath
		headers := httpclient.BuildAuthHeaders(e.state.Cookies(), url)
		_, _, err = e.http.Do(ctx, "POST", url, httpclient.ContentTypePblite, wire, headers)
		return err
	}

	return e.waiters.Wait(ctx, opts.Action, env.RequestID, send, opts.SlowCallback)
}

// Deliver completes the waiter whose request-id matches sessionID,
// the lookup-key quirk spec §4.4 describes (incoming data envelopes
// are matched by session_id, not a distinct response id). Returns
// false if no waiter is currently registered for that id.
func (e *Engine) Deliver(sessionID string, payload []byte, err error) bool {
	return e.waiters.deliver(sessionID, Result{Payload: payload, Err: err})
}

// FailAll aborts every outstanding request, e.g. when the long-poll
// stream that would deliver their responses has died.
func (e *Engine) FailAll(err error) {
	e.waiters.failAll(err)
}
