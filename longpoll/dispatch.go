package longpoll

import (
	"crypto/sha256"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/cryptokit"
	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/internal/metrics"
	"github.com/sagemsg/gmweb/pblite"
	"github.com/sagemsg/gmweb/rpc"
)

// loggedOutSentinel is the two-byte value "72 00" an unencrypted
// payload may carry to mean "logged out". Its meaning is undocumented
// upstream behavior; preserved verbatim per spec §9(b) rather than
// re-derived.
var loggedOutSentinel = []byte{0x72, 0x00}

// bugleDefaultCheckInterval is how far every non-old data payload
// bumps the next data-receive-check deadline forward (spec §4.5.3).
const bugleDefaultCheckInterval = 2*time.Hour + 55*time.Minute

// dispatcher routes decoded stream elements: pair-event, gaia-event
// (ignored), and data-event handling, including waiter resolution,
// the account-change hack, and the updates handler.
// responseDeliverer is the minimum the dispatcher needs from an RPC
// engine: resolving the waiter (if any) matching an incoming
// envelope's session-id. Expressed as an interface so dispatch logic
// can be tested without a live rpc.Engine.
type responseDeliverer interface {
	Deliver(sessionID string, payload []byte, err error) bool
}

// ackQueuer is the minimum the dispatcher needs to queue a data
// envelope's id for later batched acknowledgement (spec §4.5.3). Nil
// is a valid value: acking is skipped when no batcher is configured.
type ackQueuer interface {
	Queue(id string)
}

type dispatcher struct {
	state  *auth.State
	engine responseDeliverer
	acks   ackQueuer
	emit   events.Callback
	ring   *dedupRing

	skipCount atomic.Int32
}

func newDispatcher(state *auth.State, engine responseDeliverer, emit events.Callback) *dispatcher {
	return &dispatcher{state: state, engine: engine, emit: emit, ring: newDedupRing()}
}

// setAckQueuer installs the ack batcher data envelopes queue their
// response-id into. Called once at Engine construction time.
func (d *dispatcher) setAckQueuer(acks ackQueuer) {
	d.acks = acks
}

// dispatch routes one decoded data-event's fields.
func (d *dispatcher) dispatch(route BugleRoute, fields []any) error {
	switch route {
	case RoutePair:
		return d.dispatchPair(fields)
	case RouteGaia:
		// Intentionally unimplemented per spec §9(a); receivers must
		// ignore it.
		return nil
	case RouteData:
		return d.dispatchData(fields)
	default:
		return nil
	}
}

const (
	fieldPairKind   = 1 // "paired" vs "revoked"
	fieldPairToken  = 2
	fieldPairTTL    = 3
	fieldPairBrowse = 4
	fieldPairMobile = 5
	fieldPairPhone  = 6
)

func (d *dispatcher) dispatchPair(fields []any) error {
	kind, err := pblite.Int64Field(fields, fieldPairKind)
	if err != nil {
		return err
	}
	const pairKindPaired = 1
	const pairKindRevoked = 2

	switch kind {
	case pairKindPaired:
		token, err := pblite.BytesField(fields, fieldPairToken)
		if err != nil {
			return err
		}
		ttl, err := pblite.Int64Field(fields, fieldPairTTL)
		if err != nil {
			return err
		}
		phoneID, err := pblite.StringField("longpoll.PairEvent", fields, fieldPairPhone)
		if err != nil {
			return err
		}
		d.state.SetToken(token, time.Now().Add(time.Duration(ttl)*time.Microsecond), time.Duration(ttl)*time.Microsecond)
		d.emit(events.Event{Kind: events.KindPairSuccessful, PhoneID: phoneID})
	case pairKindRevoked:
		d.emit(events.Event{Kind: events.KindGaiaLoggedOut})
	}
	return nil
}

func (d *dispatcher) dispatchData(fields []any) error {
	env, err := DecodeDataEnvelope(fields)
	if err != nil {
		return err
	}

	if d.acks != nil && env.SessionID != "" {
		d.acks.Queue(env.SessionID)
	}

	decrypted, isFakeAccountChange, err := d.decryptEnvelope(env)
	if err != nil {
		return err
	}
	if isFakeAccountChange {
		d.emit(events.Event{Kind: events.KindAccountChange, IsFake: true, Payload: decrypted})
	}

	googleHosted := d.state.ShouldUseGoogleHost()
	phantomEnv := rpc.IncomingEnvelope{
		SessionID:            env.SessionID,
		Action:               rpc.Action(env.Action),
		EncryptedProtoData:   env.EncryptedData,
		EncryptedProtoData2:  env.EncryptedData2,
		UnencryptedProtoData: env.UnencryptedData,
	}
	// A phantom envelope is excluded from waiter resolution only — it
	// may still carry a legitimate backlog/update payload that the
	// rest of dispatchData must still process (spec §8 scenario 3).
	if !rpc.IsPhantomEnvelope(phantomEnv, googleHosted) {
		if d.engine.Deliver(env.SessionID, decrypted, nil) {
			metrics.EventsDispatched.WithLabelValues("waiter_resolved").Inc()
			return nil
		}
	}

	fromBacklog := d.markSkipOrOld()

	const actionGetUpdates = int(rpc.ActionGetUpdates)
	if env.Action == actionGetUpdates {
		d.handleUpdate(decrypted, fromBacklog)
	}

	if len(decrypted) == 0 && len(env.UnencryptedData) == len(loggedOutSentinel) &&
		string(env.UnencryptedData) == string(loggedOutSentinel) {
		d.emit(events.Event{Kind: events.KindGaiaLoggedOut})
	}
	return nil
}

// setSkipCount records how many subsequent data payloads are backlog
// replay, per the stream's leading {ack: {count: N}} payload (spec §8
// scenario 2).
func (d *dispatcher) setSkipCount(n int) {
	d.skipCount.Store(int32(n))
}

// remaining reports the current backlog skip-count, e.g. for the
// client facade's post-connect backlog-drain poll.
func (d *dispatcher) remaining() int {
	return int(d.skipCount.Load())
}

// markSkipOrOld decrements the backlog skip-count; the batch being
// processed is "old" when skip-count was still positive.
func (d *dispatcher) markSkipOrOld() bool {
	for {
		cur := d.skipCount.Load()
		if cur <= 0 {
			return false
		}
		if d.skipCount.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// decryptEnvelope applies the encrypted_data / encrypted_data2 /
// unencrypted_data selection rule, including the account-change hack.
func (d *dispatcher) decryptEnvelope(env DataEnvelope) (payload []byte, isFakeAccountChange bool, err error) {
	keys := d.state.GetRequestKeys()
	switch {
	case len(env.EncryptedData) > 0:
		payload, err = cryptokit.DecryptRequest(keys, env.EncryptedData)
		return payload, false, err
	case len(env.EncryptedData2) > 0:
		payload, err = cryptokit.DecryptRequest(keys, env.EncryptedData2)
		if err != nil {
			return nil, false, err
		}
		if accountChangeLooksFake(payload) {
			return payload, true, nil
		}
		return payload, false, nil
	default:
		return env.UnencryptedData, false, nil
	}
}

// accountChangeLooksFake reports the spec §4.5.3 "account change
// hack": the decrypted payload's account-change inner field is
// present and its account string contains "@".
func accountChangeLooksFake(payload []byte) bool {
	fields, err := pblite.Decode(payload)
	if err != nil {
		return false
	}
	const fieldAccountChange = 1
	nested, err := pblite.MessageField("longpoll.AccountChangeWrapper", fields, fieldAccountChange)
	if err != nil || nested == nil {
		return false
	}
	const fieldAccountString = 1
	account, err := pblite.StringField("longpoll.AccountChange", nested, fieldAccountString)
	if err != nil {
		return false
	}
	return strings.Contains(account, "@")
}

// update-envelope variant discriminators.
const (
	updateFieldConversation        = 1
	updateFieldMessage             = 2
	updateFieldTyping              = 3
	updateFieldUserAlert           = 4
	updateFieldSettings            = 5
	updateFieldAccountChange       = 6
	updateFieldBrowserPresence     = 7
	updateFieldUpdateID            = 8
)

func (d *dispatcher) handleUpdate(payload []byte, fromBacklog bool) {
	fields, err := pblite.Decode(payload)
	if err != nil {
		return
	}

	updateID, err := pblite.StringField("longpoll.UpdateEnvelope", fields, updateFieldUpdateID)
	if err != nil {
		updateID = ""
	}
	hash := sha256.Sum256(payload)

	isOld := fromBacklog
	dedupedOut := false
	if updateID != "" {
		switch d.ring.Check(updateID, hash) {
		case checkResultDuplicate:
			dedupedOut = true
		case checkResultChanged:
			isOld = true
		}
	}
	if dedupedOut {
		metrics.UpdatesDeduped.Inc()
		return
	}

	if v, _ := pblite.MessageField("longpoll.UpdateEnvelope", fields, updateFieldConversation); v != nil {
		if !isOld {
			d.emit(events.Event{Kind: events.KindConversation, Payload: payload})
		}
	}
	if v, _ := pblite.MessageField("longpoll.UpdateEnvelope", fields, updateFieldMessage); v != nil {
		d.emit(events.Event{Kind: events.KindMessage, IsOld: isOld, Payload: payload})
	}
	if v, _ := pblite.MessageField("longpoll.UpdateEnvelope", fields, updateFieldTyping); v != nil && !isOld {
		d.emit(events.Event{Kind: events.KindTyping, Payload: payload})
	}
	if v, _ := pblite.MessageField("longpoll.UpdateEnvelope", fields, updateFieldUserAlert); v != nil && !isOld {
		d.emit(events.Event{Kind: events.KindUserAlert, Payload: payload})
	}
	if v, _ := pblite.MessageField("longpoll.UpdateEnvelope", fields, updateFieldSettings); v != nil {
		d.emit(events.Event{Kind: events.KindSettings, Payload: payload})
	}
	if v, _ := pblite.MessageField("longpoll.UpdateEnvelope", fields, updateFieldAccountChange); v != nil {
		d.emit(events.Event{Kind: events.KindAccountChange, Payload: payload})
	}
	// browser-presence-check: no-op.
}
