package longpoll

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/cryptokit"
	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/rpc"
)

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func newTestState(t *testing.T) *auth.State {
	t.Helper()
	keys, err := cryptokit.GenerateRequestKeys()
	require.NoError(t, err)
	s := auth.New()
	s.SetRequestKeys(keys)
	return s
}

// fakeDeliverer is a responseDeliverer stub that resolves exactly the
// session ids in resolves; every other id is reported as "no waiter
// pending" by returning false.
type fakeDeliverer struct {
	resolves  map[string]bool
	delivered []string
}

func (f *fakeDeliverer) Deliver(sessionID string, payload []byte, err error) bool {
	f.delivered = append(f.delivered, sessionID)
	return f.resolves[sessionID]
}

func TestDispatchDataRoutesLoggedOutSentinel(t *testing.T) {
	state := newTestState(t)
	engine := &fakeDeliverer{}
	var got []events.Event
	d := newDispatcher(state, engine, func(e events.Event) { got = append(got, e) })

	fields := []any{
		"sess-1",
		float64(rpc.ActionGetUpdates),
		nil,
		nil,
		b64(loggedOutSentinel),
	}
	require.NoError(t, d.dispatchData(fields))

	require.NotEmpty(t, got)
	assert.Equal(t, events.KindGaiaLoggedOut, got[len(got)-1].Kind)
}

func TestDispatchDataResolvesPendingWaiter(t *testing.T) {
	state := newTestState(t)
	engine := &fakeDeliverer{resolves: map[string]bool{"sess-2": true}}
	var got []events.Event
	d := newDispatcher(state, engine, func(e events.Event) { got = append(got, e) })

	payload, err := cryptokit.EncryptRequest(state.GetRequestKeys(), []byte("response"))
	require.NoError(t, err)

	fields := []any{
		"sess-2",
		float64(rpc.ActionGetUpdates),
		b64(payload),
		nil,
		nil,
	}
	require.NoError(t, d.dispatchData(fields))

	assert.Contains(t, engine.delivered, "sess-2")
	assert.Empty(t, got, "a resolved waiter must not also become an event")
}

func TestAccountChangeLooksFakeDetectsAtSign(t *testing.T) {
	nested, err := json.Marshal([]any{"user@example.com"})
	require.NoError(t, err)
	accountChange, err := json.Marshal([]any{json.RawMessage(nested)})
	require.NoError(t, err)

	assert.True(t, accountChangeLooksFake(accountChange))
}

func TestAccountChangeLooksFakeRejectsNoAtSign(t *testing.T) {
	nested, err := json.Marshal([]any{"not-an-account"})
	require.NoError(t, err)
	accountChange, err := json.Marshal([]any{json.RawMessage(nested)})
	require.NoError(t, err)

	assert.False(t, accountChangeLooksFake(accountChange))
}

// TestPhantomEnvelopeSkipsWaiterButStillProcessesFallback exercises
// spec §8 scenario 3: under Google-host mode, a non-Gaia-pairing
// envelope whose only populated field is unencrypted_proto_data must
// not resolve a matching waiter, even though the rest of dispatchData
// (here, the logged-out sentinel check) still runs against it.
func TestPhantomEnvelopeSkipsWaiterButStillProcessesFallback(t *testing.T) {
	state := newTestState(t)
	require.True(t, state.ShouldUseGoogleHost(), "default (non-Gaia) state always uses the Google host")

	// Even though this id IS registered, IsPhantomEnvelope must steer
	// dispatchData away from ever calling Deliver for it.
	engine := &fakeDeliverer{resolves: map[string]bool{"sess-3": true}}
	var got []events.Event
	d := newDispatcher(state, engine, func(e events.Event) { got = append(got, e) })

	fields := []any{
		"sess-3",
		float64(rpc.ActionAckMessages),
		nil,
		nil,
		b64(loggedOutSentinel),
	}
	require.NoError(t, d.dispatchData(fields))

	assert.NotContains(t, engine.delivered, "sess-3", "a phantom envelope must never be offered to Deliver")
	require.NotEmpty(t, got)
	assert.Equal(t, events.KindGaiaLoggedOut, got[len(got)-1].Kind, "fallback processing must still run for a phantom envelope")
}

func TestBacklogSkipMarksLeadingMessagesOld(t *testing.T) {
	state := newTestState(t)
	engine := &fakeDeliverer{}
	var got []events.Event
	d := newDispatcher(state, engine, func(e events.Event) { got = append(got, e) })
	d.setSkipCount(3)

	for i := 0; i < 5; i++ {
		msgField, err := json.Marshal([]any{"hello"})
		require.NoError(t, err)
		update, err := json.Marshal([]any{nil, json.RawMessage(msgField), nil, nil, nil, nil, nil, "update-" + string(rune('a'+i))})
		require.NoError(t, err)

		fields := []any{
			"sess-x",
			float64(rpc.ActionGetUpdates),
			nil,
			nil,
			b64(update),
		}
		require.NoError(t, d.dispatchData(fields))
	}

	require.Len(t, got, 5)
	for i, e := range got {
		require.Equal(t, events.KindMessage, e.Kind)
		assert.Equal(t, i < 3, e.IsOld, "message %d old-ness", i)
	}
}

func TestHandleUpdateDedupesRepeatedUpdateID(t *testing.T) {
	state := newTestState(t)
	engine := &fakeDeliverer{}
	var got []events.Event
	d := newDispatcher(state, engine, func(e events.Event) { got = append(got, e) })

	msgField, err := json.Marshal([]any{"hello"})
	require.NoError(t, err)
	update, err := json.Marshal([]any{nil, json.RawMessage(msgField), nil, nil, nil, nil, nil, "update-1"})
	require.NoError(t, err)

	d.handleUpdate(update, false)
	d.handleUpdate(update, false)

	count := 0
	for _, e := range got {
		if e.Kind == events.KindMessage {
			count++
		}
	}
	assert.Equal(t, 1, count, "second identical update must be deduped")
}
