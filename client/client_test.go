package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/cryptokit"
	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/health"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	state := auth.New()
	keys, err := cryptokit.GenerateRequestKeys()
	require.NoError(t, err)
	state.SetRequestKeys(keys)
	return New(Config{State: state})
}

func TestConfigWithDefaultsFillsTimeoutAndLogger(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, defaultFirstConnectTimeout, cfg.FirstConnectTimeout)
	assert.NotNil(t, cfg.Logger)
}

func TestConfigWithDefaultsPreservesExplicitTimeout(t *testing.T) {
	cfg := Config{FirstConnectTimeout: 3 * time.Second}.withDefaults()
	assert.Equal(t, 3*time.Second, cfg.FirstConnectTimeout)
}

func TestNewRequestIDIsLowercaseAndUnique(t *testing.T) {
	a := newRequestID()
	b := newRequestID()
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, stringsToLower(a))
}

func stringsToLower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r - 'A' + 'a'
		}
	}
	return string(out)
}

func TestHealthReportsNotLoggedInBeforePairing(t *testing.T) {
	c := newTestClient(t)
	status := c.Health().GetOverallStatus(context.Background())
	assert.Equal(t, health.StatusUnhealthy, status)
}

func TestHealthLoggedInCheckPassesOnceTokenAndBrowserPresent(t *testing.T) {
	c := newTestClient(t)
	c.state.SetToken([]byte("token"), time.Now().Add(time.Hour), time.Hour)
	c.state.SetBrowser(auth.Device{UserID: "u", SourceID: "s", Network: "n"})

	results := c.Health().CheckAll(context.Background())
	require.Contains(t, results, "logged_in")
	assert.Equal(t, health.StatusHealthy, results["logged_in"].Status)
	require.Contains(t, results, "stream_connected")
	assert.Equal(t, health.StatusUnhealthy, results["stream_connected"].Status, "no stream has been started yet")
}

func TestDisconnectIsSafeWithNoActiveStream(t *testing.T) {
	c := newTestClient(t)
	assert.NotPanics(t, func() { c.Disconnect() })
}

func TestEmitForwardsEveryEventToCallback(t *testing.T) {
	var got []events.Event
	c := New(Config{
		State: auth.New(),
		Emit:  func(e events.Event) { got = append(got, e) },
	})

	c.emit(events.Event{Kind: events.KindTokenRefreshed})
	c.emit(events.Event{Kind: events.KindMessage, IsOld: true})

	require.Len(t, got, 2)
	assert.Equal(t, events.KindTokenRefreshed, got[0].Kind)
	assert.True(t, got[1].IsOld)
}

func TestEmitRunsOnPairedHookInsteadOfAutoReconnect(t *testing.T) {
	done := make(chan *Client, 1)
	c := New(Config{
		State:         auth.New(),
		AutoReconnect: true, // OnPaired must take priority over this
		OnPaired:      func(cc *Client) { done <- cc },
	})

	c.emit(events.Event{Kind: events.KindPairSuccessful, PhoneID: "phone-1"})

	select {
	case got := <-done:
		assert.Same(t, c, got)
	case <-time.After(time.Second):
		t.Fatal("OnPaired was never invoked")
	}
}

func TestEmitNonPairEventDoesNotTriggerOnPaired(t *testing.T) {
	called := make(chan struct{}, 1)
	c := New(Config{
		State:    auth.New(),
		OnPaired: func(cc *Client) { called <- struct{}{} },
	})

	c.emit(events.Event{Kind: events.KindMessage})

	select {
	case <-called:
		t.Fatal("OnPaired must only run for KindPairSuccessful")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPersistIsNoOpWithoutStore(t *testing.T) {
	c := newTestClient(t)
	assert.NotPanics(t, func() { c.persist(context.Background()) })
}
