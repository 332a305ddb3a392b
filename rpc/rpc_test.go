package rpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/cryptokit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *auth.State {
	t.Helper()
	s := auth.New()
	keys, err := cryptokit.GenerateRequestKeys()
	require.NoError(t, err)
	s.SetRequestKeys(keys)
	s.SetBrowser(auth.Device{UserID: "u1", SourceID: "s1", Network: "n1"})
	s.SetToken([]byte("tok"), time.Now().Add(time.Hour), time.Hour)
	s.SetSessionID("session-abc")
	return s
}

func TestBuildEnvelopeEncryptsByDefault(t *testing.T) {
	s := newTestState(t)
	env, err := BuildEnvelope(s, []byte("hello"), SendOptions{Action: ActionSendMessage})
	require.NoError(t, err)

	assert.NotEmpty(t, env.Inner.EncryptedProtoData)
	assert.Empty(t, env.Inner.UnencryptedProtoData)
	assert.Equal(t, BugleRoute, env.BugleRoute)
	assert.Equal(t, MessageTypeBugleMessage, env.MessageType)
	assert.True(t, env.HasTTL)
}

func TestBuildEnvelopeUnencrypted(t *testing.T) {
	s := newTestState(t)
	env, err := BuildEnvelope(s, []byte("plain"), SendOptions{Action: ActionSendMessage, Unencrypted: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), env.Inner.UnencryptedProtoData)
	assert.Empty(t, env.Inner.EncryptedProtoData)
}

func TestBuildEnvelopeOmitTTL(t *testing.T) {
	s := newTestState(t)
	env, err := BuildEnvelope(s, []byte("x"), SendOptions{Action: ActionSendMessage, OmitTTL: true})
	require.NoError(t, err)
	assert.False(t, env.HasTTL)
}

func TestMessageTypeForOverrideRules(t *testing.T) {
	assert.Equal(t, MessageTypeBugleAnnotation, messageTypeFor(ActionFirstConversationFetch))
	assert.Equal(t, MessageTypeGaia2, messageTypeFor(ActionSignInGaia))
	assert.Equal(t, MessageTypeBugleMessage, messageTypeFor(ActionClientFinished))
	assert.Equal(t, MessageTypeBugleMessage, messageTypeFor(ActionSendMessage))
}

func TestIsPhantomEnvelope(t *testing.T) {
	phantom := IncomingEnvelope{Action: ActionSendMessage, UnencryptedProtoData: []byte("x")}
	assert.True(t, IsPhantomEnvelope(phantom, true))
	assert.False(t, IsPhantomEnvelope(phantom, false), "non-google host never filters")

	withEncrypted := IncomingEnvelope{Action: ActionSendMessage, EncryptedProtoData: []byte("x"), UnencryptedProtoData: []byte("y")}
	assert.False(t, IsPhantomEnvelope(withEncrypted, true))

	gaiaAction := IncomingEnvelope{Action: ActionSignInGaia, UnencryptedProtoData: []byte("x")}
	assert.False(t, IsPhantomEnvelope(gaiaAction, true))
}

func TestWaiterMapDeliverAndCancel(t *testing.T) {
	m := newWaiterMap()

	sendOK := func(ctx context.Context, requestID string) error {
		go m.deliver(requestID, Result{Payload: []byte("response")})
		return nil
	}
	payload, err := m.Wait(context.Background(), ActionSendMessage, "req-1", sendOK, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("response"), payload)
}

func TestWaiterMapPostFailureRemovesWaiter(t *testing.T) {
	m := newWaiterMap()
	sendErr := func(ctx context.Context, requestID string) error { return errors.New("boom") }
	_, err := m.Wait(context.Background(), ActionSendMessage, "req-2", sendErr, nil)
	assert.Error(t, err)

	delivered := m.deliver("req-2", Result{Payload: []byte("late")})
	assert.False(t, delivered, "late arrival after removal should be dropped")
}

func TestWaiterMapContextCancellation(t *testing.T) {
	m := newWaiterMap()
	ctx, cancel := context.WithCancel(context.Background())
	sendOK := func(ctx context.Context, requestID string) error { return nil }

	cancel()
	_, err := m.Wait(ctx, ActionSendMessage, "req-3", sendOK, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaiterMapFailAll(t *testing.T) {
	m := newWaiterMap()
	sendOK := func(ctx context.Context, requestID string) error { return nil }
	resultCh := make(chan error, 1)
	go func() {
		_, err := m.Wait(context.Background(), ActionSendMessage, "req-4", sendOK, nil)
		resultCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	m.failAll(errors.New("stream died"))
	err := <-resultCh
	assert.Error(t, err)
}

func TestAckBatcherRequeuesWithoutLogin(t *testing.T) {
	s := auth.New() // not logged in
	var sent [][]string
	batcher := NewAckBatcher(s, func(ctx context.Context, ids []string) error {
		sent = append(sent, ids)
		return nil
	})
	defer batcher.Stop(false)

	batcher.Queue("id-1")
	batcher.flush(context.Background())
	assert.Empty(t, sent, "ack requires both token and browser identity")
}

func TestAckBatcherFlushesWhenLoggedIn(t *testing.T) {
	s := newTestState(t)
	var sent [][]string
	batcher := NewAckBatcher(s, func(ctx context.Context, ids []string) error {
		sent = append(sent, ids)
		return nil
	})
	defer batcher.Stop(false)

	batcher.Queue("id-1")
	batcher.Queue("id-2")
	batcher.flush(context.Background())
	require.Len(t, sent, 1)
	assert.ElementsMatch(t, []string{"id-1", "id-2"}, sent[0])
}

func TestAckBatcherRequeuesOnSendError(t *testing.T) {
	s := newTestState(t)
	batcher := NewAckBatcher(s, func(ctx context.Context, ids []string) error {
		return errors.New("post failed")
	})
	defer batcher.Stop(false)

	batcher.Queue("id-1")
	batcher.flush(context.Background())

	batcher.mu.Lock()
	pending := batcher.pending
	batcher.mu.Unlock()
	assert.Equal(t, []string{"id-1"}, pending)
}
