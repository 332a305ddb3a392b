// Package client is the top-level facade: it owns pairing, connection
// lifecycle, and the background-sync variant used when a push
// notification wakes the process (spec §4.6).
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/cryptokit"
	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/health"
	"github.com/sagemsg/gmweb/internal/logger"
	"github.com/sagemsg/gmweb/longpoll"
	"github.com/sagemsg/gmweb/rpc"
	"github.com/sagemsg/gmweb/transport/httpclient"
	"github.com/sagemsg/gmweb/wire"
)

// newRequestID returns a fresh lowercased UUID string, the same shape
// rpc and longpoll use for their own request/listen ids.
func newRequestID() string {
	return strings.ToLower(uuid.NewString())
}

// Pairing-service endpoint (spec §6.1): googleapis host only.
const (
	pairingHost            = "instantmessaging-pa.googleapis.com"
	registerPhoneRelayPath = "/$rpc/google.internal.communications.instantmessaging.v1.Pairing/RegisterPhoneRelay"
	refreshPhoneRelayPath  = "/$rpc/google.internal.communications.instantmessaging.v1.Pairing/RefreshPhoneRelay"
)

const qrURLBase = "https://support.google.com/messages/?p=web_computer#?c="

// ErrNotLoggedIn is returned by operations that require both a
// tachyon token and a browser identity.
var ErrNotLoggedIn = fmt.Errorf("client: not logged in")

// ErrBackgroundPollingExitedUncleanly is returned by ConnectBackground
// when its deadline elapses (or the stream closes) without a single
// data payload ever arriving.
var ErrBackgroundPollingExitedUncleanly = fmt.Errorf("client: background polling exited uncleanly")

// Client orchestrates one AuthState's lifecycle: pairing, the
// long-poll stream, ack batching, and reconnection. It is itself
// stateless beyond the auto-reconnect policy; all durable state lives
// in AuthState.
type Client struct {
	cfg   Config
	state *auth.State
	http  *httpclient.Client
	log   logger.Logger

	health *health.HealthChecker

	mu        sync.Mutex
	rpcEngine *rpc.Engine
	lp        *longpoll.Engine
	cancel    context.CancelFunc
	runDone   chan struct{}
}

// New constructs a Client bound to cfg.State. The State should already
// be restored from a Store (authstore) before calling New, if this is
// a resumed session rather than a fresh pairing.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:   cfg,
		state: cfg.State,
		http:  cfg.HTTP,
		log:   cfg.Logger,
	}
	c.health = health.NewHealthChecker(5 * time.Second)
	c.health.RegisterCheck("logged_in", func(ctx context.Context) error {
		if !c.state.IsLoggedIn() {
			return ErrNotLoggedIn
		}
		return nil
	})
	c.health.RegisterCheck("stream_connected", func(ctx context.Context) error {
		c.mu.Lock()
		lp := c.lp
		c.mu.Unlock()
		if lp == nil {
			return fmt.Errorf("client: no active stream")
		}
		return nil
	})
	return c
}

// Health exposes the health checker so callers can wire an HTTP
// /healthz handler or poll it directly.
func (c *Client) Health() *health.HealthChecker { return c.health }

// State returns the AuthState this Client owns, e.g. for a caller to
// Snapshot it for persistence after a pair or refresh event.
func (c *Client) State() *auth.State { return c.state }

// emit forwards one event to the caller's callback and runs the
// pairing-completion policy when it is a pairSuccessful event.
func (c *Client) emit(e events.Event) {
	if c.cfg.Emit != nil {
		c.cfg.Emit(e)
	}
	if e.Kind == events.KindPairSuccessful {
		go c.handlePaired()
	}
}

func (c *Client) handlePaired() {
	c.persist(context.Background())
	if c.cfg.OnPaired != nil {
		c.cfg.OnPaired(c)
		return
	}
	if !c.cfg.AutoReconnect {
		return
	}
	time.Sleep(pairedReconnectDelay)
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FirstConnectTimeout)
	defer cancel()
	if err := c.Reconnect(ctx); err != nil {
		c.log.Warn("post-pair reconnect failed", logger.Error(err))
	}
}

func (c *Client) persist(ctx context.Context) {
	if c.cfg.Store == nil {
		return
	}
	snap, err := c.state.Snapshot()
	if err != nil {
		c.log.Warn("snapshotting auth state failed", logger.Error(err))
		return
	}
	if err := c.cfg.Store.Save(ctx, c.cfg.StoreKey, snap); err != nil {
		c.log.Warn("persisting auth state failed", logger.Error(err))
	}
}

// StartLogin generates a fresh pairing identity, registers it with
// the pairing service, starts the long-poll stream immediately so the
// eventual pair event cannot be missed, and returns the QR URL to
// display (spec §4.6, §6.5).
func (c *Client) StartLogin(ctx context.Context) (string, error) {
	keys, err := cryptokit.GenerateRequestKeys()
	if err != nil {
		return "", fmt.Errorf("client: generating request keys: %w", err)
	}
	refreshKey, err := cryptokit.GenerateRefreshKey()
	if err != nil {
		return "", fmt.Errorf("client: generating refresh key: %w", err)
	}
	c.state.SetRequestKeys(keys)
	c.state.SetRefreshKey(refreshKey)

	pairingKey, err := refreshKey.PublicKeySPKI()
	if err != nil {
		return "", fmt.Errorf("client: marshaling pairing key: %w", err)
	}

	if err := c.registerPhoneRelay(ctx, pairingKey, keys); err != nil {
		return "", err
	}

	if err := c.startStream(); err != nil {
		return "", err
	}

	encoded, err := wire.EncodeURLData(wire.URLData{
		PairingKey: pairingKey,
		AESKey:     keys.AESKey[:],
		HMACKey:    keys.HMACKey[:],
	})
	if err != nil {
		return "", fmt.Errorf("client: encoding qr url data: %w", err)
	}
	return qrURLBase + encoded, nil
}

func (c *Client) registerPhoneRelay(ctx context.Context, pairingKey []byte, keys cryptokit.RequestKeys) error {
	body, err := wire.EncodeRegisterPhoneRelayRequest(wire.RegisterPhoneRelayRequest{
		PairingKey: pairingKey,
		AESKey:     keys.AESKey[:],
		HMACKey:    keys.HMACKey[:],
	})
	if err != nil {
		return fmt.Errorf("client: encoding register-phone-relay request: %w", err)
	}

	url := "https://" + pairingHost + registerPhoneRelayPath
	headers := httpclient.BuildAuthHeaders(c.state.Cookies(), url)
	respBody, status, err := c.http.Do(ctx, http.MethodPost, url, httpclient.ContentTypePblite, body, headers)
	if err != nil {
		return fmt.Errorf("client: register-phone-relay request: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("client: register-phone-relay failed with status %d", status)
	}

	resp, err := wire.DecodeRegisterPhoneRelayResponse(respBody)
	if err != nil {
		return fmt.Errorf("client: decoding register-phone-relay response: %w", err)
	}
	ttl := time.Duration(resp.TTLMicros) * time.Microsecond
	c.state.SetToken(resp.Token, time.Now().Add(ttl), ttl)
	return nil
}

// refreshToken implements auth.RefreshFunc against the pairing
// service's RefreshPhoneRelay method (spec §4.5.5).
func (c *Client) refreshToken(ctx context.Context, key auth.RefreshKey) ([]byte, time.Time, time.Duration, error) {
	token, _, _ := c.state.Token()
	requestID := newRequestID()
	timestampMicro := time.Now().UnixMicro()
	sig, err := key.Sign([]byte(fmt.Sprintf("%s:%d", requestID, timestampMicro)))
	if err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("client: signing refresh request: %w", err)
	}

	req := wire.RefreshPhoneRelayRequest{
		RequestID:      requestID,
		TimestampMicro: timestampMicro,
		CurrentToken:   token,
		Signature:      sig,
	}
	if push, ok := c.state.PushSubscription(); ok {
		req.HasPush = true
		req.PushEndpoint = push.Endpoint
		req.PushP256DH = push.P256DH
		req.PushAuth = push.Auth
	}

	body, err := wire.EncodeRefreshPhoneRelayRequest(req)
	if err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("client: encoding refresh-phone-relay request: %w", err)
	}

	url := "https://" + pairingHost + refreshPhoneRelayPath
	headers := httpclient.BuildAuthHeaders(c.state.Cookies(), url)
	respBody, status, err := c.http.Do(ctx, http.MethodPost, url, httpclient.ContentTypePblite, body, headers)
	if err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("client: refresh-phone-relay request: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, time.Time{}, 0, fmt.Errorf("client: refresh-phone-relay failed with status %d", status)
	}

	resp, err := wire.DecodeRefreshPhoneRelayResponse(respBody)
	if err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("client: decoding refresh-phone-relay response: %w", err)
	}
	expiry := time.UnixMicro(resp.ExpiryMicros)
	if resp.ExpiryMicros == 0 {
		expiry = time.Now().Add(time.Duration(resp.TTLMicros) * time.Microsecond)
	}
	c.persist(ctx)
	return resp.Token, expiry, time.Duration(resp.TTLMicros) * time.Microsecond, nil
}

// sendAck implements rpc.AckSender for the longpoll engine's ack
// batcher.
func (c *Client) sendAck(ctx context.Context, ids []string) error {
	body, err := wire.EncodeAckMessagesRequest(ids)
	if err != nil {
		return fmt.Errorf("client: encoding ack-messages request: %w", err)
	}
	c.mu.Lock()
	eng := c.rpcEngine
	c.mu.Unlock()
	if eng == nil {
		return fmt.Errorf("client: no rpc engine to ack through")
	}
	_, err = eng.Send(ctx, body, rpc.SendOptions{Action: rpc.ActionAckMessages, Unencrypted: true, OmitTTL: true})
	return err
}

// startStream constructs and launches the rpc/longpoll engine pair if
// one isn't already running. It does not wait for the first stream
// open; callers that need that guarantee call WaitFirstConnect.
func (c *Client) startStream() error {
	c.mu.Lock()
	if c.lp != nil {
		c.mu.Unlock()
		return nil
	}

	rpcEngine := rpc.NewEngine(c.state, c.http, wire.EncodeEnvelope)
	lp := longpoll.NewEngine(longpoll.Config{
		State:         c.state,
		HTTP:          c.http,
		RPCEngine:     rpcEngine,
		Emit:          c.emit,
		EncodeRequest: wire.EncodeReceiveMessagesRequest,
		RefreshToken:  c.refreshToken,
		AckSend:       c.sendAck,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.rpcEngine = rpcEngine
	c.lp = lp
	c.cancel = cancel
	c.runDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		if err := lp.Run(ctx); err != nil && ctx.Err() == nil {
			c.emit(events.Event{Kind: events.KindListenFatalError, Err: err})
		}
	}()
	return nil
}

// Connect refreshes the token if needed, starts the stream, and waits
// up to cfg.FirstConnectTimeout for the first stream open. On success
// it schedules postConnect in the background (spec §4.6).
func (c *Client) Connect(ctx context.Context) error {
	if c.state.NeedsTokenRefresh() {
		if _, ok := c.state.RefreshSigningKey(); ok {
			if err := c.state.RefreshToken(ctx, c.refreshToken); err != nil {
				c.log.Warn("token refresh before connect failed", logger.Error(err))
			}
		}
	}

	if err := c.startStream(); err != nil {
		return err
	}

	c.mu.Lock()
	lp := c.lp
	c.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.FirstConnectTimeout)
	defer cancel()
	if err := lp.WaitFirstConnect(waitCtx); err != nil {
		return fmt.Errorf("client: waiting for first stream open: %w", err)
	}

	go c.postConnect(context.Background())
	return nil
}

// Disconnect stops the stream (flushing any queued acks) and releases
// the engine pair so a later Connect starts fresh.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.runDone
	c.cancel = nil
	c.runDone = nil
	c.rpcEngine = nil
	c.lp = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

// Reconnect is Disconnect followed by Connect.
func (c *Client) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.Connect(ctx)
}

// postConnectBacklogPoll bounds how long postConnect waits for the
// leading backlog replay to drain before moving on anyway.
const postConnectBacklogPoll = 3 * time.Second

// postConnect runs the spec §4.6 steps a fresh stream open triggers
// once it's settled: give the backlog replay a moment to drain, flush
// any acks it queued, rotate the session id and issue one GET_UPDATES
// to pick up anything the replay window missed, and best-effort ping
// the phone.
func (c *Client) postConnect(ctx context.Context) {
	time.Sleep(pairedReconnectDelay)

	c.mu.Lock()
	lp := c.lp
	eng := c.rpcEngine
	c.mu.Unlock()
	if lp == nil || eng == nil {
		return
	}

	deadline := time.Now().Add(postConnectBacklogPoll)
	for lp.BacklogRemaining() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Second)
	}

	if acks := lp.Acks(); acks != nil {
		acks.Flush(ctx)
	}

	c.state.SetSessionID(newRequestID())
	if _, err := eng.Send(ctx, nil, rpc.SendOptions{Action: rpc.ActionGetUpdates, Unencrypted: true}); err != nil {
		c.log.Warn("post-connect get-updates failed", logger.Error(err))
	}

	lp.PingNow()
}

// connectBackgroundFirstOpenTimeout bounds how long ConnectBackground
// waits for the stream to open at all.
const connectBackgroundFirstOpenTimeout = 15 * time.Second

// connectBackgroundInitialDeadline and the two shift amounts below
// implement spec §4.6's "extend the deadline on forward progress"
// rule for a push-woken, short-lived process: every time new elements
// arrive the deadline moves forward, moving further once real data has
// been seen than while still waiting for the first payload.
const (
	connectBackgroundInitialDeadline = 10 * time.Second
	connectBackgroundDataSeenShift   = 3 * time.Second
	connectBackgroundNoDataShift     = 5 * time.Second
	connectBackgroundPollInterval    = 250 * time.Millisecond
)

// ConnectBackground is the push-wake variant: open the stream, wait
// briefly for it, then poll for forward progress on a rolling deadline
// instead of running indefinitely, and report whether any data payload
// was ever seen before giving up.
func (c *Client) ConnectBackground(ctx context.Context) error {
	if c.state.NeedsTokenRefresh() {
		if _, ok := c.state.RefreshSigningKey(); ok {
			if err := c.state.RefreshToken(ctx, c.refreshToken); err != nil {
				c.log.Warn("token refresh before background connect failed", logger.Error(err))
			}
		}
	}

	if err := c.startStream(); err != nil {
		return err
	}
	defer c.Disconnect()

	c.mu.Lock()
	lp := c.lp
	c.mu.Unlock()

	openCtx, cancel := context.WithTimeout(ctx, connectBackgroundFirstOpenTimeout)
	err := lp.WaitFirstConnect(openCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("client: waiting for background stream open: %w", err)
	}

	deadline := time.Now().Add(connectBackgroundInitialDeadline)
	lastSeen := lp.ElementsSeen()
	ticker := time.NewTicker(connectBackgroundPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.finishBackground(ctx, lp)
		case <-ticker.C:
			if time.Now().After(deadline) {
				return c.finishBackground(ctx, lp)
			}
			seen := lp.ElementsSeen()
			if seen == lastSeen {
				continue
			}
			lastSeen = seen
			shift := connectBackgroundNoDataShift
			if lp.DataPayloadReceived() {
				shift = connectBackgroundDataSeenShift
			}
			deadline = time.Now().Add(shift)
		}
	}
}

func (c *Client) finishBackground(ctx context.Context, lp *longpoll.Engine) error {
	if acks := lp.Acks(); acks != nil {
		acks.Flush(ctx)
	}
	if !lp.DataPayloadReceived() {
		return ErrBackgroundPollingExitedUncleanly
	}
	return nil
}
