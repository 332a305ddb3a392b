package client

import (
	"time"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/authstore"
	"github.com/sagemsg/gmweb/events"
	"github.com/sagemsg/gmweb/internal/logger"
	"github.com/sagemsg/gmweb/transport/httpclient"
)

// Config bundles a Client's collaborators and policy knobs.
type Config struct {
	// State is the AuthState this Client exclusively owns. Callers
	// wanting persistence restore it from a Store before constructing
	// the Client, and read Snapshot after.
	State *auth.State
	HTTP  *httpclient.Client

	// Store and StoreKey are optional: when set, every successful
	// token refresh and pair event is persisted immediately.
	Store    authstore.Store
	StoreKey string

	Emit   events.Callback
	Logger logger.Logger

	// AutoReconnect enables the default post-pair policy: sleep
	// pairedReconnectDelay, then Reconnect. Ignored if OnPaired is set.
	AutoReconnect bool
	// OnPaired, if set, replaces the default post-pair policy entirely.
	OnPaired func(c *Client)

	// FirstConnectTimeout bounds how long Connect waits for the first
	// stream open. Defaults to 15s.
	FirstConnectTimeout time.Duration
}

// pairedReconnectDelay gives the phone time to persist the pair
// record before the browser reconnects (spec §4.6).
const pairedReconnectDelay = 2 * time.Second

const defaultFirstConnectTimeout = 15 * time.Second

func (c Config) withDefaults() Config {
	if c.FirstConnectTimeout == 0 {
		c.FirstConnectTimeout = defaultFirstConnectTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.NewDefaultLogger()
	}
	return c
}
