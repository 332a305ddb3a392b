// Package auth holds the process-lifetime AuthState: request-crypto
// keys, refresh signing key, device identities, the tachyon bearer
// token, session/pairing ids, cookies, and push-subscription keys.
// All mutation is serialized through a single mutex so concurrent
// readers see a consistent snapshot and concurrent writers never
// interleave field updates (spec's "Auth state" invariant).
package auth

import (
	"sync"
	"time"

	"github.com/sagemsg/gmweb/cryptokit"
)

// RequestKeys and RefreshKey are re-exported so callers constructing
// an AuthState don't need to import cryptokit directly for these
// parameter types.
type RequestKeys = cryptokit.RequestKeys
type RefreshKey = *cryptokit.RefreshKey

// defaultTachyonTTL is substituted whenever the server reports a
// zero TTL.
const defaultTachyonTTL = 24 * time.Hour

// refreshWindow is how far ahead of expiry a token is considered due
// for refresh.
const refreshWindow = time.Hour

// gaiaAuthNetwork is the fixed network identifier used for
// Google-account (Gaia) sessions; the QR variant uses the empty
// string instead.
const gaiaAuthNetwork = "Gaia"

// Device is the opaque (user-id, source-id, network) triple the
// server assigns at pair time, for either the browser or the phone.
type Device struct {
	UserID   string
	SourceID string
	Network  string
}

// PushKeys is the optional web-push subscription the caller may
// register.
type PushKeys struct {
	Endpoint string
	P256DH   []byte
	Auth     []byte
}

// State is the singleton AuthState. Zero value is a valid, "not
// logged in" state.
type State struct {
	mu sync.Mutex

	requestKeys cryptokit.RequestKeys
	refreshKey  *cryptokit.RefreshKey

	browserDevice Device
	mobileDevice  Device
	hasBrowser    bool
	hasMobile     bool

	tachyonToken  []byte
	tachyonExpiry time.Time
	tachyonTTL    time.Duration

	sessionID  string
	destRegID  string
	pairingID  string
	isGaia     bool // true once this became a Google-account session

	cookies map[string]string

	pushKeys    PushKeys
	hasPushKeys bool
}

// New returns an empty AuthState ready for its first pairing.
func New() *State {
	return &State{cookies: make(map[string]string)}
}

// Snapshot is a persistable, byte-faithful copy of AuthState.
type Snapshot struct {
	AESKey        [32]byte
	HMACKey       [32]byte
	RefreshKeyDER []byte // PKCS#8 DER of the refresh private key, or nil
	BrowserDevice Device
	HasBrowser    bool
	MobileDevice  Device
	HasMobile     bool
	TachyonToken  []byte
	TachyonExpiry time.Time
	TachyonTTL    time.Duration
	SessionID     string
	DestRegID     string
	PairingID     string
	IsGaia        bool
	Cookies       map[string]string
	PushKeys      PushKeys
	HasPushKeys   bool
}
