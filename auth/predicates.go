package auth

import "time"

// IsLoggedIn reports whether AuthState carries enough identity to
// issue RPCs: a tachyon token and a browser device.
func (s *State) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tachyonToken) > 0 && s.hasBrowser
}

// NeedsTokenRefresh reports whether the tachyon token is absent or
// within refreshWindow of expiring.
func (s *State) NeedsTokenRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tachyonToken) == 0 || s.tachyonExpiry.IsZero() {
		return true
	}
	return time.Until(s.tachyonExpiry) <= refreshWindow
}

// ShouldUseGoogleHost is true iff this is not a Google-account
// session, or the cookie map is non-empty — the single predicate
// that chooses between the two messaging-endpoint hostname variants.
func (s *State) ShouldUseGoogleHost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.isGaia || len(s.cookies) > 0
}

// AuthNetwork is the empty string for the QR pairing variant and a
// fixed Gaia identifier for Google-account sessions.
func (s *State) AuthNetwork() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isGaia {
		return gaiaAuthNetwork
	}
	return ""
}

// Token returns the current tachyon token, expiry, and ttl.
func (s *State) Token() ([]byte, time.Time, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tachyonToken, s.tachyonExpiry, s.tachyonTTL
}

// Browser returns the current browser device, if any.
func (s *State) Browser() (Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browserDevice, s.hasBrowser
}

// Mobile returns the current mobile device, if any.
func (s *State) Mobile() (Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mobileDevice, s.hasMobile
}

// SessionID returns the current browser session id.
func (s *State) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// DestRegID returns the current Gaia destination registration id.
func (s *State) DestRegID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destRegID
}

// PairingID returns the current outstanding Gaia pairing attempt id.
func (s *State) PairingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairingID
}

// Cookie returns one cookie value by name.
func (s *State) Cookie(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cookies[name]
	return v, ok
}

// Cookies returns a copy of the full cookie map.
func (s *State) Cookies() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out
}

// RequestKeys returns the current request-crypto key pair.
func (s *State) GetRequestKeys() RequestKeys {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestKeys
}

// RefreshSigningKey returns the current refresh key, if installed.
func (s *State) RefreshSigningKey() (RefreshKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshKey, s.refreshKey != nil
}

// PushSubscription returns the registered push keys, if any.
func (s *State) PushSubscription() (PushKeys, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushKeys, s.hasPushKeys
}
