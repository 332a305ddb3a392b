package auth

import "time"

// SetRequestKeys installs the AES/HMAC request-crypto keys, generated
// once during pairing.
func (s *State) SetRequestKeys(keys RequestKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestKeys = keys
}

// SetRefreshKey installs the P-256 refresh-signing key.
func (s *State) SetRefreshKey(key RefreshKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshKey = key
}

// SetBrowser records the browser device triple assigned at pair time.
func (s *State) SetBrowser(d Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browserDevice = d
	s.hasBrowser = true
}

// SetMobile records the phone device triple assigned at pair time.
func (s *State) SetMobile(d Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mobileDevice = d
	s.hasMobile = true
}

// SetToken installs a fresh tachyon bearer token. A zero ttl is
// substituted with defaultTachyonTTL per spec.
func (s *State) SetToken(token []byte, expiry time.Time, ttl time.Duration) {
	if ttl == 0 {
		ttl = defaultTachyonTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tachyonToken = token
	s.tachyonExpiry = expiry
	s.tachyonTTL = ttl
}

// SetSessionID rotates the browser session id.
func (s *State) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

// SetDestRegID records the Gaia destination registration id.
func (s *State) SetDestRegID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destRegID = id
}

// SetPairingID records an outstanding Gaia pairing attempt id.
func (s *State) SetPairingID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairingID = id
}

// SetGaia marks this state as belonging to a Google-account session.
func (s *State) SetGaia(isGaia bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isGaia = isGaia
}

// SetCookie merges one Set-Cookie-derived name/value pair into the
// cookie map.
func (s *State) SetCookie(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[name] = value
}

// SetCookies merges a batch of cookies at once, e.g. from parsing a
// response's Set-Cookie headers.
func (s *State) SetCookies(cookies map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, value := range cookies {
		s.cookies[name] = value
	}
}

// SetPushKeys records the caller's web-push subscription.
func (s *State) SetPushKeys(keys PushKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushKeys = keys
	s.hasPushKeys = true
}
