package auth

import (
	"crypto/ecdsa"
	"crypto/x509"
	"fmt"

	"github.com/sagemsg/gmweb/cryptokit"
)

// Snapshot returns a byte-faithful copy of AuthState suitable for
// handing to an authstore implementation. The refresh key is
// serialized as PKCS#8 DER so it round-trips through RestoreFromSnapshot
// without needing a passphrase or JWK shape.
func (s *State) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		AESKey:        s.requestKeys.AESKey,
		HMACKey:       s.requestKeys.HMACKey,
		BrowserDevice: s.browserDevice,
		HasBrowser:    s.hasBrowser,
		MobileDevice:  s.mobileDevice,
		HasMobile:     s.hasMobile,
		TachyonToken:  append([]byte(nil), s.tachyonToken...),
		TachyonExpiry: s.tachyonExpiry,
		TachyonTTL:    s.tachyonTTL,
		SessionID:     s.sessionID,
		DestRegID:     s.destRegID,
		PairingID:     s.pairingID,
		IsGaia:        s.isGaia,
		Cookies:       make(map[string]string, len(s.cookies)),
		PushKeys:      s.pushKeys,
		HasPushKeys:   s.hasPushKeys,
	}
	for k, v := range s.cookies {
		snap.Cookies[k] = v
	}

	if s.refreshKey != nil {
		der, err := x509.MarshalPKCS8PrivateKey(s.refreshKey.PrivateKey())
		if err != nil {
			return Snapshot{}, fmt.Errorf("auth: marshaling refresh key: %w", err)
		}
		snap.RefreshKeyDER = der
	}

	return snap, nil
}

// RestoreFromSnapshot replaces this AuthState's contents with a
// previously persisted Snapshot, e.g. on process restart.
func (s *State) RestoreFromSnapshot(snap Snapshot) error {
	var refreshKey *cryptokit.RefreshKey
	if len(snap.RefreshKeyDER) > 0 {
		priv, err := x509.ParsePKCS8PrivateKey(snap.RefreshKeyDER)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		ecdsaPriv, ok := priv.(*ecdsa.PrivateKey)
		if !ok {
			return fmt.Errorf("%w: refresh key is not ECDSA", ErrInvalidSnapshot)
		}
		refreshKey, err = cryptokit.RefreshKeyFromPrivate(ecdsaPriv)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requestKeys = cryptokit.RequestKeys{AESKey: snap.AESKey, HMACKey: snap.HMACKey}
	s.refreshKey = refreshKey
	s.browserDevice = snap.BrowserDevice
	s.hasBrowser = snap.HasBrowser
	s.mobileDevice = snap.MobileDevice
	s.hasMobile = snap.HasMobile
	s.tachyonToken = snap.TachyonToken
	s.tachyonExpiry = snap.TachyonExpiry
	s.tachyonTTL = snap.TachyonTTL
	s.sessionID = snap.SessionID
	s.destRegID = snap.DestRegID
	s.pairingID = snap.PairingID
	s.isGaia = snap.IsGaia
	s.cookies = make(map[string]string, len(snap.Cookies))
	for k, v := range snap.Cookies {
		s.cookies[k] = v
	}
	s.pushKeys = snap.PushKeys
	s.hasPushKeys = snap.HasPushKeys

	return nil
}
