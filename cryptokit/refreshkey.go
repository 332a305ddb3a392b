package cryptokit

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
)

// RefreshKey is the P-256 signing key used to authorize periodic
// tachyon-token refresh requests (spec §3, §4.5.5). Its public half is
// submitted PKIX SPKI DER-encoded during pairing; its private half
// signs "<requestID>:<timestamp>" strings with ECDSA P-256/SHA-256,
// DER-encoded.
type RefreshKey struct {
	private *ecdsa.PrivateKey
}

// GenerateRefreshKey creates a new P-256 key pair.
func GenerateRefreshKey() (*RefreshKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptokit: generating p-256 key: %w", err)
	}
	return &RefreshKey{private: priv}, nil
}

// RefreshKeyFromPrivate wraps an existing P-256 private key, e.g. one
// restored from a persisted AuthState snapshot.
func RefreshKeyFromPrivate(priv *ecdsa.PrivateKey) (*RefreshKey, error) {
	if priv == nil || priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("cryptokit: refresh key must be a P-256 private key")
	}
	return &RefreshKey{private: priv}, nil
}

// PublicKeySPKI returns the PKIX SPKI DER encoding of the public key,
// the form submitted during pairing (spec §3).
func (k *RefreshKey) PublicKeySPKI() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("cryptokit: marshaling spki public key: %w", err)
	}
	return der, nil
}

// PrivateKey exposes the underlying key for persistence (JWK encoding
// lives in the auth package's Snapshot, not here).
func (k *RefreshKey) PrivateKey() *ecdsa.PrivateKey {
	return k.private
}

// Sign produces an ASN.1 DER-encoded ECDSA P-256 signature over
// SHA-256(message), as spec §4.5.5 requires for refresh requests.
func (k *RefreshKey) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig, err := ecdsa.SignASN1(rand.Reader, k.private, digest[:])
	if err != nil {
		return nil, fmt.Errorf("cryptokit: signing refresh request: %w", err)
	}
	return sig, nil
}

// Verify checks a DER-encoded ECDSA P-256 signature over
// SHA-256(message) against an SPKI-DER-encoded public key.
func Verify(spkiPublicKey, message, signature []byte) (bool, error) {
	pub, err := x509.ParsePKIXPublicKey(spkiPublicKey)
	if err != nil {
		return false, fmt.Errorf("cryptokit: parsing spki public key: %w", err)
	}
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return false, fmt.Errorf("cryptokit: public key is not ECDSA")
	}
	digest := sha256.Sum256(message)
	return ecdsa.VerifyASN1(ecdsaPub, digest[:], signature), nil
}
