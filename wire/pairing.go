package wire

import (
	"encoding/base64"

	"github.com/sagemsg/gmweb/pblite"
)

// URLData is the small message the QR/pairing URL's fragment
// base64-encodes (spec §6.5): pairing-key, aes-key, hmac-key. The
// Gaia/UKEY2 handshake that would normally derive pairing-key is a
// documented non-goal; here it is the pairing refresh key's public
// SPKI bytes, reusing an identity the client already holds rather
// than inventing a second keypair.
type URLData struct {
	PairingKey []byte
	AESKey     []byte
	HMACKey    []byte
}

func (u URLData) QualifiedName() string { return "rpc.URLData" }
func (u URLData) Fields() []any         { return []any{u.PairingKey, u.AESKey, u.HMACKey} }

// EncodeURLData serializes u and base64-encodes it with the standard
// alphabet, the exact form the QR URL fragment embeds.
func EncodeURLData(u URLData) (string, error) {
	raw, err := pblite.Encode(u)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// RegisterPhoneRelayRequest asks the pairing service to register this
// browser, submitting the pairing public key and the request-crypto
// keys the phone will use to encrypt payloads addressed to it.
type RegisterPhoneRelayRequest struct {
	PairingKey []byte
	AESKey     []byte
	HMACKey    []byte
}

func (r RegisterPhoneRelayRequest) QualifiedName() string { return "rpc.RegisterPhoneRelayRequest" }
func (r RegisterPhoneRelayRequest) Fields() []any {
	return []any{r.PairingKey, r.AESKey, r.HMACKey}
}

// EncodeRegisterPhoneRelayRequest serializes r for the pairing
// service's RegisterPhoneRelay method.
func EncodeRegisterPhoneRelayRequest(r RegisterPhoneRelayRequest) ([]byte, error) {
	return pblite.Encode(r)
}

const (
	fieldRegisterRespToken = 1
	fieldRegisterRespTTL   = 2
)

// RegisterPhoneRelayResponse is the token a freshly-registered browser
// receives.
type RegisterPhoneRelayResponse struct {
	Token     []byte
	TTLMicros int64
}

// DecodeRegisterPhoneRelayResponse parses a RegisterPhoneRelay
// response body.
func DecodeRegisterPhoneRelayResponse(body []byte) (RegisterPhoneRelayResponse, error) {
	fields, err := pblite.Decode(body)
	if err != nil {
		return RegisterPhoneRelayResponse{}, err
	}
	token, err := pblite.BytesField(fields, fieldRegisterRespToken)
	if err != nil {
		return RegisterPhoneRelayResponse{}, err
	}
	ttl, err := pblite.Int64Field(fields, fieldRegisterRespTTL)
	if err != nil {
		return RegisterPhoneRelayResponse{}, err
	}
	return RegisterPhoneRelayResponse{Token: token, TTLMicros: ttl}, nil
}

// RefreshPhoneRelayRequest renews the tachyon token (spec §4.5.5).
type RefreshPhoneRelayRequest struct {
	RequestID      string
	TimestampMicro int64
	CurrentToken   []byte
	Signature      []byte
	PushEndpoint   string
	PushP256DH     []byte
	PushAuth       []byte
	HasPush        bool
}

func (r RefreshPhoneRelayRequest) QualifiedName() string { return "rpc.RefreshPhoneRelayRequest" }
func (r RefreshPhoneRelayRequest) Fields() []any {
	fields := []any{r.RequestID, r.TimestampMicro, r.CurrentToken, r.Signature}
	if r.HasPush {
		fields = append(fields, r.PushEndpoint, r.PushP256DH, r.PushAuth)
	}
	return fields
}

// EncodeRefreshPhoneRelayRequest serializes r for the pairing
// service's RefreshPhoneRelay method.
func EncodeRefreshPhoneRelayRequest(r RefreshPhoneRelayRequest) ([]byte, error) {
	return pblite.Encode(r)
}

const (
	fieldRefreshRespToken  = 1
	fieldRefreshRespTTL    = 2
	fieldRefreshRespExpiry = 3
)

// RefreshPhoneRelayResponse carries the renewed token.
type RefreshPhoneRelayResponse struct {
	Token        []byte
	TTLMicros    int64
	ExpiryMicros int64
}

// DecodeRefreshPhoneRelayResponse parses a RefreshPhoneRelay response
// body.
func DecodeRefreshPhoneRelayResponse(body []byte) (RefreshPhoneRelayResponse, error) {
	fields, err := pblite.Decode(body)
	if err != nil {
		return RefreshPhoneRelayResponse{}, err
	}
	token, err := pblite.BytesField(fields, fieldRefreshRespToken)
	if err != nil {
		return RefreshPhoneRelayResponse{}, err
	}
	ttl, err := pblite.Int64Field(fields, fieldRefreshRespTTL)
	if err != nil {
		return RefreshPhoneRelayResponse{}, err
	}
	expiry, err := pblite.Int64Field(fields, fieldRefreshRespExpiry)
	if err != nil {
		return RefreshPhoneRelayResponse{}, err
	}
	return RefreshPhoneRelayResponse{Token: token, TTLMicros: ttl, ExpiryMicros: expiry}, nil
}
