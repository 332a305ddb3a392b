package wire

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagemsg/gmweb/pblite"
	"github.com/sagemsg/gmweb/rpc"
)

func TestEncodeEnvelopeRoundTrip(t *testing.T) {
	env := rpc.Envelope{
		RequestID:     "req-1",
		BugleRoute:    rpc.BugleRoute,
		MessageType:   rpc.MessageTypeBugleMessage,
		AuthRequestID: "req-1",
		Token:         []byte("tachyon-token"),
		ConfigVersion: rpc.CurrentConfigVersion,
		Inner: rpc.InnerPayload{
			RequestID:          "req-1",
			Action:             rpc.ActionGetUpdates,
			SessionID:          "sess-1",
			EncryptedProtoData: []byte("sealed"),
		},
		HasDestRegID: true,
		DestRegID:    "dest-1",
		HasTTL:       true,
		TTLMicroseconds: 1000,
	}

	raw, err := EncodeEnvelope(env)
	require.NoError(t, err)

	fields, err := pblite.Decode(raw)
	require.NoError(t, err)
	require.Len(t, fields, 5)

	data, ok := fields[1].([]any)
	require.True(t, ok)
	assert.Equal(t, "req-1", data[0])
	assert.Equal(t, rpc.BugleRoute, data[1])

	destRegIDs, ok := fields[3].([]any)
	require.True(t, ok)
	assert.Equal(t, "dest-1", destRegIDs[0])
}

func TestEncodeEnvelopeOmitsAbsentOptionalFields(t *testing.T) {
	env := rpc.Envelope{
		RequestID:     "req-2",
		BugleRoute:    rpc.BugleRoute,
		AuthRequestID: "req-2",
		ConfigVersion: rpc.CurrentConfigVersion,
		Inner: rpc.InnerPayload{
			RequestID: "req-2",
			Action:    rpc.ActionSendMessage,
			SessionID: "sess-2",
		},
	}

	raw, err := EncodeEnvelope(env)
	require.NoError(t, err)

	fields, err := pblite.Decode(raw)
	require.NoError(t, err)
	// No mobile, no destRegID, no ttl: the trailing nils trim down to
	// just data(2) and auth(3).
	assert.Len(t, fields, 3)
}

func TestEncodeURLDataRoundTrip(t *testing.T) {
	data := URLData{
		PairingKey: []byte("pairing-key-bytes"),
		AESKey:     []byte("0123456789abcdef0123456789abcdef"),
		HMACKey:    []byte("fedcba9876543210fedcba9876543210"),
	}

	encoded, err := EncodeURLData(data)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	// Decoding the base64 fragment back and re-parsing as pblite must
	// recover the same three byte strings.
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	fields, err := pblite.Decode(raw)
	require.NoError(t, err)
	pairingKey, err := pblite.BytesField(fields, 1)
	require.NoError(t, err)
	assert.Equal(t, data.PairingKey, pairingKey)
}

func TestDecodeRegisterPhoneRelayResponse(t *testing.T) {
	resp := RegisterPhoneRelayResponse{Token: []byte("new-token"), TTLMicros: 5000}
	raw, err := pblite.Encode(registerPhoneRelayResponseMessage(resp))
	require.NoError(t, err)

	got, err := DecodeRegisterPhoneRelayResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, resp.Token, got.Token)
	assert.Equal(t, resp.TTLMicros, got.TTLMicros)
}

// registerPhoneRelayResponseMessage lets the test build a response
// body without a live server; production code only ever decodes this
// shape, never encodes it.
type registerPhoneRelayResponseMessage RegisterPhoneRelayResponse

func (r registerPhoneRelayResponseMessage) QualifiedName() string {
	return "rpc.RegisterPhoneRelayResponse"
}
func (r registerPhoneRelayResponseMessage) Fields() []any {
	return []any{r.Token, r.TTLMicros}
}
