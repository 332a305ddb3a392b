package pblite

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// innerGaia stands in for authentication.SignInGaiaRequest.Inner: field
// 36 is in the binary-override table, so it must round-trip as base64
// even though it is a plain string in Go.
type innerGaia struct {
	Name  string
	Token string // field 36 in Fields()
}

func (m *innerGaia) QualifiedName() string { return "authentication.SignInGaiaRequest.Inner" }

func (m *innerGaia) Fields() []any {
	fields := make([]any, 36)
	fields[0] = m.Name
	fields[35] = m.Token
	return fields
}

func (m *innerGaia) FromFields(fields []any) error {
	name, err := StringField(m.QualifiedName(), fields, 1)
	if err != nil {
		return err
	}
	token, err := StringField(m.QualifiedName(), fields, 36)
	if err != nil {
		return err
	}
	m.Name, m.Token = name, token
	return nil
}

// plainMsg has no overrides at all, to verify the common path.
type plainMsg struct {
	A string
	B int64
	C bool
}

func (m *plainMsg) QualifiedName() string { return "test.PlainMessage" }
func (m *plainMsg) Fields() []any         { return []any{m.A, m.B, m.C} }
func (m *plainMsg) FromFields(fields []any) error {
	a, err := StringField(m.QualifiedName(), fields, 1)
	if err != nil {
		return err
	}
	b, err := Int64Field(fields, 2)
	if err != nil {
		return err
	}
	c, err := BoolField(fields, 3)
	if err != nil {
		return err
	}
	m.A, m.B, m.C = a, b, c
	return nil
}

func TestEncodeTrimsTrailingNulls(t *testing.T) {
	m := &plainMsg{A: "hi"}
	data, err := Encode(m)
	require.NoError(t, err)
	assert.JSONEq(t, `["hi"]`, string(data))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &plainMsg{A: "hello", B: 42, C: true}
	data, err := Encode(m)
	require.NoError(t, err)

	fields, err := Decode(data)
	require.NoError(t, err)

	got := &plainMsg{}
	require.NoError(t, got.FromFields(fields))
	assert.Equal(t, m, got)
}

func TestBinaryOverrideStringField(t *testing.T) {
	m := &innerGaia{Name: "phone-1", Token: "super-secret-token"}
	data, err := Encode(m)
	require.NoError(t, err)

	fields, err := Decode(data)
	require.NoError(t, err)

	raw, ok := Field(fields, 36).(string)
	require.True(t, ok)
	decodedRaw, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Equal(t, "super-secret-token", string(decodedRaw))

	got := &innerGaia{}
	require.NoError(t, got.FromFields(fields))
	assert.Equal(t, m, got)
}

func TestFieldMissingReturnsNil(t *testing.T) {
	fields := []any{"only-one"}
	assert.Nil(t, Field(fields, 5))
}

func TestBytesFieldAlwaysBase64(t *testing.T) {
	fields := []any{base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})}
	b, err := BytesField(fields, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, b)
}

func TestContentTypeSniff(t *testing.T) {
	tests := []struct {
		header   string
		expected ContentType
	}{
		{"application/x-protobuf", ContentTypeProtobuf},
		{"application/json+protobuf; charset=utf-8", ContentTypePblite},
		{"text/plain", ContentTypeText},
		{"", ContentTypeProtobuf},
		{"application/octet-stream", ContentTypeProtobuf},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Sniff(tt.header))
	}
	assert.True(t, ContentTypePblite.IsPblite())
	assert.True(t, ContentTypeText.IsPblite())
	assert.False(t, ContentTypeProtobuf.IsPblite())
}
