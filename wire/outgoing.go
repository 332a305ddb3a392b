// Package wire adapts the auth/rpc/longpoll packages' plain structs
// to pblite.Message so they can cross the network. It is the only
// package that knows the field-number layout of the on-the-wire
// messages; everything else works with typed Go structs.
package wire

import (
	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/pblite"
	"github.com/sagemsg/gmweb/rpc"
)

type deviceMessage auth.Device

func (d deviceMessage) QualifiedName() string { return "rpc.Device" }
func (d deviceMessage) Fields() []any {
	return []any{d.UserID, d.SourceID, d.Network}
}

type innerPayloadMessage rpc.InnerPayload

func (p innerPayloadMessage) QualifiedName() string { return "rpc.ActionRequest" }
func (p innerPayloadMessage) Fields() []any {
	return []any{
		p.RequestID,
		int64(p.Action),
		p.SessionID,
		p.EncryptedProtoData,
		p.UnencryptedProtoData,
	}
}

type dataMessage struct {
	RequestID   string
	BugleRoute  string
	Inner       rpc.InnerPayload
	MessageType rpc.MessageType
}

func (d dataMessage) QualifiedName() string { return "rpc.Data" }
func (d dataMessage) Fields() []any {
	return []any{
		d.RequestID,
		d.BugleRoute,
		innerPayloadMessage(d.Inner),
		int64(d.MessageType),
	}
}

type configVersionMessage rpc.ConfigVersion

func (c configVersionMessage) QualifiedName() string { return "rpc.ConfigVersion" }
func (c configVersionMessage) Fields() []any {
	return []any{int64(c.Year), int64(c.Month), int64(c.Day), int64(c.V1), int64(c.V2)}
}

type authMessage struct {
	RequestID     string
	Token         []byte
	ConfigVersion rpc.ConfigVersion
}

func (a authMessage) QualifiedName() string { return "rpc.Auth" }
func (a authMessage) Fields() []any {
	return []any{a.RequestID, a.Token, configVersionMessage(a.ConfigVersion)}
}

// OutgoingMessage adapts a built rpc.Envelope to pblite.Message: the
// "rpc.OutgoingRPCMessage" wrapper spec §6.4 describes (mobile, data,
// auth, destination-registration-ids, ttl).
type OutgoingMessage rpc.Envelope

func (e OutgoingMessage) QualifiedName() string { return "rpc.OutgoingRPCMessage" }

func (e OutgoingMessage) Fields() []any {
	fields := make([]any, 5)
	if e.HasMobile {
		fields[0] = deviceMessage(e.Mobile)
	}
	fields[1] = dataMessage{
		RequestID:   e.RequestID,
		BugleRoute:  e.BugleRoute,
		Inner:       e.Inner,
		MessageType: e.MessageType,
	}
	fields[2] = authMessage{
		RequestID:     e.AuthRequestID,
		Token:         e.Token,
		ConfigVersion: e.ConfigVersion,
	}
	if e.HasDestRegID {
		fields[3] = []any{e.DestRegID}
	}
	if e.HasTTL {
		fields[4] = e.TTLMicroseconds
	}
	return fields
}

// EncodeEnvelope is the rpc.Encoder the client facade wires into
// rpc.NewEngine.
func EncodeEnvelope(env rpc.Envelope) ([]byte, error) {
	return pblite.Encode(OutgoingMessage(env))
}
