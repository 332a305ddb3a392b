// Package rpc builds outgoing RPC envelopes, correlates responses
// delivered asynchronously on the long-poll stream with their
// waiters, and batches message acks.
package rpc

import (
	"time"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/cryptokit"
)

// Action enumerates the inner-payload action codes this engine can
// send. Values mirror the wire's action enum (spec §6.4).
type Action int

const (
	ActionGetUpdates Action = iota
	ActionSendMessage
	ActionAckMessages
	ActionSignInGaia
	ActionClientFinished
	ActionFirstConversationFetch
)

// MessageType is the outer envelope's message-type wrapper.
type MessageType int

const (
	MessageTypeBugleMessage MessageType = iota
	MessageTypeBugleAnnotation
	MessageTypeGaia2
)

// BugleRoute is always DATA_EVENT for this protocol (spec §4.4).
const BugleRoute = "DATA_EVENT"

// messageTypeFor implements the observed message-type override rules
// (spec §9(c)): first-conversation-fetch uses BUGLE_ANNOTATION, all
// Gaia pairing actions use GAIA2 except clientFinished which uses
// BUGLE_MESSAGE, and everything else defaults to BUGLE_MESSAGE.
func messageTypeFor(action Action) MessageType {
	switch action {
	case ActionFirstConversationFetch:
		return MessageTypeBugleAnnotation
	case ActionClientFinished:
		return MessageTypeBugleMessage
	case ActionSignInGaia:
		return MessageTypeGaia2
	default:
		return MessageTypeBugleMessage
	}
}

// ConfigVersion is the fixed (year, month, day, v1, v2) tuple every
// envelope carries.
type ConfigVersion struct {
	Year  int32
	Month int32
	Day   int32
	V1    int32
	V2    int32
}

// CurrentConfigVersion is the build-fixed config-version tuple.
var CurrentConfigVersion = ConfigVersion{Year: 2024, Month: 1, Day: 1, V1: 5, V2: 8}

// SendOptions customizes one envelope beyond its defaults.
type SendOptions struct {
	RequestID    string // overrides the generated UUID if non-empty
	Unencrypted  bool   // places the payload in unencrypted_proto_data
	OmitTTL      bool   // suppresses the TTL field even if AuthState has a default
	TTL          time.Duration
	Action       Action
	SlowCallback func()
}

// InnerPayload is the request-id/action/session-id/payload tuple
// carried inside the envelope's data field.
type InnerPayload struct {
	RequestID             string
	Action                Action
	SessionID             string
	EncryptedProtoData    []byte
	UnencryptedProtoData  []byte
}

// Envelope is the fully-built outgoing wrapper: mobile identity (if
// known), data{}, auth{}, destination-registration-ids (if known),
// and an optional TTL (spec §6.4).
type Envelope struct {
	HasMobile          bool
	Mobile             auth.Device
	RequestID          string
	BugleRoute         string
	MessageType        MessageType
	Inner              InnerPayload
	AuthRequestID      string
	Token              []byte
	ConfigVersion      ConfigVersion
	HasDestRegID       bool
	DestRegID          string
	HasTTL             bool
	TTLMicroseconds    int64
}

// BuildEnvelope assembles an outgoing envelope per spec §4.4 steps
// 1-4, encrypting the payload with state's request-crypto keys unless
// opts.Unencrypted is set.
func BuildEnvelope(state *auth.State, payload []byte, opts SendOptions) (Envelope, error) {
	requestID := opts.RequestID
	if requestID == "" {
		requestID = newRequestID()
	}

	inner := InnerPayload{
		RequestID: requestID,
		Action:    opts.Action,
		SessionID: state.SessionID(),
	}
	if opts.Unencrypted {
		inner.UnencryptedProtoData = payload
	} else {
		sealed, err := cryptokit.EncryptRequest(state.GetRequestKeys(), payload)
		if err != nil {
			return Envelope{}, err
		}
		inner.EncryptedProtoData = sealed
	}

	env := Envelope{
		RequestID:     requestID,
		BugleRoute:    BugleRoute,
		MessageType:   messageTypeFor(opts.Action),
		Inner:         inner,
		AuthRequestID: requestID,
		ConfigVersion: CurrentConfigVersion,
	}

	if mobile, ok := state.Mobile(); ok {
		env.HasMobile = true
		env.Mobile = mobile
	}
	token, _, ttl := state.Token()
	env.Token = token

	if destRegID := state.DestRegID(); destRegID != "" {
		env.HasDestRegID = true
		env.DestRegID = destRegID
	}

	if !opts.OmitTTL {
		effectiveTTL := opts.TTL
		if effectiveTTL == 0 {
			effectiveTTL = ttl
		}
		if effectiveTTL > 0 {
			env.HasTTL = true
			env.TTLMicroseconds = effectiveTTL.Microseconds()
		}
	}

	return env, nil
}
