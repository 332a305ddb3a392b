package longpoll

import "github.com/sagemsg/gmweb/pblite"

// PayloadVariant is which of the three long-polling payload shapes a
// decoded stream element carries (spec §4.5.2).
type PayloadVariant int

const (
	VariantUnknown PayloadVariant = iota
	VariantData
	VariantAck
	VariantOther // startRead / heartbeat / anything else — ignored
)

// field indices within the top-level long-polling payload array, as
// observed on the wire (this is a reverse-engineered protocol; there
// is no public .proto schema to cite field numbers against).
const (
	fieldData = 1
	fieldAck  = 2
)

// Payload is a decoded top-level long-polling payload element.
type Payload struct {
	Variant  PayloadVariant
	DataRaw  []any // present when Variant == VariantData
	AckCount int64 // present when Variant == VariantAck
}

// topLevelQualifiedName is the name under which DecodePayload looks
// up binary overrides for the top-level long-polling payload; this
// message has none, so it's only used to satisfy the pblite API.
const topLevelQualifiedName = "longpoll.Payload"

// DecodePayload classifies and decodes one stream element.
func DecodePayload(element []byte) (Payload, error) {
	fields, err := pblite.Decode(element)
	if err != nil {
		return Payload{}, err
	}
	if data := pblite.Field(fields, fieldData); data != nil {
		if nested, ok := data.([]any); ok {
			return Payload{Variant: VariantData, DataRaw: nested}, nil
		}
	}
	if ackField := pblite.Field(fields, fieldAck); ackField != nil {
		count, err := pblite.Int64Field(fields, fieldAck)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Variant: VariantAck, AckCount: count}, nil
	}
	return Payload{Variant: VariantOther}, nil
}

// Data-envelope field indices (bugle_route discriminates pair-event
// vs gaia-event vs data-event; spec §4.5.3).
const (
	fieldBugleRoute    = 1
	fieldPairPayload   = 2
	fieldDataPayload   = 3
)

// BugleRoute enumerates the envelope routing discriminator.
type BugleRoute int

const (
	RoutePair BugleRoute = iota
	RouteGaia
	RouteData
	RouteUnknown
)

// DataEnvelope is the decoded shape of a data-event's inner message:
// a response/session id plus exactly one populated payload field
// among encrypted/encrypted2/unencrypted, and the action this
// response correlates to.
type DataEnvelope struct {
	SessionID      string
	Action         int
	EncryptedData  []byte
	EncryptedData2 []byte
	UnencryptedData []byte
}

const (
	fieldEnvSessionID   = 1
	fieldEnvAction      = 2
	fieldEnvEncrypted   = 3
	fieldEnvEncrypted2  = 4
	fieldEnvUnencrypted = 5
)

const dataEnvelopeQualifiedName = "longpoll.DataEnvelope"

// DecodeBugleRoute reads the discriminator field off a "data" variant's
// raw fields.
func DecodeBugleRoute(fields []any) (BugleRoute, error) {
	route, err := pblite.Int64Field(fields, fieldBugleRoute)
	if err != nil {
		return RouteUnknown, err
	}
	switch route {
	case 0:
		return RoutePair, nil
	case 1:
		return RouteGaia, nil
	case 2:
		return RouteData, nil
	default:
		return RouteUnknown, nil
	}
}

// payloadForRoute returns the nested fields to dispatch for a given
// route: pair events live under fieldPairPayload, data events under
// fieldDataPayload.
func payloadForRoute(route BugleRoute, fields []any) []any {
	switch route {
	case RoutePair:
		if v, ok := pblite.Field(fields, fieldPairPayload).([]any); ok {
			return v
		}
	case RouteData:
		if v, ok := pblite.Field(fields, fieldDataPayload).([]any); ok {
			return v
		}
	}
	return nil
}

// DecodeDataEnvelope extracts a DataEnvelope from a data-event's raw
// fields.
func DecodeDataEnvelope(fields []any) (DataEnvelope, error) {
	env := DataEnvelope{}
	var err error
	if env.SessionID, err = pblite.StringField(dataEnvelopeQualifiedName, fields, fieldEnvSessionID); err != nil {
		return DataEnvelope{}, err
	}
	action, err := pblite.Int64Field(fields, fieldEnvAction)
	if err != nil {
		return DataEnvelope{}, err
	}
	env.Action = int(action)
	if env.EncryptedData, err = pblite.BytesField(fields, fieldEnvEncrypted); err != nil {
		return DataEnvelope{}, err
	}
	if env.EncryptedData2, err = pblite.BytesField(fields, fieldEnvEncrypted2); err != nil {
		return DataEnvelope{}, err
	}
	if env.UnencryptedData, err = pblite.BytesField(fields, fieldEnvUnencrypted); err != nil {
		return DataEnvelope{}, err
	}
	return env, nil
}
