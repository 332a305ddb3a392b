package pblite

// overrideKind distinguishes the two shapes a binary-override field can
// take: a string whose UTF-8 bytes are base64-encoded, or a nested
// message whose serialized form is base64-encoded.
type overrideKind int

const (
	overrideString overrideKind = iota
	overrideMessage
)

// binaryOverrides lists field numbers whose wire value must be treated
// as opaque binary regardless of the field's declared protobuf type.
// This is data, not per-type polymorphism, so new entries never touch
// the codec itself — only this table.
var binaryOverrides = map[string]map[int]overrideKind{
	"authentication.SignInGaiaRequest.Inner": {
		36: overrideMessage,
	},
	"authentication.SignInGaiaResponse": {
		2: overrideMessage,
	},
	"authentication.RPCGaiaData.UnknownContainer.Item2.Item1": {
		1: overrideMessage,
	},
	"authentication.RPCGaiaData.UnknownContainer.Item4": {
		1: overrideMessage,
		8: overrideMessage,
	},
	"rpc.OutgoingRPCMessage": {
		9: overrideMessage,
	},
}

// isBinaryOverride reports whether fieldNumber on qualifiedName is
// listed in the binary-override table, and if so, which kind.
func isBinaryOverride(qualifiedName string, fieldNumber int) (overrideKind, bool) {
	fields, ok := binaryOverrides[qualifiedName]
	if !ok {
		return 0, false
	}
	kind, ok := fields[fieldNumber]
	return kind, ok
}
