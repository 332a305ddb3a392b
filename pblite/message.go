// Package pblite implements Google's "JSON-array protobuf" wire format:
// a protobuf message encoded as a sparse JSON array where index i holds
// the value of field number i+1. There is no protoc step here — wire
// types are small hand-authored structs in the protocol package that
// implement Message (and Decodable, to parse themselves back).
package pblite

// Message is the minimal interface a wire type implements to
// participate in encoding.
type Message interface {
	// QualifiedName is the fully-qualified protobuf message name this
	// type represents, e.g. "rpc.OutgoingRPCMessage". It is the
	// binary-override table's lookup key, independent of where an
	// instance is nested in a larger tree — the override table is data
	// keyed by type, not a per-site polymorphism switch.
	QualifiedName() string
	// Fields returns the message's field values in field-number order:
	// index i holds field i+1. A nil entry means the field is absent.
	// Trailing nil entries are trimmed by Encode.
	Fields() []any
}

// Decodable is implemented by message types that can populate
// themselves from a decoded field slice (see Decode/Field/*Field).
type Decodable interface {
	Message
	FromFields(fields []any) error
}
