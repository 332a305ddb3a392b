package pblite

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Decode parses a pblite-encoded message into an order-preserved slice
// of raw field values: JSON numbers as float64, strings as string,
// nested arrays as []any, and a nil entry for any field the wire
// represented as null or omitted entirely from a trimmed trailing run.
func Decode(data []byte) ([]any, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pblite: invalid JSON array: %w", err)
	}
	return raw, nil
}

// Field returns the value at 1-based field number n, or nil if the
// slice doesn't reach that far (a trimmed trailing field).
func Field(fields []any, n int) any {
	idx := n - 1
	if idx < 0 || idx >= len(fields) {
		return nil
	}
	return fields[idx]
}

// StringField extracts a string field, reversing the binary-override
// table: an overridden field is base64-decoded back to UTF-8 text.
func StringField(qualifiedName string, fields []any, n int) (string, error) {
	v := Field(fields, n)
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("pblite: field %d is not a string", n)
	}
	if kind, overridden := isBinaryOverride(qualifiedName, n); overridden && kind == overrideString {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("pblite: field %d: %w", n, err)
		}
		return string(raw), nil
	}
	return s, nil
}

// BytesField extracts a field that is always base64 on the wire
// (protobuf `bytes`), override table notwithstanding.
func BytesField(fields []any, n int) ([]byte, error) {
	v := Field(fields, n)
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("pblite: field %d is not a base64 string", n)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("pblite: field %d: %w", n, err)
	}
	return raw, nil
}

// Int64Field extracts an integer-valued field (JSON numbers decode as
// float64; enums carry their integer value per spec §4.1).
func Int64Field(fields []any, n int) (int64, error) {
	v := Field(fields, n)
	if v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("pblite: field %d is not a number", n)
	}
	return int64(f), nil
}

// BoolField extracts a boolean field.
func BoolField(fields []any, n int) (bool, error) {
	v := Field(fields, n)
	if v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("pblite: field %d is not a bool", n)
	}
	return b, nil
}

// MessageField returns the nested field's raw array, base64-decoding
// it first if the override table marks this field binary.
func MessageField(qualifiedName string, fields []any, n int) ([]any, error) {
	v := Field(fields, n)
	if v == nil {
		return nil, nil
	}
	if kind, overridden := isBinaryOverride(qualifiedName, n); overridden && kind == overrideMessage {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("pblite: field %d is not a base64 string", n)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("pblite: field %d: %w", n, err)
		}
		return Decode(raw)
	}
	nested, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("pblite: field %d is not a nested array", n)
	}
	return nested, nil
}
