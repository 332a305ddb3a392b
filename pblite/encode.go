package pblite

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode renders m as a pblite JSON array.
func Encode(m Message) ([]byte, error) {
	fields, err := encodeFields(m)
	if err != nil {
		return nil, fmt.Errorf("pblite: encoding %s: %w", m.QualifiedName(), err)
	}
	return json.Marshal(fields)
}

func encodeFields(m Message) ([]any, error) {
	raw := m.Fields()
	out := make([]any, len(raw))

	for i, v := range raw {
		fieldNumber := i + 1
		enc, err := encodeValue(m.QualifiedName(), fieldNumber, v)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", fieldNumber, err)
		}
		out[i] = enc
	}

	for len(out) > 0 && out[len(out)-1] == nil {
		out = out[:len(out)-1]
	}
	return out, nil
}

func encodeValue(qualifiedName string, fieldNumber int, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	kind, overridden := isBinaryOverride(qualifiedName, fieldNumber)

	switch val := v.(type) {
	case Message:
		nested, err := encodeFields(val)
		if err != nil {
			return nil, err
		}
		if overridden && kind == overrideMessage {
			raw, err := json.Marshal(nested)
			if err != nil {
				return nil, err
			}
			return base64.StdEncoding.EncodeToString(raw), nil
		}
		return nested, nil

	case []byte:
		// Protobuf `bytes` fields are always base64, override or not.
		return base64.StdEncoding.EncodeToString(val), nil

	case string:
		if overridden && kind == overrideString {
			return base64.StdEncoding.EncodeToString([]byte(val)), nil
		}
		return val, nil

	default:
		// bool, numeric types, enums (as ints), and already-shaped
		// []any/map[string]any passthroughs.
		return val, nil
	}
}
