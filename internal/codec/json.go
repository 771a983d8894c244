package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON parses the lossy JSON form `{"sections": [...]}` back into
// a DecodedMail, preserving object key order (first-occurrence order, last
// value wins for duplicate keys) the same way a live Decode would.
func (m *DecodedMail) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sections []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sections := make([]Value, 0, len(raw.Sections))
	for _, sec := range raw.Sections {
		v, err := parseJSONValue(sec)
		if err != nil {
			return err
		}
		sections = append(sections, v)
	}
	m.Sections = sections
	return nil
}

// parseJSONValue decodes a single JSON value into the lossy Value
// representation, using encoding/json's token stream so that object key
// order is preserved instead of collapsing into an unordered Go map.
func parseJSONValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONToken(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeJSONToken(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONTokenValue(dec, tok)
}

func decodeJSONTokenValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("codec: object key is not a string: %v", keyTok)
				}
				val, err := decodeJSONToken(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			if arr, ok := obj.asDenseArray(); ok {
				return arr, nil
			}
			return obj, nil
		case '[':
			var arr []Value
			for dec.More() {
				val, err := decodeJSONToken(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			if arr == nil {
				arr = []Value{}
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("codec: unexpected JSON delimiter %v", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("codec: unexpected JSON token %v", tok)
	}
}
