package codec

import "math"

// Decode performs a lossy decode of a complete mail buffer: one or more
// concatenated top-level tagged values, consumed until EOF. An empty buffer
// fails with UnexpectedEof, and a value cut short before EOF is rejected.
func Decode(buf []byte) (*DecodedMail, error) {
	if len(buf) == 0 {
		return nil, &UnexpectedEof{Needed: 1, Remaining: 0}
	}
	r := newReader(buf)
	mail := &DecodedMail{Sections: []Value{}}
	for r.remaining() > 0 {
		v, err := decodeValue(r, 1)
		if err != nil {
			return nil, err
		}
		mail.Sections = append(mail.Sections, v)
	}
	return mail, nil
}

// decodeValue decodes a single tagged value at the current position. depth
// is the nesting depth of the value about to be decoded, where a top-level
// value is depth 1.
func decodeValue(r *reader, depth int) (Value, error) {
	if depth > MaxDepth {
		return nil, &DepthLimitExceeded{Limit: MaxDepth}
	}

	tagByte, err := r.byte()
	if err != nil {
		return nil, err
	}

	switch Tag(tagByte) {
	case TagBool:
		return r.bool()
	case TagFloat32:
		f, err := r.float32()
		if err != nil {
			return nil, err
		}
		v := float64(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &NonFiniteNumber{Value: v}
		}
		return v, nil
	case TagFloat64:
		f, err := r.float64()
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &NonFiniteNumber{Value: f}
		}
		return f, nil
	case TagString:
		return r.string()
	case TagObject:
		return decodeObject(r, depth)
	default:
		return nil, &UnknownTag{Byte: tagByte, Offset: r.pos - 1}
	}
}

func decodeObject(r *reader, depth int) (Value, error) {
	count, err := r.uint32()
	if err != nil {
		return nil, err
	}
	obj := NewObject()
	for i := uint32(0); i < count; i++ {
		key, err := r.string()
		if err != nil {
			return nil, err
		}
		val, err := decodeValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if arr, ok := obj.asDenseArray(); ok {
		return arr, nil
	}
	return obj, nil
}

// DecodeOne decodes a single top-level value and errors if any bytes
// remain afterward, with TrailingBytes.
func DecodeOne(buf []byte) (Value, error) {
	r := newReader(buf)
	v, err := decodeValue(r, 1)
	if err != nil {
		return nil, err
	}
	if r.remaining() > 0 {
		return nil, &TrailingBytes{Remaining: r.remaining()}
	}
	return v, nil
}
