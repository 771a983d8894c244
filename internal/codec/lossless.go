package codec

import (
	"encoding/binary"
	"math"
)

// LosslessMail is the parallel representation of a decoded mail that
// preserves every byte needed to re-emit an identical buffer.
type LosslessMail struct {
	Sections []Node `json:"sections"`
}

// DecodeLossless decodes a complete mail buffer into its lossless form:
// every node records its wire tag, f32/f64 stay distinguishable, and
// object key order (including duplicate keys) is preserved exactly.
func DecodeLossless(buf []byte) (*LosslessMail, error) {
	r := newReader(buf)
	mail := &LosslessMail{Sections: []Node{}}
	for r.remaining() > 0 {
		n, err := decodeNode(r, 1)
		if err != nil {
			return nil, err
		}
		mail.Sections = append(mail.Sections, n)
	}
	return mail, nil
}

func decodeNode(r *reader, depth int) (Node, error) {
	if depth > MaxDepth {
		return Node{}, &DepthLimitExceeded{Limit: MaxDepth}
	}

	tagByte, err := r.byte()
	if err != nil {
		return Node{}, err
	}

	switch Tag(tagByte) {
	case TagBool:
		v, err := r.bool()
		if err != nil {
			return Node{}, err
		}
		return BoolNode(v), nil
	case TagFloat32:
		v, err := r.float32()
		if err != nil {
			return Node{}, err
		}
		return F32Node(v), nil
	case TagFloat64:
		v, err := r.float64()
		if err != nil {
			return Node{}, err
		}
		return F64Node(v), nil
	case TagString:
		v, err := r.string()
		if err != nil {
			return Node{}, err
		}
		return StringNode(v), nil
	case TagObject:
		count, err := r.uint32()
		if err != nil {
			return Node{}, err
		}
		entries := make([]Entry, 0, count)
		for i := uint32(0); i < count; i++ {
			key, err := r.string()
			if err != nil {
				return Node{}, err
			}
			val, err := decodeNode(r, depth+1)
			if err != nil {
				return Node{}, err
			}
			entries = append(entries, Entry{Key: key, Value: val})
		}
		return ObjectNode(entries), nil
	default:
		return Node{}, &UnknownTag{Byte: tagByte, Offset: r.pos - 1}
	}
}

// Encode re-emits a lossless mail as wire bytes. encode(decode(b)) == b for
// all valid b: f32/f64 tags and object key order (including duplicates) are
// reproduced exactly.
func Encode(mail *LosslessMail) []byte {
	var buf []byte
	for _, n := range mail.Sections {
		buf = encodeNode(buf, n)
	}
	return buf
}

func encodeNode(buf []byte, n Node) []byte {
	switch n.Tag {
	case TagBool:
		buf = append(buf, byte(TagBool))
		if n.B {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case TagFloat32:
		buf = append(buf, byte(TagFloat32))
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(n.F32))
		buf = append(buf, b[:]...)
	case TagFloat64:
		buf = append(buf, byte(TagFloat64))
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(n.F64))
		buf = append(buf, b[:]...)
	case TagString:
		buf = append(buf, byte(TagString))
		buf = encodeString(buf, n.Str)
	case TagObject:
		buf = append(buf, byte(TagObject))
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(n.Obj)))
		buf = append(buf, countBuf[:]...)
		for _, e := range n.Obj {
			buf = encodeString(buf, e.Key)
			buf = encodeNode(buf, e.Value)
		}
	}
	return buf
}

func encodeString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}
