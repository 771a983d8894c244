// Package codec implements the proprietary tagged binary mail format: a
// lossy decoder that yields idiomatic values, a lossless decoder/encoder
// pair that round-trips every byte, and the JSON forms of both.
package codec

// Tag identifies the wire type of a single tagged value.
type Tag byte

const (
	TagBool    Tag = 0x01
	TagFloat32 Tag = 0x02
	TagFloat64 Tag = 0x03
	TagString  Tag = 0x04
	TagObject  Tag = 0x05
)

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagFloat32:
		return "f32"
	case TagFloat64:
		return "f64"
	case TagString:
		return "string"
	case TagObject:
		return "object"
	default:
		return "unknown"
	}
}

// MaxDepth is the ceiling on object nesting depth during decode. The
// top-level value is depth 1; a value at depth 128, inside 127 enclosing
// objects, is the deepest value this decoder accepts, and anything deeper
// fails with DepthLimitExceeded.
const MaxDepth = 128
