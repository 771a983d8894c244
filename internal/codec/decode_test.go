package codec

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBoolBuf(v bool) []byte {
	b := byte(0)
	if v {
		b = 1
	}
	return []byte{byte(TagBool), b}
}

func encodeStringBuf(s string) []byte {
	buf := []byte{byte(TagString)}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func TestDecode_SingleBool(t *testing.T) {
	mail, err := Decode(encodeBoolBuf(true))
	require.NoError(t, err)
	require.Len(t, mail.Sections, 1)
	assert.Equal(t, true, mail.Sections[0])
}

func TestDecode_MinMaxStrings(t *testing.T) {
	mail, err := Decode(encodeStringBuf(""))
	require.NoError(t, err)
	assert.Equal(t, "", mail.Sections[0])

	big := make([]byte, 1<<16)
	for i := range big {
		big[i] = 'a'
	}
	mail, err = Decode(encodeStringBuf(string(big)))
	require.NoError(t, err)
	assert.Equal(t, string(big), mail.Sections[0])
}

func TestDecode_DepthBoundary(t *testing.T) {
	// Build an object nested 127 deep (accept) and 128 deep (reject) via
	// the Encode path for symmetry with the decoder under test.
	build := func(depth int) Node {
		leaf := BoolNode(true)
		n := ObjectNode([]Entry{{Key: "k", Value: leaf}})
		for i := 1; i < depth; i++ {
			n = ObjectNode([]Entry{{Key: "k", Value: n}})
		}
		return n
	}

	ok := build(127)
	buf := Encode(&LosslessMail{Sections: []Node{ok}})
	_, err := Decode(buf)
	require.NoError(t, err)

	tooDeep := build(128)
	buf = Encode(&LosslessMail{Sections: []Node{tooDeep}})
	_, err = Decode(buf)
	require.Error(t, err)
	var depthErr *DepthLimitExceeded
	require.ErrorAs(t, err, &depthErr)
	assert.Equal(t, 128, depthErr.Limit)
}

func TestDecode_NaNFloatRejected(t *testing.T) {
	buf := []byte{byte(TagFloat32)}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], 0x7FC00000)
	buf = append(buf, b[:]...)

	_, err := Decode(buf)
	require.Error(t, err)
	var nonFinite *NonFiniteNumber
	require.ErrorAs(t, err, &nonFinite)
}

func TestDecode_InfiniteFloat64Rejected(t *testing.T) {
	node := F64Node(math.Inf(1))
	buf := Encode(&LosslessMail{Sections: []Node{node}})
	_, err := Decode(buf)
	require.Error(t, err)
	var nonFinite *NonFiniteNumber
	require.ErrorAs(t, err, &nonFinite)
}

func TestDecode_EmptyBufferIsUnexpectedEof(t *testing.T) {
	mail, err := Decode([]byte{})
	require.Error(t, err)
	var eofErr0 *UnexpectedEof
	require.ErrorAs(t, err, &eofErr0)
	assert.Nil(t, mail)

	_, err = DecodeOne([]byte{})
	require.Error(t, err)
	var eofErr *UnexpectedEof
	require.ErrorAs(t, err, &eofErr)
}

func TestDecode_LengthOutOfBounds(t *testing.T) {
	buf := []byte{byte(TagString), 0xFF, 0xFF, 0xFF, 0x7F}
	_, err := Decode(buf)
	require.Error(t, err)
	var lenErr *LengthOutOfBounds
	require.ErrorAs(t, err, &lenErr)
}

func TestDecode_TrailingBytes(t *testing.T) {
	buf := append(encodeBoolBuf(true), 0x00)
	_, err := DecodeOne(buf)
	require.Error(t, err)
	var trailing *TrailingBytes
	require.ErrorAs(t, err, &trailing)
	assert.Equal(t, 1, trailing.Remaining)
}

func TestDecode_TruncatedAtEveryOffset(t *testing.T) {
	full := encodeStringBuf("hello world")
	for i := 0; i < len(full); i++ {
		_, err := Decode(full[:i])
		require.Error(t, err, "offset %d should fail", i)
	}
	_, err := Decode(full)
	require.NoError(t, err)
}

func TestDecode_DenseObjectCollapsesToArray(t *testing.T) {
	node := ObjectNode([]Entry{
		{Key: "0", Value: StringNode("a")},
		{Key: "1", Value: StringNode("b")},
	})
	buf := Encode(&LosslessMail{Sections: []Node{node}})
	mail, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []Value{"a", "b"}, mail.Sections[0])
}

func TestDecode_DuplicateKeysLastWins(t *testing.T) {
	node := ObjectNode([]Entry{
		{Key: "x", Value: StringNode("first")},
		{Key: "x", Value: StringNode("second")},
	})
	buf := Encode(&LosslessMail{Sections: []Node{node}})
	mail, err := Decode(buf)
	require.NoError(t, err)
	obj, ok := mail.Sections[0].(*Object)
	require.True(t, ok)
	v, _ := obj.Get("x")
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, obj.Len())
}
