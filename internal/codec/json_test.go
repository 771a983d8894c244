package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodedMail_JSONRoundTrip(t *testing.T) {
	node := ObjectNode([]Entry{
		{Key: "type", Value: StringNode("Battle")},
		{Key: "time", Value: F64Node(1700000000)},
		{Key: "flag", Value: BoolNode(true)},
	})
	buf := Encode(&LosslessMail{Sections: []Node{node}})
	mail, err := Decode(buf)
	require.NoError(t, err)

	data, err := json.Marshal(mail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sections":[{"type":"Battle","time":1700000000,"flag":true}]}`, string(data))

	var parsed DecodedMail
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed.Sections, 1)
	obj, ok := parsed.Sections[0].(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"type", "time", "flag"}, obj.Keys())
}

func TestDecodedMail_JSONPreservesKeyOrderAndDuplicates(t *testing.T) {
	data := []byte(`{"sections":[{"b":1,"a":2,"b":3}]}`)
	var parsed DecodedMail
	require.NoError(t, json.Unmarshal(data, &parsed))
	obj, ok := parsed.Sections[0].(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())
	v, _ := obj.Get("b")
	assert.Equal(t, float64(3), v)
}

func TestDecodedMail_JSONCollapsesDenseArrays(t *testing.T) {
	data := []byte(`{"sections":[{"0":"a","1":"b"}]}`)
	var parsed DecodedMail
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, []Value{"a", "b"}, parsed.Sections[0])
}
