package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokbattles/mailcore/internal/codec"
)

func objWith(fields map[string]codec.Value) *codec.Object {
	obj := codec.NewObject()
	for k, v := range fields {
		obj.Set(k, v)
	}
	return obj
}

func TestRequireString(t *testing.T) {
	input := objWith(map[string]codec.Value{"name": "battle"})
	v, err := RequireString(input, "name")
	require.NoError(t, err)
	assert.Equal(t, "battle", v)

	bad := objWith(map[string]codec.Value{"name": float64(42)})
	_, err = RequireString(bad, "name")
	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, InvalidFieldType, ee.Kind)
}

func TestRequireUint64(t *testing.T) {
	input := objWith(map[string]codec.Value{"time": float64(1234)})
	v, err := RequireUint64(input, "time")
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), v)

	bad := objWith(map[string]codec.Value{"time": "soon"})
	_, err = RequireUint64(bad, "time")
	require.Error(t, err)
}

func TestIndexedArrayValues_SkipsIndexPairs(t *testing.T) {
	arr := []codec.Value{float64(1), "a", float64(2), "b"}
	values := ExtractIndexedValues(arr)
	assert.Equal(t, []codec.Value{"a", "b"}, values)
}

func TestIndexedArrayValues_SupportsNumericValues(t *testing.T) {
	arr := []codec.Value{float64(1), float64(10001), float64(2), float64(2)}
	values := ExtractIndexedValues(arr)
	assert.Equal(t, []codec.Value{float64(10001), float64(2)}, values)
}

func TestIndexedArrayValues_KeepsPlainArrays(t *testing.T) {
	arr := []codec.Value{float64(1), float64(2), float64(3)}
	values := ExtractIndexedValues(arr)
	assert.Equal(t, arr, values)
}

func TestIndexedArrayValues_RejectsNonArray(t *testing.T) {
	input := objWith(map[string]codec.Value{"values": "nope"})
	_, err := IndexedArrayValues(input, "values")
	var ee *ExtractError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, InvalidFieldType, ee.Kind)
}
