package extract

import "github.com/rokbattles/mailcore/internal/codec"

// RequireObject requires that value is a decoded object and returns it.
func RequireObject(value codec.Value) (*codec.Object, error) {
	obj, ok := value.(*codec.Object)
	if !ok {
		return nil, errNotObject()
	}
	return obj, nil
}

// RequireString requires that field on input is a string and returns it.
func RequireString(input codec.Value, field string) (string, error) {
	obj, err := RequireObject(input)
	if err != nil {
		return "", err
	}
	v, ok := obj.Get(field)
	if !ok {
		return "", errMissingField(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", errInvalidFieldType(field, "string")
	}
	return s, nil
}

// RequireNumber requires that field on input is a number and returns it as
// the wire's native float64.
func RequireNumber(input codec.Value, field string) (float64, error) {
	obj, err := RequireObject(input)
	if err != nil {
		return 0, err
	}
	v, ok := obj.Get(field)
	if !ok {
		return 0, errMissingField(field)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errInvalidFieldType(field, "number")
	}
	return f, nil
}

// RequireUint64 requires that field on input is a non-negative whole number
// and returns it as a uint64.
func RequireUint64(input codec.Value, field string) (uint64, error) {
	f, err := RequireNumber(input, field)
	if err != nil {
		if ee, ok := err.(*ExtractError); ok && ee.Kind == InvalidFieldType {
			return 0, errInvalidFieldType(field, "unsigned integer")
		}
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, errInvalidFieldType(field, "unsigned integer")
	}
	return uint64(f), nil
}

// RequireInt64 requires that field on input is a whole number and returns it
// as an int64.
func RequireInt64(input codec.Value, field string) (int64, error) {
	f, err := RequireNumber(input, field)
	if err != nil {
		if ee, ok := err.(*ExtractError); ok && ee.Kind == InvalidFieldType {
			return 0, errInvalidFieldType(field, "integer")
		}
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, errInvalidFieldType(field, "integer")
	}
	return int64(f), nil
}

// RequireBool requires that field on input is a bool and returns it.
func RequireBool(input codec.Value, field string) (bool, error) {
	obj, err := RequireObject(input)
	if err != nil {
		return false, err
	}
	v, ok := obj.Get(field)
	if !ok {
		return false, errMissingField(field)
	}
	b, ok := v.(bool)
	if !ok {
		return false, errInvalidFieldType(field, "bool")
	}
	return b, nil
}

// IndexedArrayValues reads an array field, skipping index markers if the
// array is laid out as alternating index/value pairs (the wire format's way
// of representing sparse or reordered arrays: [i0, v0, i1, v1, ...]).
func IndexedArrayValues(input codec.Value, field string) ([]codec.Value, error) {
	obj, err := RequireObject(input)
	if err != nil {
		return nil, err
	}
	v, ok := obj.Get(field)
	if !ok {
		return nil, errMissingField(field)
	}
	arr, ok := v.([]codec.Value)
	if !ok {
		return nil, errInvalidFieldType(field, "array")
	}
	return ExtractIndexedValues(arr), nil
}

// ExtractIndexedValues applies the indexed-array convention directly to an
// already-resolved array value.
func ExtractIndexedValues(arr []codec.Value) []codec.Value {
	if !isIndexedArray(arr) {
		return arr
	}
	values := make([]codec.Value, 0, len(arr)/2)
	for i := 1; i < len(arr); i += 2 {
		values = append(values, arr[i])
	}
	return values
}

// isIndexedArray reports whether arr follows the [i0, v0, i1, v1, ...]
// convention: an even length of at least 2, whose first index is 0 or 1 and
// increments by exactly 1 at every even offset.
func isIndexedArray(arr []codec.Value) bool {
	if len(arr) < 2 || len(arr)%2 != 0 {
		return false
	}
	expected, ok := asIndex(arr[0])
	if !ok || (expected != 0 && expected != 1) {
		return false
	}
	for i := 0; i < len(arr); i += 2 {
		idx, ok := asIndex(arr[i])
		if !ok || idx != expected {
			return false
		}
		expected++
	}
	return true
}

func asIndex(v codec.Value) (uint64, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 || f != float64(uint64(f)) {
		return 0, false
	}
	return uint64(f), true
}
