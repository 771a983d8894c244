package codec

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a lossy decoded value: one of bool, float64, string, *Object, or
// []Value. Object fields whose keys form a dense zero-based index set
// ({"0","1",...,"N-1"}) are presented as a []Value instead of an *Object,
// since the wire format has no dedicated array tag and represents arrays
// this way.
type Value interface{}

// Object is an ordered mapping from string keys to lossy values. It
// preserves the wire order of first occurrence; a duplicate key updates the
// value in place rather than appending a second entry, matching the "last
// occurrence wins" rule for lossy decode.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set assigns value to key, appending key to the key order on first use.
func (o *Object) Set(key string, value Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key, if any.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the object's keys in wire order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of distinct keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON emits the object's keys in wire order, since encoding/json
// does not preserve map iteration order on its own.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// asDenseArray reports whether the object's keys are exactly the ASCII
// decimal strings "0".."N-1" with no gaps, in which case it returns the
// equivalent []Value ordered by numeric key.
func (o *Object) asDenseArray() ([]Value, bool) {
	n := len(o.keys)
	if n == 0 {
		return nil, false
	}
	seen := make([]bool, n)
	for _, k := range o.keys {
		idx, ok := parseDenseIndex(k, n)
		if !ok || seen[idx] {
			return nil, false
		}
		seen[idx] = true
	}
	arr := make([]Value, n)
	for _, k := range o.keys {
		idx, _ := parseDenseIndex(k, n)
		v, _ := o.Get(k)
		arr[idx] = v
	}
	return arr, true
}

func parseDenseIndex(key string, n int) (int, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 || idx >= n {
		return 0, false
	}
	if strconv.Itoa(idx) != key {
		return 0, false
	}
	return idx, true
}

// DecodedMail is the JSON form of a lossy-decoded mail: an ordered list of
// top-level tagged values, one per section.
type DecodedMail struct {
	Sections []Value `json:"sections"`
}
