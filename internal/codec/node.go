package codec

import (
	"encoding/json"
	"fmt"
)

// Entry is one key/tagged-value pair inside a lossless object node,
// preserved in exact wire order including duplicate keys.
type Entry struct {
	Key   string
	Value Node
}

// Node is a lossless decoded value: it records its own wire Tag so that
// f32 and f64 remain distinguishable and Encode can reproduce the original
// bytes exactly.
type Node struct {
	Tag Tag
	B   bool
	F32 float32
	F64 float64
	Str string
	Obj []Entry
}

// BoolNode, F32Node, F64Node, StringNode, and ObjectNode construct nodes of
// the corresponding wire tag.
func BoolNode(v bool) Node        { return Node{Tag: TagBool, B: v} }
func F32Node(v float32) Node      { return Node{Tag: TagFloat32, F32: v} }
func F64Node(v float64) Node      { return Node{Tag: TagFloat64, F64: v} }
func StringNode(v string) Node    { return Node{Tag: TagString, Str: v} }
func ObjectNode(e []Entry) Node   { return Node{Tag: TagObject, Obj: e} }

type taggedJSON struct {
	Tag   string          `json:"tag"`
	Value json.RawMessage `json:"value"`
}

type entryJSON struct {
	Key   string `json:"key"`
	Value Node   `json:"value"`
}

// MarshalJSON emits the lossless JSON form: {"tag": "...", "value": ...}.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.Tag {
	case TagBool:
		v, err := json.Marshal(n.B)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedJSON{Tag: "bool", Value: v})
	case TagFloat32:
		v, err := json.Marshal(n.F32)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedJSON{Tag: "f32", Value: v})
	case TagFloat64:
		v, err := json.Marshal(n.F64)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedJSON{Tag: "f64", Value: v})
	case TagString:
		v, err := json.Marshal(n.Str)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedJSON{Tag: "string", Value: v})
	case TagObject:
		entries := make([]entryJSON, len(n.Obj))
		for i, e := range n.Obj {
			entries[i] = entryJSON{Key: e.Key, Value: e.Value}
		}
		v, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedJSON{Tag: "object", Value: v})
	default:
		return nil, fmt.Errorf("codec: node has unknown tag %d", n.Tag)
	}
}

// UnmarshalJSON parses the lossless JSON form back into a Node.
func (n *Node) UnmarshalJSON(data []byte) error {
	var tj taggedJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	switch tj.Tag {
	case "bool":
		var v bool
		if err := json.Unmarshal(tj.Value, &v); err != nil {
			return err
		}
		*n = BoolNode(v)
	case "f32":
		var v float32
		if err := json.Unmarshal(tj.Value, &v); err != nil {
			return err
		}
		*n = F32Node(v)
	case "f64":
		var v float64
		if err := json.Unmarshal(tj.Value, &v); err != nil {
			return err
		}
		*n = F64Node(v)
	case "string":
		var v string
		if err := json.Unmarshal(tj.Value, &v); err != nil {
			return err
		}
		*n = StringNode(v)
	case "object":
		var entries []entryJSON
		if err := json.Unmarshal(tj.Value, &entries); err != nil {
			return err
		}
		obj := make([]Entry, len(entries))
		for i, e := range entries {
			obj[i] = Entry{Key: e.Key, Value: e.Value}
		}
		*n = ObjectNode(obj)
	default:
		return fmt.Errorf("codec: unknown lossless tag %q", tj.Tag)
	}
	return nil
}

// Equal reports whether two nodes are structurally and bit-for-bit equal,
// including object key order and duplicate keys.
func (n Node) Equal(other Node) bool {
	if n.Tag != other.Tag {
		return false
	}
	switch n.Tag {
	case TagBool:
		return n.B == other.B
	case TagFloat32:
		return n.F32 == other.F32
	case TagFloat64:
		return n.F64 == other.F64
	case TagString:
		return n.Str == other.Str
	case TagObject:
		if len(n.Obj) != len(other.Obj) {
			return false
		}
		for i := range n.Obj {
			if n.Obj[i].Key != other.Obj[i].Key {
				return false
			}
			if !n.Obj[i].Value.Equal(other.Obj[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
