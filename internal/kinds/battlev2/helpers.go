package battlev2

import "github.com/rokbattles/mailcore/internal/codec"

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func childObject(obj *codec.Object, key string) (*codec.Object, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*codec.Object)
	return child, ok
}

func asInt64(v codec.Value) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
