// Package barcanyonkillboss extracts sections from decoded BarCanyonKillBoss
// mail.
package barcanyonkillboss

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// requireContent navigates to the mail's body.content object, the root from
// which every BarCanyonKillBoss extractor reads.
func requireContent(input codec.Value) (*codec.Object, error) {
	root, err := extract.RequireObject(input)
	if err != nil {
		return nil, err
	}
	body, err := requireChildObject(root, "body")
	if err != nil {
		return nil, err
	}
	return requireChildObject(body, "content")
}

func requireChildObject(object *codec.Object, field string) (*codec.Object, error) {
	value, ok := object.Get(field)
	if !ok {
		return nil, missingField(field)
	}
	obj, ok := value.(*codec.Object)
	if !ok {
		return nil, invalidFieldType(field, "object")
	}
	return obj, nil
}

func requireU64Field(object *codec.Object, field string) (uint64, error) {
	value, ok := object.Get(field)
	if !ok {
		return 0, missingField(field)
	}
	f, ok := value.(float64)
	if !ok || f < 0 || f != float64(uint64(f)) {
		return 0, invalidFieldType(field, "unsigned integer")
	}
	return uint64(f), nil
}

func requireStringField(object *codec.Object, field string) (string, error) {
	value, ok := object.Get(field)
	if !ok {
		return "", missingField(field)
	}
	s, ok := value.(string)
	if !ok {
		return "", invalidFieldType(field, "string")
	}
	return s, nil
}

// requireNumberField reads a numeric field, preserving its float64
// representation instead of truncating it.
func requireNumberField(object *codec.Object, field string) (codec.Value, error) {
	value, ok := object.Get(field)
	if !ok {
		return nil, missingField(field)
	}
	if _, ok := value.(float64); !ok {
		return nil, invalidFieldType(field, "number")
	}
	return value, nil
}

func missingField(field string) error {
	return &extract.ExtractError{Kind: extract.MissingField, Field: field}
}

func invalidFieldType(field, expected string) error {
	return &extract.ExtractError{Kind: extract.InvalidFieldType, Field: field, Expected: expected}
}
