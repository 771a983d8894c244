package battlev2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// requireContent navigates to the mail's body.content object.
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

func missingField(field string) error {
	return &extract.ExtractError{Kind: extract.MissingField, Field: field}
}

func invalidFieldType(field, expected string) error {
	return &extract.ExtractError{Kind: extract.InvalidFieldType, Field: field, Expected: expected}
}
