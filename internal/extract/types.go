package extract

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/rokbattles/mailcore/internal/codec"
)

// Section holds the extracted fields for a single processor section. A
// section is backed either by a sorted field map (the common case) or by a
// raw array payload, mirroring how the original processors distinguish an
// object section like "metadata" from a list section like "opponents".
type Section struct {
	fields map[string]codec.Value
	array  []codec.Value
	isArr  bool
}

// NewSection returns an empty object-backed section.
func NewSection() *Section {
	return &Section{fields: make(map[string]codec.Value)}
}

// NewArraySection returns a section backed by an array payload.
func NewArraySection(values []codec.Value) *Section {
	return &Section{array: values, isArr: true}
}

// Insert sets a field on an object-backed section, returning the field's
// previous value if one was already present. It panics if the section is
// array-backed, matching the original SDK's behavior.
func (s *Section) Insert(key string, value codec.Value) (codec.Value, bool) {
	if s.isArr {
		panic("extract: attempted to insert into an array section")
	}
	prev, existed := s.fields[key]
	s.fields[key] = value
	return prev, existed
}

// Fields returns the field map of an object-backed section. It panics if the
// section is array-backed.
func (s *Section) Fields() map[string]codec.Value {
	if s.isArr {
		panic("extract: attempted to read fields from an array section")
	}
	return s.fields
}

// Array returns the array payload, and whether the section is array-backed.
func (s *Section) Array() ([]codec.Value, bool) {
	return s.array, s.isArr
}

// MarshalJSON emits an object-backed section with keys in sorted order, and
// an array-backed section as a plain JSON array.
func (s *Section) MarshalJSON() ([]byte, error) {
	if s.isArr {
		return json.Marshal(s.array)
	}
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(s.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProcessedMail is the full processed output: every extracted section keyed
// by its extractor's section name, serialized with section names in sorted
// order.
type ProcessedMail struct {
	sections map[string]*Section
}

// NewProcessedMail returns an empty ProcessedMail.
func NewProcessedMail() *ProcessedMail {
	return &ProcessedMail{sections: make(map[string]*Section)}
}

// Insert adds a section, returning the previous section under that name if
// one existed.
func (p *ProcessedMail) Insert(name string, section *Section) (*Section, bool) {
	prev, existed := p.sections[name]
	p.sections[name] = section
	return prev, existed
}

// Sections returns the underlying section map.
func (p *ProcessedMail) Sections() map[string]*Section {
	return p.sections
}

// MarshalJSON emits sections keyed by name in sorted order.
func (p *ProcessedMail) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(p.sections))
	for k := range p.sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.sections[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
