package battlev2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// MetadataResolver fills the "metadata" section's attack id and the mail
// header fields (id, type, box, time) shared by every kind.
type MetadataResolver struct{}

// NewMetadataResolver returns a new metadata resolver.
func NewMetadataResolver() *MetadataResolver { return &MetadataResolver{} }

// Name returns the step name used for error reporting.
func (MetadataResolver) Name() string { return "metadata" }

// Resolve fills the metadata section from the group's attack id and the
// mail's first section, skipping fields already set by an earlier step.
func (MetadataResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	fields := getOrInsertSection(output, "metadata").Fields()

	if _, exists := fields["attack_id"]; !exists {
		fields["attack_id"] = ctx.AttackID
	}

	if len(ctx.Sections) == 0 {
		return nil
	}
	header, ok := asObject(ctx.Sections[0])
	if !ok {
		return nil
	}
	if id, ok := header.Get("id"); ok {
		if s, ok := asString(id); ok {
			insertStrIfAbsent(fields, "email_id", s, true)
		}
	}
	if typ, ok := header.Get("type"); ok {
		if s, ok := asString(typ); ok {
			insertStrIfAbsent(fields, "email_type", s, true)
		}
	}
	if box, ok := header.Get("box"); ok {
		if s, ok := asString(box); ok {
			insertStrIfAbsent(fields, "email_box", s, true)
		}
	}
	if t, ok := header.Get("time"); ok {
		if n, ok := parseI128ish(t); ok {
			insertI64IfAbsent(fields, "email_time", n, true)
		}
	}
	return nil
}

func getOrInsertSection(output *extract.ProcessedMail, name string) *extract.Section {
	if section, ok := output.Sections()[name]; ok {
		return section
	}
	section := extract.NewSection()
	output.Insert(name, section)
	return section
}

func asObject(v codec.Value) (*codec.Object, bool) {
	obj, ok := v.(*codec.Object)
	return obj, ok
}

func asString(v codec.Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func parseI128ish(v codec.Value) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func insertStrIfAbsent(fields map[string]codec.Value, key, value string, ok bool) {
	if !ok {
		return
	}
	if _, exists := fields[key]; exists {
		return
	}
	fields[key] = value
}

func insertI64IfAbsent(fields map[string]codec.Value, key string, value int64, ok bool) {
	if !ok {
		return
	}
	if _, exists := fields[key]; exists {
		return
	}
	fields[key] = float64(value)
}
