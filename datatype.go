package wizard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// truncationMarker is what the upstream token stream leaves behind when a
// field was cut off mid-word.
const truncationMarker = "..."

// FieldRule is one required field of a data type.
//
// A string field is complete when its trimmed value is at least MinLength
// characters long and does not end with "...". An array field is complete
// when it is non-empty; MinLength does not apply to it.
type FieldRule struct {
	Name      string `yaml:"name"`
	MinLength int    `yaml:"min_length"`
}

// DataTypeConfig decides whether a partially streamed item is complete enough
// to surface, and which of its keys survive cleaning. Configs are static
// process-wide data.
type DataTypeConfig struct {
	Name     string      `yaml:"name"`
	IDField  string      `yaml:"id_field"` // dot path, e.g. "cause_id"
	Required []FieldRule `yaml:"required"`
	Optional []string    `yaml:"optional"`
}

// Validate checks the config is usable.
func (c DataTypeConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("data type name is required: %w", ErrValidation)
	}
	if c.IDField == "" {
		return fmt.Errorf("data type %q: id_field is required: %w", c.Name, ErrValidation)
	}
	if len(c.Required) == 0 {
		return fmt.Errorf("data type %q: at least one required field: %w", c.Name, ErrValidation)
	}
	for _, f := range c.Required {
		if f.Name == "" {
			return fmt.Errorf("data type %q: required field without name: %w", c.Name, ErrValidation)
		}
		if f.MinLength < 0 {
			return fmt.Errorf("data type %q: field %q: negative min_length: %w", c.Name, f.Name, ErrValidation)
		}
	}
	return nil
}

// IsComplete reports whether item has a non-empty identifier and every
// required field passes its rule. Non-object items are never complete.
func (c DataTypeConfig) IsComplete(item any) bool {
	obj, ok := item.(map[string]any)
	if !ok {
		return false
	}
	id, ok := LookupPath(obj, c.IDField)
	if !ok || isEmpty(id) {
		return false
	}
	for _, f := range c.Required {
		if !fieldComplete(obj[f.Name], f) {
			return false
		}
	}
	return true
}

func fieldComplete(v any, f FieldRule) bool {
	switch v := v.(type) {
	case string:
		s := strings.TrimSpace(v)
		return utf8.RuneCountInString(s) >= f.MinLength && !strings.HasSuffix(s, truncationMarker)
	case []any:
		return len(v) > 0
	default:
		return false
	}
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// Clean returns a new object holding only the identifier, the required
// fields (strings trimmed), and the optional fields that are present and
// non-null. For a dotted IDField the whole top-level value is kept.
func (c DataTypeConfig) Clean(item map[string]any) map[string]any {
	out := make(map[string]any, 1+len(c.Required)+len(c.Optional))
	idKey, _, _ := strings.Cut(c.IDField, ".")
	if v, ok := item[idKey]; ok {
		out[idKey] = v
	}
	for _, f := range c.Required {
		v, ok := item[f.Name]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			v = strings.TrimSpace(s)
		}
		out[f.Name] = v
	}
	for _, name := range c.Optional {
		if _, taken := out[name]; taken {
			continue
		}
		if v, ok := item[name]; ok && v != nil {
			out[name] = v
		}
	}
	return out
}

// Transform keeps the complete items, cleans them, and applies mapFn to each
// cleaned item when mapFn is non-nil. The input slice is not modified.
func Transform(items []any, cfg DataTypeConfig, mapFn func(map[string]any) any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if !cfg.IsComplete(item) {
			continue
		}
		cleaned := cfg.Clean(item.(map[string]any))
		if mapFn != nil {
			out = append(out, mapFn(cleaned))
			continue
		}
		out = append(out, cleaned)
	}
	return out
}
