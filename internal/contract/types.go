package contract

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitekit/internal/compose"
)

// FieldType drives the form control generated for a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldRichText FieldType = "richtext"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldImage    FieldType = "image"
	FieldURL      FieldType = "url"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldList     FieldType = "list"
	FieldObject   FieldType = "object"
)

var fieldTypes = []any{
	FieldText, FieldRichText, FieldNumber, FieldBoolean, FieldImage,
	FieldURL, FieldDate, FieldSelect, FieldList, FieldObject,
}

var pathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(\.[A-Za-z_][A-Za-z0-9_\-]*)*$`)

// Field declares one content value. Path is relative to the section: the
// field "title" in section "hero" is read from content.hero.title.
type Field struct {
	Path       string    `json:"path" yaml:"path"`
	Type       FieldType `json:"type" yaml:"type"`
	Label      string    `json:"label,omitempty" yaml:"label,omitempty"`
	Required   bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default    any       `json:"default,omitempty" yaml:"default,omitempty"`
	Options    []string  `json:"options,omitempty" yaml:"options,omitempty"`
	ItemFields []Field   `json:"item_fields,omitempty" yaml:"item_fields,omitempty"`
	Section    string    `json:"section,omitempty" yaml:"section,omitempty"`
}

// ContentPath returns the absolute binding path of the field.
func (f Field) ContentPath() string {
	if f.Section == "" {
		return "content." + f.Path
	}
	return "content." + f.Section + "." + f.Path
}

// Validate checks one field declaration, recursing into item fields.
func (f Field) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Path, validation.Required, validation.Match(pathPattern)),
		validation.Field(&f.Type, validation.Required, validation.In(fieldTypes...)),
		validation.Field(&f.Options, validation.When(f.Type == FieldSelect, validation.Required)),
		validation.Field(&f.ItemFields),
	)
}

// Clone returns a deep copy.
func (f Field) Clone() Field {
	out := f
	out.Options = append([]string(nil), f.Options...)
	if f.ItemFields != nil {
		out.ItemFields = make([]Field, len(f.ItemFields))
		for i, item := range f.ItemFields {
			out.ItemFields[i] = item.Clone()
		}
	}
	if m, ok := f.Default.(map[string]any); ok {
		out.Default = compose.DeepCopyMap(m)
	}
	return out
}

// Declaration is the field group contributed by one component type.
type Declaration struct {
	Component string         `json:"component" yaml:"component"`
	Section   string         `json:"section" yaml:"section"`
	Label     string         `json:"label,omitempty" yaml:"label,omitempty"`
	Fields    []Field        `json:"fields" yaml:"fields"`
	Sample    map[string]any `json:"sample,omitempty" yaml:"sample,omitempty"`
}

func (d *Declaration) Validate() error {
	if d == nil {
		return nil
	}
	return validation.ValidateStruct(d,
		validation.Field(&d.Component, validation.Required),
		validation.Field(&d.Section, validation.Required, validation.Match(pathPattern)),
		validation.Field(&d.Fields),
	)
}

// SectionName returns the trimmed section.
func (d *Declaration) SectionName() string {
	return strings.TrimSpace(d.Section)
}

// Section groups the fields of one content branch for editors.
type Section struct {
	Name       string   `json:"name"`
	Label      string   `json:"label,omitempty"`
	Components []string `json:"components"`
	Paths      []string `json:"paths"`
}

// Contract is the aggregate of every declaration in use.
type Contract struct {
	Fields   []Field        `json:"fields"`
	Sections []Section      `json:"sections"`
	Sample   map[string]any `json:"sample"`
}

// FieldsIn returns the fields of section in declaration order.
func (c *Contract) FieldsIn(section string) []Field {
	var out []Field
	for _, field := range c.Fields {
		if field.Section == section {
			out = append(out, field)
		}
	}
	return out
}
