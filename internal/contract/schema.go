package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-sitekit/internal/expression"
)

const schemaDialect = "https://json-schema.org/draft/2020-12/schema"

var ErrContentInvalid = errors.New("contract: content does not satisfy contract")

// Issue is a single schema violation.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ContentError lists every violation found in a content object.
type ContentError struct {
	Issues []Issue
	Cause  error
}

func (e *ContentError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrContentInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ContentError) Unwrap() error {
	return ErrContentInvalid
}

// JSONSchema renders the contract as a draft 2020-12 schema describing the
// content object. Each section becomes a top-level property.
func (c *Contract) JSONSchema() map[string]any {
	root := objectSchema()
	root["$schema"] = schemaDialect
	for _, section := range c.Sections {
		node := objectSchema()
		if section.Label != "" {
			node["title"] = section.Label
		}
		required := false
		for _, field := range c.FieldsIn(section.Name) {
			place(node, expression.SplitPath(field.Path), fieldSchema(field), field.Required)
			required = required || field.Required
		}
		properties(root)[section.Name] = node
		if required {
			addRequired(root, section.Name)
		}
	}
	return root
}

// Compile builds a validator from the contract schema.
func (c *Contract) Compile() (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(c.JSONSchema())
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("contract.json", bytes.NewReader(encoded)); err != nil {
		return nil, wrapSchemaError(err)
	}
	schema, err := compiler.Compile("contract.json")
	if err != nil {
		return nil, wrapSchemaError(err)
	}
	return schema, nil
}

// ValidateContent checks content against the contract. Violations are
// returned as *ContentError.
func (c *Contract) ValidateContent(content map[string]any) error {
	schema, err := c.Compile()
	if err != nil {
		return err
	}
	return validateWith(schema, content)
}

func validateWith(schema *jsonschema.Schema, content map[string]any) error {
	doc, err := normalizeDocument(content)
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return &ContentError{Issues: issuesOf(err), Cause: err}
	}
	return nil
}

// Issues extracts schema violations from a ValidateContent error.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var contentErr *ContentError
	if errors.As(err, &contentErr) {
		return contentErr.Issues
	}
	return []Issue{{Message: err.Error()}}
}

// normalizeDocument converts typed Go values into the generic JSON shapes
// the validator expects.
func normalizeDocument(content map[string]any) (any, error) {
	if content == nil {
		content = map[string]any{}
	}
	encoded, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("contract: encode content: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("contract: decode content: %w", err)
	}
	return doc, nil
}

func issuesOf(err error) []Issue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []Issue{{Message: err.Error()}}
	}
	var out []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			out = append(out, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return out
}

func wrapSchemaError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "contract schema invalid").
		WithTextCode(schemaCompilationCode)
}

func objectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func properties(schema map[string]any) map[string]any {
	return schema["properties"].(map[string]any)
}

func addRequired(schema map[string]any, name string) {
	required, _ := schema["required"].([]string)
	if slices.Contains(required, name) {
		return
	}
	schema["required"] = append(required, name)
}

// place sets leaf at segments below schema, creating intermediate
// objects. A required leaf makes its ancestors required too.
func place(schema map[string]any, segments []string, leaf map[string]any, required bool) {
	if len(segments) == 0 {
		return
	}
	head := segments[0]
	if required {
		addRequired(schema, head)
	}
	if len(segments) == 1 {
		properties(schema)[head] = leaf
		return
	}
	child, ok := properties(schema)[head].(map[string]any)
	if !ok || child["type"] != "object" {
		child = objectSchema()
		properties(schema)[head] = child
	}
	place(child, segments[1:], leaf, required)
}

func fieldSchema(field Field) map[string]any {
	var out map[string]any
	switch field.Type {
	case FieldNumber:
		out = map[string]any{"type": "number"}
	case FieldBoolean:
		out = map[string]any{"type": "boolean"}
	case FieldSelect:
		out = map[string]any{"type": "string", "enum": append([]string(nil), field.Options...)}
	case FieldList:
		out = map[string]any{"type": "array", "items": itemSchema(field.ItemFields)}
	case FieldObject:
		out = itemSchema(field.ItemFields)
	default:
		out = map[string]any{"type": "string"}
	}
	if field.Label != "" {
		out["title"] = field.Label
	}
	return out
}

func itemSchema(fields []Field) map[string]any {
	out := objectSchema()
	for _, field := range fields {
		place(out, expression.SplitPath(field.Path), fieldSchema(field), field.Required)
	}
	return out
}
