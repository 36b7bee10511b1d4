package contract

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/expression"
)

const (
	DuplicateFieldCode     = "CONTRACT_DUPLICATE_FIELD"
	invalidDeclarationCode = "CONTRACT_DECLARATION_INVALID"
	schemaCompilationCode  = "CONTRACT_SCHEMA_INVALID"
)

var (
	ErrDuplicateField     = errors.New("contract: duplicate field path in section")
	ErrInvalidDeclaration = errors.New("contract: invalid declaration")
)

// Aggregate merges declarations into one contract. Sections appear in
// the order they are first declared. A path declared twice within a
// section fails the aggregation; the same path in different sections is
// fine. The sample is a shallow union per section with field defaults
// filled in where no sample value exists.
func Aggregate(decls ...*Declaration) (*Contract, error) {
	out := &Contract{Fields: []Field{}, Sections: []Section{}, Sample: map[string]any{}}
	index := map[string]int{}
	owners := map[string]map[string]string{}

	for _, decl := range decls {
		if decl == nil {
			continue
		}
		if err := decl.Validate(); err != nil {
			return nil, goerrors.Wrap(fmt.Errorf("%w: component %q: %v", ErrInvalidDeclaration, decl.Component, err),
				goerrors.CategoryValidation, "contract declaration invalid").
				WithTextCode(invalidDeclarationCode)
		}

		name := decl.SectionName()
		pos, ok := index[name]
		if !ok {
			pos = len(out.Sections)
			index[name] = pos
			out.Sections = append(out.Sections, Section{Name: name, Label: decl.Label, Components: []string{}, Paths: []string{}})
			owners[name] = map[string]string{}
		}
		section := &out.Sections[pos]
		section.Components = append(section.Components, decl.Component)
		if section.Label == "" {
			section.Label = decl.Label
		}

		for _, field := range decl.Fields {
			path := strings.TrimSpace(field.Path)
			if owner, dup := owners[name][path]; dup {
				return nil, goerrors.Wrap(
					fmt.Errorf("%w: section %q path %q declared by %s and %s", ErrDuplicateField, name, path, owner, decl.Component),
					goerrors.CategoryValidation, "contract aggregation failed").
					WithTextCode(DuplicateFieldCode)
			}
			owners[name][path] = decl.Component

			entry := field.Clone()
			entry.Path = path
			entry.Section = name
			out.Fields = append(out.Fields, entry)
			section.Paths = append(section.Paths, path)
		}

		if len(decl.Sample) > 0 {
			sample := sectionSample(out.Sample, name)
			for key, value := range compose.DeepCopyMap(decl.Sample) {
				sample[key] = value
			}
		}
	}

	for _, field := range out.Fields {
		if field.Default == nil {
			continue
		}
		fillDefault(sectionSample(out.Sample, field.Section), expression.SplitPath(field.Path), field.Default)
	}
	return out, nil
}

func sectionSample(sample map[string]any, section string) map[string]any {
	if existing, ok := sample[section].(map[string]any); ok {
		return existing
	}
	created := map[string]any{}
	sample[section] = created
	return created
}

// fillDefault sets value at segments unless something is already there.
func fillDefault(target map[string]any, segments []string, value any) {
	if len(segments) == 0 {
		return
	}
	head := segments[0]
	if len(segments) == 1 {
		if _, exists := target[head]; !exists {
			target[head] = cloneDefault(value)
		}
		return
	}
	next, ok := target[head].(map[string]any)
	if !ok {
		if _, exists := target[head]; exists {
			return
		}
		next = map[string]any{}
		target[head] = next
	}
	fillDefault(next, segments[1:], value)
}

func cloneDefault(value any) any {
	if m, ok := value.(map[string]any); ok {
		return compose.DeepCopyMap(m)
	}
	if list, ok := value.([]any); ok {
		wrapped := compose.DeepCopyMap(map[string]any{"v": list})
		return wrapped["v"]
	}
	return value
}
