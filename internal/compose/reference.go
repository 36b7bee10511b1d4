package compose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Reference is either an inline configuration or a registry base with
// overrides.
type Reference[T any] struct {
	Inline    *T
	Base      string
	Overrides *T
}

type (
	ExperienceRef = Reference[Experience]
	IntroRef      = Reference[Intro]
)

// Inline wraps a ready configuration.
func Inline[T any](value *T) *Reference[T] {
	return &Reference[T]{Inline: value}
}

// Based references a registry entry with optional overrides.
func Based[T any](base string, overrides *T) *Reference[T] {
	return &Reference[T]{Base: base, Overrides: overrides}
}

// IsInline reports whether the reference carries its own configuration.
func (r *Reference[T]) IsInline() bool {
	return r != nil && r.Inline != nil
}

type basedForm[T any] struct {
	Base      string `json:"base"`
	Overrides *T     `json:"overrides,omitempty"`
}

func (r Reference[T]) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	return json.Marshal(basedForm[T]{Base: r.Base, Overrides: r.Overrides})
}

// UnmarshalJSON accepts an object with a "base" key as the based form and
// any other object as inline configuration.
func (r *Reference[T]) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("compose: reference must be an object: %w", err)
	}
	if _, ok := probe["base"]; ok {
		var based basedForm[T]
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&based); err != nil {
			return fmt.Errorf("compose: decode based reference: %w", err)
		}
		if strings.TrimSpace(based.Base) == "" {
			return fmt.Errorf("compose: based reference requires a base id")
		}
		*r = Reference[T]{Base: based.Base, Overrides: based.Overrides}
		return nil
	}
	var inline T
	if err := json.Unmarshal(data, &inline); err != nil {
		return fmt.Errorf("compose: decode inline reference: %w", err)
	}
	*r = Reference[T]{Inline: &inline}
	return nil
}
