package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPreset = errors.New("preset: invalid preset")

// Decode builds a preset from a generic document, as produced by the YAML
// or JSON decoders, and validates its shape. Page ids default to their
// map key.
func Decode(raw any) (*Preset, error) {
	encoded, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return nil, fmt.Errorf("preset: encode document: %w", err)
	}
	return DecodeJSON(encoded)
}

// DecodeJSON parses and validates a JSON preset.
func DecodeJSON(data []byte) (*Preset, error) {
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	for id, page := range p.Pages {
		if page != nil && strings.TrimSpace(page.ID) == "" {
			page.ID = id
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPreset, p.ID, err)
	}
	return &p, nil
}

// stringKeys converts map[any]any values left by some YAML decoders.
func stringKeys(raw any) any {
	switch typed := raw.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = stringKeys(value)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = stringKeys(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = stringKeys(item)
		}
		return out
	default:
		return raw
	}
}
