package tree

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// directive aliases accepted on decode
var aliases = map[string]string{
	"__repeat":    "repeat",
	"__key":       "key",
	"__as":        "as",
	"__condition": "condition",
	"if":          "condition",
}

// Decode builds a Node from a generic map, as produced by the YAML or JSON
// decoders. Unknown node fields are rejected.
func Decode(raw any) (*Node, error) {
	var node Node
	if err := decodeInto(normalize(raw), &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// DecodeList builds a node list from a generic sequence.
func DecodeList(raw any) ([]*Node, error) {
	var nodes []*Node
	if err := decodeInto(normalize(raw), &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// UnmarshalJSON decodes a node through Decode so JSON documents accept the
// same directive aliases as YAML ones.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tree: decode node: %w", err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return fmt.Errorf("tree: node must be an object")
	}
	var node Node
	if err := decodeInto(normalize(raw), &node); err != nil {
		return err
	}
	*n = node
	return nil
}

func decodeInto(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("tree: decode node: %w", err)
	}
	return nil
}

// normalize rewrites directive aliases on node maps, recursing through
// children only. Props keep their keys.
func normalize(raw any) any {
	switch typed := raw.(type) {
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			if alias, ok := aliases[key]; ok {
				key = alias
			}
			if key == "children" {
				value = normalize(value)
			}
			out[key] = value
		}
		return out
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, value := range typed {
			converted[fmt.Sprint(key)] = value
		}
		return normalize(converted)
	default:
		return raw
	}
}
