package tree

import "strings"

// DefaultKeyField names the element field used to derive ids for expanded
// children.
const DefaultKeyField = "id"

// Node is a template node as declared by a preset. A node with Repeat set
// is a template: only its expansions appear in output.
type Node struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Type      string         `json:"type" yaml:"type" mapstructure:"type"`
	Label     string         `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Props     map[string]any `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
	Style     map[string]any `json:"style,omitempty" yaml:"style,omitempty" mapstructure:"style"`
	Children  []*Node        `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
	Repeat    string         `json:"repeat,omitempty" yaml:"repeat,omitempty" mapstructure:"repeat"`
	Key       string         `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	As        string         `json:"as,omitempty" yaml:"as,omitempty" mapstructure:"as"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
}

// IsTemplate reports whether the node carries a repeat directive.
func (n *Node) IsTemplate() bool {
	return n != nil && strings.TrimSpace(n.Repeat) != ""
}

// KeyField returns the declared key field or fallback.
func (n *Node) KeyField(fallback string) string {
	if key := strings.TrimSpace(n.Key); key != "" {
		return key
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return DefaultKeyField
}

// Resolved is a directive-free output node. Repeat, Key, As and Condition
// are only set on nodes left for the deferred pass.
type Resolved struct {
	ID        string         `json:"id,omitempty"`
	Type      string         `json:"type"`
	Label     string         `json:"label,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
	Style     map[string]any `json:"style,omitempty"`
	Children  []*Resolved    `json:"children,omitempty"`
	Repeat    string         `json:"repeat,omitempty"`
	Key       string         `json:"key,omitempty"`
	As        string         `json:"as,omitempty"`
	Condition string         `json:"condition,omitempty"`
}

// Deferred reports whether the node still carries a directive.
func (r *Resolved) Deferred() bool {
	return r.Repeat != "" || r.Condition != ""
}

// Template converts a resolved node back into template form so the
// deferred pass can run it through the resolver again.
func (r *Resolved) Template() *Node {
	if r == nil {
		return nil
	}
	node := &Node{
		ID:        r.ID,
		Type:      r.Type,
		Label:     r.Label,
		Props:     r.Props,
		Style:     r.Style,
		Repeat:    r.Repeat,
		Key:       r.Key,
		As:        r.As,
		Condition: r.Condition,
	}
	if len(r.Children) > 0 {
		node.Children = make([]*Node, 0, len(r.Children))
		for _, child := range r.Children {
			if child != nil {
				node.Children = append(node.Children, child.Template())
			}
		}
	}
	return node
}

// Templates converts a list of resolved nodes.
func Templates(nodes []*Resolved) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		if node != nil {
			out = append(out, node.Template())
		}
	}
	return out
}

// Walk visits nodes depth first. Returning false from fn skips the subtree.
func Walk(nodes []*Node, fn func(node *Node) bool) {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if fn(node) {
			Walk(node.Children, fn)
		}
	}
}

// Types lists the distinct node types under nodes in order of first use.
func Types(nodes []*Node) []string {
	var out []string
	seen := map[string]struct{}{}
	Walk(nodes, func(node *Node) bool {
		if _, ok := seen[node.Type]; !ok && node.Type != "" {
			seen[node.Type] = struct{}{}
			out = append(out, node.Type)
		}
		return true
	})
	return out
}

// CountResolved returns the number of nodes in a resolved forest.
func CountResolved(nodes []*Resolved) int {
	total := 0
	for _, node := range nodes {
		if node != nil {
			total += 1 + CountResolved(node.Children)
		}
	}
	return total
}
