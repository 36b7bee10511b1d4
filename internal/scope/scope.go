package scope

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitekit/internal/expression"
)

const (
	ContentNamespace = "content"
	ItemNamespace    = "item"

	// IndexField is the ordinal of the element bound by an item frame.
	IndexField = "$index"
	// ParentField steps from an item frame to the enclosing item frame.
	ParentField = "$parent"
)

// Scope is an immutable stack of named frames. The bottom frame binds
// "content"; every Push adds a frame binding "item" and an optional alias.
// Pushing returns a new Scope, the receiver is never modified.
type Scope struct {
	parent   *Scope
	names    []string
	value    any
	index    int
	item     bool
	reserved bool
}

// New returns a scope whose only frame binds content.
func New(content any) *Scope {
	return &Scope{names: []string{ContentNamespace}, value: content}
}

// Push binds value as "item" (and alias, when given) at ordinal index.
func (s *Scope) Push(value any, index int, alias string) *Scope {
	names := []string{ItemNamespace}
	if alias = strings.TrimSpace(alias); alias != "" && alias != ItemNamespace {
		names = append(names, alias)
	}
	return &Scope{parent: s, names: names, value: value, index: index, item: true}
}

// Bind pushes a plain named frame. Runtime callers use it to expose
// additional namespaces to the deferred pass.
func (s *Scope) Bind(name string, value any) *Scope {
	return &Scope{parent: s, names: []string{name}, value: value}
}

// Reserve pushes a frame claiming names for a later stage. Expressions
// rooted in a reserved name never resolve against this scope, even when an
// outer frame binds the same name.
func (s *Scope) Reserve(names ...string) *Scope {
	var claimed []string
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			claimed = append(claimed, name)
		}
	}
	if len(claimed) == 0 {
		return s
	}
	return &Scope{parent: s, names: claimed, reserved: true}
}

// Depth counts item frames.
func (s *Scope) Depth() int {
	depth := 0
	for frame := s; frame != nil; frame = frame.parent {
		if frame.item {
			depth++
		}
	}
	return depth
}

// Has reports whether any frame binds namespace.
func (s *Scope) Has(namespace string) bool {
	frame := s.find(namespace)
	return frame != nil && !frame.reserved
}

// IsReserved reports whether the nearest frame naming namespace reserves it.
func (s *Scope) IsReserved(namespace string) bool {
	frame := s.find(namespace)
	return frame != nil && frame.reserved
}

// IsItem reports whether namespace is bound by an item frame.
func (s *Scope) IsItem(namespace string) bool {
	frame := s.find(namespace)
	return frame != nil && frame.item
}

// Lookup resolves a dotted path. The first segment picks the nearest frame
// binding that name; the rest descend through maps and sequences. A false
// result means unresolved.
func (s *Scope) Lookup(path string) (any, bool) {
	segments := expression.SplitPath(path)
	if len(segments) == 0 {
		return nil, false
	}
	frame := s.find(segments[0])
	if frame == nil || frame.reserved {
		return nil, false
	}

	rest := segments[1:]
	for frame.item && len(rest) > 0 && rest[0] == ParentField {
		if frame = frame.enclosingItem(); frame == nil {
			return nil, false
		}
		rest = rest[1:]
	}
	if frame.item && len(rest) > 0 && rest[0] == IndexField {
		if len(rest) > 1 {
			return nil, false
		}
		return frame.index, true
	}
	return Descend(frame.value, rest)
}

func (s *Scope) find(name string) *Scope {
	for frame := s; frame != nil; frame = frame.parent {
		for _, bound := range frame.names {
			if bound == name {
				return frame
			}
		}
	}
	return nil
}

func (s *Scope) enclosingItem() *Scope {
	for frame := s.parent; frame != nil; frame = frame.parent {
		if frame.item {
			return frame
		}
	}
	return nil
}

// Descend walks segments through value. Reserved "$" segments never match
// data keys.
func Descend(value any, segments []string) (any, bool) {
	current := value
	for _, segment := range segments {
		if strings.HasPrefix(segment, "$") {
			return nil, false
		}
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, segment string) (any, bool) {
	switch typed := current.(type) {
	case nil:
		return nil, false
	case map[string]any:
		value, ok := typed[segment]
		return value, ok
	case []any:
		idx, ok := index(segment, len(typed))
		if !ok {
			return nil, false
		}
		return typed[idx], true
	case map[string]string:
		value, ok := typed[segment]
		return value, ok
	}

	rv := reflect.ValueOf(current)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := index(segment, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		return nil, false
	}
}

func index(segment string, length int) (int, bool) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

// Sequence converts value to []any when it is a slice or array. Strings and
// byte slices are not sequences.
func Sequence(value any) ([]any, bool) {
	switch typed := value.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return typed, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
