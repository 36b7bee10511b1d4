package binding

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/expression"
	"github.com/goliatone/go-sitekit/internal/scope"
)

// Keys of a props-level data template. A map carrying RepeatKey expands
// into one copy of the remaining entries per element of the target. When
// KeyKey names an element field, each copy also gets that field's value
// under ElementKey, or its index when the element has none.
const (
	RepeatKey  = "__repeat"
	KeyKey     = "__key"
	AsKey      = "__as"
	ElementKey = "key"
)

var barePathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(\.[A-Za-z0-9_$\-]+)+$`)

const (
	DefaultMaxDepth  = 64
	DefaultMaxRepeat = 1000
)

// Options configures a Substitutor.
type Options struct {
	// Deferred lists namespaces left verbatim when no frame binds them.
	Deferred  []string
	MaxDepth  int
	MaxRepeat int
	// BarePaths treats an undelimited string such as "item.title" as an
	// exact-match binding when its namespace is bound by an item frame and
	// the path resolves. Other strings stay literal.
	BarePaths bool
}

// Substitutor resolves binding expressions inside arbitrary values. It is
// stateless between calls and safe for concurrent use.
type Substitutor struct {
	deferred  map[string]struct{}
	maxDepth  int
	maxRepeat int
	barePaths bool
}

func New(opts Options) *Substitutor {
	s := &Substitutor{
		deferred:  make(map[string]struct{}, len(opts.Deferred)),
		maxDepth:  opts.MaxDepth,
		maxRepeat: opts.MaxRepeat,
		barePaths: opts.BarePaths,
	}
	for _, ns := range opts.Deferred {
		if ns = strings.TrimSpace(ns); ns != "" {
			s.deferred[ns] = struct{}{}
		}
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxDepth
	}
	if s.maxRepeat <= 0 {
		s.maxRepeat = DefaultMaxRepeat
	}
	return s
}

// IsDeferred reports whether expr belongs to a namespace sc reserves, or to
// a deferred namespace that sc does not bind yet.
func (s *Substitutor) IsDeferred(expr string, sc *scope.Scope) bool {
	ns := expression.Namespace(expr)
	if sc.IsReserved(ns) {
		return true
	}
	if _, ok := s.deferred[ns]; !ok {
		return false
	}
	return !sc.Has(ns)
}

// Value returns a resolved deep copy of v. The boolean is false when v was
// an exact-match expression that did not resolve; callers omit such values.
func (s *Substitutor) Value(v any, sc *scope.Scope, path string, diags *diagnostics.List) (any, bool) {
	return s.value(v, sc, path, diags, 0)
}

// Map resolves every entry of m, dropping undefined ones.
func (s *Substitutor) Map(m map[string]any, sc *scope.Scope, path string, diags *diagnostics.List) map[string]any {
	if m == nil {
		return nil
	}
	resolved, _ := s.value(m, sc, path, diags, 0)
	out, _ := resolved.(map[string]any)
	return out
}

func (s *Substitutor) value(v any, sc *scope.Scope, path string, diags *diagnostics.List, depth int) (any, bool) {
	if depth > s.maxDepth {
		diags.Addf(diagnostics.KindLimitExceeded, path, "", "value nesting exceeds %d levels", s.maxDepth)
		return nil, false
	}

	switch typed := v.(type) {
	case string:
		return s.String(typed, sc, path, diags)
	case map[string]any:
		if _, ok := typed[RepeatKey]; ok {
			return s.expandData(typed, sc, path, diags, depth)
		}
		out := make(map[string]any, len(typed))
		for _, key := range slices.Sorted(maps.Keys(typed)) {
			if resolved, ok := s.value(typed[key], sc, diagnostics.Join(path, key), diags, depth+1); ok {
				out[key] = resolved
			}
		}
		return out, true
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i], _ = s.value(item, sc, diagnostics.Index(path, i), diags, depth+1)
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i], _ = s.value(item, sc, diagnostics.Index(path, i), diags, depth+1)
		}
		return out, true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i], _ = s.String(item, sc, diagnostics.Index(path, i), diags)
		}
		return out, true
	case map[string]string:
		out := make(map[string]any, len(typed))
		for _, key := range slices.Sorted(maps.Keys(typed)) {
			if resolved, ok := s.String(typed[key], sc, diagnostics.Join(path, key), diags); ok {
				out[key] = resolved
			}
		}
		return out, true
	default:
		return typed, true
	}
}

// String resolves one string. Exact-match strings yield the native value,
// interpolated strings yield a string with unresolved parts left empty, and
// literal strings are returned as they are.
func (s *Substitutor) String(str string, sc *scope.Scope, path string, diags *diagnostics.List) (any, bool) {
	if !strings.Contains(str, expression.OpenDelim) && !strings.Contains(str, expression.CloseDelim) {
		if s.barePaths && barePathPattern.MatchString(str) && sc.IsItem(expression.Namespace(str)) {
			if resolved, ok := sc.Lookup(str); ok {
				return s.clone(resolved, path, diags, 0)
			}
		}
		return str, true
	}

	tpl := expression.Parse(str)
	for _, anomaly := range tpl.Anomalies {
		diags.Addf(diagnostics.KindParseAnomaly, path, str, "%s", anomaly)
	}

	switch tpl.Kind {
	case expression.KindExact:
		expr, _ := tpl.Exact()
		if s.IsDeferred(expr, sc) {
			return str, true
		}
		resolved, ok := sc.Lookup(expr)
		if !ok {
			diags.Addf(diagnostics.KindUnresolvedBinding, path, expr, "expression did not resolve")
			return nil, false
		}
		return s.clone(resolved, path, diags, 0)
	case expression.KindInterpolated:
		var b strings.Builder
		for _, seg := range tpl.Segments {
			if !seg.Expr {
				b.WriteString(seg.Text)
				continue
			}
			if s.IsDeferred(seg.Text, sc) {
				b.WriteString(expression.OpenDelim + " " + seg.Text + " " + expression.CloseDelim)
				continue
			}
			resolved, ok := sc.Lookup(seg.Text)
			if !ok {
				diags.Addf(diagnostics.KindUnresolvedBinding, path, seg.Text, "expression did not resolve, rendered empty")
				continue
			}
			b.WriteString(Stringify(resolved))
		}
		return b.String(), true
	default:
		return str, true
	}
}

// expandData turns a data template into a sequence with one copy of the
// template body per element of the target.
func (s *Substitutor) expandData(tpl map[string]any, sc *scope.Scope, path string, diags *diagnostics.List, depth int) (any, bool) {
	raw, _ := tpl[RepeatKey].(string)
	expr, ok := expression.ParsePath(raw)
	if !ok {
		diags.Addf(diagnostics.KindParseAnomaly, path, raw, "data repeat target is not a path expression")
		return []any{}, true
	}
	if s.IsDeferred(expr, sc) {
		return s.clone(tpl, path, diags, 0)
	}

	target, found := sc.Lookup(expr)
	elements, isSeq := scope.Sequence(target)
	if !found || !isSeq {
		diags.Addf(diagnostics.KindNonSequenceRepeat, path, expr, "data repeat target is %s", describe(target, found))
		return []any{}, true
	}
	if len(elements) > s.maxRepeat {
		diags.Addf(diagnostics.KindLimitExceeded, path, expr, "data repeat of %d elements exceeds %d", len(elements), s.maxRepeat)
		return []any{}, true
	}

	alias, _ := tpl[AsKey].(string)
	keyField, _ := tpl[KeyKey].(string)
	keySegments := expression.SplitPath(strings.TrimSpace(keyField))
	body := make(map[string]any, len(tpl))
	for key, value := range tpl {
		switch key {
		case RepeatKey, KeyKey, AsKey:
		default:
			body[key] = value
		}
	}

	out := make([]any, len(elements))
	for i, element := range elements {
		entry, _ := s.value(body, sc.Push(element, i, alias), diagnostics.Index(path, i), diags, depth+1)
		if fields, ok := entry.(map[string]any); ok && len(keySegments) > 0 {
			if _, taken := fields[ElementKey]; !taken {
				fields[ElementKey] = elementKey(element, keySegments, i)
			}
		}
		out[i] = entry
	}
	return out, true
}

func elementKey(element any, segments []string, index int) string {
	if key, ok := scope.Descend(element, segments); ok && key != nil {
		if str := Stringify(key); str != "" {
			return str
		}
	}
	return strconv.Itoa(index)
}

// Clone returns a deep copy of v without resolving anything.
func (s *Substitutor) Clone(v any, path string, diags *diagnostics.List) (any, bool) {
	return s.clone(v, path, diags, 0)
}

// clone deep copies resolved content so output trees never alias the
// caller's data. Self-referencing content fails closed at maxDepth.
func (s *Substitutor) clone(v any, path string, diags *diagnostics.List, depth int) (any, bool) {
	if depth > s.maxDepth {
		diags.Addf(diagnostics.KindLimitExceeded, path, "", "resolved value nesting exceeds %d levels", s.maxDepth)
		return nil, false
	}
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			cloned, ok := s.clone(item, path, diags, depth+1)
			if !ok {
				return nil, false
			}
			out[key] = cloned
		}
		return out, true
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			cloned, ok := s.clone(item, path, diags, depth+1)
			if !ok {
				return nil, false
			}
			out[i] = cloned
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			cloned, ok := s.clone(item, path, diags, depth+1)
			if !ok {
				return nil, false
			}
			out[i] = cloned
		}
		return out, true
	case []string:
		return slices.Clone(typed), true
	case map[string]string:
		return maps.Clone(typed), true
	default:
		return typed, true
	}
}

// Stringify renders a resolved value for interpolation. Maps and sequences
// are rendered as JSON.
func Stringify(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", typed)
	case json.Number:
		return typed.String()
	case fmt.Stringer:
		return typed.String()
	}
	if _, isSeq := scope.Sequence(v); isSeq {
		return marshal(v)
	}
	if _, isMap := v.(map[string]any); isMap {
		return marshal(v)
	}
	return fmt.Sprint(v)
}

func marshal(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

func describe(value any, found bool) string {
	if !found {
		return "unresolved"
	}
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%T", value)
}
