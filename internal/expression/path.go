package expression

import "strings"

// ParsePath reads a directive value such as a repeat target or a condition.
// Both the bare form "content.items" and the delimited form
// "{{ content.items }}" are accepted. Interpolated or malformed values are
// rejected.
func ParsePath(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	tpl := Parse(trimmed)
	switch tpl.Kind {
	case KindExact:
		return tpl.Exact()
	case KindLiteral:
		if len(tpl.Anomalies) > 0 || strings.ContainsAny(trimmed, " \t\n") {
			return "", false
		}
		return trimmed, true
	default:
		return "", false
	}
}

// SplitPath splits a dotted path into segments. Bracket indexes are
// accepted as an alternative spelling: "items[0].title" and "items.0.title"
// are the same path.
func SplitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Namespace returns the first segment of path.
func Namespace(path string) string {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// Namespaces lists the distinct root namespaces referenced by s, in order
// of first appearance.
func Namespaces(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, expr := range Parse(s).Expressions() {
		ns := Namespace(expr)
		if _, ok := seen[ns]; ok || ns == "" {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	return out
}
