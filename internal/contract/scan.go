package contract

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/goliatone/go-sitekit/internal/binding"
	"github.com/goliatone/go-sitekit/internal/expression"
	"github.com/goliatone/go-sitekit/internal/tree"
)

// Leftover is a string in resolved output that still contains an opening
// delimiter.
type Leftover struct {
	Path       string   `json:"path"`
	Value      string   `json:"value"`
	Namespaces []string `json:"namespaces,omitempty"`
	// Deferred is set when every expression in the value belongs to a
	// namespace reserved for the runtime stage.
	Deferred bool `json:"deferred"`
}

// ScanReport summarises a leftover scan.
type ScanReport struct {
	Leftovers  []Leftover `json:"leftovers"`
	Deferred   int        `json:"deferred"`
	Unexpected int        `json:"unexpected"`
}

// Clean reports whether no unexpected leftovers were found.
func (r *ScanReport) Clean() bool {
	return r.Unexpected == 0
}

// Scan walks every string leaf of document looking for "{{". Leftovers
// whose expressions all sit in a deferred namespace are intentional; any
// other leftover means a binding the contract or the content missed.
func Scan(document any, deferred []string) (*ScanReport, error) {
	return ScanSelect(document, "", deferred)
}

// ScanSelect limits the scan to the parts of document matched by a
// JSONPath selector such as "$.pages.home".
func ScanSelect(document any, selector string, deferred []string) (*ScanReport, error) {
	doc, err := generic(document)
	if err != nil {
		return nil, err
	}

	roots := []any{doc}
	prefixes := []string{"$"}
	if selector = strings.TrimSpace(selector); selector != "" && selector != "$" {
		x, err := jp.ParseString(selector)
		if err != nil {
			return nil, fmt.Errorf("contract: invalid selector %q: %w", selector, err)
		}
		roots = x.Get(doc)
		prefixes = make([]string, len(roots))
		for i := range roots {
			prefixes[i] = fmt.Sprintf("%s#%d", selector, i)
		}
	}

	report := &ScanReport{Leftovers: []Leftover{}}
	for i, root := range roots {
		report.walk(prefixes[i], jp.R(), root, deferred)
	}

	slices.SortFunc(report.Leftovers, func(a, b Leftover) int {
		return strings.Compare(a.Path, b.Path)
	})
	return report, nil
}

// walk visits every string leaf below value. A carried template (a map
// still holding a repeat directive) reserves its alias for the runtime
// stage, so expressions rooted in the alias count as deferred below it.
func (r *ScanReport) walk(prefix string, path jp.Expr, value any, deferred []string) {
	switch typed := value.(type) {
	case string:
		r.add(joinPath(prefix, path), typed, deferred)
	case map[string]any:
		if alias := templateAlias(typed); alias != "" && !slices.Contains(deferred, alias) {
			deferred = append(slices.Clone(deferred), alias)
		}
		for key, item := range typed {
			r.walk(prefix, append(slices.Clip(path), jp.Child(key)), item, deferred)
		}
	case []any:
		for i, item := range typed {
			r.walk(prefix, append(slices.Clip(path), jp.Nth(i)), item, deferred)
		}
	}
}

func templateAlias(node map[string]any) string {
	for _, keys := range [][2]string{{"repeat", "as"}, {binding.RepeatKey, binding.AsKey}} {
		if repeat, _ := node[keys[0]].(string); strings.TrimSpace(repeat) == "" {
			continue
		}
		if alias, _ := node[keys[1]].(string); strings.TrimSpace(alias) != "" {
			return strings.TrimSpace(alias)
		}
	}
	return ""
}

func joinPath(prefix string, path jp.Expr) string {
	rest := strings.TrimPrefix(path.String(), "$")
	if rest != "" && rest[0] != '.' && rest[0] != '[' {
		rest = "." + rest
	}
	return prefix + rest
}

func (r *ScanReport) add(path, value string, deferred []string) {
	if !expression.Contains(value) {
		return
	}
	namespaces := expression.Namespaces(value)
	isDeferred := len(namespaces) > 0
	for _, ns := range namespaces {
		if !slices.Contains(deferred, ns) {
			isDeferred = false
			break
		}
	}
	r.Leftovers = append(r.Leftovers, Leftover{Path: path, Value: value, Namespaces: namespaces, Deferred: isDeferred})
	if isDeferred {
		r.Deferred++
	} else {
		r.Unexpected++
	}
}

// generic round-trips document through JSON so structs, typed slices and
// maps are walked uniformly.
func generic(document any) (any, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("contract: encode document: %w", err)
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("contract: decode document: %w", err)
	}
	return out, nil
}

// Uncovered lists content bindings used by nodes that no declared field
// accounts for. A binding is covered when it equals a declared path, lies
// below one (an element of a declared list) or is an ancestor of one.
// Item scoped bindings are ignored.
func (c *Contract) Uncovered(nodes []*tree.Node) []string {
	declared := make([]string, 0, len(c.Fields))
	for _, field := range c.Fields {
		declared = append(declared, strings.TrimPrefix(field.ContentPath(), "content."))
	}

	seen := map[string]struct{}{}
	var out []string
	for _, path := range contentBindings(nodes) {
		if _, ok := seen[path]; ok || covered(path, declared) {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, "content."+path)
	}
	slices.Sort(out)
	return out
}

func covered(path string, declared []string) bool {
	for _, d := range declared {
		if path == d || strings.HasPrefix(path, d+".") || strings.HasPrefix(d, path+".") {
			return true
		}
	}
	return false
}

// contentBindings collects content-rooted paths, without the namespace,
// from props, styles, labels and directives.
func contentBindings(nodes []*tree.Node) []string {
	var out []string
	collect := func(expr string) {
		segments := expression.SplitPath(expr)
		if len(segments) > 1 && segments[0] == "content" {
			out = append(out, strings.Join(segments[1:], "."))
		}
	}
	var visit func(v any)
	visit = func(v any) {
		switch typed := v.(type) {
		case string:
			for _, expr := range expression.Parse(typed).Expressions() {
				collect(expr)
			}
		case map[string]any:
			for _, item := range typed {
				visit(item)
			}
		case []any:
			for _, item := range typed {
				visit(item)
			}
		}
	}

	tree.Walk(nodes, func(node *tree.Node) bool {
		visit(node.ID)
		visit(node.Label)
		visit(node.Props)
		visit(node.Style)
		for _, directive := range []string{node.Repeat, node.Condition} {
			if expr, ok := expression.ParsePath(directive); ok {
				collect(expr)
			}
		}
		return true
	})
	return out
}
