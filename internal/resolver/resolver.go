package resolver

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-sitekit/internal/binding"
	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/expression"
	"github.com/goliatone/go-sitekit/internal/scope"
	"github.com/goliatone/go-sitekit/internal/tree"
)

// DeferredNamespaces are reserved for the runtime expansion stage. An
// expression rooted in one of them is left in place when the current scope
// does not bind it, and only ExpandDeferred resolves it.
var DeferredNamespaces = []string{scope.ItemNamespace}

// Options bounds a resolution.
type Options struct {
	MaxDepth           int
	MaxRepeat          int
	DefaultKeyField    string
	DeferredNamespaces []string
	// BarePaths enables "item.title" as shorthand for "{{ item.title }}"
	// inside repeat scopes.
	BarePaths bool
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:           binding.DefaultMaxDepth,
		MaxRepeat:          binding.DefaultMaxRepeat,
		DefaultKeyField:    tree.DefaultKeyField,
		DeferredNamespaces: append([]string(nil), DeferredNamespaces...),
		BarePaths:          true,
	}
}

// Resolver turns template nodes into resolved nodes. It holds no per-call
// state and may be shared between goroutines.
type Resolver struct {
	compose pass
	runtime pass
}

func New(opts Options) *Resolver {
	defaults := DefaultOptions()
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaults.MaxDepth
	}
	if opts.MaxRepeat <= 0 {
		opts.MaxRepeat = defaults.MaxRepeat
	}
	if strings.TrimSpace(opts.DefaultKeyField) == "" {
		opts.DefaultKeyField = defaults.DefaultKeyField
	}
	if opts.DeferredNamespaces == nil {
		opts.DeferredNamespaces = defaults.DeferredNamespaces
	}

	return &Resolver{
		compose: pass{
			opts: opts,
			binder: binding.New(binding.Options{
				Deferred:  opts.DeferredNamespaces,
				MaxDepth:  opts.MaxDepth,
				MaxRepeat: opts.MaxRepeat,
				BarePaths: opts.BarePaths,
			}),
		},
		runtime: pass{
			opts:   opts,
			binder: binding.New(binding.Options{MaxDepth: opts.MaxDepth, MaxRepeat: opts.MaxRepeat, BarePaths: opts.BarePaths}),
		},
	}
}

// Options returns the effective limits.
func (r *Resolver) Options() Options {
	return r.compose.opts
}

// Binder exposes the composition-time substitutor for callers resolving
// values outside node trees, such as page heads.
func (r *Resolver) Binder() *binding.Substitutor {
	return r.compose.binder
}

// ResolveNodes resolves a forest at composition time. parentID seeds the
// derived ids of expanded children; path prefixes diagnostic locations.
func (r *Resolver) ResolveNodes(nodes []*tree.Node, sc *scope.Scope, parentID, path string, diags *diagnostics.List) []*tree.Resolved {
	return r.compose.list(nodes, sc, parentID, path, diags, 0)
}

// ResolveNode resolves a single root. A template root may yield any number
// of nodes.
func (r *Resolver) ResolveNode(node *tree.Node, sc *scope.Scope, parentID, path string, diags *diagnostics.List) []*tree.Resolved {
	return r.compose.node(node, sc, parentID, path, diags, 0)
}

// ExpandDeferred runs the runtime stage over already resolved nodes.
// Deferred namespaces are no longer reserved, so anything sc cannot
// resolve is reported as unresolved.
func (r *Resolver) ExpandDeferred(nodes []*tree.Resolved, sc *scope.Scope, parentID, path string, diags *diagnostics.List) []*tree.Resolved {
	return r.runtime.list(tree.Templates(nodes), sc, parentID, path, diags, 0)
}

type pass struct {
	opts   Options
	binder *binding.Substitutor
}

func (p pass) list(nodes []*tree.Node, sc *scope.Scope, parentID, path string, diags *diagnostics.List, depth int) []*tree.Resolved {
	out := make([]*tree.Resolved, 0, len(nodes))
	for i, node := range nodes {
		if node == nil {
			continue
		}
		out = append(out, p.node(node, sc, parentID, diagnostics.Index(path, i), diags, depth)...)
	}
	return out
}

func (p pass) node(node *tree.Node, sc *scope.Scope, parentID, path string, diags *diagnostics.List, depth int) []*tree.Resolved {
	if depth >= p.opts.MaxDepth {
		diags.Addf(diagnostics.KindLimitExceeded, path, "", "tree depth exceeds %d, subtree dropped", p.opts.MaxDepth)
		return nil
	}
	if node.IsTemplate() {
		return p.expand(node, sc, parentID, path, diags, depth)
	}
	if resolved, keep := p.single(node, sc, "", parentID, path, diags, depth); keep {
		return []*tree.Resolved{resolved}
	}
	return nil
}

// single resolves one non-template node. When id is empty the node's own
// id is substituted. The boolean is false when a condition pruned it.
func (p pass) single(node *tree.Node, sc *scope.Scope, id, parentID, path string, diags *diagnostics.List, depth int) (*tree.Resolved, bool) {
	condition := ""
	if raw := strings.TrimSpace(node.Condition); raw != "" {
		keep, deferred := p.condition(raw, sc, path, diags)
		if !keep {
			return nil, false
		}
		if deferred {
			condition = raw
		}
	}

	if id == "" && node.ID != "" {
		resolved, _ := p.binder.String(node.ID, sc, diagnostics.Join(path, "id"), diags)
		id = binding.Stringify(resolved)
	}
	label := node.Label
	if label != "" {
		resolved, _ := p.binder.String(label, sc, diagnostics.Join(path, "label"), diags)
		label = binding.Stringify(resolved)
	}

	out := &tree.Resolved{
		ID:        id,
		Type:      node.Type,
		Label:     label,
		Props:     p.binder.Map(node.Props, sc, diagnostics.Join(path, "props"), diags),
		Style:     p.binder.Map(node.Style, sc, diagnostics.Join(path, "style"), diags),
		Condition: condition,
	}

	childParent := id
	if childParent == "" {
		childParent = parentID
	}
	if len(node.Children) > 0 {
		out.Children = p.list(node.Children, sc, childParent, diagnostics.Join(path, "children"), diags, depth+1)
	}
	return out, true
}

// condition evaluates a condition as an exact-match expression. Unresolved
// conditions are falsy. A deferred condition keeps the node and is
// reported back so it can be carried to the runtime stage.
func (p pass) condition(raw string, sc *scope.Scope, path string, diags *diagnostics.List) (keep, deferred bool) {
	expr, ok := expression.ParsePath(raw)
	if !ok {
		diags.Addf(diagnostics.KindParseAnomaly, diagnostics.Join(path, "condition"), raw, "condition is not a single path expression")
		return false, false
	}
	if p.binder.IsDeferred(expr, sc) {
		return true, true
	}
	value, found := sc.Lookup(expr)
	if !found {
		return false, false
	}
	return binding.Truthy(value), false
}

// expand emits one resolved node per element of the repeat target. The
// template itself is never emitted.
func (p pass) expand(node *tree.Node, sc *scope.Scope, parentID, path string, diags *diagnostics.List, depth int) []*tree.Resolved {
	expr, ok := expression.ParsePath(node.Repeat)
	if !ok {
		diags.Addf(diagnostics.KindParseAnomaly, diagnostics.Join(path, "repeat"), node.Repeat, "repeat is not a single path expression")
		return nil
	}
	if p.binder.IsDeferred(expr, sc) {
		if carried, keep := p.carry(node, sc, path, diags, depth); keep {
			return []*tree.Resolved{carried}
		}
		return nil
	}

	target, found := sc.Lookup(expr)
	elements, isSeq := scope.Sequence(target)
	if !found || !isSeq {
		diags.Addf(diagnostics.KindNonSequenceRepeat, path, expr, "repeat target is %s, no children emitted", describe(target, found))
		return nil
	}
	if len(elements) > p.opts.MaxRepeat {
		diags.Addf(diagnostics.KindLimitExceeded, path, expr, "repeat of %d elements exceeds %d, subtree dropped", len(elements), p.opts.MaxRepeat)
		return nil
	}

	keyField := node.KeyField(p.opts.DefaultKeyField)
	keySegments := expression.SplitPath(keyField)
	seen := make(map[string]struct{}, len(elements))
	out := make([]*tree.Resolved, 0, len(elements))

	for i, element := range elements {
		elementPath := diagnostics.Index(path, i)
		id := derivedID(parentID, element, keySegments, i)
		if _, dup := seen[id]; dup {
			fallback := joinID(parentID, fmt.Sprint(i))
			for n := 1; ; n++ {
				if _, taken := seen[fallback]; !taken {
					break
				}
				fallback = joinID(parentID, fmt.Sprintf("%d-%d", i, n))
			}
			diags.Addf(diagnostics.KindDuplicateKey, elementPath, keyField, "derived id %q already used, falling back to %q", id, fallback)
			id = fallback
		}
		seen[id] = struct{}{}

		frame := sc.Push(element, i, node.As)
		if resolved, keep := p.single(node, frame, id, parentID, elementPath, diags, depth+1); keep {
			out = append(out, resolved)
		}
	}
	return out
}

// carry keeps a template whose target lives in a deferred namespace for
// the runtime stage. The item namespace and the template's alias are
// reserved inside the subtree, so their expressions stay verbatim while
// content bindings are resolved now. A condition that does not depend on
// the runtime element is evaluated here and prunes the template.
func (p pass) carry(node *tree.Node, sc *scope.Scope, path string, diags *diagnostics.List, depth int) (*tree.Resolved, bool) {
	if node.Repeat != "" {
		sc = sc.Reserve(scope.ItemNamespace, node.As)
	}

	condition := ""
	if raw := strings.TrimSpace(node.Condition); raw != "" {
		keep, deferred := p.condition(raw, sc, path, diags)
		if !keep {
			return nil, false
		}
		if deferred {
			condition = raw
		}
	}

	out := &tree.Resolved{
		ID:        p.text(node.ID, sc, diagnostics.Join(path, "id"), diags),
		Type:      node.Type,
		Label:     p.text(node.Label, sc, diagnostics.Join(path, "label"), diags),
		Props:     p.binder.Map(node.Props, sc, diagnostics.Join(path, "props"), diags),
		Style:     p.binder.Map(node.Style, sc, diagnostics.Join(path, "style"), diags),
		Repeat:    node.Repeat,
		Key:       node.Key,
		As:        node.As,
		Condition: condition,
	}
	for i, child := range node.Children {
		if child == nil {
			continue
		}
		if depth+1 >= p.opts.MaxDepth {
			diags.Addf(diagnostics.KindLimitExceeded, path, "", "tree depth exceeds %d, subtree dropped", p.opts.MaxDepth)
			break
		}
		if carried, keep := p.carry(child, sc, diagnostics.Index(diagnostics.Join(path, "children"), i), diags, depth+1); keep {
			out.Children = append(out.Children, carried)
		}
	}
	return out, true
}

func (p pass) text(value string, sc *scope.Scope, path string, diags *diagnostics.List) string {
	if value == "" {
		return ""
	}
	resolved, _ := p.binder.String(value, sc, path, diags)
	return binding.Stringify(resolved)
}

func derivedID(parentID string, element any, keySegments []string, index int) string {
	if key, ok := scope.Descend(element, keySegments); ok && key != nil {
		if str := binding.Stringify(key); str != "" {
			return joinID(parentID, str)
		}
	}
	return joinID(parentID, fmt.Sprint(index))
}

func joinID(parentID, suffix string) string {
	if parentID == "" {
		return suffix
	}
	return parentID + "-" + suffix
}

func describe(value any, found bool) string {
	switch {
	case !found:
		return "unresolved"
	case value == nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}
