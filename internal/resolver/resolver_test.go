package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/scope"
	"github.com/goliatone/go-sitekit/internal/tree"
)

func newResolver() *Resolver {
	return New(DefaultOptions())
}

func TestRepeatExpandsCardsWithDerivedIDs(t *testing.T) {
	node := &tree.Node{
		Type:   "Card",
		Repeat: "content.items",
		Key:    "id",
		Props:  map[string]any{"title": "item.title"},
	}
	content := map[string]any{
		"items": []any{
			map[string]any{"id": "a", "title": "Alpha"},
			map[string]any{"id": "b", "title": "Beta"},
		},
	}
	diags := diagnostics.NewList(nil)

	got := newResolver().ResolveNode(node, scope.New(content), "parent", "", diags)

	assert.Equal(t, []*tree.Resolved{
		{ID: "parent-a", Type: "Card", Props: map[string]any{"title": "Alpha"}},
		{ID: "parent-b", Type: "Card", Props: map[string]any{"title": "Beta"}},
	}, got)
	assert.Zero(t, diags.Len())
}

func TestRepeatFallsBackToIndexAndReportsDuplicates(t *testing.T) {
	node := &tree.Node{Type: "Row", Repeat: "{{ content.rows }}", Props: map[string]any{"n": "{{ item.$index }}"}}
	content := map[string]any{
		"rows": []any{
			map[string]any{"id": "x"},
			map[string]any{"name": "no id"},
			map[string]any{"id": "x"},
		},
	}
	diags := diagnostics.NewList(nil)

	got := newResolver().ResolveNode(node, scope.New(content), "list", "sections[0]", diags)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"list-x", "list-1", "list-2"}, ids(got))
	assert.Equal(t, 2, got[2].Props["n"])
	require.Equal(t, 1, diags.Count(diagnostics.KindDuplicateKey))
	assert.Equal(t, "sections[0][2]", diags.Items()[0].Path)
}

func TestRepeatFallbackNeverReusesAnID(t *testing.T) {
	node := &tree.Node{Type: "Row", Repeat: "{{ content.rows }}"}
	content := map[string]any{
		"rows": []any{
			map[string]any{"id": "1"},
			map[string]any{"id": "1"},
			map[string]any{"id": "1"},
		},
	}
	diags := diagnostics.NewList(nil)

	got := newResolver().ResolveNode(node, scope.New(content), "list", "", diags)

	assert.Equal(t, []string{"list-1", "list-1-1", "list-2"}, ids(got))
	assert.Equal(t, 2, diags.Count(diagnostics.KindDuplicateKey))
}

func TestNestedRepeatSeesOuterElements(t *testing.T) {
	node := &tree.Node{
		Type:   "Group",
		Repeat: "content.groups",
		Key:    "slug",
		As:     "group",
		Children: []*tree.Node{{
			Type:   "Entry",
			Repeat: "item.entries",
			Props: map[string]any{
				"label": "{{ group.name }}/{{ item.name }}",
				"outer": "{{ item.$parent.$index }}",
				"inner": "{{ item.$index }}",
			},
		}},
	}
	content := map[string]any{
		"groups": []any{
			map[string]any{"slug": "g1", "name": "One", "entries": []any{
				map[string]any{"id": "e1", "name": "a"},
				map[string]any{"id": "e2", "name": "b"},
			}},
			map[string]any{"slug": "g2", "name": "Two", "entries": []any{
				map[string]any{"id": "e3", "name": "c"},
				map[string]any{"id": "e4", "name": "d"},
			}},
		},
	}

	got := newResolver().ResolveNode(node, scope.New(content), "page", "", nil)

	require.Len(t, got, 2)
	var leaves []*tree.Resolved
	for _, group := range got {
		leaves = append(leaves, group.Children...)
	}
	require.Len(t, leaves, 4)
	assert.Equal(t, []string{"page-g1-e1", "page-g1-e2", "page-g2-e3", "page-g2-e4"}, ids(leaves))
	assert.Equal(t, "Two/d", leaves[3].Props["label"])
	assert.Equal(t, 1, leaves[3].Props["outer"])
	assert.Equal(t, 1, leaves[3].Props["inner"])
}

func TestConditionsPruneFalsyNodes(t *testing.T) {
	content := map[string]any{
		"empty": "", "zero": 0, "no": false, "null": nil, "yes": "shown",
	}
	nodes := []*tree.Node{
		{Type: "A", Condition: "content.empty"},
		{Type: "B", Condition: "content.zero"},
		{Type: "C", Condition: "content.no"},
		{Type: "D", Condition: "content.null"},
		{Type: "E", Condition: "content.missing"},
		{Type: "F", Condition: "{{ content.yes }}", Children: []*tree.Node{{Type: "G"}}},
	}

	got := newResolver().ResolveNodes(nodes, scope.New(content), "page", "sections", nil)

	require.Len(t, got, 1)
	assert.Equal(t, "F", got[0].Type)
	assert.Empty(t, got[0].Condition)
	require.Len(t, got[0].Children, 1)
}

func TestConditionsApplyPerExpandedChild(t *testing.T) {
	node := &tree.Node{Type: "Item", Repeat: "content.items", Condition: "item.visible"}
	content := map[string]any{"items": []any{
		map[string]any{"id": "a", "visible": true},
		map[string]any{"id": "b", "visible": 0},
		map[string]any{"id": "c", "visible": "yes"},
	}}

	got := newResolver().ResolveNode(node, scope.New(content), "p", "", nil)
	assert.Equal(t, []string{"p-a", "p-c"}, ids(got))
}

func TestNonSequenceRepeatYieldsNothing(t *testing.T) {
	diags := diagnostics.NewList(nil)
	nodes := []*tree.Node{
		{Type: "Card", Repeat: "content.hero"},
		{Type: "Card", Repeat: "content.absent"},
		{Type: "Hero", ID: "hero"},
	}

	got := newResolver().ResolveNodes(nodes, scope.New(map[string]any{"hero": "text"}), "page", "", diags)

	assert.Equal(t, []string{"hero"}, ids(got))
	assert.Equal(t, 2, diags.Count(diagnostics.KindNonSequenceRepeat))
}

func TestLimitsFailClosed(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRepeat = 2
	opts.MaxDepth = 3
	r := New(opts)
	diags := diagnostics.NewList(nil)

	content := map[string]any{"items": []any{1, 2, 3}}
	deep := &tree.Node{Type: "L0", Children: []*tree.Node{{Type: "L1", Children: []*tree.Node{{Type: "L2", Children: []*tree.Node{{Type: "L3"}}}}}}}

	got := r.ResolveNodes([]*tree.Node{
		{Type: "Card", Repeat: "content.items"},
		deep,
	}, scope.New(content), "", "", diags)

	require.Len(t, got, 1)
	assert.Equal(t, "L0", got[0].Type)
	assert.Empty(t, got[0].Children[0].Children[0].Children)
	assert.Equal(t, 2, diags.Count(diagnostics.KindLimitExceeded))
}

func TestPlainNodeIDsAreSubstituted(t *testing.T) {
	node := &tree.Node{
		ID:       "{{ content.slug }}-hero",
		Type:     "Hero",
		Label:    "Hero for {{ content.slug }}",
		Children: []*tree.Node{{Type: "Cta", Repeat: "content.ctas"}},
	}
	content := map[string]any{"slug": "home", "ctas": []any{map[string]any{"id": "primary"}}}

	got := newResolver().ResolveNode(node, scope.New(content), "page", "", nil)

	require.Len(t, got, 1)
	assert.Equal(t, "home-hero", got[0].ID)
	assert.Equal(t, "Hero for home", got[0].Label)
	assert.Equal(t, "home-hero-primary", got[0].Children[0].ID)
}

func TestDeferredTemplatesAreCarriedThenExpanded(t *testing.T) {
	r := newResolver()
	content := map[string]any{"title": "Menu"}
	nodes := []*tree.Node{{
		ID:    "menu",
		Type:  "Menu",
		Props: map[string]any{"title": "{{ content.title }}", "current": "{{ item.label }}"},
		Children: []*tree.Node{{
			Type:      "Link",
			Repeat:    "item.links",
			Condition: "item.enabled",
			Props:     map[string]any{"href": "{{ item.url }}", "site": "{{ content.title }}"},
		}},
	}}

	composed := r.ResolveNodes(nodes, scope.New(content), "chrome", "", nil)
	require.Len(t, composed, 1)
	assert.Equal(t, "Menu", composed[0].Props["title"])
	assert.Equal(t, "{{ item.label }}", composed[0].Props["current"])
	require.Len(t, composed[0].Children, 1)
	assert.True(t, composed[0].Children[0].Deferred())
	assert.Equal(t, "{{ item.url }}", composed[0].Children[0].Props["href"])
	assert.Equal(t, "Menu", composed[0].Children[0].Props["site"])

	runtime := scope.New(content).Push(map[string]any{
		"label": "Docs",
		"links": []any{
			map[string]any{"id": "a", "url": "/a", "enabled": true},
			map[string]any{"id": "b", "url": "/b", "enabled": false},
		},
	}, 0, "")
	diags := diagnostics.NewList(nil)

	expanded := r.ExpandDeferred(composed, runtime, "chrome", "", diags)

	require.Len(t, expanded, 1)
	assert.Equal(t, "Docs", expanded[0].Props["current"])
	require.Len(t, expanded[0].Children, 1)
	link := expanded[0].Children[0]
	assert.Equal(t, "menu-a", link.ID)
	assert.Equal(t, map[string]any{"href": "/a", "site": "Menu"}, link.Props)
	assert.False(t, link.Deferred())
	assert.Zero(t, diags.Len())
}

func TestCarriedTemplatesKeepAliasesAndResolveContent(t *testing.T) {
	r := newResolver()
	content := map[string]any{"title": "Menu", "show": false}
	nodes := []*tree.Node{
		{
			ID:     "{{ content.title }}-links",
			Type:   "Link",
			Repeat: "item.links",
			As:     "link",
			Props:  map[string]any{"label": "{{ link.label }}", "site": "{{ content.title }}"},
			Children: []*tree.Node{{
				Type:  "Icon",
				Props: map[string]any{"name": "{{ link.icon }}", "owner": "{{ item.id }}"},
			}},
		},
		{Type: "Banner", Repeat: "item.banners", Condition: "{{ content.show }}"},
	}
	diags := diagnostics.NewList(nil)

	composed := r.ResolveNodes(nodes, scope.New(content), "nav", "", diags)

	require.Len(t, composed, 1)
	link := composed[0]
	assert.True(t, link.Deferred())
	assert.Equal(t, "Menu-links", link.ID)
	assert.Equal(t, map[string]any{"label": "{{ link.label }}", "site": "Menu"}, link.Props)
	require.Len(t, link.Children, 1)
	assert.Equal(t, map[string]any{"name": "{{ link.icon }}", "owner": "{{ item.id }}"}, link.Children[0].Props)
	assert.Zero(t, diags.Len())
}

func TestResolutionIsDeterministic(t *testing.T) {
	node := &tree.Node{
		Type:   "Card",
		Repeat: "content.items",
		Props:  map[string]any{"title": "{{ item.title }}", "meta": map[string]any{"i": "{{ item.$index }}"}},
	}
	items := make([]any, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, map[string]any{"id": fmt.Sprintf("n%d", i), "title": fmt.Sprintf("T%d", i)})
	}
	content := map[string]any{"items": items}
	r := newResolver()

	first := r.ResolveNode(node, scope.New(content), "p", "", nil)
	second := r.ResolveNode(node, scope.New(content), "p", "", nil)
	assert.Equal(t, first, second)
}

func ids(nodes []*tree.Resolved) []string {
	out := make([]string, len(nodes))
	for i, node := range nodes {
		out[i] = node.ID
	}
	return out
}
