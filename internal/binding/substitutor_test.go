package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/scope"
)

func content() map[string]any {
	return map[string]any{
		"hero": map[string]any{
			"title": "Studio North",
			"stats": map[string]any{"years": 12, "ratio": 0.5},
		},
		"items": []any{
			map[string]any{"id": "a", "title": "Alpha"},
			map[string]any{"id": "b", "title": "Beta"},
		},
		"flag": true,
	}
}

func TestExactMatchKeepsNativeType(t *testing.T) {
	sub := New(Options{})
	sc := scope.New(content())
	diags := diagnostics.NewList(nil)

	got, ok := sub.Value(map[string]any{
		"stats": "{{ content.hero.stats }}",
		"years": "{{content.hero.stats.years}}",
		"flag":  " {{ content.flag }} ",
	}, sc, "props", diags)

	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"stats": map[string]any{"years": 12, "ratio": 0.5},
		"years": 12,
		"flag":  true,
	}, got)
	assert.Zero(t, diags.Len())
}

func TestExactMatchDoesNotAliasContent(t *testing.T) {
	data := content()
	sub := New(Options{})

	got, _ := sub.Value("{{ content.hero }}", scope.New(data), "", nil)
	got.(map[string]any)["title"] = "changed"

	assert.Equal(t, "Studio North", data["hero"].(map[string]any)["title"])
}

func TestInterpolationStringifies(t *testing.T) {
	sub := New(Options{})
	sc := scope.New(content())

	got, ok := sub.String("{{ content.hero.title }} since {{ content.hero.stats.years }} ({{ content.hero.stats.ratio }})", sc, "", nil)
	require.True(t, ok)
	assert.Equal(t, "Studio North since 12 (0.5)", got)

	got, _ = sub.String("ids: {{ content.items }}", sc, "", nil)
	assert.Equal(t, `ids: [{"id":"a","title":"Alpha"},{"id":"b","title":"Beta"}]`, got)
}

func TestUnresolvedBindings(t *testing.T) {
	sub := New(Options{})
	sc := scope.New(content())
	diags := diagnostics.NewList(nil)

	got, ok := sub.Value(map[string]any{
		"title":    "{{ content.missing }}",
		"subtitle": "Hello {{ content.missing }}!",
		"list":     []any{"{{ content.missing }}", "x"},
	}, sc, "props", diags)

	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"subtitle": "Hello !",
		"list":     []any{nil, "x"},
	}, got)
	assert.Equal(t, 3, diags.Count(diagnostics.KindUnresolvedBinding))
	assert.Equal(t, "props.list[0]", diags.Items()[0].Path)
}

func TestParseAnomalyKeepsText(t *testing.T) {
	sub := New(Options{})
	diags := diagnostics.NewList(nil)

	got, ok := sub.String("Price {{ content.price", scope.New(content()), "props.price", diags)
	require.True(t, ok)
	assert.Equal(t, "Price {{ content.price", got)
	assert.Equal(t, 1, diags.Count(diagnostics.KindParseAnomaly))
}

func TestDeferredNamespacesStayVerbatim(t *testing.T) {
	sub := New(Options{Deferred: []string{"item"}})
	sc := scope.New(content())
	diags := diagnostics.NewList(nil)

	got, _ := sub.Value(map[string]any{
		"exact":  "{{ item.title }}",
		"mixed":  "{{ content.hero.title }}: {{item.title}}",
		"global": "{{ session.user }}",
	}, sc, "", diags)

	assert.Equal(t, map[string]any{
		"exact": "{{ item.title }}",
		"mixed": "Studio North: {{ item.title }}",
	}, got)
	assert.Equal(t, 1, diags.Count(diagnostics.KindUnresolvedBinding))

	bound, _ := sub.String("{{ item.title }}", sc.Push(map[string]any{"title": "Alpha"}, 0, ""), "", nil)
	assert.Equal(t, "Alpha", bound)
}

func TestDataRepeatExpandsSequence(t *testing.T) {
	sub := New(Options{})
	diags := diagnostics.NewList(nil)

	got, ok := sub.Value(map[string]any{
		"links": map[string]any{
			"__repeat": "{{ content.items }}",
			"__as":     "entry",
			"label":    "{{ entry.title }}",
			"href":     "#{{ item.id }}-{{ item.$index }}",
		},
	}, scope.New(content()), "props", diags)

	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"links": []any{
			map[string]any{"label": "Alpha", "href": "#a-0"},
			map[string]any{"label": "Beta", "href": "#b-1"},
		},
	}, got)
	assert.Zero(t, diags.Len())
}

func TestDataRepeatStampsElementKeys(t *testing.T) {
	sub := New(Options{})
	rows := map[string]any{"rows": []any{
		map[string]any{"slug": "north", "name": "North"},
		map[string]any{"name": "Unnamed"},
		map[string]any{"slug": "west", "name": "West", "key": "given"},
	}}

	got, _ := sub.Value(map[string]any{
		"__repeat": "{{ content.rows }}",
		"__key":    "slug",
		"label":    "{{ item.name }}",
	}, scope.New(rows), "props.rows", nil)

	assert.Equal(t, []any{
		map[string]any{"label": "North", "key": "north"},
		map[string]any{"label": "Unnamed", "key": "1"},
		map[string]any{"label": "West", "key": "west"},
	}, got)
}

func TestDataRepeatNonSequence(t *testing.T) {
	sub := New(Options{})
	diags := diagnostics.NewList(nil)

	got, _ := sub.Value(map[string]any{"__repeat": "content.hero", "x": 1}, scope.New(content()), "props.links", diags)
	assert.Equal(t, []any{}, got)
	assert.Equal(t, 1, diags.Count(diagnostics.KindNonSequenceRepeat))
}

func TestDataRepeatDeferred(t *testing.T) {
	sub := New(Options{Deferred: []string{"item"}})
	tpl := map[string]any{"__repeat": "item.children", "label": "{{ item.name }}"}

	got, _ := sub.Value(tpl, scope.New(content()), "", nil)
	assert.Equal(t, tpl, got)
}

func TestSelfReferencingContentFailsClosed(t *testing.T) {
	loop := map[string]any{}
	loop["self"] = loop

	sub := New(Options{MaxDepth: 8})
	diags := diagnostics.NewList(nil)

	got, ok := sub.Value(map[string]any{"x": "{{ content.loop }}"}, scope.New(map[string]any{"loop": loop}), "", diags)
	require.True(t, ok)
	assert.Equal(t, map[string]any{}, got)
	assert.Equal(t, 1, diags.Count(diagnostics.KindLimitExceeded))
}

func TestSourceIsNotMutated(t *testing.T) {
	props := map[string]any{"title": "{{ content.hero.title }}", "nested": []any{"{{ content.flag }}"}}
	sub := New(Options{})

	sub.Value(props, scope.New(content()), "", nil)

	assert.Equal(t, "{{ content.hero.title }}", props["title"])
	assert.Equal(t, []any{"{{ content.flag }}"}, props["nested"])
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, "", false, 0, 0.0, int64(0), uint8(0)}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
	truthy := []any{"0", true, 1, -1, 0.1, []any{}, map[string]any{}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}
