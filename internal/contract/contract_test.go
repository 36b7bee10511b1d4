package contract

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitekit/internal/tree"
)

func heroDecl() *Declaration {
	return &Declaration{
		Component: "Hero",
		Section:   "hero",
		Label:     "Hero",
		Fields: []Field{
			{Path: "title", Type: FieldText, Label: "Title", Required: true},
			{Path: "cta.label", Type: FieldText, Default: "Get in touch"},
			{Path: "cta.href", Type: FieldURL},
		},
		Sample: map[string]any{"title": "Studio North"},
	}
}

func projectsDecl() *Declaration {
	return &Declaration{
		Component: "ProjectGrid",
		Section:   "projects",
		Fields: []Field{
			{Path: "heading", Type: FieldText},
			{Path: "items", Type: FieldList, ItemFields: []Field{
				{Path: "id", Type: FieldText, Required: true},
				{Path: "title", Type: FieldText},
				{Path: "year", Type: FieldNumber},
			}},
		},
		Sample: map[string]any{"items": []any{map[string]any{"id": "p1", "title": "Harbour"}}},
	}
}

func TestAggregateGroupsBySection(t *testing.T) {
	banner := &Declaration{
		Component: "HeroBanner",
		Section:   "hero",
		Fields:    []Field{{Path: "image", Type: FieldImage}},
		Sample:    map[string]any{"image": "/hero.jpg"},
	}

	c, err := Aggregate(heroDecl(), projectsDecl(), banner)
	require.NoError(t, err)

	require.Len(t, c.Sections, 2)
	assert.Equal(t, "hero", c.Sections[0].Name)
	assert.Equal(t, []string{"Hero", "HeroBanner"}, c.Sections[0].Components)
	assert.Equal(t, []string{"title", "cta.label", "cta.href", "image"}, c.Sections[0].Paths)
	assert.Len(t, c.Fields, 6)
	assert.Equal(t, "content.hero.cta.label", c.Fields[1].ContentPath())

	assert.Equal(t, map[string]any{
		"hero": map[string]any{
			"title": "Studio North",
			"image": "/hero.jpg",
			"cta":   map[string]any{"label": "Get in touch"},
		},
		"projects": map[string]any{
			"items": []any{map[string]any{"id": "p1", "title": "Harbour"}},
		},
	}, c.Sample)
}

func TestAggregateRejectsDuplicatePathWithinSection(t *testing.T) {
	dup := &Declaration{Component: "HeroAlt", Section: "hero", Fields: []Field{{Path: "title", Type: FieldRichText}}}

	_, err := Aggregate(heroDecl(), dup)

	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
}

func TestAggregateAllowsCrossSectionCollisions(t *testing.T) {
	about := &Declaration{Component: "About", Section: "about", Fields: []Field{{Path: "title", Type: FieldText}}}

	c, err := Aggregate(heroDecl(), about)

	require.NoError(t, err)
	assert.Len(t, c.FieldsIn("hero"), 3)
	assert.Len(t, c.FieldsIn("about"), 1)
}

func TestAggregateRejectsInvalidDeclarations(t *testing.T) {
	tests := []*Declaration{
		{Component: "", Section: "hero"},
		{Component: "X", Section: "hero", Fields: []Field{{Path: "title", Type: "colour"}}},
		{Component: "X", Section: "hero", Fields: []Field{{Path: "mode", Type: FieldSelect}}},
	}
	for _, decl := range tests {
		_, err := Aggregate(decl)
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	}
}

func TestJSONSchemaValidatesContent(t *testing.T) {
	c, err := Aggregate(heroDecl(), projectsDecl())
	require.NoError(t, err)

	schema := c.JSONSchema()
	assert.Equal(t, []string{"hero"}, schema["required"])

	assert.NoError(t, c.ValidateContent(c.Sample))

	err = c.ValidateContent(map[string]any{
		"hero":     map[string]any{"cta": map[string]any{"label": "x"}},
		"projects": map[string]any{"items": []any{map[string]any{"title": "no id", "year": "soon"}}},
	})
	require.Error(t, err)

	var contentErr *ContentError
	require.True(t, errors.As(err, &contentErr))
	assert.True(t, errors.Is(err, ErrContentInvalid))
	assert.GreaterOrEqual(t, len(Issues(err)), 3)
}

func TestScanClassifiesLeftovers(t *testing.T) {
	doc := map[string]any{
		"pages": map[string]any{
			"home": []any{
				map[string]any{"title": "{{ item.title }}"},
				map[string]any{"title": "Hello {{ content.name }}"},
				map[string]any{"title": "plain"},
			},
		},
		"note": "{{ item.a }} and {{ content.b }}",
	}

	report, err := Scan(doc, []string{"item"})
	require.NoError(t, err)

	require.Len(t, report.Leftovers, 3)
	assert.Equal(t, 1, report.Deferred)
	assert.Equal(t, 2, report.Unexpected)
	assert.False(t, report.Clean())
	assert.Equal(t, "$.note", report.Leftovers[0].Path)
	assert.Equal(t, []string{"item", "content"}, report.Leftovers[0].Namespaces)
}

func TestScanTreatsTemplateAliasesAsDeferred(t *testing.T) {
	doc := map[string]any{
		"sections": []any{
			map[string]any{
				"type":   "Link",
				"repeat": "item.links",
				"as":     "link",
				"props":  map[string]any{"label": "{{ link.label }}", "site": "Studio"},
				"children": []any{
					map[string]any{"type": "Icon", "props": map[string]any{"name": "{{ link.icon }}"}},
				},
			},
			map[string]any{"type": "Text", "props": map[string]any{"body": "{{ link.label }}"}},
		},
	}

	report, err := Scan(doc, []string{"item"})
	require.NoError(t, err)

	require.Len(t, report.Leftovers, 3)
	assert.Equal(t, 2, report.Deferred)
	assert.Equal(t, 1, report.Unexpected)
	assert.Equal(t, "$.sections[1].props.body", report.Leftovers[2].Path)
	assert.False(t, report.Leftovers[2].Deferred)
}

func TestScanSelect(t *testing.T) {
	doc := map[string]any{
		"site":  map[string]any{"title": "{{ content.missing }}"},
		"pages": map[string]any{"home": map[string]any{"title": "{{ item.title }}"}},
	}

	report, err := ScanSelect(doc, "$.pages", []string{"item"})
	require.NoError(t, err)
	assert.Len(t, report.Leftovers, 1)
	assert.True(t, report.Clean())
}

func TestUncoveredBindings(t *testing.T) {
	c, err := Aggregate(heroDecl(), projectsDecl())
	require.NoError(t, err)

	nodes := []*tree.Node{
		{Type: "Hero", Props: map[string]any{
			"title": "{{ content.hero.title }}",
			"cta":   "{{ content.hero.cta }}",
			"extra": "By {{ content.hero.author }}",
		}},
		{Type: "Card", Repeat: "content.projects.items", Props: map[string]any{"title": "{{ item.title }}"}},
		{Type: "Footer", Condition: "{{ content.footer.visible }}"},
	}

	assert.Equal(t, []string{"content.footer.visible", "content.hero.author"}, c.Uncovered(nodes))
}

func TestSessionBuildsOnce(t *testing.T) {
	var calls atomic.Int32
	session := NewSession(func() ([]*Declaration, error) {
		calls.Add(1)
		return []*Declaration{heroDecl()}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = session.Contract()
			_ = session.ValidateContent(map[string]any{"hero": map[string]any{"title": "x"}})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Error(t, session.ValidateContent(map[string]any{}))
}
