package fixtures

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-sitekit/internal/registry"
)

const presetYAML = `
id: studio
chrome:
  regions:
    footer: hidden
pages:
  home:
    sections:
      - type: Hero
        props:
          title: "{{ content.hero.title }}"
`

const libraryYAML = `
themes:
  - id: paper
    tokens:
      color.ink: "#111"
experiences:
  - id: calm
    behaviours:
      hero:
        - behaviour: fade-in
    transition:
      name: fade
      duration: 300
behaviours:
  - id: fade-in
intros:
  - id: splash
    enabled: true
    steps:
      - id: logo
        type: Logo
components:
  - component: Hero
    section: hero
    fields:
      - path: title
        type: text
        required: true
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"presets/studio.yaml":     {Data: []byte(presetYAML)},
		"presets/readme.txt":      {Data: []byte("ignored")},
		"library.yaml":            {Data: []byte(libraryYAML)},
		"content.json":            {Data: []byte(`{"hero":{"title":"Hello"}}`)},
		"list.json":               {Data: []byte(`[1,2]`)},
		"content/hero.md":         {Data: []byte("---\ntitle: Hello\n---\n# Welcome\n")},
		"content/team/lead.md":    {Data: []byte("---\nname: Ada\nrole: Lead\n---\n")},
		"content/team.md":         {Data: []byte("---\nheading: Team\n---\n")},
		"content/notes/plain.txt": {Data: []byte("skip")},
	}
}

func TestLoadPresets(t *testing.T) {
	loader := NewLoader(testFS(), nil)

	presets, err := loader.LoadPresets(context.Background(), "presets")
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}
	if len(presets) != 1 || presets[0].ID != "studio" {
		t.Fatalf("unexpected presets %+v", presets)
	}
	if !presets[0].Chrome.Regions["footer"].Hidden {
		t.Fatalf("footer should be hidden")
	}
	home, ok := presets[0].Page("home")
	if !ok || len(home.Sections) != 1 || home.Sections[0].Type != "Hero" {
		t.Fatalf("unexpected home page %+v", home)
	}
}

func TestLoadLibraryRegistersEntries(t *testing.T) {
	loader := NewLoader(testFS(), nil)

	lib, err := loader.LoadLibrary(context.Background(), "library.yaml")
	if err != nil {
		t.Fatalf("load library: %v", err)
	}

	catalog := registry.NewCatalog(nil)
	lib.Register(catalog)

	experience, ok := catalog.Experiences.Lookup("calm")
	if !ok || experience.Transition == nil || experience.Transition.Duration != 300 {
		t.Fatalf("unexpected experience %+v", experience)
	}
	if _, ok := catalog.Behaviours.Lookup("fade-in"); !ok {
		t.Fatalf("behaviour missing")
	}
	intro, ok := catalog.Intros.Lookup("splash")
	if !ok || !intro.IsEnabled() || len(intro.Steps) != 1 {
		t.Fatalf("unexpected intro %+v", intro)
	}
	decl, ok := catalog.Components.Lookup("hero")
	if !ok || len(decl.Fields) != 1 || !decl.Fields[0].Required {
		t.Fatalf("unexpected declaration %+v", decl)
	}
	theme, ok := catalog.Themes.Lookup("paper")
	if !ok || theme.Tokens["color.ink"] != "#111" {
		t.Fatalf("unexpected theme %+v", theme)
	}
}

func TestLoadContent(t *testing.T) {
	loader := NewLoader(testFS(), nil)
	ctx := context.Background()

	content, err := loader.LoadContent(ctx, "content.json")
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	if content["hero"].(map[string]any)["title"] != "Hello" {
		t.Fatalf("unexpected content %v", content)
	}

	if _, err := loader.LoadContent(ctx, "list.json"); err == nil {
		t.Fatalf("expected an error for non-object content")
	}
	if _, err := loader.LoadContent(ctx, "presets/readme.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadMarkdownContent(t *testing.T) {
	loader := NewLoader(testFS(), nil)

	content, err := loader.LoadMarkdownContent(context.Background(), "content")
	if err != nil {
		t.Fatalf("load markdown: %v", err)
	}

	hero := content["hero"].(map[string]any)
	if hero["title"] != "Hello" {
		t.Fatalf("unexpected hero %v", hero)
	}
	if body, _ := hero[BodyField].(string); !strings.Contains(body, "<h1") || !strings.Contains(body, "Welcome") {
		t.Fatalf("unexpected body %q", body)
	}

	team := content["team"].(map[string]any)
	if team["heading"] != "Team" {
		t.Fatalf("unexpected team %v", team)
	}
	lead := team["lead"].(map[string]any)
	if lead["name"] != "Ada" {
		t.Fatalf("unexpected lead %v", lead)
	}
	if _, ok := lead[BodyField]; ok {
		t.Fatalf("empty body should not be set")
	}
	if _, ok := content["notes"]; ok {
		t.Fatalf("non markdown files should be skipped")
	}
}

func TestMergeContentDescendsIntoObjects(t *testing.T) {
	base := map[string]any{
		"hero":  map[string]any{"title": "Hello", "cta": "Go"},
		"brand": "Acme",
	}
	overlay := map[string]any{
		"hero": map[string]any{"title": "Welcome", "body": "<p>x</p>"},
		"team": map[string]any{"heading": "Team"},
	}

	merged := MergeContent(base, overlay)

	hero := merged["hero"].(map[string]any)
	if hero["title"] != "Welcome" || hero["cta"] != "Go" || hero["body"] != "<p>x</p>" {
		t.Fatalf("unexpected hero %v", hero)
	}
	if merged["brand"] != "Acme" || merged["team"] == nil {
		t.Fatalf("unexpected merge %v", merged)
	}
	if got := MergeContent(nil, map[string]any{"a": 1}); got["a"] != 1 {
		t.Fatalf("expected nil dst to be allocated, got %v", got)
	}
}
