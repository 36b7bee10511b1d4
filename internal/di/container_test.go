package di_test

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitekit/internal/di"
	"github.com/goliatone/go-sitekit/internal/runtimeconfig"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/internal/themes"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

const presetYAML = `
id: studio
name: Studio
theme_id: paper
pages:
  home:
    head:
      title: "{{ content.site.name }}"
    sections:
      - id: hero
        type: Hero
        props:
          title: "{{ content.hero.title }}"
          body: "{{ content.hero.body }}"
`

const libraryYAML = `
components:
  - component: Hero
    section: hero
    fields:
      - path: title
        type: text
        required: true
`

func sources() fstest.MapFS {
	return fstest.MapFS{
		"presets/studio.yaml": {Data: []byte(presetYAML)},
		"library.yaml":        {Data: []byte(libraryYAML)},
		"content.yaml":        {Data: []byte("site:\n  name: Acme\nhero:\n  title: Hello\n")},
		"content/hero.md":     {Data: []byte("---\ntitle: Welcome\n---\nBuilt **fast**.\n")},
	}
}

func fullConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Sources.Libraries = []string{"library.yaml"}
	cfg.Sources.ContentFile = "content.yaml"
	cfg.Sources.MarkdownDir = "content"
	cfg.Features.Markdown = true
	cfg.Features.Metrics = true
	cfg.Features.Preview = true
	return cfg
}

type stubManifests map[string]*gotheme.Manifest

func (s stubManifests) Load(path string) (*gotheme.Manifest, error) {
	if manifest, ok := s[path]; ok {
		return manifest, nil
	}
	return nil, errors.New("not found")
}

func TestNewContainerLoadsSources(t *testing.T) {
	container, err := di.NewContainer(fullConfig(), di.WithSources(sources()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if _, ok := container.Catalog().Presets.Lookup("studio"); !ok {
		t.Fatal("expected studio preset to be registered")
	}
	if _, ok := container.Catalog().Components.Lookup("Hero"); !ok {
		t.Fatal("expected Hero declaration to be registered")
	}

	hero := container.Content()["hero"].(map[string]any)
	if hero["title"] != "Welcome" {
		t.Fatalf("expected markdown to override content file, got %v", hero["title"])
	}
	if body, _ := hero["body"].(string); !strings.Contains(body, "<strong>fast</strong>") {
		t.Fatalf("expected rendered markdown body, got %q", body)
	}

	result, err := container.SiteService().ResolvePage(context.Background(), site.PageRequest{
		PresetID: "studio",
		PageID:   "home",
		Content:  container.Content(),
	})
	if err != nil {
		t.Fatalf("ResolvePage returned error: %v", err)
	}
	if result.Page.Head.Title != "Acme" {
		t.Fatalf("expected head title Acme, got %q", result.Page.Head.Title)
	}
	if got := result.Page.Sections[0].Props["title"]; got != "Welcome" {
		t.Fatalf("expected hero title Welcome, got %v", got)
	}
}

func TestContainerPreviewServesPagesAndMetrics(t *testing.T) {
	container, err := di.NewContainer(fullConfig(), di.WithSources(sources()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	handler := container.PreviewHandler()
	if handler == nil {
		t.Fatal("expected preview handler")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/presets/studio/pages/home", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Welcome") {
		t.Fatalf("expected resolved hero in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `sitekit_resolutions_total{operation="page"} 1`) {
		t.Fatalf("expected page resolution metric, got %s", rec.Body.String())
	}
}

func TestContainerCommandHandlers(t *testing.T) {
	container, err := di.NewContainer(fullConfig(), di.WithSources(sources()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	var missing []string
	handler := container.BuildContractHandler()
	err = handler.Execute(context.Background(), contractCommand("studio", func(r *site.ContractResult) { missing = r.Missing }))
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected every type declared, got %v", missing)
	}
}

func TestContainerRegistersThemes(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Themes = true
	cfg.Sources.ThemeDirs = []string{"themes/paper"}

	catalog := themes.NewCatalog(themes.WithLoader(stubManifests{
		"themes/paper": {Name: "paper", Version: "1.0.0"},
	}))
	container, err := di.NewContainer(cfg, di.WithSources(sources()), di.WithThemeCatalog(catalog))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	theme, ok := container.Catalog().Themes.Lookup("paper")
	if !ok || theme.Source != "themes/paper" {
		t.Fatalf("expected paper theme from manifest, got %+v", theme)
	}

	result, err := container.SiteService().ResolveSite(context.Background(), site.SiteRequest{PresetID: "studio"})
	if err != nil {
		t.Fatalf("ResolveSite returned error: %v", err)
	}
	if result.Site.Theme == nil || result.Site.Theme.Name != "paper" {
		t.Fatalf("expected registry theme on site, got %+v", result.Site.Theme)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Preview = true
	cfg.Preview.Addr = ""

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrPreviewAddrRequired) {
		t.Fatalf("expected ErrPreviewAddrRequired, got %v", err)
	}
}

func TestNewContainerSurfacesFixtureErrors(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Sources.ContentFile = "missing.yaml"

	if _, err := di.NewContainer(cfg, di.WithSources(sources())); err == nil {
		t.Fatal("expected missing content file to fail")
	}
}

func TestContainerLogsThroughProvider(t *testing.T) {
	rec := &recordingProvider{}
	if _, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithSources(sources()), di.WithLoggerProvider(rec)); err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	entry := rec.find("container.ready")
	if entry == nil {
		t.Fatalf("expected container.ready entry, got %#v", rec.entries)
	}
	if entry.fields["module"] != "sitekit" {
		t.Fatalf("expected module sitekit, got %v", entry.fields["module"])
	}
	if entry.fields["presets"] != 1 {
		t.Fatalf("expected one preset, got %v", entry.fields["presets"])
	}
}

type recordingProvider struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{provider: p, fields: map[string]any{"logger": name}}
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &recordingLogger{provider: l.provider, fields: merged}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) log(level, msg string, args ...any) {
	fields := maps.Clone(l.fields)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	l.provider.mu.Lock()
	l.provider.entries = append(l.provider.entries, recordedEntry{level: level, msg: msg, fields: fields})
	l.provider.mu.Unlock()
}
