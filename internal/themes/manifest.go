package themes

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitekit/internal/preset"
)

var (
	ErrThemePathRequired = errors.New("themes: theme path required")
	ErrThemeNameRequired = errors.New("themes: theme name required")
)

// ManifestLoader reads a go-theme manifest from a directory.
type ManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := strings.TrimSpace(themePath)
	if cleaned == "" {
		return nil, ErrThemePathRequired
	}
	return gotheme.LoadDir(os.DirFS(filepath.Clean(cleaned)), ".")
}

// Catalog keeps go-theme manifests and turns selections into preset
// themes. Tokens are flattened into the opaque token map presets carry.
type Catalog struct {
	registry       *gotheme.MemoryRegistry
	loader         ManifestLoader
	defaultTheme   string
	defaultVariant string

	mu      sync.Mutex
	sources map[string]string
}

// Option customises a Catalog.
type Option func(*Catalog)

// WithLoader replaces the filesystem manifest loader.
func WithLoader(loader ManifestLoader) Option {
	return func(c *Catalog) {
		if loader != nil {
			c.loader = loader
		}
	}
}

// WithDefaults sets the theme and variant picked when a request names
// none.
func WithDefaults(theme, variant string) Option {
	return func(c *Catalog) {
		c.defaultTheme = strings.TrimSpace(theme)
		c.defaultVariant = strings.TrimSpace(variant)
	}
}

func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		registry: gotheme.NewRegistry(),
		loader:   fsManifestLoader{},
		sources:  map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Add registers a manifest. source is recorded on the themes built from it.
func (c *Catalog) Add(manifest *gotheme.Manifest, source string) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return ErrThemeNameRequired
	}
	normalized := *manifest
	normalized.Name = strings.TrimSpace(normalized.Name)
	if err := c.registry.Register(&normalized); err != nil {
		return fmt.Errorf("themes: register manifest %s: %w", normalized.Name, err)
	}

	c.mu.Lock()
	c.sources[normalized.Name] = source
	c.mu.Unlock()
	return nil
}

// LoadDir reads the manifest under themePath and registers it.
func (c *Catalog) LoadDir(themePath string) (*gotheme.Manifest, error) {
	manifest, err := c.loader.Load(themePath)
	if err != nil {
		return nil, fmt.Errorf("themes: load manifest from %s: %w", themePath, err)
	}
	if err := c.Add(manifest, themePath); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Names lists registered manifest names.
func (c *Catalog) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.sources))
}

// Theme selects name and variant, falling back to the catalog defaults.
func (c *Catalog) Theme(name, variant string) (*preset.Theme, error) {
	selector := gotheme.Selector{
		Registry:       c.registry,
		DefaultTheme:   c.defaultTheme,
		DefaultVariant: c.defaultVariant,
	}
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = c.defaultVariant
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("themes: select %s: %w", name, err)
	}

	c.mu.Lock()
	source := c.sources[selection.Theme]
	c.mu.Unlock()
	return FromSelection(selection, source), nil
}

// FromSelection converts a go-theme selection into a preset theme.
func FromSelection(selection *gotheme.Selection, source string) *preset.Theme {
	if selection == nil {
		return nil
	}
	tokens := map[string]any{}
	for key, value := range selection.Tokens() {
		tokens[key] = value
	}
	id := selection.Theme
	if selection.Variant != "" {
		id += "/" + selection.Variant
	}
	return &preset.Theme{
		ID:      id,
		Name:    selection.Theme,
		Variant: selection.Variant,
		Tokens:  tokens,
		Source:  source,
	}
}
