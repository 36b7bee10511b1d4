package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/contract"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/preset"
	"github.com/goliatone/go-sitekit/internal/registry"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

var ErrUnsupportedFormat = errors.New("fixtures: unsupported file format")

// Library is a bundle of reusable registry entries, usually one file per
// project.
type Library struct {
	Themes      []*preset.Theme          `json:"themes"`
	Experiences []*compose.Experience    `json:"experiences"`
	Behaviours  []*compose.Behaviour     `json:"behaviours"`
	Intros      []*compose.Intro         `json:"intros"`
	Components  []*contract.Declaration `json:"components"`
}

// Register stores every entry of the library in catalog.
func (l *Library) Register(catalog *registry.Catalog) {
	if l == nil || catalog == nil {
		return
	}
	for _, theme := range l.Themes {
		catalog.Themes.Register(theme.ID, theme)
	}
	for _, experience := range l.Experiences {
		catalog.Experiences.Register(experience.ID, experience)
	}
	for _, behaviour := range l.Behaviours {
		catalog.Behaviours.Register(behaviour.ID, behaviour)
	}
	for _, intro := range l.Intros {
		catalog.Intros.Register(intro.ID, intro)
	}
	for _, decl := range l.Components {
		catalog.Components.Register(decl.Component, decl)
	}
}

// Loader reads presets, libraries and content from a filesystem.
type Loader struct {
	fs     fs.FS
	logger interfaces.Logger
}

func NewLoader(filesystem fs.FS, logger interfaces.Logger) *Loader {
	return &Loader{fs: filesystem, logger: logging.Or(logger)}
}

// LoadPreset reads one YAML or JSON preset.
func (l *Loader) LoadPreset(ctx context.Context, name string) (*preset.Preset, error) {
	raw, err := l.document(ctx, name)
	if err != nil {
		return nil, err
	}
	p, err := preset.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %w", name, err)
	}
	l.logger.Debug("fixtures.preset.loaded", "file", name, "preset_id", p.ID, "pages", len(p.Pages))
	return p, nil
}

// LoadPresets reads every preset file directly under dir, in name order.
func (l *Loader) LoadPresets(ctx context.Context, dir string) ([]*preset.Preset, error) {
	names, err := l.files(dir, ".yaml", ".yml", ".json")
	if err != nil {
		return nil, err
	}
	out := make([]*preset.Preset, 0, len(names))
	for _, name := range names {
		p, err := l.LoadPreset(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadLibrary reads a library file.
func (l *Loader) LoadLibrary(ctx context.Context, name string) (*Library, error) {
	raw, err := l.document(ctx, name)
	if err != nil {
		return nil, err
	}
	var lib Library
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &lib,
		TagName:     "json",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("fixtures: decode library %s: %w", name, err)
	}
	for _, decl := range lib.Components {
		if err := decl.Validate(); err != nil {
			return nil, fmt.Errorf("fixtures: library %s component %s: %w", name, decl.Component, err)
		}
	}
	l.logger.Debug("fixtures.library.loaded", "file", name,
		"experiences", len(lib.Experiences), "behaviours", len(lib.Behaviours), "components", len(lib.Components))
	return &lib, nil
}

// LoadContent reads a YAML or JSON content object.
func (l *Loader) LoadContent(ctx context.Context, name string) (map[string]any, error) {
	raw, err := l.document(ctx, name)
	if err != nil {
		return nil, err
	}
	content, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("fixtures: content %s must be an object", name)
	}
	return content, nil
}

func (l *Loader) document(ctx context.Context, name string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", name, err)
	}
	return Parse(name, data)
}

// Parse decodes data according to the extension of name. Mapping keys
// are always strings.
func Parse(name string, data []byte) (any, error) {
	var raw any
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("fixtures: parse %s: %w", name, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("fixtures: parse %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return stringKeys(raw), nil
}

func (l *Loader) files(dir string, extensions ...string) ([]string, error) {
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read dir %s: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name()))
		for _, allowed := range extensions {
			if ext == allowed {
				out = append(out, path.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func stringKeys(raw any) any {
	switch typed := raw.(type) {
	case map[string]any:
		for key, value := range typed {
			typed[key] = stringKeys(value)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = stringKeys(value)
		}
		return out
	case []any:
		for i, item := range typed {
			typed[i] = stringKeys(item)
		}
		return typed
	default:
		return raw
	}
}
