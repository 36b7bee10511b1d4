package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ErrThemesFeatureRequired indicates theme directories configured while the themes feature is off.
var ErrThemesFeatureRequired = errors.New("sitekit config: themes feature must be enabled to configure theme directories")

// ErrMarkdownFeatureRequired indicates a markdown content directory configured while the markdown feature is off.
var ErrMarkdownFeatureRequired = errors.New("sitekit config: markdown feature must be enabled to configure markdown content")
var ErrPreviewAddrRequired = errors.New("sitekit config: preview address is required when preview is enabled")
var ErrResolutionLimitInvalid = errors.New("sitekit config: resolution limits must be zero or positive")
var ErrKeyFieldInvalid = errors.New("sitekit config: default key field is invalid")
var ErrDeferredNamespaceInvalid = errors.New("sitekit config: deferred namespace is invalid")
var ErrCommandTimeoutInvalid = errors.New("sitekit config: command timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("sitekit config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("sitekit config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("sitekit config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("sitekit config: logging format is invalid")

var (
	keyFieldPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(\.[A-Za-z_][A-Za-z0-9_\-]*)*$`)
	namespacePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Config aggregates feature flags and settings for the engine and its
// tooling. Fields use simple types so hosts can fill them from any source.
type Config struct {
	Resolution ResolutionConfig
	Sources    SourcesConfig
	Preview    PreviewConfig
	Commands   CommandsConfig
	Features   Features
	Logging    LoggingConfig
}

// ResolutionConfig bounds template resolution.
type ResolutionConfig struct {
	MaxDepth           int
	MaxRepeat          int
	DefaultKeyField    string
	DeferredNamespaces []string
	// BarePaths accepts "item.title" as shorthand for "{{ item.title }}"
	// inside repeat scopes.
	BarePaths bool
}

// SourcesConfig lists the fixture files loaded at startup.
type SourcesConfig struct {
	PresetDir      string
	Libraries      []string
	ContentFile    string
	MarkdownDir    string
	ThemeDirs      []string
	DefaultTheme   string
	DefaultVariant string
}

// PreviewConfig configures the read-only preview server.
type PreviewConfig struct {
	Addr     string
	BasePath string
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Timeout time.Duration
}

// Features toggles optional functionality.
type Features struct {
	Themes   bool
	Markdown bool
	Metrics  bool
	Preview  bool
	Logger   bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the settings used when a host configures nothing.
func DefaultConfig() Config {
	return Config{
		Resolution: ResolutionConfig{
			MaxDepth:           64,
			MaxRepeat:          1000,
			DefaultKeyField:    "id",
			DeferredNamespaces: []string{"item"},
			BarePaths:          true,
		},
		Sources: SourcesConfig{
			PresetDir: "presets",
		},
		Preview: PreviewConfig{
			Addr:     ":8080",
			BasePath: "/",
		},
		Commands: CommandsConfig{
			Timeout: 10 * time.Second,
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Resolution.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth", ErrResolutionLimitInvalid)
	}
	if cfg.Resolution.MaxRepeat < 0 {
		return fmt.Errorf("%w: max repeat", ErrResolutionLimitInvalid)
	}
	if key := strings.TrimSpace(cfg.Resolution.DefaultKeyField); key != "" && !keyFieldPattern.MatchString(key) {
		return fmt.Errorf("%w: %s", ErrKeyFieldInvalid, key)
	}
	for _, ns := range cfg.Resolution.DeferredNamespaces {
		if !namespacePattern.MatchString(ns) || ns == "content" {
			return fmt.Errorf("%w: %q", ErrDeferredNamespaceInvalid, ns)
		}
	}
	if !cfg.Features.Themes {
		if len(cfg.Sources.ThemeDirs) > 0 || strings.TrimSpace(cfg.Sources.DefaultTheme) != "" {
			return ErrThemesFeatureRequired
		}
	}
	if !cfg.Features.Markdown && strings.TrimSpace(cfg.Sources.MarkdownDir) != "" {
		return ErrMarkdownFeatureRequired
	}
	if cfg.Features.Preview && strings.TrimSpace(cfg.Preview.Addr) == "" {
		return ErrPreviewAddrRequired
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// NormalizedProvider returns the lower-cased logging provider.
func (cfg Config) NormalizedProvider() string {
	return normalizeProvider(cfg.Logging.Provider)
}

// HasDeferred reports whether ns is reserved for the runtime stage.
func (cfg ResolutionConfig) HasDeferred(ns string) bool {
	return slices.Contains(cfg.DeferredNamespaces, ns)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
