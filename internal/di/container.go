package di

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-sitekit/internal/commands"
	contractcmd "github.com/goliatone/go-sitekit/internal/commands/contract"
	sitecmd "github.com/goliatone/go-sitekit/internal/commands/site"
	"github.com/goliatone/go-sitekit/internal/fixtures"
	sitehttp "github.com/goliatone/go-sitekit/internal/http"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/logging/console"
	"github.com/goliatone/go-sitekit/internal/logging/gologger"
	"github.com/goliatone/go-sitekit/internal/metrics"
	"github.com/goliatone/go-sitekit/internal/registry"
	"github.com/goliatone/go-sitekit/internal/resolver"
	"github.com/goliatone/go-sitekit/internal/runtimeconfig"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/internal/themes"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Container wires the engine from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	sources        fs.FS

	catalog  *registry.Catalog
	themes   *themes.Catalog
	resolver *resolver.Resolver
	metrics  *metrics.Recorder
	content  map[string]any

	siteSvc site.Service
	preview *sitehttp.PreviewAPI
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider replaces the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithSources sets the filesystem fixture paths resolve against. Defaults
// to the working directory.
func WithSources(fsys fs.FS) Option {
	return func(c *Container) {
		if fsys != nil {
			c.sources = fsys
		}
	}
}

// WithCatalog seeds the container with a pre-populated catalog. Fixtures
// from Config.Sources are still registered into it.
func WithCatalog(catalog *registry.Catalog) Option {
	return func(c *Container) {
		if catalog != nil {
			c.catalog = catalog
		}
	}
}

// WithThemeCatalog replaces the go-theme catalog used when themes are enabled.
func WithThemeCatalog(catalog *themes.Catalog) Option {
	return func(c *Container) {
		if catalog != nil {
			c.themes = catalog
		}
	}
}

// WithContent sets sample content. Files from Config.Sources are merged
// over it.
func WithContent(content map[string]any) Option {
	return func(c *Container) {
		c.content = content
	}
}

// WithSiteService bypasses the default site service.
func WithSiteService(svc site.Service) Option {
	return func(c *Container) {
		if svc != nil {
			c.siteSvc = svc
		}
	}
}

// NewContainer validates cfg, loads fixtures and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if c.sources == nil {
		c.sources = os.DirFS(".")
	}
	if c.catalog == nil {
		c.catalog = registry.NewCatalog(c.Logger(logging.RegistryModule))
	}
	if err := c.loadFixtures(context.Background()); err != nil {
		return nil, err
	}
	if err := c.configureThemes(); err != nil {
		return nil, err
	}
	c.configureResolver()
	if cfg.Features.Metrics {
		c.metrics = metrics.NewRecorder()
	}
	c.configureSiteService()
	if cfg.Features.Preview {
		c.configurePreview()
	}

	c.Logger(logging.RootModule).Info("container.ready",
		"presets", c.catalog.Presets.Len(),
		"components", c.catalog.Components.Len(),
		"metrics", c.metrics != nil,
		"preview", c.preview != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	switch c.Config.NormalizedProvider() {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{Writer: os.Stderr, MinLevel: &level})
	}
	return nil
}

func (c *Container) loadFixtures(ctx context.Context) error {
	src := c.Config.Sources
	loader := fixtures.NewLoader(c.sources, c.Logger(logging.FixturesModule))

	return c.catalog.EnsureRegistered("sources", func(catalog *registry.Catalog) error {
		for _, name := range src.Libraries {
			lib, err := loader.LoadLibrary(ctx, name)
			if err != nil {
				return err
			}
			lib.Register(catalog)
		}

		if dir := strings.TrimSpace(src.PresetDir); dir != "" {
			if _, err := fs.Stat(c.sources, dir); err == nil {
				presets, err := loader.LoadPresets(ctx, dir)
				if err != nil {
					return err
				}
				for _, p := range presets {
					catalog.Presets.Register(p.ID, p)
				}
			}
		}

		if name := strings.TrimSpace(src.ContentFile); name != "" {
			content, err := loader.LoadContent(ctx, name)
			if err != nil {
				return err
			}
			c.content = fixtures.MergeContent(c.content, content)
		}
		if dir := strings.TrimSpace(src.MarkdownDir); dir != "" && c.Config.Features.Markdown {
			content, err := loader.LoadMarkdownContent(ctx, dir)
			if err != nil {
				return err
			}
			c.content = fixtures.MergeContent(c.content, content)
		}
		return nil
	})
}

func (c *Container) configureThemes() error {
	if !c.Config.Features.Themes {
		return nil
	}
	if c.themes == nil {
		c.themes = themes.NewCatalog(themes.WithDefaults(c.Config.Sources.DefaultTheme, c.Config.Sources.DefaultVariant))
	}
	for _, dir := range c.Config.Sources.ThemeDirs {
		if _, err := c.themes.LoadDir(dir); err != nil {
			return err
		}
	}
	for _, name := range c.themes.Names() {
		theme, err := c.themes.Theme(name, "")
		if err != nil {
			return fmt.Errorf("di: theme %s: %w", name, err)
		}
		c.catalog.Themes.Register(name, theme)
		if theme.ID != name {
			c.catalog.Themes.Register(theme.ID, theme)
		}
	}
	return nil
}

func (c *Container) configureResolver() {
	res := c.Config.Resolution
	c.resolver = resolver.New(resolver.Options{
		MaxDepth:           res.MaxDepth,
		MaxRepeat:          res.MaxRepeat,
		DefaultKeyField:    res.DefaultKeyField,
		DeferredNamespaces: res.DeferredNamespaces,
		BarePaths:          res.BarePaths,
	})
}

func (c *Container) configureSiteService() {
	if c.siteSvc != nil {
		return
	}
	opts := []site.ServiceOption{
		site.WithResolver(c.resolver),
		site.WithLogger(c.Logger(logging.SiteModule)),
		site.WithComposeLogger(c.Logger(logging.ComposeModule)),
	}
	if c.metrics != nil {
		opts = append(opts, site.WithObserver(c.metrics))
	}
	c.siteSvc = site.NewService(c.catalog, opts...)
}

func (c *Container) configurePreview() {
	opts := []sitehttp.PreviewOption{
		sitehttp.WithBasePath(c.Config.Preview.BasePath),
		sitehttp.WithPresetLister(c.catalog.Presets),
		sitehttp.WithStaticContent(c.content),
		sitehttp.WithLogger(c.Logger(logging.HTTPModule)),
		sitehttp.WithTimeout(c.Config.Commands.Timeout),
	}
	if c.metrics != nil {
		opts = append(opts, sitehttp.WithMetricsHandler(c.metrics.Handler()))
	}
	c.preview = sitehttp.NewPreviewAPI(c.siteSvc, opts...)
}

// Logger returns the module logger from the configured provider.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Catalog() *registry.Catalog {
	return c.catalog
}

func (c *Container) SiteService() site.Service {
	return c.siteSvc
}

// Content returns the merged sample content.
func (c *Container) Content() map[string]any {
	return c.content
}

// Metrics returns nil unless the metrics feature is enabled.
func (c *Container) Metrics() *metrics.Recorder {
	return c.metrics
}

// PreviewHandler returns nil unless the preview feature is enabled.
func (c *Container) PreviewHandler() http.Handler {
	if c.preview == nil {
		return nil
	}
	return c.preview.Handler()
}

func (c *Container) ResolveSiteHandler() *sitecmd.ResolveSiteHandler {
	return sitecmd.NewResolveSiteHandler(c.siteSvc, commands.CommandLogger(c.loggerProvider, "site"),
		commands.WithTimeout[sitecmd.ResolveSiteCommand](c.Config.Commands.Timeout))
}

func (c *Container) ResolvePageHandler() *sitecmd.ResolvePageHandler {
	return sitecmd.NewResolvePageHandler(c.siteSvc, commands.CommandLogger(c.loggerProvider, "site"),
		commands.WithTimeout[sitecmd.ResolvePageCommand](c.Config.Commands.Timeout))
}

func (c *Container) ExpandDeferredHandler() *sitecmd.ExpandDeferredHandler {
	return sitecmd.NewExpandDeferredHandler(c.siteSvc, commands.CommandLogger(c.loggerProvider, "site"),
		commands.WithTimeout[sitecmd.ExpandDeferredCommand](c.Config.Commands.Timeout))
}

func (c *Container) BuildContractHandler() *contractcmd.BuildContractHandler {
	return contractcmd.NewBuildContractHandler(c.siteSvc, commands.CommandLogger(c.loggerProvider, "contract"),
		commands.WithTimeout[contractcmd.BuildContractCommand](c.Config.Commands.Timeout))
}

func (c *Container) CheckPresetHandler() *contractcmd.CheckPresetHandler {
	return contractcmd.NewCheckPresetHandler(c.siteSvc, commands.CommandLogger(c.loggerProvider, "contract"),
		commands.WithTimeout[contractcmd.CheckPresetCommand](c.Config.Commands.Timeout))
}
