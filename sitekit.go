package sitekit

import (
	"context"
	"net/http"

	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/contract"
	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/di"
	"github.com/goliatone/go-sitekit/internal/preset"
	"github.com/goliatone/go-sitekit/internal/registry"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/internal/tree"
)

type (
	Preset      = preset.Preset
	Theme       = preset.Theme
	Page        = preset.Page
	Node        = tree.Node
	Resolved    = tree.Resolved
	Experience  = compose.Experience
	Intro       = compose.Intro
	Behaviour   = compose.Behaviour
	Declaration = contract.Declaration
	Contract    = contract.Contract
	Diagnostic  = diagnostics.Diagnostic

	SiteRequest     = site.SiteRequest
	PageRequest     = site.PageRequest
	DeferredRequest = site.DeferredRequest
	CheckRequest    = site.CheckRequest
	SiteResult      = site.SiteResult
	PageResult      = site.PageResult
	DeferredResult  = site.DeferredResult
	ContractResult  = site.ContractResult
	CheckReport     = site.CheckReport
	SiteService     = site.Service
	Catalog         = registry.Catalog

	Option = di.Option
)

var (
	ErrPresetNotFound = site.ErrPresetNotFound
	ErrPageNotFound   = site.ErrPageNotFound

	WithLoggerProvider = di.WithLoggerProvider
	WithSources        = di.WithSources
	WithCatalog        = di.WithCatalog
	WithContent        = di.WithContent
	WithSiteService    = di.WithSiteService
)

// Module is the top level runtime facade.
type Module struct {
	container *di.Container
}

// New builds a module from cfg, loading every configured fixture.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Site() SiteService {
	return m.container.SiteService()
}

func (m *Module) Catalog() *Catalog {
	return m.container.Catalog()
}

// Content returns the sample content loaded from the configured sources.
func (m *Module) Content() map[string]any {
	return m.container.Content()
}

// RegisterPreset validates p and stores it, replacing any preset with the
// same id.
func (m *Module) RegisterPreset(p *Preset) error {
	if p == nil {
		return preset.ErrInvalidPreset
	}
	if err := p.Validate(); err != nil {
		return err
	}
	m.container.Catalog().Presets.Register(p.ID, p)
	return nil
}

// ResolveSite resolves the site document of a preset. A nil Content falls
// back to the module sample content.
func (m *Module) ResolveSite(ctx context.Context, req SiteRequest) (*SiteResult, error) {
	if req.Content == nil {
		req.Content = m.Content()
	}
	return m.Site().ResolveSite(ctx, req)
}

// ResolvePage resolves a single page. A nil Content falls back to the
// module sample content.
func (m *Module) ResolvePage(ctx context.Context, req PageRequest) (*PageResult, error) {
	if req.Content == nil {
		req.Content = m.Content()
	}
	return m.Site().ResolvePage(ctx, req)
}

func (m *Module) ExpandDeferred(ctx context.Context, req DeferredRequest) (*DeferredResult, error) {
	if req.Content == nil {
		req.Content = m.Content()
	}
	return m.Site().ExpandDeferred(ctx, req)
}

func (m *Module) Contract(ctx context.Context, presetID string) (*ContractResult, error) {
	return m.Site().Contract(ctx, presetID)
}

// Check resolves every page of a preset and scans for leftover bindings.
// Without content the contract sample is used.
func (m *Module) Check(ctx context.Context, req CheckRequest) (*CheckReport, error) {
	return m.Site().Check(ctx, req)
}

// PreviewHandler returns nil unless the preview feature is enabled.
func (m *Module) PreviewHandler() http.Handler {
	return m.container.PreviewHandler()
}

// DecodePreset parses and validates a JSON preset document.
func DecodePreset(data []byte) (*Preset, error) {
	return preset.DecodeJSON(data)
}
