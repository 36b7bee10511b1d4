package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-sitekit/internal/binding"
	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/contract"
	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/identity"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/preset"
	"github.com/goliatone/go-sitekit/internal/registry"
	"github.com/goliatone/go-sitekit/internal/resolver"
	"github.com/goliatone/go-sitekit/internal/scope"
	"github.com/goliatone/go-sitekit/internal/tree"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Service assembles site and page documents from registered presets.
type Service interface {
	ResolveSite(ctx context.Context, req SiteRequest) (*SiteResult, error)
	ResolvePage(ctx context.Context, req PageRequest) (*PageResult, error)
	ExpandDeferred(ctx context.Context, req DeferredRequest) (*DeferredResult, error)
	Contract(ctx context.Context, presetID string) (*ContractResult, error)
	Check(ctx context.Context, req CheckRequest) (*CheckReport, error)
}

var (
	ErrCatalogRequired  = errors.New("site: catalog required")
	ErrPresetIDRequired = errors.New("site: preset id required")
	ErrPageIDRequired   = errors.New("site: page id required")
	ErrPresetNotFound   = errors.New("site: preset not found")
	ErrPageNotFound     = errors.New("site: page not found")
)

// Observer receives one call per finished operation.
type Observer interface {
	ObserveResolution(operation string, elapsed time.Duration, diags []diagnostics.Diagnostic, err error)
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithResolver replaces the default resolver.
func WithResolver(r *resolver.Resolver) ServiceOption {
	return func(s *service) {
		if r != nil {
			s.resolver = r
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports operation timings and diagnostics, typically to
// metrics.
func WithObserver(observer Observer) ServiceOption {
	return func(s *service) {
		s.observer = observer
	}
}

// WithComposeLogger sets the logger used by the composition merger.
func WithComposeLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.composeLogger = logger
	}
}

// WithNow overrides the clock used for operation timings.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	catalog       *registry.Catalog
	resolver      *resolver.Resolver
	merger        *compose.Merger
	logger        interfaces.Logger
	composeLogger interfaces.Logger
	observer      Observer
	now           func() time.Time
	sessions      sync.Map
}

// NewService constructs a site service reading catalog.
func NewService(catalog *registry.Catalog, opts ...ServiceOption) Service {
	if catalog == nil {
		panic(ErrCatalogRequired)
	}
	s := &service{
		catalog:  catalog,
		resolver: resolver.New(resolver.DefaultOptions()),
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.merger = catalog.Merger(logging.Or(s.composeLogger))
	return s
}

func (s *service) ResolveSite(ctx context.Context, req SiteRequest) (result *SiteResult, err error) {
	started := s.now()
	diags := s.diagnostics(ctx, req.PresetID, "")
	defer func() { s.observe("site", started, diags, err) }()

	p, err := s.preset(ctx, req.PresetID)
	if err != nil {
		return nil, err
	}
	sc := scope.New(contentOrEmpty(req.Content))

	doc := &Document{
		ID:     p.ID,
		Name:   p.Name,
		Theme:  s.theme(p, req.Theme, diags),
		Chrome: ChromeDocument{},
		Pages:  []PageSummary{},
	}

	doc.Chrome.Regions, doc.HiddenRegions = s.regions(p.Chrome.Regions, "regions", sc, diags, doc.HiddenRegions)
	doc.Chrome.Overlays, doc.HiddenRegions = s.regions(p.Chrome.Overlays, "overlays", sc, diags, doc.HiddenRegions)

	for _, page := range p.OrderedPages() {
		doc.Pages = append(doc.Pages, PageSummary{
			ID:    page.ID,
			Slug:  pageSlug(page),
			Title: s.text(page.Head.Title, sc, diagnostics.Join("pages."+page.ID+".head", "title"), diags),
		})
	}

	experienceRef := p.Experience
	if req.Experience != nil {
		experienceRef = req.Experience
	}
	if experience := s.merger.ResolveExperience(experienceRef, "experience", diags); experience != nil {
		if !req.IncludeTransition {
			experience.Transition = nil
		}
		doc.Experience = experience
	}

	if !req.ExcludeIntro {
		introRef := p.Intro
		if req.Intro != nil {
			introRef = req.Intro
		}
		doc.Intro = s.merger.ResolveIntro(introRef, "intro", diags)
	}

	s.logger.Debug("site.resolve.success", "preset_id", p.ID, "pages", len(doc.Pages), "diagnostics", diags.Len())
	return &SiteResult{Site: doc, Diagnostics: diags.Items()}, nil
}

func (s *service) ResolvePage(ctx context.Context, req PageRequest) (result *PageResult, err error) {
	started := s.now()
	diags := s.diagnostics(ctx, req.PresetID, req.PageID)
	defer func() { s.observe("page", started, diags, err) }()

	p, err := s.preset(ctx, req.PresetID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PageID) == "" {
		return nil, ErrPageIDRequired
	}
	page, ok := p.Page(req.PageID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrPageNotFound, p.ID, req.PageID)
	}

	doc, err := s.page(p, page, scope.New(contentOrEmpty(req.Content)), diags)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("site.page.success", "preset_id", p.ID, "page_id", page.ID, "nodes", tree.CountResolved(doc.Sections), "diagnostics", diags.Len())
	return &PageResult{Page: doc, Diagnostics: diags.Items()}, nil
}

func (s *service) ExpandDeferred(ctx context.Context, req DeferredRequest) (result *DeferredResult, err error) {
	started := s.now()
	diags := s.diagnostics(ctx, "", "")
	defer func() { s.observe("deferred", started, diags, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc := scope.New(contentOrEmpty(req.Content))
	for _, name := range slices.Sorted(maps.Keys(req.Bindings)) {
		sc = sc.Bind(name, req.Bindings[name])
	}
	nodes := s.resolver.ExpandDeferred(req.Nodes, sc, req.ParentID, "nodes", diags)
	return &DeferredResult{Nodes: nodes, Diagnostics: diags.Items()}, nil
}

func (s *service) Contract(ctx context.Context, presetID string) (*ContractResult, error) {
	p, err := s.preset(ctx, presetID)
	if err != nil {
		return nil, err
	}
	session := s.session(p)
	c, err := session.Contract()
	if err != nil {
		return nil, err
	}
	_, missing := s.catalog.Declarations(tree.Types(p.Nodes()))
	return &ContractResult{
		PresetID:  p.ID,
		Contract:  c,
		Missing:   missing,
		Uncovered: c.Uncovered(p.Nodes()),
	}, nil
}

func (s *service) Check(ctx context.Context, req CheckRequest) (report *CheckReport, err error) {
	started := s.now()
	diags := s.diagnostics(ctx, req.PresetID, "")
	defer func() { s.observe("check", started, diags, err) }()

	p, err := s.preset(ctx, req.PresetID)
	if err != nil {
		return nil, err
	}
	contractResult, err := s.Contract(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	content := req.Content
	if content == nil {
		content = contractResult.Contract.Sample
	}

	report = &CheckReport{PresetID: p.ID, Uncovered: contractResult.Uncovered}
	if err := s.session(p).ValidateContent(content); err != nil {
		if !errors.Is(err, contract.ErrContentInvalid) {
			return nil, err
		}
		report.ContentIssues = contract.Issues(err)
	}

	siteResult, err := s.ResolveSite(ctx, SiteRequest{PresetID: p.ID, Content: content, IncludeTransition: true})
	if err != nil {
		return nil, err
	}
	collected := slices.Clone(siteResult.Diagnostics)
	pages := map[string]any{}
	for _, page := range p.OrderedPages() {
		pageResult, err := s.ResolvePage(ctx, PageRequest{PresetID: p.ID, PageID: page.ID, Content: content})
		if err != nil {
			return nil, err
		}
		pages[page.ID] = pageResult.Page
		collected = append(collected, pageResult.Diagnostics...)
	}
	document := map[string]any{"site": siteResult.Site, "pages": pages}

	scan, err := contract.Scan(document, s.resolver.Options().DeferredNamespaces)
	if err != nil {
		return nil, err
	}
	for _, leftover := range scan.Leftovers {
		if !leftover.Deferred {
			diags.Addf(diagnostics.KindLeftoverBinding, leftover.Path, leftover.Value, "unresolved delimiter left in output")
		}
	}
	report.Scan = scan
	report.Diagnostics = append(collected, diags.Items()...)
	return report, nil
}

func (s *service) page(p *preset.Preset, page *preset.Page, sc *scope.Scope, diags *diagnostics.List) (*PageDocument, error) {
	base := "pages." + page.ID
	binder := s.resolver.Binder()

	doc := &PageDocument{
		ID:       page.ID,
		PresetID: p.ID,
		Slug:     pageSlug(page),
		Head: HeadDocument{
			Title:       s.text(page.Head.Title, sc, base+".head.title", diags),
			Description: s.text(page.Head.Description, sc, base+".head.description", diags),
			Meta:        binder.Map(page.Head.Meta, sc, base+".head.meta", diags),
		},
		Sections: s.resolver.ResolveNodes(page.Sections, sc, page.ID, base+".sections", diags),
	}
	if doc.Sections == nil {
		doc.Sections = []*tree.Resolved{}
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("site: encode page %s: %w", page.ID, err)
	}
	doc.Revision = identity.Revision(identity.PageUUID(p.ID, page.ID), encoded).String()
	return doc, nil
}

func (s *service) regions(regions map[string]*preset.Region, kind string, sc *scope.Scope, diags *diagnostics.List, hidden []string) (map[string][]*tree.Resolved, []string) {
	if len(regions) == 0 {
		return nil, hidden
	}
	out := make(map[string][]*tree.Resolved, len(regions))
	for _, name := range slices.Sorted(maps.Keys(regions)) {
		region := regions[name]
		if region == nil || region.Hidden || region.Root == nil {
			hidden = append(hidden, kind+"."+name)
			continue
		}
		path := "chrome." + kind + "." + name
		nodes := s.resolver.ResolveNode(region.Root, sc, name, path, diags)
		if len(nodes) > 0 {
			out[name] = nodes
		}
	}
	return out, hidden
}

// theme picks the request override, then the inline theme, then the
// registry entry named by ThemeID.
func (s *service) theme(p *preset.Preset, override *preset.Theme, diags *diagnostics.List) *preset.Theme {
	if override != nil {
		return override.Clone()
	}
	if p.Theme != nil {
		return p.Theme.Clone()
	}
	id := strings.TrimSpace(p.ThemeID)
	if id == "" {
		return nil
	}
	if theme, ok := s.catalog.Themes.Lookup(id); ok && theme != nil {
		return theme.Clone()
	}
	diags.Addf(diagnostics.KindMissingBase, "theme", id, "theme %q is not registered", id)
	return nil
}

// text resolves a string field that must stay a string.
func (s *service) text(value string, sc *scope.Scope, path string, diags *diagnostics.List) string {
	if value == "" {
		return ""
	}
	resolved, ok := s.resolver.Binder().String(value, sc, path, diags)
	if !ok || resolved == nil {
		return ""
	}
	if str, isString := resolved.(string); isString {
		return str
	}
	return binding.Stringify(resolved)
}

func (s *service) preset(ctx context.Context, id string) (*preset.Preset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrPresetIDRequired
	}
	p, ok := s.catalog.Presets.Lookup(id)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	return p, nil
}

// sessionEntry ties a cached session to the preset and declarations it
// was built from.
type sessionEntry struct {
	preset  *preset.Preset
	decls   []*contract.Declaration
	session *contract.Session
}

// session returns the cached contract session of a preset. The session is
// rebuilt when the preset or one of its component declarations has been
// registered again since it was cached.
func (s *service) session(p *preset.Preset) *contract.Session {
	decls, _ := s.catalog.Declarations(tree.Types(p.Nodes()))
	if existing, ok := s.sessions.Load(p.ID); ok {
		entry := existing.(*sessionEntry)
		if entry.preset == p && slices.Equal(entry.decls, decls) {
			return entry.session
		}
	}
	entry := &sessionEntry{
		preset: p,
		decls:  decls,
		session: contract.NewSession(func() ([]*contract.Declaration, error) {
			return decls, nil
		}),
	}
	s.sessions.Store(p.ID, entry)
	return entry.session
}

func (s *service) diagnostics(ctx context.Context, presetID, pageID string) *diagnostics.List {
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(logging.WithRequest(ctx, presetID, pageID))
	}
	return diagnostics.NewList(logger)
}

func (s *service) observe(operation string, started time.Time, diags *diagnostics.List, err error) {
	if err != nil {
		s.logger.Warn("site."+operation+".failed", "error", err)
	}
	if s.observer == nil {
		return
	}
	s.observer.ObserveResolution(operation, s.now().Sub(started), diags.Items(), err)
}

func pageSlug(page *preset.Page) string {
	source := strings.TrimSpace(page.Slug)
	if source == "" {
		source = page.ID
	}
	if normalized, err := slug.Normalize(source); err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(source)
}

func contentOrEmpty(content map[string]any) map[string]any {
	if content == nil {
		return map[string]any{}
	}
	return content
}
