package site

import (
	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/contract"
	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/preset"
	"github.com/goliatone/go-sitekit/internal/tree"
)

// SiteRequest asks for the site document of a preset. Theme, Experience
// and Intro replace the preset's own values wholesale when set.
type SiteRequest struct {
	PresetID          string
	Content           map[string]any
	Theme             *preset.Theme
	Experience        *compose.ExperienceRef
	Intro             *compose.IntroRef
	IncludeTransition bool
	ExcludeIntro      bool
}

// PageRequest asks for one resolved page.
type PageRequest struct {
	PresetID string
	PageID   string
	Content  map[string]any
}

// DeferredRequest runs the runtime stage over nodes left by a page or
// site resolution. Bindings adds named frames (for example "item") on top
// of the content root.
type DeferredRequest struct {
	Nodes    []*tree.Resolved
	Content  map[string]any
	Bindings map[string]any
	ParentID string
}

// CheckRequest resolves a whole preset to look for leftovers. The
// contract sample is used when Content is nil.
type CheckRequest struct {
	PresetID string
	Content  map[string]any
}

// Document is the resolved site.
type Document struct {
	ID            string              `json:"id"`
	Name          string              `json:"name,omitempty"`
	Theme         *preset.Theme       `json:"theme,omitempty"`
	Chrome        ChromeDocument      `json:"chrome"`
	Pages         []PageSummary       `json:"pages"`
	Experience    *compose.Experience `json:"experience,omitempty"`
	Intro         *compose.Intro      `json:"intro,omitempty"`
	HiddenRegions []string            `json:"hidden_regions,omitempty"`
}

// ChromeDocument holds resolved chrome trees by region name. A region
// root that repeats may yield several nodes.
type ChromeDocument struct {
	Regions  map[string][]*tree.Resolved `json:"regions,omitempty"`
	Overlays map[string][]*tree.Resolved `json:"overlays,omitempty"`
}

// PageSummary is one entry of the site page index.
type PageSummary struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title,omitempty"`
}

// PageDocument is a resolved page.
type PageDocument struct {
	ID       string           `json:"id"`
	PresetID string           `json:"preset_id"`
	Slug     string           `json:"slug"`
	Head     HeadDocument     `json:"head"`
	Sections []*tree.Resolved `json:"sections"`
	Revision string           `json:"revision,omitempty"`
}

// HeadDocument is resolved page metadata.
type HeadDocument struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type SiteResult struct {
	Site        *Document                `json:"site"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

type PageResult struct {
	Page        *PageDocument            `json:"page"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

type DeferredResult struct {
	Nodes       []*tree.Resolved         `json:"nodes"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// ContractResult is the content contract of a preset. Missing lists node
// types with no registered declaration; Uncovered lists content bindings
// no declaration accounts for.
type ContractResult struct {
	PresetID  string             `json:"preset_id"`
	Contract  *contract.Contract `json:"contract"`
	Missing   []string           `json:"missing,omitempty"`
	Uncovered []string           `json:"uncovered,omitempty"`
}

// CheckReport summarises a full preset resolution.
type CheckReport struct {
	PresetID      string                   `json:"preset_id"`
	Scan          *contract.ScanReport     `json:"scan"`
	ContentIssues []contract.Issue         `json:"content_issues,omitempty"`
	Uncovered     []string                 `json:"uncovered,omitempty"`
	Diagnostics   []diagnostics.Diagnostic `json:"diagnostics"`
}

// Clean reports whether the check found nothing unexpected.
func (r *CheckReport) Clean() bool {
	return r != nil && r.Scan != nil && r.Scan.Clean() && len(r.ContentIssues) == 0
}
