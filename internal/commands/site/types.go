package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitekit/internal/site"
)

const (
	resolveSiteMessageType    = "sitekit.site.resolve"
	resolvePageMessageType    = "sitekit.site.page"
	expandDeferredMessageType = "sitekit.site.deferred"
)

// ResolveSiteCommand resolves the site document of a preset.
type ResolveSiteCommand struct {
	PresetID          string                 `json:"preset_id"`
	Content           map[string]any         `json:"content,omitempty"`
	IncludeTransition bool                   `json:"include_transition,omitempty"`
	ExcludeIntro      bool                   `json:"exclude_intro,omitempty"`
	ResultCallback    func(*site.SiteResult) `json:"-"`
}

// Type implements command.Message.
func (ResolveSiteCommand) Type() string { return resolveSiteMessageType }

func (m ResolveSiteCommand) Validate() error {
	return validation.Errors{
		"preset_id": requiredID(m.PresetID, "sitekit.site.resolve.preset_id_required", "preset_id is required"),
	}.Filter()
}

// ResolvePageCommand resolves one page of a preset.
type ResolvePageCommand struct {
	PresetID       string                 `json:"preset_id"`
	PageID         string                 `json:"page_id"`
	Content        map[string]any         `json:"content,omitempty"`
	ResultCallback func(*site.PageResult) `json:"-"`
}

// Type implements command.Message.
func (ResolvePageCommand) Type() string { return resolvePageMessageType }

func (m ResolvePageCommand) Validate() error {
	return validation.Errors{
		"preset_id": requiredID(m.PresetID, "sitekit.site.page.preset_id_required", "preset_id is required"),
		"page_id":   requiredID(m.PageID, "sitekit.site.page.page_id_required", "page_id is required"),
	}.Filter()
}

// ExpandDeferredCommand runs the runtime stage over previously resolved
// nodes.
type ExpandDeferredCommand struct {
	Request        site.DeferredRequest       `json:"request"`
	ResultCallback func(*site.DeferredResult) `json:"-"`
}

// Type implements command.Message.
func (ExpandDeferredCommand) Type() string { return expandDeferredMessageType }

func (m ExpandDeferredCommand) Validate() error {
	if len(m.Request.Nodes) == 0 {
		return validation.Errors{
			"nodes": validation.NewError("sitekit.site.deferred.nodes_required", "at least one node is required"),
		}
	}
	return nil
}

func requiredID(value, code, message string) error {
	if strings.TrimSpace(value) == "" {
		return validation.NewError(code, message)
	}
	return nil
}
