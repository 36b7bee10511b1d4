package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/tree"
)

// HiddenMarker is the region value that switches a chrome region off.
const HiddenMarker = "hidden"

// Theme carries design tokens. The engine never reads them, it only
// passes them through to the site document.
type Theme struct {
	ID      string         `json:"id"`
	Name    string         `json:"name,omitempty"`
	Variant string         `json:"variant,omitempty"`
	Tokens  map[string]any `json:"tokens,omitempty"`
	Source  string         `json:"source,omitempty"`
}

// Clone returns a deep copy.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	out := *t
	out.Tokens = compose.DeepCopyMap(t.Tokens)
	return &out
}

// Region is one chrome slot: a node tree or the hidden marker.
type Region struct {
	Hidden bool
	Root   *tree.Node
}

func (r Region) MarshalJSON() ([]byte, error) {
	if r.Hidden {
		return json.Marshal(HiddenMarker)
	}
	return json.Marshal(r.Root)
}

func (r *Region) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var marker string
		if err := json.Unmarshal(trimmed, &marker); err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(marker), HiddenMarker) {
			return fmt.Errorf("preset: region value %q is not %q", marker, HiddenMarker)
		}
		*r = Region{Hidden: true}
		return nil
	}
	var node tree.Node
	if err := json.Unmarshal(trimmed, &node); err != nil {
		return fmt.Errorf("preset: decode region: %w", err)
	}
	*r = Region{Root: &node}
	return nil
}

// Chrome holds the site-wide regions (header, footer) and overlays
// (menus, dialogs).
type Chrome struct {
	Regions  map[string]*Region `json:"regions,omitempty"`
	Overlays map[string]*Region `json:"overlays,omitempty"`
}

// Head is page metadata. String values may contain bindings.
type Head struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Page is one page tree of a preset.
type Page struct {
	ID       string       `json:"id"`
	Slug     string       `json:"slug,omitempty"`
	Order    int          `json:"order,omitempty"`
	Head     Head         `json:"head"`
	Sections []*tree.Node `json:"sections"`
}

// Preset is a reusable site template.
type Preset struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	ThemeID     string                 `json:"theme_id,omitempty"`
	Theme       *Theme                 `json:"theme,omitempty"`
	Chrome      Chrome                 `json:"chrome"`
	Experience  *compose.ExperienceRef `json:"experience,omitempty"`
	Intro       *compose.IntroRef      `json:"intro,omitempty"`
	Pages       map[string]*Page       `json:"pages"`
}

// Page returns the page with id.
func (p *Preset) Page(id string) (*Page, bool) {
	if p == nil {
		return nil, false
	}
	page, ok := p.Pages[strings.TrimSpace(id)]
	return page, ok && page != nil
}

// OrderedPages lists pages by Order, then id.
func (p *Preset) OrderedPages() []*Page {
	if p == nil {
		return nil
	}
	out := make([]*Page, 0, len(p.Pages))
	for _, id := range slices.Sorted(maps.Keys(p.Pages)) {
		if page := p.Pages[id]; page != nil {
			out = append(out, page)
		}
	}
	slices.SortStableFunc(out, func(a, b *Page) int {
		return a.Order - b.Order
	})
	return out
}

// Nodes returns every template root of the preset: chrome regions and
// overlays in name order, then page sections in page order.
func (p *Preset) Nodes() []*tree.Node {
	if p == nil {
		return nil
	}
	var out []*tree.Node
	for _, regions := range []map[string]*Region{p.Chrome.Regions, p.Chrome.Overlays} {
		for _, name := range slices.Sorted(maps.Keys(regions)) {
			if region := regions[name]; region != nil && !region.Hidden && region.Root != nil {
				out = append(out, region.Root)
			}
		}
	}
	for _, page := range p.OrderedPages() {
		out = append(out, page.Sections...)
	}
	return out
}
