package registry

import (
	"sync"

	"github.com/goliatone/go-sitekit/internal/compose"
	"github.com/goliatone/go-sitekit/internal/contract"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/preset"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Catalog groups the process-wide registries. Hosts populate it once at
// startup through EnsureRegistered; afterwards it is read-only.
type Catalog struct {
	Presets     *Registry[*preset.Preset]
	Themes      *Registry[*preset.Theme]
	Experiences *Registry[*compose.Experience]
	Behaviours  *Registry[*compose.Behaviour]
	Intros      *Registry[*compose.Intro]
	Components  *Registry[*contract.Declaration]

	logger        interfaces.Logger
	registrations sync.Map
}

type registration struct {
	once sync.Once
	err  error
}

// NewCatalog returns empty registries sharing logger.
func NewCatalog(logger interfaces.Logger) *Catalog {
	logger = logging.Or(logger)
	return &Catalog{
		Presets:     New[*preset.Preset]("preset", logger),
		Themes:      New[*preset.Theme]("theme", logger),
		Experiences: New[*compose.Experience]("experience", logger),
		Behaviours:  New[*compose.Behaviour]("behaviour", logger),
		Intros:      New[*compose.Intro]("intro", logger),
		Components:  New[*contract.Declaration]("component", logger),
		logger:      logger,
	}
}

// EnsureRegistered runs fn the first time name is seen and returns its
// result on every call. Concurrent callers wait for the first run.
func (c *Catalog) EnsureRegistered(name string, fn func(*Catalog) error) error {
	entry, loaded := c.registrations.LoadOrStore(name, &registration{})
	reg := entry.(*registration)
	reg.once.Do(func() {
		if fn != nil {
			reg.err = fn(c)
		}
		if reg.err != nil {
			c.logger.Error("registry.ensure.failed", "name", name, "error", reg.err)
			return
		}
		c.logger.Debug("registry.ensure.done", "name", name)
	})
	if loaded {
		c.logger.Trace("registry.ensure.skipped", "name", name)
	}
	return reg.err
}

// Merger returns a composition merger reading this catalog.
func (c *Catalog) Merger(logger interfaces.Logger) *compose.Merger {
	return compose.NewMerger(c.Experiences, c.Intros,
		compose.WithBehaviours(c.Behaviours),
		compose.WithLogger(logger),
	)
}

// Declarations returns the component declarations for types in order,
// plus the types with no registered declaration.
func (c *Catalog) Declarations(types []string) ([]*contract.Declaration, []string) {
	var found []*contract.Declaration
	var missing []string
	for _, typ := range types {
		if decl, ok := c.Components.Lookup(typ); ok && decl != nil {
			found = append(found, decl)
			continue
		}
		missing = append(missing, typ)
	}
	return found, missing
}
