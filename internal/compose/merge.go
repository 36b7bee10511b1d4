package compose

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"dario.cat/mergo"

	"github.com/goliatone/go-sitekit/internal/diagnostics"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Source looks up registered configurations by id.
type Source[T any] interface {
	Lookup(id string) (*T, bool)
}

// Merger resolves composition references against registry sources. Every
// call computes a fresh merge, registry entries are never modified.
type Merger struct {
	experiences Source[Experience]
	intros      Source[Intro]
	behaviours  Source[Behaviour]
	logger      interfaces.Logger
}

// MergerOption customises a Merger.
type MergerOption func(*Merger)

// WithBehaviours enables validation of behaviour ids in resolved
// experiences.
func WithBehaviours(source Source[Behaviour]) MergerOption {
	return func(m *Merger) {
		m.behaviours = source
	}
}

// WithLogger sets the logger for merge events.
func WithLogger(logger interfaces.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = logging.Or(logger)
	}
}

func NewMerger(experiences Source[Experience], intros Source[Intro], opts ...MergerOption) *Merger {
	m := &Merger{experiences: experiences, intros: intros, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// ResolveExperience returns the configuration for ref. A based reference
// whose base is not registered yields nil and a missing_base diagnostic.
func (m *Merger) ResolveExperience(ref *ExperienceRef, path string, diags *diagnostics.List) *Experience {
	resolved, err := resolve(ref, m.experiences, "experience", path, diags, MergeExperience)
	if err != nil {
		m.logger.Error("compose.experience.merge_failed", "base", baseOf(ref), "error", err)
		return nil
	}
	if resolved != nil {
		m.checkBehaviours(resolved, path, diags)
		m.logger.Debug("compose.experience.resolved", "id", resolved.ID, "base", baseOf(ref))
	}
	return resolved
}

// ResolveIntro returns the configuration for ref.
func (m *Merger) ResolveIntro(ref *IntroRef, path string, diags *diagnostics.List) *Intro {
	resolved, err := resolve(ref, m.intros, "intro", path, diags, MergeIntro)
	if err != nil {
		m.logger.Error("compose.intro.merge_failed", "base", baseOf(ref), "error", err)
		return nil
	}
	if resolved != nil {
		m.logger.Debug("compose.intro.resolved", "id", resolved.ID, "base", baseOf(ref))
	}
	return resolved
}

func resolve[T any, P interface {
	*T
	Clone() *T
}](ref *Reference[T], source Source[T], kind, path string, diags *diagnostics.List, merge func(base, overrides *T) (*T, error)) (*T, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Inline != nil {
		return P(ref.Inline).Clone(), nil
	}
	id := strings.TrimSpace(ref.Base)
	var base *T
	if source != nil && id != "" {
		base, _ = source.Lookup(id)
	}
	if base == nil {
		diags.Addf(diagnostics.KindMissingBase, path, id, "%s base %q is not registered", kind, id)
		return nil, nil
	}
	return merge(base, ref.Overrides)
}

func baseOf[T any](ref *Reference[T]) string {
	if ref == nil {
		return ""
	}
	return ref.Base
}

// MergeExperience applies overrides onto a copy of base. Scalar fields and
// the transition are merged field by field, a present override winning.
// Behaviours and Settings are merged per key: an override key replaces the
// base value for that key wholesale.
func MergeExperience(base, overrides *Experience) (*Experience, error) {
	out := base.Clone()
	if out == nil {
		out = &Experience{}
	}
	if overrides == nil {
		return out, nil
	}

	scalars := overrides.Clone()
	scalars.Behaviours = nil
	scalars.Settings = nil
	if err := mergo.Merge(out, *scalars, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("compose: merge experience: %w", err)
	}

	out.Behaviours = unionKeys(out.Behaviours, cloneAssignments(overrides.Behaviours))
	out.Settings = unionKeys(out.Settings, DeepCopyMap(overrides.Settings))
	return out, nil
}

// MergeIntro applies overrides onto a copy of base. Steps are replaced as
// a whole when the override lists any; Settings merge per key.
func MergeIntro(base, overrides *Intro) (*Intro, error) {
	out := base.Clone()
	if out == nil {
		out = &Intro{}
	}
	if overrides == nil {
		return out, nil
	}

	scalars := overrides.Clone()
	scalars.Steps = nil
	scalars.Settings = nil
	scalars.Enabled = nil
	if err := mergo.Merge(out, *scalars, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("compose: merge intro: %w", err)
	}

	if overrides.Enabled != nil {
		enabled := *overrides.Enabled
		out.Enabled = &enabled
	}
	if len(overrides.Steps) > 0 {
		out.Steps = cloneSteps(overrides.Steps)
	}
	out.Settings = unionKeys(out.Settings, DeepCopyMap(overrides.Settings))
	return out, nil
}

// unionKeys returns base with every key of overrides replacing the base
// value for that key.
func unionKeys[V any](base, overrides map[string]V) map[string]V {
	if len(overrides) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]V, len(overrides))
	}
	maps.Copy(base, overrides)
	return base
}

func (m *Merger) checkBehaviours(exp *Experience, path string, diags *diagnostics.List) {
	if m.behaviours == nil {
		return
	}
	for _, region := range slices.Sorted(maps.Keys(exp.Behaviours)) {
		for i, assignment := range exp.Behaviours[region] {
			if _, ok := m.behaviours.Lookup(assignment.Behaviour); !ok {
				diags.Addf(diagnostics.KindUnknownBehaviour,
					diagnostics.Index(diagnostics.Join(diagnostics.Join(path, "behaviours"), region), i),
					assignment.Behaviour, "behaviour %q is not registered", assignment.Behaviour)
			}
		}
	}
}
