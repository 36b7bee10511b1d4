package compose

import (
	"maps"
	"slices"
)

// BehaviourAssignment attaches a registered behaviour to a target inside a
// region.
type BehaviourAssignment struct {
	Behaviour string         `json:"behaviour" yaml:"behaviour" mapstructure:"behaviour"`
	Target    string         `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Options   map[string]any `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// Transition describes the page transition of an experience.
type Transition struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Duration int    `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Easing   string `json:"easing,omitempty" yaml:"easing,omitempty" mapstructure:"easing"`
}

// Experience groups behaviour assignments per region with site-wide motion
// settings.
type Experience struct {
	ID          string                           `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name        string                           `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string                           `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Behaviours  map[string][]BehaviourAssignment `json:"behaviours,omitempty" yaml:"behaviours,omitempty" mapstructure:"behaviours"`
	Transition  *Transition                      `json:"transition,omitempty" yaml:"transition,omitempty" mapstructure:"transition"`
	Settings    map[string]any                   `json:"settings,omitempty" yaml:"settings,omitempty" mapstructure:"settings"`
}

// IntroStep is one stage of an intro sequence.
type IntroStep struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Type     string         `json:"type" yaml:"type" mapstructure:"type"`
	Duration int            `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
}

// Intro is the sequence played before the first page renders.
type Intro struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Enabled     *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`
	Duration    int            `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Steps       []IntroStep    `json:"steps,omitempty" yaml:"steps,omitempty" mapstructure:"steps"`
	Settings    map[string]any `json:"settings,omitempty" yaml:"settings,omitempty" mapstructure:"settings"`
}

// Behaviour is a registered motion behaviour with its default options.
type Behaviour struct {
	ID          string         `json:"id" yaml:"id" mapstructure:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Defaults    map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty" mapstructure:"defaults"`
}

// Clone returns a deep copy.
func (e *Experience) Clone() *Experience {
	if e == nil {
		return nil
	}
	out := *e
	out.Behaviours = cloneAssignments(e.Behaviours)
	out.Settings = DeepCopyMap(e.Settings)
	if e.Transition != nil {
		transition := *e.Transition
		out.Transition = &transition
	}
	return &out
}

// Clone returns a deep copy.
func (i *Intro) Clone() *Intro {
	if i == nil {
		return nil
	}
	out := *i
	if i.Enabled != nil {
		enabled := *i.Enabled
		out.Enabled = &enabled
	}
	out.Steps = cloneSteps(i.Steps)
	out.Settings = DeepCopyMap(i.Settings)
	return &out
}

// IsEnabled treats a missing flag as enabled.
func (i *Intro) IsEnabled() bool {
	return i != nil && (i.Enabled == nil || *i.Enabled)
}

// Clone returns a deep copy.
func (b *Behaviour) Clone() *Behaviour {
	if b == nil {
		return nil
	}
	out := *b
	out.Defaults = DeepCopyMap(b.Defaults)
	return &out
}

func cloneAssignments(src map[string][]BehaviourAssignment) map[string][]BehaviourAssignment {
	if src == nil {
		return nil
	}
	out := make(map[string][]BehaviourAssignment, len(src))
	for region, list := range src {
		out[region] = cloneAssignmentList(list)
	}
	return out
}

func cloneAssignmentList(list []BehaviourAssignment) []BehaviourAssignment {
	if list == nil {
		return nil
	}
	out := make([]BehaviourAssignment, len(list))
	for i, assignment := range list {
		out[i] = assignment
		out[i].Options = DeepCopyMap(assignment.Options)
	}
	return out
}

func cloneSteps(steps []IntroStep) []IntroStep {
	if steps == nil {
		return nil
	}
	out := slices.Clone(steps)
	for i := range out {
		out[i].Props = DeepCopyMap(steps[i].Props)
	}
	return out
}

// DeepCopyMap copies nested maps and sequences. Other values are shared.
func DeepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepCopy(value)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return DeepCopyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = deepCopy(item)
		}
		return out
	case map[string]string:
		return maps.Clone(typed)
	case []string:
		return slices.Clone(typed)
	default:
		return typed
	}
}
