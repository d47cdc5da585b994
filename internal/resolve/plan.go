// Package resolve computes the ordered install plan for a requested mod.
package resolve

import (
	"fmt"
	"strings"

	"github.com/magegihk/modinstaller/internal/types"
)

// Step is one entry of an install plan.
type Step struct {
	Kind types.StepKind `json:"kind" yaml:"kind"`
	Name string         `json:"name" yaml:"name"`
}

func (s Step) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
}

// Plan is the ordered install sequence for one target. The order of Steps is
// the install order and the target is always last.
type Plan struct {
	Target string `json:"target" yaml:"target"`
	Steps  []Step `json:"steps" yaml:"steps"`
}

// Summary returns counts of steps by kind.
func (p *Plan) Summary() (required, optional, target int) {
	for _, s := range p.Steps {
		switch s.Kind {
		case types.StepRequired:
			required++
		case types.StepOptional:
			optional++
		case types.StepTarget:
			target++
		}
	}
	return
}

// Names returns the step names in install order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

// Optional returns the optional steps in order.
func (p *Plan) Optional() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Kind == types.StepOptional {
			out = append(out, s)
		}
	}
	return out
}

// Without returns a copy of the plan minus the named optional steps.
// Required and target steps are never removed.
func (p *Plan) Without(declined ...string) *Plan {
	skip := make(map[string]bool, len(declined))
	for _, n := range declined {
		skip[n] = true
	}

	out := &Plan{Target: p.Target}
	for _, s := range p.Steps {
		if s.Kind == types.StepOptional && skip[s.Name] {
			continue
		}
		out.Steps = append(out.Steps, s)
	}
	return out
}

// Empty reports whether the plan has nothing beyond its target.
func (p *Plan) Empty() bool {
	return len(p.Steps) <= 1
}

func (p *Plan) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// builder appends steps while keeping the first occurrence of each name.
type builder struct {
	plan *Plan
	seen map[string]bool
}

// newBuilder reserves target so that a mod listing itself as a dependency
// never displaces its own target step.
func newBuilder(target string) *builder {
	return &builder{
		plan: &Plan{Target: target},
		seen: map[string]bool{target: true},
	}
}

func (b *builder) target() {
	b.plan.Steps = append(b.plan.Steps, Step{Kind: types.StepTarget, Name: b.plan.Target})
}

func (b *builder) add(kind types.StepKind, name string) {
	if b.seen[name] {
		return
	}
	b.seen[name] = true
	b.plan.Steps = append(b.plan.Steps, Step{Kind: kind, Name: name})
}
