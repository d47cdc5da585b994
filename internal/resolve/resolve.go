package resolve

import (
	"fmt"

	"github.com/magegihk/modinstaller/internal/catalog"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/state"
	"github.com/magegihk/modinstaller/internal/types"
)

// Policy selects how far required dependencies are followed.
type Policy string

const (
	// PolicyShallow resolves only the target's own dependency lists.
	PolicyShallow Policy = "shallow"
	// PolicyTransitive also walks the requirements of each required dependency.
	PolicyTransitive Policy = "transitive"
)

// ParsePolicy converts a string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyShallow:
		return PolicyShallow, nil
	case PolicyTransitive:
		return PolicyTransitive, nil
	}
	return "", fmt.Errorf("invalid resolve policy %q (valid: %s, %s)", s, PolicyShallow, PolicyTransitive)
}

// Resolver builds install plans. The zero value resolves shallowly.
type Resolver struct {
	Policy Policy
}

// Plan returns the install plan for target. It performs no I/O and returns the
// same plan for the same catalog and state.
//
// Dependencies that are already installed, enabled or disabled, are left out.
// The target itself is always the final step.
func (r Resolver) Plan(cat *catalog.Catalog, st *state.State, target string) (*Plan, error) {
	desc, ok := cat.Get(target)
	if !ok {
		return nil, moderrors.UnknownMod(target)
	}
	if st == nil {
		st = state.New()
	}

	b := newBuilder(target)

	switch r.Policy {
	case PolicyTransitive:
		w := &walker{cat: cat, st: st, b: b, visiting: map[string]bool{target: true}}
		if err := w.requires(desc); err != nil {
			return nil, err
		}
	default:
		for _, dep := range desc.Requires {
			if err := requireStep(cat, st, b, dep); err != nil {
				return nil, err
			}
		}
	}

	for _, dep := range desc.Optional {
		if _, known := cat.Get(dep); !known {
			continue
		}
		if st.Installed(dep) {
			continue
		}
		b.add(types.StepOptional, dep)
	}

	b.target()
	return b.plan, nil
}

// Resolve plans target with the shallow policy.
func Resolve(cat *catalog.Catalog, st *state.State, target string) (*Plan, error) {
	return Resolver{}.Plan(cat, st, target)
}

func requireStep(cat *catalog.Catalog, st *state.State, b *builder, dep string) error {
	if cat.IsAPI(dep) {
		if !st.APIInstalled {
			b.add(types.StepRequired, catalog.APIName)
		}
		return nil
	}
	if _, ok := cat.Get(dep); !ok {
		return moderrors.UnknownMod(dep)
	}
	if !st.Installed(dep) {
		b.add(types.StepRequired, dep)
	}
	return nil
}

// walker expands required dependencies depth first so that deeper
// requirements are emitted before the mods that need them.
type walker struct {
	cat      *catalog.Catalog
	st       *state.State
	b        *builder
	visiting map[string]bool
	done     map[string]bool
}

func (w *walker) requires(desc *catalog.Descriptor) error {
	for _, dep := range desc.Requires {
		if w.cat.IsAPI(dep) {
			if err := requireStep(w.cat, w.st, w.b, dep); err != nil {
				return err
			}
			continue
		}

		child, ok := w.cat.Get(dep)
		if !ok {
			return moderrors.UnknownMod(dep)
		}
		if w.visiting[dep] || w.done[dep] {
			continue
		}

		w.visiting[dep] = true
		if err := w.requires(child); err != nil {
			return err
		}
		w.visiting[dep] = false
		if w.done == nil {
			w.done = make(map[string]bool)
		}
		w.done[dep] = true

		if err := requireStep(w.cat, w.st, w.b, dep); err != nil {
			return err
		}
	}
	return nil
}
