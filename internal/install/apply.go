package install

import (
	"context"
	"fmt"
	"strings"

	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/resolve"
)

// Operation records one executed plan step.
type Operation struct {
	Step    resolve.Step `json:"step" yaml:"step"`
	Success bool         `json:"success" yaml:"success"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
	Outcome *Outcome     `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

// Result is the outcome of applying a plan.
type Result struct {
	Installed  []string    `json:"installed" yaml:"installed"`
	Failed     []string    `json:"failed,omitempty" yaml:"failed,omitempty"`
	Skipped    []string    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Operations []Operation `json:"operations" yaml:"operations"`
	Errors     []error     `json:"-" yaml:"-"`
}

// Outcomes returns the outcomes of the successful steps in order.
func (r *Result) Outcomes() []*Outcome {
	var out []*Outcome
	for _, op := range r.Operations {
		if op.Outcome != nil {
			out = append(out, op.Outcome)
		}
	}
	return out
}

func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "installed %d, failed %d, skipped %d", len(r.Installed), len(r.Failed), len(r.Skipped))
	for _, op := range r.Operations {
		if !op.Success {
			fmt.Fprintf(&b, "\n  %s: %s", op.Step, op.Error)
		}
	}
	return b.String()
}

// Apply installs the plan's steps in order.
//
// A failed required or target step stops the plan and the remaining steps are
// reported as skipped; the returned error is that step's failure. A failed
// optional step is recorded and the plan continues. Steps already applied are
// not rolled back.
func (in *Installer) Apply(ctx context.Context, cat *catalog.Catalog, plan *resolve.Plan) (*Result, error) {
	logger := logging.OrDiscard(in.Logger)
	res := &Result{}

	for i, step := range plan.Steps {
		op := Operation{Step: step}

		t, err := TargetFor(cat, step.Name)
		if err == nil {
			logger.Debug("applying step", "step", step)
			op.Outcome, err = in.Install(ctx, t)
		}

		if err != nil {
			op.Error = err.Error()
			res.Operations = append(res.Operations, op)
			res.Failed = append(res.Failed, step.Name)
			res.Errors = append(res.Errors, err)

			if step.Kind.AbortsPlan() {
				for _, rest := range plan.Steps[i+1:] {
					res.Skipped = append(res.Skipped, rest.Name)
				}
				logger.Warn("aborting plan", "step", step, "err", err)
				return res, fmt.Errorf("%s %s: %w", step.Kind, step.Name, err)
			}
			logger.Warn("optional step failed", "mod", step.Name, "err", err)
			continue
		}

		op.Success = true
		res.Operations = append(res.Operations, op)
		res.Installed = append(res.Installed, step.Name)
	}

	return res, nil
}
