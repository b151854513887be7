package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/paths"
	"github.com/mesh-intelligence/linkmapper/internal/retry"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

type stepFunc func(ctx context.Context, env Env) error

var stepFuncs = map[int]stepFunc{
	1: Step1,
	2: Step2,
	3: Step3,
	4: Step4,
	5: Step5,
}

// Run validates the configuration and step selection, removes stale link
// tables from the first selected step on, and runs the selected steps in
// order. The first error aborts the run.
func Run(ctx context.Context, env Env) error {
	cfg := env.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := paths.CheckSteps(cfg.Steps); err != nil {
		return err
	}
	steps := slices.Clone(cfg.Steps)
	slices.Sort(steps)
	steps = slices.Compact(steps)

	if err := env.Layout.Ensure(); err != nil {
		return err
	}
	if err := env.Layout.CleanUpLinkTables(steps[0]); err != nil {
		return err
	}

	for _, step := range steps {
		if !cfg.RunsStep(step) {
			env.Log.Info("skipping step", "step", step, "reason", "connecting fragments stops after step 2")
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		env.Log.Info("starting step", "step", step, "run", env.RunID)
		if err := stepFuncs[step](ctx, env); err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}
		env.Log.Info("finished step", "step", step)
	}
	return nil
}

// load fetches a collaborator product with retries. A nil source is a
// missing input.
func load[T any](ctx context.Context, env Env, name string, src Source[T]) (T, error) {
	if src == nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", name, types.ErrMissingInput)
	}
	return retry.Do(ctx, env.Retry, env.Log, name, func() (T, error) {
		return src.Load(ctx)
	})
}

// readPrevTable loads the table step builds on and re-checks its
// invariants.
func readPrevTable(env Env, step int) (*linktable.Table, error) {
	path, err := env.Layout.PrevStepLinkTable(step)
	if err != nil {
		return nil, err
	}
	env.Log.Info("reading link table", "path", path)
	t, err := linktable.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t.Canonicalize()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, i := range t.Filter(func(r types.LinkRecord) bool { return !r.Type.Known() }) {
		r := t.At(i)
		env.Log.Warn("unknown link type, treated as inactive", "link", r.LinkID, "code", int(r.Type))
	}
	return t, nil
}

// finishStep writes the step table and its log copy, archives it, and
// reports the summary.
func finishStep(env Env, step int, t *linktable.Table) error {
	out := env.Layout.ThisStepLinkTable(step)
	if err := linktable.WriteFile(out, t); err != nil {
		return err
	}
	if err := linktable.WriteFile(env.Layout.LogLinkTable(step), t); err != nil {
		return err
	}
	env.Log.Info("wrote link table", "path", out, "links", t.Len(), "columns", t.Columns())
	return archiveAndReport(env, step, t)
}

func archiveAndReport(env Env, step int, t *linktable.Table) error {
	if env.Archive != nil && env.RunID != "" {
		if err := env.Archive.SaveStep(env.RunID, step, t); err != nil {
			return fmt.Errorf("archiving step %d: %w", step, err)
		}
	}
	sum := t.Summarize()
	env.Log.Info("link summary",
		"step", step, "total", sum.Total, "active", sum.Active,
		"corridors", sum.Corridors, "components", sum.Components)
	if env.Out != nil {
		fmt.Fprint(env.Out, sum.String())
	}
	return nil
}
