// Package normalizer runs one correction pass over a works dataset:
// load, correct, report, write.
package normalizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jackzampolin/worknorm/internal/config"
	"github.com/jackzampolin/worknorm/internal/correct"
	"github.com/jackzampolin/worknorm/internal/report"
	"github.com/jackzampolin/worknorm/internal/works"
)

// Options controls a single pass.
type Options struct {
	Policy correct.Policy
	DryRun bool
	Logger *slog.Logger
}

// Run loads cfg.Dataset, applies the table for opts.Policy and, unless
// opts.DryRun is set, writes the result back to the same path. Nothing is
// written when loading or correcting fails.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*report.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()
	logger = logger.With("run_id", runID, "policy", opts.Policy, "dataset", cfg.Dataset)

	applierOpts, err := cfg.ApplierOptions(opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections: %w", err)
	}
	applier, err := correct.NewApplier(applierOpts)
	if err != nil {
		return nil, err
	}

	ds, err := works.Load(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "records", len(ds), "table_entries", len(applierOpts.Table))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, stats, err := applier.Apply(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to apply corrections: %w", err)
	}
	logger.Debug("corrections applied", "changes", stats.Total())

	rep := &report.Report{
		RunID:   runID,
		Policy:  opts.Policy,
		Dataset: cfg.Dataset,
		Records: len(out),
		Counts:  &stats,
		Changes: report.Changes(ds, out, applier.Fields(), cfg.IDField),
		Top:     report.TopAll(out, applier.Fields(), cfg.TopN),
		DryRun:  opts.DryRun,
	}

	if opts.DryRun {
		logger.Info("dry run, dataset not written", "changed_records", len(rep.Changes))
		return rep, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := works.Save(cfg.Dataset, out, works.WriteOptions{Atomic: cfg.AtomicWrite}); err != nil {
		return nil, err
	}
	rep.Written = true
	logger.Info("dataset written", "changed_records", len(rep.Changes), "atomic", cfg.AtomicWrite)

	return rep, nil
}

// Stats loads cfg.Dataset and reports its frequency tallies without changing it.
func Stats(cfg *config.Config) (*report.Report, error) {
	ds, err := works.Load(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	return &report.Report{
		Dataset: cfg.Dataset,
		Records: len(ds),
		Top:     report.TopAll(ds, cfg.Fields, cfg.TopN),
	}, nil
}
