package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/formatter"
	"github.com/desertthunder/jsync/internal/models"
	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/ui"
)

// RunsList prints recorded runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openRunStore(ctx); err != nil {
		return err
	}

	criteria := map[string]any{
		"limit":  cmd.Int("limit"),
		"source": cmd.String("source"),
		"target": cmd.String("target"),
	}
	if status := cmd.String("status"); status != "" {
		s := models.RunStatus(strings.ToLower(status))
		if !s.Valid() {
			return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
		}
		criteria["status"] = s
	}

	runs, err := r.runs.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.RunsToJSON(runs)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded.\n")
	}

	for _, run := range runs {
		status := string(run.Status())
		switch run.Status() {
		case models.RunSucceeded:
			status = ui.OK(status)
		case models.RunFailed:
			status = ui.Error(status)
		default:
			status = ui.Warn(status)
		}
		r.writePlain("#%-4d %s  %s → %s  %s  batches %d/%d  %s\n",
			run.Sequence(),
			run.StartedAt().Local().Format("2006-01-02 15:04"),
			run.SourceProject(),
			run.TargetProject(),
			status,
			run.BatchesSent(),
			run.BatchesTotal(),
			ui.Help(run.ID()),
		)
	}
	return nil
}

// RunsShow prints one run, looked up by ID or by sequence number ("7" or "#7").
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	run, err := r.findRun(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}
	return r.writePlain("%s", formatter.RunDetailText(run))
}

// RunsExport writes run history to a file.
func (r *Runner) RunsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.openRunStore(ctx); err != nil {
		return err
	}

	runs, err := r.runs.List(map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	path, err := formatter.WriteRunsExport(runs, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported runs", "count", len(runs), "format", format, "path", path)
	return r.writePlain("✓ Exported %d run(s) to %s\n", len(runs), path)
}

// RunsDelete soft-deletes a run.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	run, err := r.findRun(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.runs.Delete(run.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted run #%d (%s)\n", run.Sequence(), run.ID())
}

func (r *Runner) findRun(ctx context.Context, ref string) (*models.SyncRun, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: run ID or sequence number", shared.ErrMissingArgument)
	}
	if err := r.openRunStore(ctx); err != nil {
		return nil, err
	}

	if seq, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		run, err := r.runs.GetBySequence(seq)
		if err == nil || !errors.Is(err, shared.ErrRunNotFound) {
			return run, err
		}
	}
	return r.runs.Get(ref)
}
