package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/formatter"
	"github.com/desertthunder/jsync/internal/tasks"
	"github.com/desertthunder/jsync/internal/ui"
)

// syncReport is the JSON shape of `jsync sync --json`.
type syncReport struct {
	RunID         string              `json:"run_id"`
	Source        string              `json:"source"`
	Target        string              `json:"target"`
	Query         string              `json:"query"`
	IssuesFetched int                 `json:"issues_fetched"`
	IssuesSkipped int                 `json:"issues_skipped"`
	IssuesMoved   int                 `json:"issues_moved"`
	BatchesTotal  int                 `json:"batches_total"`
	BatchesSent   int                 `json:"batches_sent"`
	Batches       []tasks.BatchResult `json:"batches"`
	StartedAt     time.Time           `json:"started_at"`
	CompletedAt   time.Time           `json:"completed_at"`
	Error         string              `json:"error,omitempty"`
}

func newSyncReport(req tasks.SyncRequest, result *tasks.SyncResult, err error) syncReport {
	report := syncReport{Source: req.SourceProjectKey, Target: req.TargetProjectKey, Batches: []tasks.BatchResult{}}
	if result != nil {
		report.RunID = result.RunID
		report.Query = result.Query
		report.IssuesFetched = result.IssuesFetched
		report.IssuesSkipped = result.IssuesSkipped
		report.IssuesMoved = result.IssuesMoved()
		report.BatchesTotal = result.BatchesTotal
		report.BatchesSent = result.BatchesSent
		report.StartedAt = result.StartedAt
		report.CompletedAt = result.CompletedAt
		if result.Batches != nil {
			report.Batches = result.Batches
		}
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

// syncRequest builds a [tasks.SyncRequest] from flags, falling back to the [sync] config section.
func (r *Runner) syncRequest(cmd *cli.Command) tasks.SyncRequest {
	req := tasks.SyncRequest{
		SourceProjectKey: cmd.String("source"),
		TargetProjectKey: cmd.String("target"),
		MaxIssuesToMove:  cmd.Int("max"),
		IssueTypeNames:   cmd.StringSlice("type"),
	}
	if req.MaxIssuesToMove == 0 {
		req.MaxIssuesToMove = r.config.Sync.MaxIssuesToMove
	}
	if len(req.IssueTypeNames) == 0 {
		req.IssueTypeNames = append([]string(nil), r.config.Sync.IssueTypes...)
	}
	return req
}

// Sync moves issues from --source to --target.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	req := r.syncRequest(cmd)
	if err := req.Validate(); err != nil {
		return err
	}
	if err := r.requireTracker(); err != nil {
		return err
	}

	if r.config.Database.RecordRuns {
		if err := r.openRunStore(ctx); err != nil {
			r.logger.Warn("run history disabled", "error", err)
		}
	}

	if cmd.Bool("tui") {
		return r.syncTUI(ctx, req, !cmd.Bool("yes"))
	}

	if cmd.Bool("json") {
		result, err := r.engine.Sync(ctx, nil, req)
		if werr := r.writeJSON(newSyncReport(req, result, err), true); werr != nil {
			return werr
		}
		return err
	}

	r.logger.Info("starting synchronization", "source", req.SourceProjectKey, "target", req.TargetProjectKey, "max", req.MaxIssuesToMove)
	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Moving issues %s → %s", req.SourceProjectKey, req.TargetProjectKey)))

	progressCh := make(chan tasks.ProgressUpdate, req.ProgressCapacity())
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := r.engine.Sync(ctx, progressCh, req)
	close(progressCh)
	<-printed

	if err != nil {
		if result != nil && result.BatchesSent > 0 {
			r.writePlain("%s\n", ui.Warn(fmt.Sprintf("%d batch(es) were moved before the failure and stay moved.", result.BatchesSent)))
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	r.writePlainHeader("Synchronization Complete")
	r.writePlain("%s", formatter.SummaryText(result))
	if result.IssuesSkipped > 0 {
		r.writePlain("%s\n", ui.Warn(fmt.Sprintf("%d issue(s) were skipped, see the log for details.", result.IssuesSkipped)))
	}
	if r.runs != nil && r.config.Database.RecordRuns {
		r.writePlain("%s\n", ui.Help("Run recorded as "+result.RunID))
	}
	return nil
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.Querying:
		r.writePlain("🔍 %s\n", update.Message)
	case tasks.Grouping:
		r.writePlain("📦 %s\n", update.Message)
	case tasks.Moving:
		r.writePlain("   %s\n", update.Message)
	case tasks.Done:
		r.writePlain("%s\n", ui.OK("✓ "+update.Message))
	case tasks.Failed:
		r.writePlain("%s\n", ui.Error("✗ "+update.Message))
	}
}
