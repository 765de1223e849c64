package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/jsync/internal/models"
	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
)

// RunRecorderAdapter implements tasks.RunRecorder using SyncRunRepository.
type RunRecorderAdapter struct {
	repo *SyncRunRepository
}

// NewRunRecorderAdapter creates a new RunRecorderAdapter with the given repository
func NewRunRecorderAdapter(repo *SyncRunRepository) *RunRecorderAdapter {
	return &RunRecorderAdapter{repo: repo}
}

// StartRun inserts a running [models.SyncRun] keyed by runID.
func (a *RunRecorderAdapter) StartRun(_ context.Context, runID string, req tasks.SyncRequest, query string, startedAt time.Time) error {
	run := newRun(runID, req, query, startedAt)
	if err := a.repo.Create(run); err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun stores the counters and outcome of result.
func (a *RunRecorderAdapter) FinishRun(_ context.Context, result *tasks.SyncResult, runErr error) error {
	if result == nil {
		return fmt.Errorf("%w: nil sync result", shared.ErrInvalidArgument)
	}

	run, err := a.repo.Get(result.RunID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", result.RunID, err)
	}

	run.SetIssuesFetched(result.IssuesFetched)
	run.SetIssuesSkipped(result.IssuesSkipped)
	run.SetBatchesTotal(result.BatchesTotal)
	run.SetBatchesSent(result.BatchesSent)
	run.Complete(result.CompletedAt, runErr)

	if err := a.repo.Update(run); err != nil {
		return fmt.Errorf("failed to record run outcome: %w", err)
	}
	return nil
}

func newRun(runID string, req tasks.SyncRequest, query string, startedAt time.Time) *models.SyncRun {
	run := models.NewSyncRun(req.SourceProjectKey, req.TargetProjectKey, req.IssueTypeNames, req.MaxIssuesToMove, query, startedAt)
	run.SetID(runID)
	return run
}
