// package tasks implements project-to-project issue synchronization.
//
// The core abstraction is SyncEngine, which queries a source project and moves the results in bulk.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/jsync/internal/jql"
	"github.com/desertthunder/jsync/internal/services"
	"github.com/desertthunder/jsync/internal/shared"
)

// SyncRequest holds the inputs of one synchronization run.
type SyncRequest struct {
	SourceProjectKey string
	TargetProjectKey string
	MaxIssuesToMove  int
	IssueTypeNames   []string
}

// Validate rejects requests that cannot produce a meaningful query.
func (r SyncRequest) Validate() error {
	if strings.TrimSpace(r.SourceProjectKey) == "" {
		return fmt.Errorf("%w: source project key is required", shared.ErrInvalidArgument)
	}
	if strings.TrimSpace(r.TargetProjectKey) == "" {
		return fmt.Errorf("%w: target project key is required", shared.ErrInvalidArgument)
	}
	if r.MaxIssuesToMove <= 0 {
		return fmt.Errorf("%w: max issues to move must be positive, got %d", shared.ErrInvalidArgument, r.MaxIssuesToMove)
	}
	return nil
}

// Query returns the JQL filter for the request: source project, issue types, newest first.
func (r SyncRequest) Query() string {
	return jql.Build(r.SourceProjectKey, r.IssueTypeNames, jql.FieldCreated, true)
}

// ProgressCapacity is the most updates one run of r can emit: querying, grouping,
// one per batch, then done or failed. A progress channel this large never drops an update.
func (r SyncRequest) ProgressCapacity() int {
	n := max(r.MaxIssuesToMove, 0)
	return (n+MaxBulkOperationSize-1)/MaxBulkOperationSize + 3
}

// BatchResult describes one submitted bulk-move request.
type BatchResult struct {
	Index        int    `json:"index"`        // Position of the chunk in the run, starting at 1
	Issues       int    `json:"issues"`       // Issues included in the request
	Destinations int    `json:"destinations"` // Distinct group keys in the request
	Response     string `json:"response"`     // Raw tracker response body
}

// SyncResult summarizes a run. On failure it holds what happened before the failing step.
type SyncResult struct {
	RunID         string
	Query         string
	IssuesFetched int
	IssuesSkipped int
	BatchesTotal  int // Chunks that produced a request
	BatchesSent   int // Requests the tracker accepted
	Batches       []BatchResult
	StartedAt     time.Time
	CompletedAt   time.Time
}

// IssuesMoved counts issues in accepted batches.
func (r *SyncResult) IssuesMoved() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Issues
	}
	return n
}

// RunRecorder persists run history. FinishRun follows StartRun for the same run ID.
type RunRecorder interface {
	StartRun(ctx context.Context, runID string, req SyncRequest, query string, startedAt time.Time) error
	FinishRun(ctx context.Context, result *SyncResult, runErr error) error
}

// SyncEngine defines the synchronization operation.
type SyncEngine interface {
	// Sync moves issues matching req from the source to the target project.
	//
	// The first tracker error is returned unchanged; earlier batches stay moved.
	Sync(ctx context.Context, progress chan<- ProgressUpdate, req SyncRequest) (*SyncResult, error)
}

// Synchronizer implements SyncEngine on top of a [services.Tracker].
type Synchronizer struct {
	tracker  services.Tracker
	recorder RunRecorder
	logger   *log.Logger
	now      func() time.Time
}

// NewSynchronizer creates a Synchronizer. A nil logger falls back to [log.Default].
func NewSynchronizer(tracker services.Tracker, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synchronizer{
		tracker: tracker,
		logger:  logger.With("component", "sync"),
		now:     time.Now,
	}
}

// SetRecorder enables run history.
func (s *Synchronizer) SetRecorder(r RunRecorder) {
	s.recorder = r
}

// sendProgress sends a progress update through the channel without blocking.
func (s *Synchronizer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync runs one synchronization on the calling goroutine.
func (s *Synchronizer) Sync(ctx context.Context, progress chan<- ProgressUpdate, req SyncRequest) (*SyncResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, fmt.Errorf("%w: tracker not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{
		RunID:     shared.GenerateID(),
		Query:     req.Query(),
		StartedAt: s.now(),
	}
	logger := shared.WithLogger(s.logger,
		"run_id", result.RunID,
		"source", req.SourceProjectKey,
		"target", req.TargetProjectKey,
	)

	if s.recorder != nil {
		if err := s.recorder.StartRun(ctx, result.RunID, req, result.Query, result.StartedAt); err != nil {
			logger.Warn("failed to record run start", "error", err)
		}
	}

	err := s.run(ctx, logger, progress, req, result)
	result.CompletedAt = s.now()

	if err != nil {
		logger.Error("synchronization failed", "batches_sent", result.BatchesSent, "error", err)
		s.sendProgress(progress, failedUpdate(result.BatchesSent, result.BatchesTotal, err))
	} else {
		logger.Info("synchronization complete", "issues", result.IssuesMoved(), "batches", result.BatchesSent)
		s.sendProgress(progress, doneUpdate(result))
	}

	if s.recorder != nil {
		if recErr := s.recorder.FinishRun(ctx, result, err); recErr != nil {
			logger.Warn("failed to record run outcome", "error", recErr)
		}
	}

	return result, err
}

func (s *Synchronizer) run(ctx context.Context, logger *log.Logger, progress chan<- ProgressUpdate, req SyncRequest, result *SyncResult) error {
	logger.Info("searching issues", "jql", result.Query, "max", req.MaxIssuesToMove)
	s.sendProgress(progress, queryingUpdate(result.Query))

	issues, err := s.tracker.SearchIssues(ctx, result.Query, req.MaxIssuesToMove)
	if err != nil {
		return err
	}
	result.IssuesFetched = len(issues)

	if len(issues) == 0 {
		logger.Info("no issues to move")
		return nil
	}

	chunks := ChunkIssues(issues, MaxBulkOperationSize)
	s.sendProgress(progress, groupingUpdate(len(issues), len(chunks)))

	batches := make([]*services.BulkMoveRequest, 0, len(chunks))
	for i, chunk := range chunks {
		batch, skipped := BuildBatch(req.TargetProjectKey, chunk)
		for _, sk := range skipped {
			logger.Warn("skipping issue", "issue", sk.Issue.ID, "reason", sk.Reason)
		}
		result.IssuesSkipped += len(skipped)

		if batch == nil {
			logger.Warn("no movable issues in chunk", "chunk", i+1)
			continue
		}
		batches = append(batches, batch)
	}
	result.BatchesTotal = len(batches)

	for i, batch := range batches {
		step := i + 1
		count := batch.IssueCount()
		s.sendProgress(progress, movingUpdate(step, len(batches), count))
		logger.Info("moving batch", "batch", step, "of", len(batches), "issues", count)

		body, err := s.tracker.MoveIssuesBulk(ctx, batch)
		if err != nil {
			return err
		}

		result.BatchesSent++
		result.Batches = append(result.Batches, BatchResult{
			Index:        step,
			Issues:       count,
			Destinations: len(batch.TargetToSourcesMapping),
			Response:     body,
		})
	}

	return nil
}
