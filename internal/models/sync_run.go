package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/jsync/internal/shared"
)

// RunStatus is the lifecycle state of a [SyncRun].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunRunning, RunSucceeded, RunFailed:
		return true
	default:
		return false
	}
}

// SyncRun records one synchronization from a source project to a target project.
type SyncRun struct {
	id            string
	sequence      int
	sourceProject string
	targetProject string
	issueTypes    []string
	maxIssues     int
	query         string
	status        RunStatus
	issuesFetched int
	issuesSkipped int
	batchesTotal  int
	batchesSent   int
	errorMessage  string
	startedAt     time.Time
	completedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewSyncRun creates a running SyncRun started at startedAt.
func NewSyncRun(sourceProject, targetProject string, issueTypes []string, maxIssues int, query string, startedAt time.Time) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sourceProject: sourceProject,
		targetProject: targetProject,
		issueTypes:    append([]string(nil), issueTypes...),
		maxIssues:     maxIssues,
		query:         query,
		status:        RunRunning,
		startedAt:     startedAt,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) SourceProject() string   { return r.sourceProject }
func (r *SyncRun) TargetProject() string   { return r.targetProject }
func (r *SyncRun) IssueTypes() []string    { return r.issueTypes }
func (r *SyncRun) MaxIssues() int          { return r.maxIssues }
func (r *SyncRun) Query() string           { return r.query }
func (r *SyncRun) Status() RunStatus       { return r.status }
func (r *SyncRun) IssuesFetched() int      { return r.issuesFetched }
func (r *SyncRun) IssuesSkipped() int      { return r.issuesSkipped }
func (r *SyncRun) BatchesTotal() int       { return r.batchesTotal }
func (r *SyncRun) BatchesSent() int        { return r.batchesSent }
func (r *SyncRun) ErrorMessage() string    { return r.errorMessage }
func (r *SyncRun) StartedAt() time.Time    { return r.startedAt }
func (r *SyncRun) CompletedAt() *time.Time { return r.completedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *SyncRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *SyncRun) SetID(id string)                  { r.id = id }
func (r *SyncRun) SetSequence(seq int)              { r.sequence = seq }
func (r *SyncRun) SetStatus(status RunStatus)       { r.status = status }
func (r *SyncRun) SetIssuesFetched(n int)           { r.issuesFetched = n }
func (r *SyncRun) SetIssuesSkipped(n int)           { r.issuesSkipped = n }
func (r *SyncRun) SetBatchesTotal(n int)            { r.batchesTotal = n }
func (r *SyncRun) SetBatchesSent(n int)             { r.batchesSent = n }
func (r *SyncRun) SetErrorMessage(msg string)       { r.errorMessage = msg }
func (r *SyncRun) SetCompletedAt(t *time.Time)      { r.completedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)         { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time)         { r.updatedAt = t }
func (r *SyncRun) SetDeletedAt(t *time.Time)        { r.deletedAt = t }
func (r *SyncRun) SetIssueTypesFromString(s string) { r.issueTypes = SplitIssueTypes(s) }

// IssueTypesString joins issue types for storage.
func (r *SyncRun) IssueTypesString() string {
	return strings.Join(r.issueTypes, ",")
}

// SplitIssueTypes is the inverse of [SyncRun.IssueTypesString].
func SplitIssueTypes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Duration returns the run time, or zero while the run has not completed.
func (r *SyncRun) Duration() time.Duration {
	if r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}

// Complete marks the run finished. A non-nil err marks it failed and stores its message.
func (r *SyncRun) Complete(at time.Time, err error) {
	r.completedAt = &at
	if err != nil {
		r.status = RunFailed
		r.errorMessage = err.Error()
		return
	}
	r.status = RunSucceeded
	r.errorMessage = ""
}

// Validate checks required fields and counter consistency.
func (r *SyncRun) Validate() error {
	if r.sourceProject == "" {
		return fmt.Errorf("%w: source project is required", shared.ErrInvalidInput)
	}
	if r.targetProject == "" {
		return fmt.Errorf("%w: target project is required", shared.ErrInvalidInput)
	}
	if r.maxIssues <= 0 {
		return fmt.Errorf("%w: max issues must be positive", shared.ErrInvalidInput)
	}
	if !r.status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, r.status)
	}
	if r.batchesSent > r.batchesTotal {
		return fmt.Errorf("%w: batches sent (%d) exceeds total (%d)", shared.ErrInvalidInput, r.batchesSent, r.batchesTotal)
	}
	if r.issuesSkipped > r.issuesFetched {
		return fmt.Errorf("%w: issues skipped (%d) exceeds fetched (%d)", shared.ErrInvalidInput, r.issuesSkipped, r.issuesFetched)
	}
	return nil
}

type syncRunJSON struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	SourceProject string     `json:"source_project"`
	TargetProject string     `json:"target_project"`
	IssueTypes    []string   `json:"issue_types"`
	MaxIssues     int        `json:"max_issues"`
	Query         string     `json:"query"`
	Status        RunStatus  `json:"status"`
	IssuesFetched int        `json:"issues_fetched"`
	IssuesSkipped int        `json:"issues_skipped"`
	BatchesTotal  int        `json:"batches_total"`
	BatchesSent   int        `json:"batches_sent"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// MarshalJSON exposes the run for `jsync runs` output.
func (r *SyncRun) MarshalJSON() ([]byte, error) {
	issueTypes := r.issueTypes
	if issueTypes == nil {
		issueTypes = []string{}
	}
	return json.Marshal(syncRunJSON{
		ID:            r.id,
		Sequence:      r.sequence,
		SourceProject: r.sourceProject,
		TargetProject: r.targetProject,
		IssueTypes:    issueTypes,
		MaxIssues:     r.maxIssues,
		Query:         r.query,
		Status:        r.status,
		IssuesFetched: r.issuesFetched,
		IssuesSkipped: r.issuesSkipped,
		BatchesTotal:  r.batchesTotal,
		BatchesSent:   r.batchesSent,
		ErrorMessage:  r.errorMessage,
		StartedAt:     r.startedAt,
		CompletedAt:   r.completedAt,
	})
}
