package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jsync/internal/models"
	"github.com/desertthunder/jsync/internal/shared"
)

const syncRunColumns = `
	id, sequence, source_project, target_project, issue_types, max_issues,
	query, issues_fetched, issues_skipped, batches_total, batches_sent,
	status, error_message, started_at, completed_at, created_at, updated_at,
	deleted_at
`

// SyncRunRepository implements models.Repository[*models.SyncRun] for run history.
//
// Handles run CRUD operations with soft delete support and status/project queries.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a new run with a sequence number. An empty ID is replaced with a generated one.
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	run.SetSequence(sequence)

	query := `
		INSERT INTO sync_runs (
			id, sequence, source_project, target_project, issue_types, max_issues,
			query, issues_fetched, issues_skipped, batches_total, batches_sent,
			status, error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		sequence,
		run.SourceProject(),
		run.TargetProject(),
		run.IssueTypesString(),
		run.MaxIssues(),
		run.Query(),
		run.IssuesFetched(),
		run.IssuesSkipped(),
		run.BatchesTotal(),
		run.BatchesSent(),
		string(run.Status()),
		run.ErrorMessage(),
		run.StartedAt(),
		nullableTime(run.CompletedAt()),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanSyncRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return run, err
}

// GetBySequence retrieves a run by its sequence number.
func (r *SyncRunRepository) GetBySequence(sequence int) (*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE sequence = ? AND deleted_at IS NULL`

	run, err := scanSyncRun(r.db.QueryRow(query, sequence))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", shared.ErrRunNotFound, sequence)
	}
	return run, err
}

// Update writes the run's counters, status and completion time.
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET issues_fetched = ?, issues_skipped = ?, batches_total = ?,
			batches_sent = ?, status = ?, error_message = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.IssuesFetched(),
		run.IssuesSkipped(),
		run.BatchesTotal(),
		run.BatchesSent(),
		string(run.Status()),
		run.ErrorMessage(),
		nullableTime(run.CompletedAt()),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	return requireAffected(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *SyncRunRepository) Delete(id string) error {
	query := `
		UPDATE sync_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}

	return requireAffected(result, id)
}

// List retrieves runs matching criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "source" and "target" (project keys), "status" ([models.RunStatus] or string), "limit" (int).
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE deleted_at IS NULL`
	args := []any{}

	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source_project = ?"
		args = append(args, source)
	}

	if target, ok := criteria["target"].(string); ok && target != "" {
		query += " AND target_project = ?"
		args = append(args, target)
	}

	switch status := criteria["status"].(type) {
	case models.RunStatus:
		if status != "" {
			query += " AND status = ?"
			args = append(args, string(status))
		}
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrRunNotFound, id)
	}
	return nil
}

// scanSyncRun scans a single row into a [models.SyncRun]. [sql.ErrNoRows] is returned unwrapped.
func scanSyncRun(row scanner) (*models.SyncRun, error) {
	var (
		id            string
		sequence      int
		sourceProject string
		targetProject string
		issueTypes    string
		maxIssues     int
		query         string
		issuesFetched int
		issuesSkipped int
		batchesTotal  int
		batchesSent   int
		status        string
		errorMessage  string
		startedAt     time.Time
		completedAt   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &sourceProject, &targetProject, &issueTypes, &maxIssues,
		&query, &issuesFetched, &issuesSkipped, &batchesTotal, &batchesSent,
		&status, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run := models.NewSyncRun(sourceProject, targetProject, models.SplitIssueTypes(issueTypes), maxIssues, query, startedAt)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetStatus(models.RunStatus(status))
	run.SetIssuesFetched(issuesFetched)
	run.SetIssuesSkipped(issuesSkipped)
	run.SetBatchesTotal(batchesTotal)
	run.SetBatchesSent(batchesSent)
	run.SetErrorMessage(errorMessage)
	run.SetCompletedAt(timePtr(completedAt))
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.SetDeletedAt(timePtr(deletedAt))

	return run, nil
}
