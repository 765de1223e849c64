package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/jsync/internal/models"
	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
)

func TestSyncRunRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewSyncRunRepository(setupTestDB(t))
			run := newTestRun("", "DST")

			if err := repo.Create(run); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if run.Sequence() != 0 {
				t.Error("sequence should not be consumed by an invalid run")
			}
		})

		t.Run("DuplicateID", func(t *testing.T) {
			repo := NewSyncRunRepository(setupTestDB(t))

			first := newTestRun("SRC", "DST")
			first.SetID("dup")
			if err := repo.Create(first); err != nil {
				t.Fatalf("failed to create first run: %v", err)
			}

			second := newTestRun("SRC", "DST")
			second.SetID("dup")
			if err := repo.Create(second); err == nil {
				t.Fatal("expected error for duplicate id")
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSyncRunRepository(db)
			db.Close()

			if err := repo.Create(newTestRun("SRC", "DST")); err == nil {
				t.Fatal("expected error for closed database")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSyncRunRepository(setupTestDB(t))

			if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
			if _, err := repo.GetBySequence(99); !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSyncRunRepository(setupTestDB(t))
			run := newTestRun("SRC", "DST")
			run.SetID("missing")

			if err := repo.Update(run); !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := NewSyncRunRepository(setupTestDB(t))
			run := newTestRun("SRC", "DST")
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}

			run.SetBatchesSent(3)
			if err := repo.Update(run); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("AlreadyDeleted", func(t *testing.T) {
			repo := NewSyncRunRepository(setupTestDB(t))
			run := newTestRun("SRC", "DST")
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
			if err := repo.Delete(run.ID()); err != nil {
				t.Fatalf("failed to delete run: %v", err)
			}

			if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSyncRunRepository(db)
			db.Close()

			if _, err := repo.List(map[string]any{"status": models.RunRunning}); err == nil {
				t.Fatal("expected error for closed database")
			}
		})
	})
}

func TestRunRecorderAdapterErrors(t *testing.T) {
	t.Run("StartRun rejects invalid request", func(t *testing.T) {
		adapter := NewRunRecorderAdapter(NewSyncRunRepository(setupTestDB(t)))
		req := tasks.SyncRequest{SourceProjectKey: "SRC", TargetProjectKey: "DST"}

		if err := adapter.StartRun(context.Background(), "run", req, "", time.Now()); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
