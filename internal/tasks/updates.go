package tasks

import "fmt"

// ProgressUpdate represents a progress event during a synchronization run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Run phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Run phase enumeration
type Phase int

const (
	Idle Phase = iota
	Querying
	Grouping
	Moving
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Querying:
		return "querying"
	case Grouping:
		return "grouping"
	case Moving:
		return "moving"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Terminal reports whether no further updates follow p.
func (p Phase) Terminal() bool {
	return p == Done || p == Failed
}

func queryingUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Querying,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching issues: %s", query),
		Data:    query,
	}
}

func groupingUpdate(fetched, chunks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Grouping,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Grouping %d issues into %d batches...", fetched, chunks),
	}
}

func movingUpdate(step, total, issues int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Moving,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Moving batch %d/%d (%d issues)...", step, total, issues),
	}
}

func doneUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    result.BatchesSent,
		Total:   result.BatchesTotal,
		Message: fmt.Sprintf("Moved %d issues in %d batches", result.IssuesMoved(), result.BatchesSent),
		Data:    result,
	}
}

func failedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Synchronization failed: %v", err),
		Data:    err,
	}
}
