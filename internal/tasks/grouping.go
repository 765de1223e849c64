package tasks

import (
	"errors"
	"strings"

	"github.com/desertthunder/jsync/internal/services"
)

// MaxBulkOperationSize is the most issues Jira accepts in one bulk-move request.
const MaxBulkOperationSize = 1000

var (
	ErrMissingIssueType = errors.New("issue has no issue type")
	ErrMissingParent    = errors.New("subtask has no parent")
)

// GroupKey identifies a bulk-move destination. ParentID is set only for subtasks.
type GroupKey struct {
	TargetProjectKey string
	IssueTypeID      string
	ParentID         string
}

// String renders the destination token Jira expects: "TARGET,typeId" or "TARGET,typeId,parentId".
func (k GroupKey) String() string {
	parts := []string{k.TargetProjectKey, k.IssueTypeID}
	if k.ParentID != "" {
		parts = append(parts, k.ParentID)
	}
	return strings.Join(parts, ",")
}

// KeyForIssue derives the destination of issue in targetProjectKey.
func KeyForIssue(targetProjectKey string, issue services.IssueRecord) (GroupKey, error) {
	if issue.IssueTypeID == "" {
		return GroupKey{}, ErrMissingIssueType
	}

	key := GroupKey{TargetProjectKey: targetProjectKey, IssueTypeID: issue.IssueTypeID}
	if issue.Subtask {
		if issue.ParentID == "" {
			return GroupKey{}, ErrMissingParent
		}
		key.ParentID = issue.ParentID
	}
	return key, nil
}

// ChunkIssues splits issues into contiguous chunks of at most size, preserving order.
func ChunkIssues(issues []services.IssueRecord, size int) [][]services.IssueRecord {
	if size <= 0 {
		size = MaxBulkOperationSize
	}

	chunks := make([][]services.IssueRecord, 0, (len(issues)+size-1)/size)
	for start := 0; start < len(issues); start += size {
		end := min(start+size, len(issues))
		chunks = append(chunks, issues[start:end])
	}
	return chunks
}

// SkippedIssue is an issue left out of a batch and the reason why.
type SkippedIssue struct {
	Issue  services.IssueRecord
	Reason error
}

// BuildBatch groups one chunk into a bulk-move request.
//
// The request is nil when every issue in the chunk was skipped.
func BuildBatch(targetProjectKey string, chunk []services.IssueRecord) (*services.BulkMoveRequest, []SkippedIssue) {
	var skipped []SkippedIssue
	req := services.NewBulkMoveRequest()

	for _, issue := range chunk {
		key, err := KeyForIssue(targetProjectKey, issue)
		if err != nil {
			skipped = append(skipped, SkippedIssue{Issue: issue, Reason: err})
			continue
		}
		req.Add(key.String(), issue.ID)
	}

	if len(req.TargetToSourcesMapping) == 0 {
		return nil, skipped
	}
	return req, skipped
}
