// package services defines interface Tracker for interacting with issue-tracker HTTP APIs
//
// Jira Cloud (REST v3)
package services

import (
	"context"
)

// Tracker defines the operations the synchronizer needs from an issue tracker.
//
// Each call performs exactly one network request and never retries.
type Tracker interface {
	// SearchIssues runs a JQL query and returns at most maxResults issues in response order.
	SearchIssues(ctx context.Context, jql string, maxResults int) ([]IssueRecord, error)

	// MoveIssuesBulk submits one bulk-move request and returns the raw response body.
	MoveIssuesBulk(ctx context.Context, req *BulkMoveRequest) (string, error)

	// Name returns the name of the tracker (e.g., "Jira")
	Name() string
}

// IssueRecord is the subset of a Jira issue needed to route it to a destination.
//
// Empty IssueTypeID means the issue type was absent; empty ParentID means no parent.
type IssueRecord struct {
	ID          string
	Key         string
	Summary     string
	IssueTypeID string
	Subtask     bool
	ParentID    string
}

// TargetToSourcesMapping lists the issues that move into one (project, type[, parent]) destination.
type TargetToSourcesMapping struct {
	InferFieldDefaults      bool     `json:"inferFieldDefaults"`
	InferStatusDefaults     bool     `json:"inferStatusDefaults"`
	InferSubtaskTypeDefault bool     `json:"inferSubtaskTypeDefault"`
	IssueIdsOrKeys          []string `json:"issueIdsOrKeys"`
}

// NewTargetToSourcesMapping returns a mapping with every infer flag enabled and no issues.
func NewTargetToSourcesMapping() *TargetToSourcesMapping {
	return &TargetToSourcesMapping{
		InferFieldDefaults:      true,
		InferStatusDefaults:     true,
		InferSubtaskTypeDefault: true,
		IssueIdsOrKeys:          []string{},
	}
}

// BulkMoveRequest is the body of POST /rest/api/3/bulk/issues/move, keyed by destination token.
type BulkMoveRequest struct {
	TargetToSourcesMapping map[string]*TargetToSourcesMapping `json:"targetToSourcesMapping"`
}

// NewBulkMoveRequest returns an empty request.
func NewBulkMoveRequest() *BulkMoveRequest {
	return &BulkMoveRequest{TargetToSourcesMapping: make(map[string]*TargetToSourcesMapping)}
}

// Add appends issueID to the mapping for key, creating the mapping on first use.
func (r *BulkMoveRequest) Add(key, issueID string) {
	m, ok := r.TargetToSourcesMapping[key]
	if !ok {
		m = NewTargetToSourcesMapping()
		r.TargetToSourcesMapping[key] = m
	}
	m.IssueIdsOrKeys = append(m.IssueIdsOrKeys, issueID)
}

// IssueCount returns the number of issues across all mappings.
func (r *BulkMoveRequest) IssueCount() int {
	n := 0
	for _, m := range r.TargetToSourcesMapping {
		n += len(m.IssueIdsOrKeys)
	}
	return n
}
