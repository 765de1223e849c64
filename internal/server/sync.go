package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
)

const (
	SyncTasksPath = "/api/jira/sync-tasks"

	syncSucceededMessage = "Tasks synchronization initiated successfully."
	syncFailedPrefix     = "Failed to synchronize tasks: "
)

// SyncHandler runs one synchronization per POST request.
type SyncHandler struct {
	engine tasks.SyncEngine
	logger *log.Logger
}

// NewSyncHandler creates a SyncHandler. A nil logger falls back to [log.Default].
func NewSyncHandler(engine tasks.SyncEngine, logger *log.Logger) *SyncHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncHandler{engine: engine, logger: logger.With("handler", "sync")}
}

// Routes returns the HTTP routes this handler serves.
func (h *SyncHandler) Routes() []string {
	return []string{SyncTasksPath}
}

// ServeHTTP parses the query string, runs the synchronizer and writes a plain text outcome.
//
// Invalid parameters yield 400. Any error from the run yields 500 with the error message.
// The run is detached from the request's cancellation: once issued it continues until
// every chunk is submitted or the Jira transport times out.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, err := ParseSyncRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("rejected sync request", "error", err)
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.engine == nil {
		writeText(w, http.StatusServiceUnavailable, syncFailedPrefix+shared.ErrServiceUnavailable.Error())
		return
	}

	result, err := h.engine.Sync(context.WithoutCancel(r.Context()), nil, req)
	switch {
	case errors.Is(err, shared.ErrInvalidArgument):
		writeText(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeText(w, http.StatusInternalServerError, syncFailedPrefix+err.Error())
		return
	}

	if result != nil {
		h.logger.Info("sync request complete",
			"source", req.SourceProjectKey,
			"target", req.TargetProjectKey,
			"issues", result.IssuesMoved(),
			"batches", result.BatchesSent,
		)
	}
	writeText(w, http.StatusOK, syncSucceededMessage)
}

// ParseSyncRequest reads a [tasks.SyncRequest] from query parameters.
//
// issueTypeNames may be repeated and each value may hold a comma-separated list.
func ParseSyncRequest(q url.Values) (tasks.SyncRequest, error) {
	req := tasks.SyncRequest{
		SourceProjectKey: strings.TrimSpace(q.Get("sourceProjectKey")),
		TargetProjectKey: strings.TrimSpace(q.Get("targetProjectKey")),
	}

	if req.SourceProjectKey == "" {
		return req, fmt.Errorf("%w: sourceProjectKey", shared.ErrMissingArgument)
	}
	if req.TargetProjectKey == "" {
		return req, fmt.Errorf("%w: targetProjectKey", shared.ErrMissingArgument)
	}

	raw := strings.TrimSpace(q.Get("maxIssuesToMove"))
	if raw == "" {
		return req, fmt.Errorf("%w: maxIssuesToMove", shared.ErrMissingArgument)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return req, fmt.Errorf("%w: maxIssuesToMove must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	req.MaxIssuesToMove = n

	for _, v := range q["issueTypeNames"] {
		for name := range strings.SplitSeq(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.IssueTypeNames = append(req.IssueTypeNames, name)
			}
		}
	}

	return req, nil
}
