// Jira Cloud REST v3 [Tracker] implementation
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	searchPath   = "/rest/api/3/search"
	bulkMovePath = "/rest/api/3/bulk/issues/move"

	paramJQL        = "jql"
	paramMaxResults = "maxResults"
	paramFields     = "fields"
)

// searchFields are the issue fields requested from the search endpoint.
var searchFields = []string{"id", "issuetype", "parent", "summary", "status"}

type jiraSearchResponse struct {
	Issues *[]jiraIssue `json:"issues"`
	Total  int          `json:"total"`
}

type jiraIssue struct {
	ID     string           `json:"id"`
	Key    string           `json:"key"`
	Fields *jiraIssueFields `json:"fields"`
}

type jiraIssueFields struct {
	Summary   string         `json:"summary"`
	IssueType *jiraIssueType `json:"issuetype"`
	Parent    *jiraRef       `json:"parent"`
}

type jiraIssueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

type jiraRef struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

func (i jiraIssue) record() IssueRecord {
	r := IssueRecord{ID: i.ID, Key: i.Key}
	if i.Fields == nil {
		return r
	}

	r.Summary = i.Fields.Summary
	if t := i.Fields.IssueType; t != nil {
		r.IssueTypeID = t.ID
		r.Subtask = t.Subtask
	}
	if p := i.Fields.Parent; p != nil {
		r.ParentID = p.ID
	}
	return r
}

// JiraService implements [Tracker] against the Jira Cloud REST API.
type JiraService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewJiraService creates a Jira tracker rooted at baseURL.
//
// client carries authentication and pooling (see [NewHTTPClient]); nil falls back to [http.DefaultClient].
func NewJiraService(baseURL string, client *http.Client, logger *log.Logger) *JiraService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}

	return &JiraService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger.With("component", "jira"),
	}
}

// Name returns the service name.
func (j *JiraService) Name() string {
	return "Jira"
}

// SearchIssues runs jql and returns the issues in the order Jira reported them.
//
// Calls GET /rest/api/3/search.
func (j *JiraService) SearchIssues(ctx context.Context, jql string, maxResults int) ([]IssueRecord, error) {
	params := url.Values{}
	params.Set(paramJQL, jql)
	params.Set(paramMaxResults, strconv.Itoa(maxResults))
	params.Set(paramFields, strings.Join(searchFields, ","))

	j.logger.Info("searching issues", "jql", jql, "max", maxResults)

	body, err := j.do(ctx, http.MethodGet, searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp jiraSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Issues == nil {
		return nil, &ClientError{
			Kind:       KindUnexpectedResponse,
			StatusCode: http.StatusOK,
			Body:       string(body),
			Message:    fmt.Sprintf("Unexpected response from JIRA API: search body has no issues array: %s", string(body)),
		}
	}

	issues := make([]IssueRecord, len(*resp.Issues))
	for i, issue := range *resp.Issues {
		issues[i] = issue.record()
	}

	j.logger.Info("search complete", "count", len(issues), "total", resp.Total)
	return issues, nil
}

// MoveIssuesBulk submits req and returns the raw response body.
//
// Calls POST /rest/api/3/bulk/issues/move.
func (j *JiraService) MoveIssuesBulk(ctx context.Context, req *BulkMoveRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode bulk move request: %w", err)
	}

	j.logger.Info("submitting bulk move", "destinations", len(req.TargetToSourcesMapping), "issues", req.IssueCount())
	j.logger.Debug("bulk move payload", "body", string(payload))

	body, err := j.do(ctx, http.MethodPost, bulkMovePath, payload)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// do sends one request and returns the body of a 2xx response.
//
// Non-2xx statuses become a [ClientError]; transport and read failures become a [CommunicationError].
func (j *JiraService) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, j.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		j.logger.Error("request failed", "method", method, "path", endpoint, "error", err)
		return nil, &CommunicationError{Op: method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		j.logger.Error("failed to read response", "method", method, "path", endpoint, "error", err)
		return nil, &CommunicationError{Op: method + " " + req.URL.Path, Err: err}
	}

	j.logger.Debug("response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, string(body))
	}
	return body, nil
}
