package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/jsync/internal/shared"
	tu "github.com/desertthunder/jsync/internal/testing"
)

func newTestJira(t *testing.T, handler http.HandlerFunc) *JiraService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewJiraService(server.URL, server.Client(), log.New(io.Discard))
}

func TestJiraService(t *testing.T) {
	t.Run("NewJiraService", func(t *testing.T) {
		svc := NewJiraService("https://acme.atlassian.net/", nil, nil)
		assert.Equal(t, "https://acme.atlassian.net", svc.baseURL)
		assert.Same(t, http.DefaultClient, svc.httpClient)
		assert.Equal(t, "Jira", svc.Name())
	})

	t.Run("SearchIssues", func(t *testing.T) {
		t.Run("sends query parameters and parses issues", func(t *testing.T) {
			svc := newTestJira(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/rest/api/3/search", r.URL.Path)
				assert.Equal(t, "project=SRC ORDER BY created DESC", r.URL.Query().Get("jql"))
				assert.Equal(t, "25", r.URL.Query().Get("maxResults"))
				assert.Equal(t, "id,issuetype,parent,summary,status", r.URL.Query().Get("fields"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))

				json.NewEncoder(w).Encode(tu.SearchJSON(
					tu.IssueJSON("10001", "3", false, ""),
					tu.IssueJSON("10002", "5", true, "10001"),
					map[string]any{"id": "10003"},
				))
			})

			issues, err := svc.SearchIssues(context.Background(), "project=SRC ORDER BY created DESC", 25)
			require.NoError(t, err)
			require.Len(t, issues, 3)

			assert.Equal(t, IssueRecord{ID: "10001", Key: "SRC-10001", Summary: "Issue 10001", IssueTypeID: "3"}, issues[0])
			assert.Equal(t, "5", issues[1].IssueTypeID)
			assert.True(t, issues[1].Subtask)
			assert.Equal(t, "10001", issues[1].ParentID)
			assert.Equal(t, IssueRecord{ID: "10003"}, issues[2])
		})

		t.Run("empty issues array", func(t *testing.T) {
			svc := newTestJira(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"issues":[],"total":0}`))
			})

			issues, err := svc.SearchIssues(context.Background(), "project=SRC", 10)
			require.NoError(t, err)
			assert.Empty(t, issues)
		})

		t.Run("body without issues array", func(t *testing.T) {
			for _, body := range []string{`{"total":0}`, `[]`, `not json`} {
				svc := newTestJira(t, func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(body))
				})

				_, err := svc.SearchIssues(context.Background(), "project=SRC", 10)
				require.Error(t, err, body)
				assert.True(t, IsClientError(err, KindUnexpectedResponse), body)
				assert.ErrorIs(t, err, shared.ErrUnexpectedResponse)
			}
		})
	})

	t.Run("MoveIssuesBulk", func(t *testing.T) {
		t.Run("posts mapping and returns raw body", func(t *testing.T) {
			svc := newTestJira(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/rest/api/3/bulk/issues/move", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body map[string]map[string]map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

				mapping := body["targetToSourcesMapping"]["DST,10001"]
				require.NotNil(t, mapping)
				assert.Equal(t, true, mapping["inferFieldDefaults"])
				assert.Equal(t, true, mapping["inferStatusDefaults"])
				assert.Equal(t, true, mapping["inferSubtaskTypeDefault"])
				assert.Equal(t, []any{"1", "2"}, mapping["issueIdsOrKeys"])

				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"taskId":"42"}`))
			})

			req := NewBulkMoveRequest()
			req.Add("DST,10001", "1")
			req.Add("DST,10001", "2")

			body, err := svc.MoveIssuesBulk(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, `{"taskId":"42"}`, body)
		})
	})

	t.Run("status classification", func(t *testing.T) {
		tc := []struct {
			name     string
			status   int
			kind     ErrorKind
			sentinel error
			message  string
		}{
			{name: "bad request", status: 400, kind: KindInvalidQuery, sentinel: shared.ErrInvalidQuery, message: "Invalid query: Status Code 400"},
			{name: "unauthorized", status: 401, kind: KindAuthFailure, sentinel: shared.ErrAuthFailed, message: "Authentication or permission issue: Status Code 401"},
			{name: "forbidden", status: 403, kind: KindAuthFailure, sentinel: shared.ErrAuthFailed, message: "Authentication or permission issue: Status Code 403"},
			{name: "not found", status: 404, kind: KindNotFound, sentinel: shared.ErrNotFound, message: "No issues found or endpoint does not exist: Status Code 404"},
			{name: "server error", status: 500, kind: KindUnexpectedResponse, sentinel: shared.ErrUnexpectedResponse, message: "Unexpected response from JIRA API: HTTP 500 with body boom"},
			{name: "redirect", status: 304, kind: KindUnexpectedResponse, sentinel: shared.ErrUnexpectedResponse, message: "HTTP 304"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				svc := newTestJira(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte("boom"))
				})

				_, searchErr := svc.SearchIssues(context.Background(), "project=SRC", 1)
				_, moveErr := svc.MoveIssuesBulk(context.Background(), NewBulkMoveRequest())

				for _, err := range []error{searchErr, moveErr} {
					var ce *ClientError
					require.ErrorAs(t, err, &ce)
					assert.Equal(t, tt.kind, ce.Kind)
					assert.Equal(t, tt.status, ce.StatusCode)
					assert.ErrorIs(t, err, tt.sentinel)
					assert.Contains(t, err.Error(), tt.message)
					assert.False(t, IsTransient(err))
				}
			})
		}
	})

	t.Run("transport failures", func(t *testing.T) {
		t.Run("request error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp: connection refused"))}
			svc := NewJiraService("https://acme.atlassian.net", client, log.New(io.Discard))

			_, err := svc.SearchIssues(context.Background(), "project=SRC", 1)
			require.Error(t, err)
			assert.True(t, IsTransient(err))
			assert.ErrorIs(t, err, shared.ErrCommunication)
			assert.True(t, strings.HasPrefix(err.Error(), "Failed to communicate with JIRA API"))
		})

		t.Run("body read error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     http.Header{},
			}, nil)}
			svc := NewJiraService("https://acme.atlassian.net", client, log.New(io.Discard))

			_, err := svc.MoveIssuesBulk(context.Background(), NewBulkMoveRequest())
			var ce *CommunicationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "POST /rest/api/3/bulk/issues/move", ce.Op)
		})

		t.Run("canceled context", func(t *testing.T) {
			svc := newTestJira(t, func(w http.ResponseWriter, r *http.Request) {})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := svc.SearchIssues(ctx, "project=SRC", 1)
			assert.True(t, IsTransient(err))
			assert.ErrorIs(t, err, context.Canceled)
		})
	})
}

func TestBulkMoveRequest(t *testing.T) {
	req := NewBulkMoveRequest()
	req.Add("DST,1", "a")
	req.Add("DST,2,p", "b")
	req.Add("DST,1", "c")

	assert.Equal(t, 3, req.IssueCount())
	assert.Equal(t, []string{"a", "c"}, req.TargetToSourcesMapping["DST,1"].IssueIdsOrKeys)

	raw, err := json.Marshal(NewBulkMoveRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"targetToSourcesMapping":{}}`, string(raw))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "InvalidQuery", KindInvalidQuery.String())
	assert.Equal(t, "NotFound", KindNotFound.String())
	assert.Equal(t, "AuthFailure", KindAuthFailure.String())
	assert.Equal(t, "UnexpectedResponse", KindUnexpectedResponse.String())
}
