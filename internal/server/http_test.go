package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/jsync/internal/tasks"
)

func TestHealthHandler(t *testing.T) {
	t.Run("ok with tracker", func(t *testing.T) {
		srv := NewRouter(&mockEngine{}, "Jira", log.New(io.Discard))
		rec := serve(srv, http.MethodGet, "/health")

		assert.Equal(t, http.StatusOK, rec.StatusCode)
		assert.Equal(t, "application/json", rec.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "Jira", body["tracker"])
	})

	t.Run("degraded without tracker", func(t *testing.T) {
		srv := NewRouter(nil, "", log.New(io.Discard))
		rec := serve(srv, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, rec.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "", body["tracker"])
	})

	t.Run("head allowed", func(t *testing.T) {
		srv := NewRouter(nil, "Jira", log.New(io.Discard))
		rec := serve(srv, http.MethodHead, "/health")
		assert.Equal(t, http.StatusOK, rec.StatusCode)
	})

	t.Run("post not allowed", func(t *testing.T) {
		srv := NewRouter(nil, "Jira", log.New(io.Discard))
		rec := serve(srv, http.MethodPost, "/health")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.StatusCode)
		assert.Equal(t, "GET, HEAD", rec.Header.Get("Allow"))
	})
}

func TestServerLifecycle(t *testing.T) {
	engine := &mockEngine{result: &tasks.SyncResult{BatchesSent: 1}}
	router := NewRouter(engine, "Jira", log.New(io.Discard))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(ln.Addr().String(), router, log.New(io.Discard))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + SyncTasksPath +
		"?sourceProjectKey=SRC&targetProjectKey=DST&maxIssuesToMove=3"
	resp, err := http.Post(url, "text/plain", nil)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "Tasks synchronization"))
	require.Len(t, engine.Calls(), 1)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServerStartInvalidAddr(t *testing.T) {
	srv := NewServer("256.0.0.1:bad", http.NotFoundHandler(), log.New(io.Discard))
	assert.Error(t, srv.Start(context.Background()))
}

func serve(h http.Handler, method, path string) *http.Response {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec.Result()
}
