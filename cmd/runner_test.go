package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/shared"
	tu "github.com/desertthunder/jsync/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			tracker := newJiraStub(t, nil)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Tracker:    tracker,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.tracker != tracker {
				t.Error("expected tracker to be set")
			}
			if runner.api == nil || runner.engine == nil {
				t.Error("expected api and engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.configPathOrDefault() != "/test/path/config.toml" {
				t.Errorf("unexpected configPathOrDefault %s", runner.configPathOrDefault())
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: ""})

			if runner.configPathOrDefault() != "config.toml" {
				t.Errorf("expected config.toml, got %s", runner.configPathOrDefault())
			}
		})

		t.Run("with DB attaches run history", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: newTestDB(t)})

			if runner.runs == nil {
				t.Fatal("expected run repository to be attached")
			}
			if err := runner.openRunStore(context.Background()); err != nil {
				t.Errorf("expected attached store to be reused, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln wraps in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("Next %d", 1)
			if output.String() != "\nNext 1\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("writePlainHeader frames the title", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainHeader("Done")
			lines := strings.Split(strings.TrimSpace(output.String()), "\n")
			if len(lines) != 3 || lines[1] != "Done" {
				t.Errorf("unexpected header %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"sync", "query", "serve", "runs", "setup", "api"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("command %d: expected %s, got %s", i, want[i], cmd.Name)
			}
		}
	})

	t.Run("Bootstrap", func(t *testing.T) {
		run := func(t *testing.T, runner *Runner, args ...string) error {
			t.Helper()
			app := &cli.Command{
				Name:   "jsync",
				Flags:  rootFlags(),
				Before: runner.Bootstrap,
				Commands: []*cli.Command{{
					Name:   "noop",
					Action: func(context.Context, *cli.Command) error { return nil },
				}},
			}
			return app.Run(context.Background(), append([]string{"jsync"}, args...))
		}

		t.Run("wires Jira from config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := "[jira]\nbase_url = \"https://acme.atlassian.net\"\nusername = \"me@acme.io\"\napi_token = \"secret\"\n"
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := run(t, runner, "--config", path, "noop"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.configPath != path {
				t.Errorf("expected configPath %s, got %s", path, runner.configPath)
			}
			if runner.tracker == nil || runner.tracker.Name() != "Jira" {
				t.Fatalf("expected Jira tracker, got %v", runner.tracker)
			}
			if runner.config.Sync.MaxIssuesToMove != 50 {
				t.Errorf("expected default max issues to survive, got %d", runner.config.Sync.MaxIssuesToMove)
			}
		})

		t.Run("missing config file keeps defaults without tracker", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			path := filepath.Join(t.TempDir(), "absent.toml")

			if err := run(t, runner, "--config", path, "noop"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.tracker != nil {
				t.Error("expected no tracker without credentials")
			}
			if err := runner.requireTracker(); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("rejects unknown log level", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			path := filepath.Join(t.TempDir(), "absent.toml")

			err := run(t, runner, "--config", path, "--log-level", "loud", "noop")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("exitCode", func(t *testing.T) {
		tests := []struct {
			name     string
			err      error
			code     int
			warnOnly bool
		}{
			{"nil", nil, 0, false},
			{"not implemented", shared.ErrNotImplemented, 0, true},
			{"wrapped not implemented", errors.Join(errors.New("ctx"), shared.ErrNotImplemented), 0, true},
			{"other", shared.ErrMissingCredentials, 1, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				code, warnOnly := exitCode(tt.err)
				if code != tt.code || warnOnly != tt.warnOnly {
					t.Errorf("exitCode(%v) = (%d, %v), want (%d, %v)", tt.err, code, warnOnly, tt.code, tt.warnOnly)
				}
			})
		}
	})

	t.Run("Close", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{DB: newTestDB(t)})

		if err := runner.Close(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.runs != nil || runner.db != nil {
			t.Error("expected store to be detached")
		}
		if err := runner.Close(); err != nil {
			t.Errorf("expected second Close to be a no-op, got %v", err)
		}
	})
}
