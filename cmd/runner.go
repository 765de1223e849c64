package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/repositories"
	"github.com/desertthunder/jsync/internal/services"
	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	tracker    services.Tracker
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.Synchronizer
	db         *sql.DB
	runs       *repositories.SyncRunRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Tracker    services.Tracker
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		tracker:    opts.Tracker,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.api = services.NewAPIService(r.config.Jira.BaseURL, r.httpClient)
	r.engine = tasks.NewSynchronizer(r.tracker, r.logger)
	if opts.DB != nil {
		r.attachStore(opts.DB)
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, queryCommand, serveCommand, runsCommand, setupCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Bootstrap loads the configuration named by --config and wires the Jira client.
//
// A missing config file is not an error: commands that need Jira report it when they run.
func (r *Runner) Bootstrap(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != "" {
		r.configPath = path
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}

	level := r.config.Log.Level
	if flag := cmd.String("log-level"); flag != "" {
		level = flag
	}
	ll, err := shared.ParseLogLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	if !r.config.Jira.HasCredentials() {
		r.logger.Debug("no jira credentials configured")
		r.configure(nil, http.DefaultClient)
		return ctx, nil
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	client, err := services.NewHTTPClient(r.config.Jira)
	if err != nil {
		return ctx, err
	}
	r.configure(services.NewJiraService(r.config.Jira.BaseURL, client, r.logger), client)

	return ctx, nil
}

// configure replaces the tracker and client, rebuilding the services that depend on them.
func (r *Runner) configure(tracker services.Tracker, client *http.Client) {
	r.tracker = tracker
	r.httpClient = client
	r.api = services.NewAPIService(r.config.Jira.BaseURL, client)
	r.engine = tasks.NewSynchronizer(tracker, r.logger)
	if r.runs != nil && r.config.Database.RecordRuns {
		r.engine.SetRecorder(repositories.NewRunRecorderAdapter(r.runs))
	}
}

// attachStore enables run history on db.
func (r *Runner) attachStore(db *sql.DB) {
	r.db = db
	r.runs = repositories.NewSyncRunRepository(db)
	if r.config.Database.RecordRuns {
		r.engine.SetRecorder(repositories.NewRunRecorderAdapter(r.runs))
	}
}

// openRunStore opens and migrates the configured database once.
func (r *Runner) openRunStore(ctx context.Context) error {
	if r.runs != nil {
		return nil
	}

	db, err := shared.OpenRunStore(ctx, r.config.Database)
	if err != nil {
		return err
	}
	r.attachStore(db)
	return nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.runs = nil, nil
	return err
}

// SetLogger replaces the logger, used by the TUI to keep log lines off the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if _, ok := r.tracker.(*services.JiraService); ok {
		r.tracker = services.NewJiraService(r.config.Jira.BaseURL, r.httpClient, logger)
	}
	r.configure(r.tracker, r.httpClient)
}

func (r *Runner) requireTracker() error {
	if r.tracker == nil {
		return fmt.Errorf("%w: set jira.username and jira.api_token (or jira.access_token) in %s", shared.ErrMissingCredentials, r.configPathOrDefault())
	}
	return nil
}

func (r *Runner) configPathOrDefault() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// exitCode maps an application error to the process exit path.
func exitCode(err error) (code int, warnOnly bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, shared.ErrNotImplemented):
		return 0, true
	default:
		return 1, false
	}
}
