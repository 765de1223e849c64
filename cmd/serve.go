package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/server"
	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
)

// Serve runs the HTTP endpoint until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, cfg.Port)
	}

	var engine tasks.SyncEngine
	trackerName := ""
	if err := r.requireTracker(); err != nil {
		r.logger.Warn("serving without a tracker, sync requests will fail", "error", err)
	} else {
		engine = r.engine
		trackerName = r.tracker.Name()
	}

	if r.config.Database.RecordRuns {
		if err := r.openRunStore(ctx); err != nil {
			r.logger.Warn("run history disabled", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewRouter(engine, trackerName, r.logger)
	srv := server.NewServer(cfg.Addr(), router, r.logger)

	r.writePlain("Listening on http://%s (POST %s)\n", cfg.Addr(), server.SyncTasksPath)
	return srv.Start(ctx)
}
