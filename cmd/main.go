package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "jsync",
		Usage:    "Move Jira issues from one project to another",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   runner.Bootstrap,
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	code, warnOnly := exitCode(err)
	switch {
	case warnOnly:
		logger.Warn("not implemented", "error", err)
	case code != 0:
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
