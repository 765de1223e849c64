// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootFlags are inherited by every subcommand.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("JSYNC_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Override log.level (debug, info, warn, error)",
			Sources: cli.EnvVars("JSYNC_LOG_LEVEL"),
		},
	}
}

// syncCommand moves issues between projects
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Move issues from a source project to a target project",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source project key",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "target",
				Aliases:  []string{"t"},
				Usage:    "Target project key",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "max",
				Aliases: []string{"m"},
				Usage:   "Maximum number of issues to move (default: sync.max_issues_to_move)",
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Issue type name to include, repeatable (default: sync.issue_types, empty means all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run result as JSON",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive progress view",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt in the progress view",
			},
		},
		Action: r.Sync,
	}
}

// queryCommand prints the JQL a sync would run
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Print the JQL for a project without contacting Jira",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Project key",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Issue type name, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "priority",
				Usage: "Priority name, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "assignee",
				Usage: "Assignee account ID, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "reporter",
				Usage: "Reporter account ID, repeatable",
			},
			&cli.StringFlag{
				Name:  "order",
				Usage: "Order field: created or updated",
				Value: "created",
			},
			&cli.BoolFlag{
				Name:  "asc",
				Usage: "Sort ascending instead of newest first",
			},
		},
		Action: r.Query,
	}
}

// serveCommand starts the HTTP endpoint
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve POST /api/jira/sync-tasks over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// runsCommand inspects recorded sync runs
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect sync run history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of runs to list",
						Value:   20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status: running, succeeded or failed",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Filter by source project key",
					},
					&cli.StringFlag{
						Name:  "target",
						Usage: "Filter by target project key",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run by ID or sequence number",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsShow,
			},
			{
				Name:  "export",
				Usage: "Export run history to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, json or markdown",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: sync_runs.<ext>)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to export, 0 for all",
					},
				},
				Action: r.RunsExport,
			},
			{
				Name:  "delete",
				Usage: "Remove a run from history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.RunsDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the file (default: --config)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the run history database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// apiCommand handles raw Jira REST calls for connection debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw Jira REST calls with the configured credentials",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a Jira REST path, e.g. /rest/api/3/myself",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a Jira REST path",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}
