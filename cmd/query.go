package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/jsync/internal/jql"
	"github.com/desertthunder/jsync/internal/shared"
)

// Query prints the JQL built from the flags.
func (r *Runner) Query(ctx context.Context, cmd *cli.Command) error {
	source := strings.TrimSpace(cmd.String("source"))
	if source == "" {
		return fmt.Errorf("%w: --source", shared.ErrMissingArgument)
	}

	b := jql.New().
		Project(source).
		IssueTypes(cmd.StringSlice("type")...).
		Priorities(cmd.StringSlice("priority")...).
		Assignees(cmd.StringSlice("assignee")...).
		Reporters(cmd.StringSlice("reporter")...)

	descending := !cmd.Bool("asc")
	switch strings.ToLower(cmd.String("order")) {
	case "", jql.FieldCreated:
		b = b.CreatedOrder(descending)
	case jql.FieldUpdated:
		b = b.UpdatedOrder(descending)
	default:
		return fmt.Errorf("%w: --order must be created or updated, got %q", shared.ErrInvalidFlag, cmd.String("order"))
	}

	return r.writePlain("%s\n", b.String())
}
