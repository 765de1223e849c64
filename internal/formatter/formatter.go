// package formatter renders sync run history and run summaries as CSV, Markdown, JSON and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/jsync/internal/models"
	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts csv, json, markdown and the md alias, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (expected csv, json or markdown)", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// RunsToCSV converts runs to CSV with one row per run.
func RunsToCSV(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{
		"Sequence", "ID", "Source", "Target", "Issue Types", "Max Issues", "Status",
		"Fetched", "Skipped", "Batches Sent", "Batches Total", "Started", "Duration", "Error",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			strconv.Itoa(run.Sequence()),
			run.ID(),
			run.SourceProject(),
			run.TargetProject(),
			strings.Join(run.IssueTypes(), ";"),
			strconv.Itoa(run.MaxIssues()),
			string(run.Status()),
			strconv.Itoa(run.IssuesFetched()),
			strconv.Itoa(run.IssuesSkipped()),
			strconv.Itoa(run.BatchesSent()),
			strconv.Itoa(run.BatchesTotal()),
			run.StartedAt().UTC().Format(time.RFC3339),
			FormatDuration(run.Duration()),
			run.ErrorMessage(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunsToMarkdown renders runs as a Markdown table followed by the error of every failed run.
func RunsToMarkdown(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Sync Runs\n\n")
	fmt.Fprintf(&buf, "**Runs**: %d\n\n", len(runs))

	if len(runs) == 0 {
		buf.WriteString("_No runs recorded._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Source | Target | Issue Types | Status | Moved Batches | Skipped | Started | Duration |\n")
	buf.WriteString("|---|--------|--------|-------------|--------|---------------|---------|---------|----------|\n")

	var failed []*models.SyncRun
	for _, run := range runs {
		types := "all"
		if len(run.IssueTypes()) > 0 {
			types = strings.Join(run.IssueTypes(), ", ")
		}
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %d/%d | %d | %s | %s |\n",
			run.Sequence(),
			run.SourceProject(),
			run.TargetProject(),
			escapeCell(types),
			run.Status(),
			run.BatchesSent(), run.BatchesTotal(),
			run.IssuesSkipped(),
			run.StartedAt().UTC().Format("2006-01-02 15:04:05"),
			FormatDuration(run.Duration()),
		)
		if run.Status() == models.RunFailed {
			failed = append(failed, run)
		}
	}

	if len(failed) > 0 {
		buf.WriteString("\n## Failures\n\n")
		for _, run := range failed {
			fmt.Fprintf(&buf, "- **#%d** `%s`: %s\n", run.Sequence(), run.ID(), run.ErrorMessage())
		}
	}

	return buf.Bytes(), nil
}

// RunsToJSON renders runs as an indented JSON array. A nil slice renders as [].
func RunsToJSON(runs []*models.SyncRun) ([]byte, error) {
	if runs == nil {
		runs = []*models.SyncRun{}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal runs: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportRuns renders runs in the given format.
func ExportRuns(runs []*models.SyncRun, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return RunsToCSV(runs)
	case FormatJSON:
		return RunsToJSON(runs)
	case FormatMarkdown:
		return RunsToMarkdown(runs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteRunsExport writes runs to path in the given format.
//
// Defaults to sync_runs.{ext} in the working directory.
func WriteRunsExport(runs []*models.SyncRun, format Format, path string) (string, error) {
	if path == "" {
		path = "sync_runs." + format.Extension()
	}

	data, err := ExportRuns(runs, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// RunDetailText describes a single run for `jsync runs show`.
func RunDetailText(run *models.SyncRun) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run #%d (%s)\n", run.Sequence(), run.ID())
	fmt.Fprintf(&b, "  %s -> %s\n", run.SourceProject(), run.TargetProject())
	fmt.Fprintf(&b, "  Status:   %s\n", run.Status())
	fmt.Fprintf(&b, "  Query:    %s\n", run.Query())
	fmt.Fprintf(&b, "  Limit:    %d\n", run.MaxIssues())
	fmt.Fprintf(&b, "  Fetched:  %d (skipped %d)\n", run.IssuesFetched(), run.IssuesSkipped())
	fmt.Fprintf(&b, "  Batches:  %d/%d\n", run.BatchesSent(), run.BatchesTotal())
	fmt.Fprintf(&b, "  Started:  %s\n", run.StartedAt().Format(time.RFC3339))
	if at := run.CompletedAt(); at != nil {
		fmt.Fprintf(&b, "  Finished: %s (%s)\n", at.Format(time.RFC3339), FormatDuration(run.Duration()))
	}
	if msg := run.ErrorMessage(); msg != "" {
		fmt.Fprintf(&b, "  Error:    %s\n", msg)
	}

	return b.String()
}

// SummaryText describes the outcome of a finished synchronization.
func SummaryText(result *tasks.SyncResult) string {
	if result == nil {
		return "No synchronization performed.\n"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Query: %s\n", result.Query)
	if result.IssuesFetched == 0 {
		b.WriteString("No matching issues found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Fetched %d issue(s), skipped %d\n", result.IssuesFetched, result.IssuesSkipped)
	fmt.Fprintf(&b, "Moved %d issue(s) in %d/%d batch(es)\n", result.IssuesMoved(), result.BatchesSent, result.BatchesTotal)
	for _, batch := range result.Batches {
		fmt.Fprintf(&b, "  batch %d: %d issue(s) to %d destination(s)\n", batch.Index, batch.Issues, batch.Destinations)
	}
	if !result.CompletedAt.IsZero() && !result.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Took %s\n", FormatDuration(result.CompletedAt.Sub(result.StartedAt)))
	}

	return b.String()
}

// FormatDuration renders d rounded to milliseconds, or "-" for zero.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
