// Package tasks moves issues from one Jira project to another with real-time progress reporting.
//
// # Core Operation
//
// [SyncEngine.Sync] runs one synchronization:
//
//  1. Builds a JQL filter for the source project, optional issue types, newest first
//  2. Searches the tracker for at most MaxIssuesToMove issues
//  3. Splits the result, in order, into chunks of at most [MaxBulkOperationSize]
//  4. Groups each chunk by [GroupKey] into one bulk-move request
//  5. Submits the requests one after another, stopping at the first failure
//
// Earlier batches are not rolled back when a later one fails.
//
// # Grouping
//
// Issues without an issue type, and subtasks without a parent, have no [GroupKey].
// They are skipped with a warning and counted in [SyncResult.IssuesSkipped].
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default so a slow reader never blocks a run.
//
// # Run History
//
// The optional [RunRecorder] interface persists each run (repositories.RunRecorderAdapter).
// Recorder errors are logged and never change the outcome of a run.
package tasks
