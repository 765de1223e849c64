// Package ui implements a terminal progress view for a synchronization run using bubbletea's Elm architecture.
//
// The TUI walks through three views:
//  1. [ConfirmView] : Show the source, target and JQL and ask before moving anything
//  2. [SyncView] : Spinner and progress bar fed by the synchronizer's progress channel
//  3. [ResultView] : Totals plus a browsable list of submitted batches, or the error
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Progress updates flow through a channel from the [tasks.SyncEngine], and the final result arrives as a separate message
// once the channel is closed.
//
// The package also exports the lipgloss palette ([Title], [OK], [Error], [Warn], [Help]) for styled CLI output.
package ui
