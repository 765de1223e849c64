package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/jsync/internal/shared"
	"github.com/desertthunder/jsync/internal/tasks"
	"github.com/desertthunder/jsync/internal/ui"
)

const tuiLogPath = "./tmp/jsync-tui.log"

// syncTUI runs req behind the interactive progress view.
func (r *Runner) syncTUI(ctx context.Context, req tasks.SyncRequest, confirm bool) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, req, confirm)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	m, ok := final.(*ui.Model)
	if !ok || m.Canceled() {
		return nil
	}
	if m.Err() != nil {
		return fmt.Errorf("synchronization failed: %w", m.Err())
	}
	return nil
}
