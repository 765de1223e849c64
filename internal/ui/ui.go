package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/jsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	engine   tasks.SyncEngine
	request  tasks.SyncRequest
	view     ViewState
	width    int
	height   int
	spinner  spinner.Model
	bar      progress.Model
	batches  list.Model
	updates  <-chan tasks.ProgressUpdate
	done     <-chan Msg
	progress tasks.ProgressUpdate
	result   *tasks.SyncResult
	err      error
	canceled bool
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model. With confirm false the run starts as soon as the program does.
func NewModel(ctx context.Context, engine tasks.SyncEngine, req tasks.SyncRequest, confirm bool) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	view := SyncView
	if confirm {
		view = ConfirmView
	}

	return &Model{
		ctx:     ctx,
		engine:  engine,
		request: req,
		view:    view,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Result returns the finished run, or nil when it never completed.
func (m *Model) Result() *tasks.SyncResult { return m.result }

// Err returns the error the run ended with.
func (m *Model) Err() error { return m.err }

// Canceled reports whether the user declined to start the run.
func (m *Model) Canceled() bool { return m.canceled }

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Init starts the run immediately unless confirmation is pending.
func (m *Model) Init() tea.Cmd {
	if m.view == SyncView {
		return m.startSync()
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-8, 10), 60)
		if m.view == ResultView {
			m.batches.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.updates, m.done)

	case MsgSyncComplete:
		outcome := msg.data.(syncOutcome)
		m.result = outcome.result
		m.err = outcome.err
		m.updates, m.done = nil, nil
		m.view = ResultView
		if m.result != nil {
			m.batches = list.New(batchItems(m.result.Batches), list.NewDefaultDelegate(), m.width-4, max(m.height-12, 0))
			m.batches.Title = "Submitted batches"
			m.batches.SetShowHelp(false)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		m.canceled = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		return m, m.startSync()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.result == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.batches, cmd = m.batches.Update(msg)
	return m, cmd
}

func (m *Model) startSync() tea.Cmd {
	updates := make(chan tasks.ProgressUpdate, m.request.ProgressCapacity())
	done := make(chan Msg, 1)
	m.updates, m.done = updates, done

	engine, ctx, req := m.engine, m.ctx, m.request
	go func() {
		result, err := engine.Sync(ctx, updates, req)
		done <- syncCompleteMsg(result, err)
		close(updates)
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(updates, done))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) header() string {
	types := "all issue types"
	if len(m.request.IssueTypeNames) > 0 {
		types = strings.Join(m.request.IssueTypeNames, ", ")
	}
	return strings.Join([]string{
		Field("Source", m.request.SourceProjectKey),
		Field("Target", m.request.TargetProjectKey),
		Field("Types", types),
		Field("Limit", fmt.Sprint(m.request.MaxIssuesToMove)),
		Field("JQL", m.request.Query()),
	}, "\n")
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Move issues from %s to %s?", m.request.SourceProjectKey, m.request.TargetProjectKey))
	warn := styles.warn.Render("Moved issues are not moved back if a later batch fails.")
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.header(), warn, m.help.View(m.keys))
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Synchronizing")

	var status string
	switch m.progress.Phase {
	case tasks.Querying:
		status = "Searching source project..."
	case tasks.Grouping:
		status = m.progress.Message
	case tasks.Moving:
		status = fmt.Sprintf("%s\n\n%s", m.progress.Message, m.bar.ViewAs(fraction(m.progress.Step-1, m.progress.Total)))
	default:
		status = "Starting..."
	}

	return fmt.Sprintf("%s\n%s\n\n%s %s\n\n%s", title, m.header(), m.spinner.View(), status, styles.help.Render("ctrl+c to abort"))
}

func (m *Model) renderResult() string {
	if m.err != nil {
		sent := 0
		if m.result != nil {
			sent = m.result.BatchesSent
		}
		msg := fmt.Sprintf("✗ Synchronization failed: %v", m.err)
		detail := fmt.Sprintf("\n%d batch(es) were moved before the failure.", sent)
		return fmt.Sprintf("%s%s\n\n%s", styles.err.Render(msg), detail, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	title := styles.ok.Render("✓ Synchronization complete")
	info := fmt.Sprintf(
		"\n%s\n%s\n%s\n%s",
		Field("Fetched", fmt.Sprint(m.result.IssuesFetched)),
		Field("Skipped", fmt.Sprint(m.result.IssuesSkipped)),
		Field("Moved", fmt.Sprint(m.result.IssuesMoved())),
		Field("Batches", fmt.Sprintf("%d/%d", m.result.BatchesSent, m.result.BatchesTotal)),
	)

	var skipped string
	if m.result.IssuesSkipped > 0 {
		skipped = "\n\n" + styles.warn.Render(fmt.Sprintf("%d issue(s) lacked an issue type or parent and were left in place", m.result.IssuesSkipped))
	}

	var batches string
	if len(m.result.Batches) > 0 {
		batches = "\n\n" + m.batches.View()
	}

	return fmt.Sprintf("%s\n%s%s%s\n\n%s", title, info, skipped, batches, m.help.View(m.keys))
}

func fraction(step, total int) float64 {
	if total <= 0 || step <= 0 {
		return 0
	}
	return min(float64(step)/float64(total), 1)
}
