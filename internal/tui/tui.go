// Package tui provides a Bubble Tea terminal user interface for trackid-scraper.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/trackid-scraper/internal/archive"
	"github.com/handiism/trackid-scraper/internal/config"
	"github.com/handiism/trackid-scraper/internal/pipeline"
	"github.com/sirupsen/logrus"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pipeline.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	month    textinput.Model
	year     textinput.Model
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logger   *logrus.Logger
	logs     []LogEntry
	err      error

	newBrowser archive.BrowserFactory

	// baseLevel is restored when verbose output is off.
	baseLevel logrus.Level

	// Run context
	ctx    context.Context
	cancel context.CancelFunc
	events chan pipeline.ProgressEvent

	manager *pipeline.Manager
	result  *pipeline.Result

	stage        pipeline.Stage
	lookupsDone  int32
	lookupsTotal int32

	// Options
	dryRun  bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, logger *logrus.Logger, newBrowser archive.BrowserFactory) Model {
	now := time.Now()

	month := textinput.New()
	month.Placeholder = fmt.Sprintf("%d", int(now.Month()))
	month.CharLimit = 2
	month.Width = 4
	month.Focus()

	year := textinput.New()
	year.Placeholder = fmt.Sprintf("%d", now.Year())
	year.CharLimit = 4
	year.Width = 6

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		month:      month,
		year:       year,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		logger:     logger,
		logs:       make([]LogEntry, 0),
		newBrowser: newBrowser,
		baseLevel:  logger.GetLevel(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one pipeline event.
	ProgressMsg struct {
		Event pipeline.ProgressEvent
	}

	// RunDoneMsg is sent when the pipeline returns.
	RunDoneMsg struct {
		Result *pipeline.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

var errCancelled = errors.New("cancelled by user")

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.toggleFocus()
			}
			return m, nil

		case "enter":
			if m.state == StateInput && m.monthValue() != "" && m.yearValue() != "" {
				m.state = StateRunning
				m.startRun()
				return m, tea.Batch(m.runPipeline(), m.waitForEvent(), m.tickProgress(), m.spinner.Tick)
			}
			return m, nil

		case "n":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}
			return m, nil

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.appendLog(msg.Event)
		if m.state == StateRunning {
			cmds = append(cmds, m.waitForEvent())
		}

	case RunDoneMsg:
		m.result = msg.Result
		if m.manager != nil {
			m.stage, m.lookupsDone, m.lookupsTotal = m.manager.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}
		m.drainEvents()
		// Releases the pending waitForEvent.
		m.cancel()

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.stage, m.lookupsDone, m.lookupsTotal = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text inputs
	if m.state == StateInput {
		var cmd tea.Cmd
		m.month, cmd = m.month.Update(msg)
		cmds = append(cmds, cmd)
		m.year, cmd = m.year.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggleFocus() {
	if m.month.Focused() {
		m.month.Blur()
		m.year.Focus()
		return
	}
	m.year.Blur()
	m.month.Focus()
}

func (m Model) monthValue() string {
	return strings.TrimSpace(m.month.Value())
}

func (m Model) yearValue() string {
	return strings.TrimSpace(m.year.Value())
}

func (m *Model) appendLog(event pipeline.ProgressEvent) {
	if event.Level == pipeline.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			m.appendLog(event)
		default:
			return
		}
	}
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.result = nil
	m.manager = nil
	m.events = nil
	m.stage = pipeline.StageIdle
	m.lookupsDone = 0
	m.lookupsTotal = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.month.SetValue("")
	m.year.SetValue("")
	m.year.Blur()
	m.month.Focus()
}

func (m Model) percent() float64 {
	if m.lookupsTotal <= 0 {
		return 0
	}
	return float64(m.lookupsDone) / float64(m.lookupsTotal)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎧 TrackID Scraper"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Tag doyoutrackid.com archives with Last.fm genres"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Archive month and year:"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Month %s   Year %s", m.month.View(), m.year.View()))
	b.WriteString("\n\n")

	dryRunCheck := "[ ]"
	if m.dryRun {
		dryRunCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Dry run, skip database (n)\n", dryRunCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Entries: %s | Table: %s", entriesLabel(m.settings.Site.MaxEntries), m.settings.Database.Table)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(stageLabel(m.stage)))
	b.WriteString("\n\n")

	if m.stage >= pipeline.StageEnrich {
		b.WriteString(m.progress.ViewAs(m.percent()))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.lookupsDone, m.lookupsTotal)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	tracks, resolved, lookups, cooldowns := 0, 0, 0, 0
	database := "not written"
	if m.result != nil {
		tracks = len(m.result.Records)
		if m.result.Report != nil {
			resolved = m.result.Report.Resolved
			lookups = m.result.Report.Lookups
			cooldowns = m.result.Report.Cooldowns
		}
		switch {
		case m.result.Persisted:
			database = m.settings.Database.Table
		case m.result.PersistErr != nil:
			database = "failed, see log"
		case m.dryRun:
			database = "dry run"
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Run Complete!\n\n"+
			"Tracks: %d\n"+
			"Artists resolved: %d/%d\n"+
			"Cooldowns: %d\n"+
			"Database: %s",
		tracks, resolved, lookups, cooldowns, database,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case pipeline.LevelError:
			style = errorStyle
			prefix = "✗"
		case pipeline.LevelWarning:
			style = warningStyle
			prefix = "!"
		case pipeline.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case pipeline.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: switch field • n: dry run • v: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

func stageLabel(s pipeline.Stage) string {
	switch s {
	case pipeline.StageEnrich:
		return stageStyle.Render("Looking up genres on Last.fm...")
	case pipeline.StagePersist:
		return stageStyle.Render("Writing to the database...")
	case pipeline.StageDone:
		return "Finishing..."
	default:
		return "Scraping archive..."
	}
}

func entriesLabel(n int) string {
	if n <= 0 {
		return "all"
	}
	return fmt.Sprintf("%d", n)
}

// startRun creates the manager and the event channel for a new run.
func (m *Model) startRun() {
	events := make(chan pipeline.ProgressEvent, 64)
	logger := m.logger

	if m.verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(m.baseLevel)
	}

	m.events = events
	m.logs = nil
	m.manager = pipeline.NewManager(m.settings, m.newBrowser, func(event pipeline.ProgressEvent) {
		pipeline.LogEvent(logger, event)
		select {
		case events <- event:
		default:
			// UI is behind; the event is still in the log file.
		}
	}).WithLogger(logger).WithDryRun(m.dryRun)
}

// runPipeline runs the manager in the background.
func (m Model) runPipeline() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	month, year := m.monthValue(), m.yearValue()
	return func() tea.Msg {
		res, err := manager.Run(ctx, month, year)
		return RunDoneMsg{Result: res, Err: err}
	}
}

// waitForEvent blocks until the next pipeline event is available.
func (m Model) waitForEvent() tea.Cmd {
	events, ctx := m.events, m.ctx
	return func() tea.Msg {
		select {
		case event := <-events:
			return ProgressMsg{Event: event}
		case <-ctx.Done():
			return nil
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *logrus.Logger) error {
	m := NewModel(settings, logger, archive.ChromeFactory(settings.ToChromeOptions()))
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
