package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	sessiondto "bactrack/internal/modules/session/dto"
	apperrors "bactrack/internal/platform/errors"
	"bactrack/internal/platform/watcher"
	"bactrack/internal/ui/components"
	"bactrack/internal/ui/theme"
	dashboardview "bactrack/internal/ui/views/dashboard"
	historyview "bactrack/internal/ui/views/history"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// SessionPort is the slice of the session CLI handler the dashboard drives.
type SessionPort interface {
	Start(ctx context.Context, at time.Time) (sessiondto.SessionOutput, error)
	Drink(ctx context.Context, input sessiondto.DrinkInput) (sessiondto.SessionOutput, error)
	Food(ctx context.Context, factor float64, label string, at time.Time) (sessiondto.SessionOutput, error)
	Remove(ctx context.Context, eventID string) (sessiondto.SessionOutput, error)
	Tick(ctx context.Context) (sessiondto.SessionOutput, error)
	Status(ctx context.Context) (sessiondto.SessionOutput, error)
	End(ctx context.Context) (sessiondto.EndOutput, error)
	History(ctx context.Context, limit int) ([]sessiondto.HistoryEntry, error)
}

type Options struct {
	Session SessionPort
	Presets []string
	// WatchPath is the active-session file; external writes to it trigger a reload.
	WatchPath  string
	Refresh    time.Duration
	Logger     zerolog.Logger
	CautionAt  float64
	DangerAt   float64
	LegalLimit float64
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabDashboard tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Dashboard", "History"}

// ─── async messages ───────────────────────────────────────────────────────────

type sessionMsg struct {
	action string
	out    sessiondto.SessionOutput
	err    error
}

type sessionEndedMsg struct {
	out sessiondto.EndOutput
	err error
}

type refreshTickMsg time.Time

type fileChangedMsg struct{}

type watcherStartedMsg struct {
	w   *watcher.Watcher
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	End     key.Binding
	Drink   key.Binding
	Food    key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end session")),
		Drink:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "log drink")),
		Food:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "log food")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.End, k.Refresh},
		{k.Drink, k.Food},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the refresh
// ticker, the file watcher, the help overlay and the command palette.
// Rendering is delegated to sub-views.
type Model struct {
	session   SessionPort
	logger    zerolog.Logger
	refresh   time.Duration
	watchPath string
	watcher   *watcher.Watcher
	changes   chan struct{}

	dashView dashboardview.Model
	histView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(opts Options) Model {
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return Model{
		session:   opts.Session,
		logger:    opts.Logger.With().Str("component", "tui").Logger(),
		refresh:   refresh,
		watchPath: opts.WatchPath,
		changes:   make(chan struct{}, 1),
		dashView: dashboardview.New(dashboardview.Thresholds{
			Caution: opts.CautionAt,
			Danger:  opts.DangerAt,
			Legal:   opts.LegalLimit,
		}),
		histView:  historyview.New(opts.Session, 50),
		activeTab: tabDashboard,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(paletteHints(opts.Presets)),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.statusCmd(),
		m.histView.Init(),
		m.tickCmd(),
		m.startWatcherCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case sessionMsg:
		m.applySession(msg)
		return m, nil

	case sessionEndedMsg:
		if msg.err != nil {
			m.status = "end failed: " + msg.err.Error()
			return m, nil
		}
		m.dashView.Clear()
		m.status = fmt.Sprintf("session archived (peak %.3f%%)", msg.out.Session.PeakBAC)
		return m, m.histView.Reload()

	case refreshTickMsg:
		return m, tea.Batch(m.tickSessionCmd(), m.tickCmd())

	case watcherStartedMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Str("path", m.watchPath).Msg("file watcher unavailable")
			return m, nil
		}
		m.watcher = msg.w
		return m, m.waitForChangeCmd()

	case fileChangedMsg:
		return m, tea.Batch(m.statusCmd(), m.waitForChangeCmd())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the history list while its filter is open.
		if m.activeTab == tabHistory && m.histView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.stopWatcher()
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			return m, m.palette.Open("")
		case "d":
			return m, m.palette.Open("drink ")
		case "f":
			return m, m.palette.Open("food ")
		case "s":
			return m, m.startCmd()
		case "e":
			return m, m.endCmd()
		case "r":
			return m, tea.Batch(m.statusCmd(), m.histView.Reload())
		}
	}

	if m.activeTab == tabHistory {
		var cmd tea.Cmd
		m.histView, cmd = m.histView.Update(msg)
		cmds = append(cmds, cmd)
	} else if _, ok := msg.(historyview.LoadedMsg); ok {
		var cmd tea.Cmd
		m.histView, cmd = m.histView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) applySession(msg sessionMsg) {
	switch {
	case msg.err == nil:
		m.dashView.SetSession(msg.out)
		if msg.action != "" {
			m.status = msg.action
		}
	case errors.Is(msg.err, apperrors.ErrNoActiveSession):
		m.dashView.Clear()
		if msg.action != "" {
			m.status = "no active session"
		}
	case errors.Is(msg.err, apperrors.ErrPersistence) && msg.out.SessionID != "":
		// The transition happened but was not saved; show it anyway.
		m.dashView.SetSession(msg.out)
		m.status = "not saved: " + msg.err.Error()
	default:
		m.status = msg.err.Error()
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabHistory:
		content = m.histView.View()
	default:
		content = m.dashView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "bactrack  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if s, ok := m.dashView.Session(); ok {
		dot := lipgloss.NewStyle().Foreground(theme.StatusColor(s.Status)).Bold(true)
		left = dot.Render(fmt.Sprintf("● %.3f%%", s.CurrentBAC)) + "  " + left
	}
	right := theme.Muted.Render("?:help  d:drink  f:food  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	cmd, err := parseCommand(input)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	switch cmd.kind {
	case cmdStart:
		return m, m.startCmd()
	case cmdEnd:
		return m, m.endCmd()
	case cmdRefresh:
		return m, tea.Batch(m.statusCmd(), m.histView.Reload())
	case cmdDrink:
		return m, m.drinkCmd(cmd.drink)
	case cmdFood:
		return m, m.foodCmd(cmd.factor, cmd.label)
	case cmdRemove:
		id, err := m.dashView.ResolveEvent(cmd.eventID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, m.removeCmd(id)
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	h := m.height - 3
	m.dashView.SetSize(m.width, h)
	m.histView, _ = m.histView.Update(tea.WindowSizeMsg{Width: m.width, Height: h})
}

func (m Model) stopWatcher() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Stop(); err != nil {
		m.logger.Debug().Err(err).Msg("stop file watcher")
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) statusCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Status(context.Background())
		return sessionMsg{out: out, err: err}
	}
}

func (m Model) tickSessionCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Tick(context.Background())
		return sessionMsg{out: out, err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return refreshTickMsg(t) })
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Start(context.Background(), time.Time{})
		return sessionMsg{action: "session started", out: out, err: err}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.End(context.Background())
		return sessionEndedMsg{out: out, err: err}
	}
}

func (m Model) drinkCmd(input sessiondto.DrinkInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Drink(context.Background(), input)
		return sessionMsg{action: "drink logged", out: out, err: err}
	}
}

func (m Model) foodCmd(factor float64, label string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Food(context.Background(), factor, label, time.Time{})
		return sessionMsg{action: "food logged", out: out, err: err}
	}
}

func (m Model) removeCmd(eventID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Remove(context.Background(), eventID)
		return sessionMsg{action: "event removed", out: out, err: err}
	}
}

func (m Model) startWatcherCmd() tea.Cmd {
	if m.watchPath == "" {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		w, err := watcher.New(m.watchPath, m.logger, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return watcherStartedMsg{err: err}
		}
		if err := w.Start(); err != nil {
			_ = w.Stop()
			return watcherStartedMsg{err: err}
		}
		return watcherStartedMsg{w: w}
	}
}

func (m Model) waitForChangeCmd() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return fileChangedMsg{}
	}
}
