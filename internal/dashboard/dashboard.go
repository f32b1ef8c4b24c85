// Package dashboard provides the live agent dashboard TUI: a table of
// agents across worktrees with a capture preview of the selected pane.
package dashboard

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"workmux/internal/mux"
	"workmux/internal/reconcile"
	"workmux/internal/state"
)

// TickMsg drives the periodic refresh.
type TickMsg time.Time

// StateChangedMsg is sent when the agents directory changes on disk.
type StateChangedMsg struct{}

// agentsMsg carries a fresh reconciliation result.
type agentsMsg struct {
	agents []reconcile.Agent
	err    error
}

// previewMsg carries captured pane content for the selected agent.
type previewMsg struct {
	paneID  string
	content string
}

// Sort modes cycled by the "s" key and persisted in settings.
const (
	SortByName   = "name"
	SortByStatus = "status"
	SortByAge    = "age"
)

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Sort    key.Binding
	Quit    key.Binding
}

var keys = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the dashboard bubbletea model.
type Model struct {
	store   *state.Store
	backend mux.Backend
	watcher *stateWatcher

	table        table.Model
	agents       []reconcile.Agent
	preview      string
	previewPane  string
	sortMode     string
	previewLines int
	refreshEvery time.Duration

	width    int
	height   int
	quitting bool
	err      error
}

// New builds the dashboard model. Settings (sort mode, preview size) are
// loaded from the store; sort mode is saved back when changed.
func New(store *state.Store, backend mux.Backend, refreshEvery time.Duration, previewLines int) Model {
	settings := store.LoadSettings()
	sortMode := settings.SortMode
	if sortMode == "" {
		sortMode = SortByName
	}
	// A persisted preview size wins over the configured default.
	if settings.PreviewSize > 0 {
		previewLines = settings.PreviewSize
	}

	columns := []table.Column{
		{Title: "WORKTREE", Width: 24},
		{Title: "STATUS", Width: 10},
		{Title: "AGE", Width: 6},
		{Title: "PANE", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("75"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	// Watching is best effort; without fsnotify the tick still refreshes.
	watcher, err := newStateWatcher(store.AgentsDir())
	if err != nil {
		watcher = nil
	}

	return Model{
		store:        store,
		backend:      backend,
		watcher:      watcher,
		table:        t,
		sortMode:     sortMode,
		previewLines: previewLines,
		refreshEvery: refreshEvery,
		width:        80,
		height:       24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresh(), m.tick()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.wait())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) refresh() tea.Cmd {
	store, backend := m.store, m.backend
	return func() tea.Msg {
		agents, err := reconcile.Reconcile(store, backend)
		return agentsMsg{agents: agents, err: err}
	}
}

func (m Model) capturePreview() tea.Cmd {
	if len(m.agents) == 0 {
		return nil
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.agents) {
		return nil
	}
	backend := m.backend
	paneID := m.agents[idx].State.PaneKey.PaneID
	lines := m.previewLines
	return func() tea.Msg {
		content, err := backend.Capture(paneID, lines)
		if err != nil {
			content = "(capture failed: " + err.Error() + ")"
		}
		return previewMsg{paneID: paneID, content: content}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(maxInt(3, m.height/2-4))
		return m, m.capturePreview()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			if m.watcher != nil {
				m.watcher.close()
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, keys.Sort):
			m.sortMode = nextSortMode(m.sortMode)
			settings := m.store.LoadSettings()
			settings.SortMode = m.sortMode
			_ = m.store.SaveSettings(settings)
			m.setAgents(m.agents)
			return m, m.capturePreview()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, tea.Batch(cmd, m.capturePreview())

	case TickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case StateChangedMsg:
		cmds := []tea.Cmd{m.refresh()}
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.wait())
		}
		return m, tea.Batch(cmds...)

	case agentsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setAgents(msg.agents)
		return m, m.capturePreview()

	case previewMsg:
		m.previewPane = msg.paneID
		m.preview = msg.content
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) setAgents(agents []reconcile.Agent) {
	sortAgents(agents, m.sortMode)
	m.agents = agents

	rows := make([]table.Row, 0, len(agents))
	now := time.Now().Unix()
	for _, a := range agents {
		age := ""
		if a.State.UpdatedAt > 0 && now >= a.State.UpdatedAt {
			age = compactAge(now - a.State.UpdatedAt)
		}
		rows = append(rows, table.Row{
			filepath.Base(a.State.Workdir),
			a.State.Status,
			age,
			a.State.PaneKey.PaneID,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")).
		Render(fmt.Sprintf("workmux agents (%d) · sort: %s", len(m.agents), m.sortMode))

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	if m.err != nil {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("203")).
			Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	if len(m.agents) == 0 {
		sb.WriteString("No active agents\n")
	} else {
		sb.WriteString(m.table.View())
		sb.WriteString("\n\n")
		sb.WriteString(m.renderPreview())
	}
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Faint(true).
		Render("↑/↓ select · r refresh · s sort · q quit"))
	return sb.String()
}

func (m Model) renderPreview() string {
	header := lipgloss.NewStyle().Faint(true).Render("── pane " + m.previewPane + " ──")
	body := m.preview
	if m.width > 4 {
		body = wordwrap.String(body, m.width-2)
	}
	lines := strings.Split(body, "\n")
	budget := maxInt(3, m.height-m.table.Height()-8)
	if len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}
	return header + "\n" + strings.Join(lines, "\n")
}

// nextSortMode cycles name -> status -> age -> name.
func nextSortMode(mode string) string {
	switch mode {
	case SortByName:
		return SortByStatus
	case SortByStatus:
		return SortByAge
	default:
		return SortByName
	}
}

// sortAgents orders agents for display. Sorts are stable with a name
// tiebreak so the table does not jitter between refreshes.
func sortAgents(agents []reconcile.Agent, mode string) {
	name := func(a reconcile.Agent) string { return filepath.Base(a.State.Workdir) }
	sort.SliceStable(agents, func(i, j int) bool {
		switch mode {
		case SortByStatus:
			if agents[i].State.Status != agents[j].State.Status {
				return agents[i].State.Status < agents[j].State.Status
			}
		case SortByAge:
			if agents[i].State.UpdatedAt != agents[j].State.UpdatedAt {
				return agents[i].State.UpdatedAt > agents[j].State.UpdatedAt
			}
		}
		return name(agents[i]) < name(agents[j])
	})
}

func compactAge(secs int64) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	default:
		return fmt.Sprintf("%dd", secs/86400)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
