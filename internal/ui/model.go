package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"usersearch/internal/client"
	"usersearch/internal/config"
	"usersearch/internal/eventbus"
	"usersearch/internal/search"
	"usersearch/internal/ui/input"
	inputtypes "usersearch/internal/ui/input/types"
	"usersearch/internal/ui/views"
)

// rows taken by the title, query line, status line and container padding
const chromeHeight = 9

// Model represents the UI state. Search state lives in the controller; the
// model only owns cursor, viewport and presentation state.
type Model struct {
	ctx    context.Context
	ctrl   *search.Controller
	config *config.Config
	log    logrus.FieldLogger

	width          int
	height         int
	cursor         int
	viewportOffset int
	viewportHeight int
	statusMessage  string
	initialQuery   string

	help    help.Model
	keys    keyMap
	spinner spinner.Model

	renderer     *views.Renderer
	inputHandler *input.Handler
	pager        *PagerOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model. Fetches run under ctx.
func NewModel(ctx context.Context, ctrl *search.Controller, cfg *config.Config, logger logrus.FieldLogger) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	return &Model{
		ctx:            ctx,
		ctrl:           ctrl,
		config:         cfg,
		log:            logger.WithField("component", "ui"),
		viewportHeight: 20, // Will be updated on first WindowSizeMsg
		help:           help.New(),
		keys:           newKeyMap(),
		spinner:        sp,
		renderer:       views.NewRenderer(cfg.UISettings.ShowEmail, cfg.UISettings.ShowBio),
		inputHandler:   input.New(),
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager = NewPagerOps(p)
}

// SetInitialQuery makes Init start a search for q
func (m *Model) SetInitialQuery(q string) {
	m.initialQuery = strings.TrimSpace(q)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.initialQuery != "" {
		cmds = append(cmds, m.fetch(m.ctrl.SetQuery(m.initialQuery)))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewportHeight = msg.Height - chromeHeight
		if m.viewportHeight < 1 {
			m.viewportHeight = 1
		}
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		ctx := &input.ModelContext{State: m.ctrl.State(), Cursor: m.cursor}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{cmd}
		for _, action := range actions {
			cmds = append(cmds, m.processAction(action))
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		m.ctrl.Resolve(msg.result)
		m.clampCursor()
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case pagerClosedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("pager failed")
			m.statusMessage = fmt.Sprintf("Pager error: %v", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.inputHandler.Update(msg)
}

// processAction executes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		return m.navigate(a.Direction)

	case inputtypes.SubmitTextAction:
		m.statusMessage = ""
		m.resetCursor()
		return m.fetch(m.ctrl.SetQuery(strings.TrimSpace(a.Text)))

	case inputtypes.CancelTextAction, inputtypes.UpdateTextAction:
		return nil

	case inputtypes.LoadMoreAction:
		return m.fetch(m.ctrl.LoadMore())

	case inputtypes.RefreshAction:
		m.statusMessage = ""
		m.resetCursor()
		return m.fetch(m.ctrl.Refresh())

	case inputtypes.ClearQueryAction:
		m.resetCursor()
		m.ctrl.SetQuery("")
		return nil

	case inputtypes.OpenDetailAction:
		return m.openDetail()

	case inputtypes.ToggleHelpAction:
		m.help.ShowAll = !m.help.ShowAll
		return nil

	case inputtypes.QuitAction:
		return tea.Quit
	}

	return nil
}

// fetch runs req off the update loop and reports back with searchResultMsg
func (m *Model) fetch(req *search.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return searchResultMsg{result: ctrl.Fetch(ctx, req)}
	}
}

func (m *Model) navigate(direction string) tea.Cmd {
	total := len(m.ctrl.State().Results)
	if total == 0 {
		return nil
	}

	switch direction {
	case "up":
		m.cursor--
	case "down":
		m.cursor++
	case "pageup":
		m.cursor -= m.viewportHeight
	case "pagedown":
		m.cursor += m.viewportHeight
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = total - 1
	}
	m.clampCursor()

	if m.config.UISettings.AutoLoadMore && m.cursor == total-1 {
		return m.fetch(m.ctrl.LoadMore())
	}
	return nil
}

func (m *Model) openDetail() tea.Cmd {
	results := m.ctrl.State().Results
	if m.cursor < 0 || m.cursor >= len(results) {
		return nil
	}

	content := m.renderer.RenderUserDetail(results[m.cursor])
	pager := m.pager
	return func() tea.Msg {
		return pagerClosedMsg{err: pager.Show(content)}
	}
}

func (m *Model) handleEvent(e eventbus.DomainEvent) {
	switch event := e.(type) {
	case eventbus.SearchFailedEvent:
		m.statusMessage = describeError(event.Err)
	case eventbus.SearchCompletedEvent:
		m.statusMessage = ""
		if event.Page > 1 && event.Received == 0 {
			m.statusMessage = "No more results"
		}
	case eventbus.QueryClearedEvent:
		m.statusMessage = "Query cleared"
	case eventbus.StaleResponseDiscardedEvent:
		m.log.WithFields(logrus.Fields{
			"token": event.Token,
			"query": event.Query,
		}).Debug("ui saw stale response")
	}
}

// describeError turns a client error into a one-line status message
func describeError(err error) string {
	code := client.StatusCode(err)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrCircuitOpen):
		return "Search API unavailable, pausing requests"
	case client.IsNetworkError(err):
		return "Network error, check your connection"
	case code == 403 || code == 429:
		return "Rate limited by the API, try again later"
	case code != 0:
		return fmt.Sprintf("Search failed (HTTP %d)", code)
	default:
		return fmt.Sprintf("Search failed: %v", err)
	}
}

func (m *Model) resetCursor() {
	m.cursor = 0
	m.viewportOffset = 0
}

func (m *Model) clampCursor() {
	total := len(m.ctrl.State().Results)
	if m.cursor >= total {
		m.cursor = total - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	if m.cursor < m.viewportOffset {
		m.viewportOffset = m.cursor
	}
	if m.cursor >= m.viewportOffset+m.viewportHeight {
		m.viewportOffset = m.cursor - m.viewportHeight + 1
	}
	if m.viewportOffset < 0 {
		m.viewportOffset = 0
	}
}

// View renders the UI
func (m *Model) View() string {
	s := m.ctrl.State()

	vs := views.ViewState{
		Width:          m.width,
		Height:         m.height,
		Query:          s.Query,
		Page:           s.Page,
		Results:        s.Results,
		TotalCount:     s.TotalCount,
		Loading:        s.Loading,
		Error:          s.Error,
		HasMore:        s.HasMore,
		SelectedIndex:  m.cursor,
		ViewportOffset: m.viewportOffset,
		ViewportHeight: m.viewportHeight,
		StatusMessage:  m.statusMessage,
		Spinner:        m.spinner.View(),
	}

	if ti := m.inputHandler.TextInput(); ti != nil {
		vs.InputPrompt = m.inputHandler.Prompt()
		vs.TextInput = ti.View()
	}
	if m.help.ShowAll {
		vs.HelpView = m.help.View(m.keys)
	}

	return m.renderer.Render(vs)
}
