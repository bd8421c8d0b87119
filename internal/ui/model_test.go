package ui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usersearch/internal/client"
	"usersearch/internal/config"
	"usersearch/internal/domain"
	"usersearch/internal/eventbus"
	"usersearch/internal/search"
)

type MockSearchClient struct {
	mock.Mock
}

func (m *MockSearchClient) GetUsers(ctx context.Context, term string, page int) (*domain.SearchPage, error) {
	args := m.Called(ctx, term, page)
	p, _ := args.Get(0).(*domain.SearchPage)
	return p, args.Error(1)
}

func page(total int, handles ...string) *domain.SearchPage {
	items := make([]domain.User, len(handles))
	for i, h := range handles {
		items[i] = domain.User{ID: int64(i + 1), Handle: h}
	}
	return &domain.SearchPage{Items: items, TotalCount: total}
}

func newTestModel(t *testing.T, c client.UserSearchClient, cfg *config.Config) *Model {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctrl := search.NewController(c, search.WithLogger(logger))
	m := NewModel(context.Background(), ctrl, cfg, logger)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, k string) tea.Cmd {
	_, cmd := m.Update(key(k))
	return cmd
}

// submit types term into the search prompt and returns the command from enter
func submit(m *Model, term string) tea.Cmd {
	press(m, "/")
	for _, r := range term {
		press(m, string(r))
	}
	return press(m, "enter")
}

// collect executes cmd, flattening batches, and returns the produced messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// run executes cmd and feeds every search result back into the model
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collect(cmd) {
		if res, ok := msg.(searchResultMsg); ok {
			m.Update(res)
		}
	}
}

func TestSubmitQueryShowsResults(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "alice", 1).Return(page(5, "alice1", "alice2"), nil)

	m := newTestModel(t, mc, nil)
	cmd := submit(m, "alice")
	require.NotNil(t, cmd)

	assert.True(t, m.ctrl.State().Loading)
	run(t, m, cmd)

	s := m.ctrl.State()
	assert.Equal(t, "alice", s.Query)
	assert.Len(t, s.Results, 2)

	view := m.View()
	assert.Contains(t, view, "alice1")
	assert.Contains(t, view, "alice2")
	assert.Contains(t, view, "showing 2 of 5")
	mc.AssertExpectations(t)
}

func TestCursorOnLastRowLoadsMore(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "alice", 1).Return(page(3, "alice1", "alice2"), nil)
	mc.On("GetUsers", mock.Anything, "alice", 2).Return(page(3, "alice3"), nil)

	m := newTestModel(t, mc, nil)
	run(t, m, submit(m, "alice"))

	cmd := press(m, "j")
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.ctrl.State().Page)
	run(t, m, cmd)

	assert.Len(t, m.ctrl.State().Results, 3)
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "showing 3 of 3")
	mc.AssertExpectations(t)
}

func TestAutoLoadMoreDisabled(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "alice", 1).Return(page(3, "alice1", "alice2"), nil)

	cfg := config.DefaultConfig()
	cfg.UISettings.AutoLoadMore = false
	m := newTestModel(t, mc, cfg)
	run(t, m, submit(m, "alice"))

	assert.Nil(t, press(m, "j"))
	assert.Equal(t, 1, m.cursor)
	mc.AssertNumberOfCalls(t, "GetUsers", 1)

	// explicit load more still works
	cmd := press(m, "n")
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.ctrl.State().Page)
}

func TestLateResponseForOldQueryIgnored(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "ali", 1).Return(page(40, "ali1", "ali2", "ali3"), nil)
	mc.On("GetUsers", mock.Anything, "alice", 1).Return(page(1, "alice1"), nil)

	m := newTestModel(t, mc, nil)
	older := submit(m, "ali")
	newer := submit(m, "alice")

	run(t, m, newer)
	run(t, m, older)

	s := m.ctrl.State()
	assert.Equal(t, "alice", s.Query)
	require.Len(t, s.Results, 1)
	assert.Equal(t, "alice1", s.Results[0].Handle)
	assert.Equal(t, 1, s.TotalCount)
}

func TestClearQueryKeepsResults(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "alice", 1).Return(page(2, "alice1", "alice2"), nil)

	m := newTestModel(t, mc, nil)
	run(t, m, submit(m, "alice"))

	assert.Nil(t, press(m, "c"))
	s := m.ctrl.State()
	assert.Equal(t, "", s.Query)
	assert.Len(t, s.Results, 2)
	assert.Contains(t, m.View(), "Press / to search")
}

func TestEscLeavesQueryUntouched(t *testing.T) {
	m := newTestModel(t, &MockSearchClient{}, nil)

	press(m, "/")
	press(m, "x")
	assert.Nil(t, press(m, "esc"))
	assert.Equal(t, "", m.ctrl.State().Query)
	assert.NotContains(t, m.View(), "Search users:")
}

func TestSearchFailedEventSetsStatus(t *testing.T) {
	m := newTestModel(t, &MockSearchClient{}, nil)

	m.Update(EventMsg{Event: eventbus.SearchFailedEvent{Query: "alice", Page: 1, Err: &client.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}}})
	assert.Contains(t, m.View(), "Rate limited")

	m.Update(EventMsg{Event: eventbus.SearchCompletedEvent{Query: "alice", Page: 2}})
	assert.Equal(t, "No more results", m.statusMessage)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"circuit open", errors.Join(client.ErrCircuitOpen, errors.New("open state")), "Search API unavailable, pausing requests"},
		{"network", &client.NetworkError{Op: "GET", URL: "http://x", Err: errors.New("refused")}, "Network error, check your connection"},
		{"forbidden", &client.HTTPError{StatusCode: 403}, "Rate limited by the API, try again later"},
		{"server", &client.HTTPError{StatusCode: 500}, "Search failed (HTTP 500)"},
		{"other", errors.New("decode"), "Search failed: decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}

func TestOpenDetailWithoutProgram(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "alice", 1).Return(page(1, "alice1"), nil)

	m := newTestModel(t, mc, nil)
	run(t, m, submit(m, "alice"))

	out := collect(press(m, "o"))
	require.Len(t, out, 1)
	closed, ok := out[0].(pagerClosedMsg)
	require.True(t, ok)
	assert.EqualError(t, closed.err, "program not set")

	m.Update(closed)
	assert.Contains(t, m.statusMessage, "Pager error")
}

func TestToggleHelp(t *testing.T) {
	m := newTestModel(t, &MockSearchClient{}, nil)

	press(m, "?")
	assert.Contains(t, m.View(), "clear query")
	press(m, "?")
	assert.NotContains(t, m.View(), "clear query")
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &MockSearchClient{}, nil)

	assert.Contains(t, collect(press(m, "q")), tea.Msg(tea.QuitMsg{}))
}

func TestInitialQueryStartsSearch(t *testing.T) {
	mc := &MockSearchClient{}
	mc.On("GetUsers", mock.Anything, "bob", 1).Return(page(1, "bob1"), nil)

	m := newTestModel(t, mc, nil)
	m.SetInitialQuery("  bob ")
	run(t, m, m.Init())

	assert.Equal(t, "bob", m.ctrl.State().Query)
	assert.Len(t, m.ctrl.State().Results, 1)
}
