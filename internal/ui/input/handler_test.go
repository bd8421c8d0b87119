package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/ui/input/types"
)

type fakeContext struct {
	index    int
	total    int
	hasQuery bool
	hasMore  bool
	loading  bool
}

func (c fakeContext) CurrentIndex() int { return c.index }
func (c fakeContext) TotalItems() int   { return c.total }
func (c fakeContext) HasQuery() bool    { return c.hasQuery }
func (c fakeContext) HasMore() bool     { return c.hasMore }
func (c fakeContext) Loading() bool     { return c.loading }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSearchModeSubmitsTypedText(t *testing.T) {
	h := New()
	ctx := fakeContext{}

	_, _ = h.HandleKey(runes("/"), ctx)
	require.Equal(t, types.ModeSearch, h.CurrentMode())
	require.NotNil(t, h.TextInput())
	assert.Equal(t, "Search users: ", h.Prompt())

	for _, r := range "alice" {
		actions, _ := h.HandleKey(runes(string(r)), ctx)
		require.NotEmpty(t, actions)
	}
	assert.Equal(t, "alice", h.TextInput().Value())

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	require.Len(t, actions, 1)
	assert.Equal(t, types.SubmitTextAction{Text: "alice", Mode: types.ModeSearch}, actions[0])
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Nil(t, h.TextInput())
}

func TestSearchModeEscCancels(t *testing.T) {
	h := New()
	ctx := fakeContext{}

	_, _ = h.HandleKey(runes("/"), ctx)
	_, _ = h.HandleKey(runes("x"), ctx)
	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)

	require.Len(t, actions, 1)
	assert.IsType(t, types.CancelTextAction{}, actions[0])
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestLoadMoreKeyRespectsContext(t *testing.T) {
	h := New()

	actions, _ := h.HandleKey(runes("n"), fakeContext{hasQuery: true, hasMore: true})
	require.Len(t, actions, 1)
	assert.IsType(t, types.LoadMoreAction{}, actions[0])

	actions, _ = h.HandleKey(runes("n"), fakeContext{hasQuery: true, hasMore: false})
	assert.Empty(t, actions)

	actions, _ = h.HandleKey(runes("n"), fakeContext{hasQuery: true, hasMore: true, loading: true})
	assert.Empty(t, actions)
}

func TestNormalModeKeys(t *testing.T) {
	h := New()
	ctx := fakeContext{total: 3, hasQuery: true}

	tests := []struct {
		key  tea.KeyMsg
		want types.Action
	}{
		{runes("j"), types.NavigateAction{Direction: "down"}},
		{tea.KeyMsg{Type: tea.KeyUp}, types.NavigateAction{Direction: "up"}},
		{runes("G"), types.NavigateAction{Direction: "end"}},
		{tea.KeyMsg{Type: tea.KeyEnter}, types.OpenDetailAction{}},
		{runes("r"), types.RefreshAction{}},
		{runes("c"), types.ClearQueryAction{}},
		{runes("?"), types.ToggleHelpAction{}},
		{runes("q"), types.QuitAction{Force: false}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, types.QuitAction{Force: true}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			actions, _ := h.HandleKey(tt.key, ctx)
			require.Len(t, actions, 1)
			assert.Equal(t, tt.want, actions[0])
		})
	}
}
