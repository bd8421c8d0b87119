package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap describes the normal-mode bindings for the help view. Dispatch
// itself lives in the input package.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Search   key.Binding
	LoadMore key.Binding
	Refresh  key.Binding
	Clear    key.Binding
	Open     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Search:   key.NewBinding(key.WithKeys("/", "s"), key.WithHelp("/", "search")),
		LoadMore: key.NewBinding(key.WithKeys("n", " "), key.WithHelp("n", "load more")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear query")),
		Open:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "details")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.LoadMore, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Search, k.LoadMore, k.Refresh, k.Clear},
		{k.Open, k.Help, k.Quit},
	}
}
