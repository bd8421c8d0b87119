package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"usersearch/internal/domain"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Query          string
	Page           int
	Results        []domain.User
	TotalCount     int // negative until the first page arrives
	Loading        bool
	Error          bool
	HasMore        bool
	SelectedIndex  int
	ViewportOffset int
	ViewportHeight int
	StatusMessage  string
	InputPrompt    string // non-empty while a text mode is active
	TextInput      string
	Spinner        string
	HelpView       string
}

// Renderer handles all view rendering
type Renderer struct {
	styles     *Styles
	userRender *UserRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(showEmail, showBio bool) *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:     styles,
		userRender: NewUserRenderer(styles, showEmail, showBio),
	}
}

// RenderUserDetail renders a single user for the detail pager
func (r *Renderer) RenderUserDetail(u domain.User) string {
	return r.userRender.RenderUserDetail(u)
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitleLine(state))
	content.WriteString("\n")

	if state.InputPrompt != "" {
		content.WriteString(r.styles.Prompt.Render(state.InputPrompt))
		content.WriteString(state.TextInput)
	} else if state.Query != "" {
		content.WriteString(r.styles.Dim.Render("Query: "))
		content.WriteString(r.styles.Query.Render(state.Query))
	} else {
		content.WriteString(r.styles.Dim.Render("Press / to search GitHub users"))
	}
	content.WriteString("\n\n")

	if len(state.Results) == 0 {
		content.WriteString(r.renderEmpty(state))
	} else {
		content.WriteString(r.renderResultList(state))
	}

	if status := r.renderStatusLine(state); status != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.Status.Render(status))
	}

	if state.HelpView != "" {
		content.WriteString("\n\n")
		content.WriteString(state.HelpView)
	}

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	return mainStyle.Render(content.String())
}

// renderTitleLine renders the title with right-aligned counters
func (r *Renderer) renderTitleLine(state ViewState) string {
	logo := r.styles.Title.Render("usersearch")

	var indicators []string
	if state.Loading && state.Query != "" {
		indicators = append(indicators, r.styles.StatusLoading.Render(strings.TrimSpace(state.Spinner+" Searching")))
	}
	if counter := Counter(len(state.Results), state.TotalCount); counter != "" {
		indicators = append(indicators, r.styles.Dim.Render(counter))
	}
	if len(indicators) == 0 {
		return logo
	}

	right := strings.Join(indicators, r.styles.Dim.Render(" | "))
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

// Counter formats the "showing N of M" indicator. It is empty until a total is known.
func Counter(shown, total int) string {
	if total < 0 {
		return ""
	}
	return fmt.Sprintf("showing %d of %d", shown, total)
}

func (r *Renderer) renderEmpty(state ViewState) string {
	switch {
	case state.Query == "":
		return ""
	case state.Loading:
		return r.styles.Dim.Render("Searching...")
	case state.Error:
		return r.styles.StatusError.Render("Search failed. Press r to retry.")
	default:
		return r.styles.Dim.Render("No users found.")
	}
}

// renderResultList renders the visible window of result rows
func (r *Renderer) renderResultList(state ViewState) string {
	height := state.ViewportHeight
	if height <= 0 {
		height = len(state.Results)
	}

	offset := state.ViewportOffset
	if offset < 0 {
		offset = 0
	}
	if offset > len(state.Results) {
		offset = len(state.Results)
	}

	end := offset + height
	if end > len(state.Results) {
		end = len(state.Results)
	}

	var lines []string
	if offset > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", offset)))
	}
	for i := offset; i < end; i++ {
		lines = append(lines, r.userRender.RenderUser(state.Results[i], i == state.SelectedIndex, state.Width))
	}
	if below := len(state.Results) - end; below > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", below)))
	}

	return strings.Join(lines, "\n")
}

// renderStatusLine renders paging state and the last status message
func (r *Renderer) renderStatusLine(state ViewState) string {
	var parts []string

	if state.Query != "" && len(state.Results) > 0 {
		switch {
		case state.Error:
			parts = append(parts, r.styles.StatusError.Render(fmt.Sprintf("Page %d failed, press n to retry", state.Page)))
		case state.Loading:
			parts = append(parts, r.styles.StatusLoading.Render(fmt.Sprintf("Loading page %d...", state.Page)))
		case state.HasMore:
			parts = append(parts, r.styles.Dim.Render("n: load more"))
		default:
			parts = append(parts, r.styles.StatusSuccess.Render("End of results"))
		}
	}

	if state.StatusMessage != "" {
		parts = append(parts, state.StatusMessage)
	}

	if state.HelpView == "" {
		parts = append(parts, r.styles.Dim.Render("? help"))
	}

	return strings.Join(parts, "  ")
}
