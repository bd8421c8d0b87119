package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"usersearch/internal/domain"
)

const handleColumnWidth = 24

// UserRenderer handles rendering of search result rows
type UserRenderer struct {
	styles    *Styles
	showEmail bool
	showBio   bool
}

// NewUserRenderer creates a new user renderer
func NewUserRenderer(styles *Styles, showEmail, showBio bool) *UserRenderer {
	return &UserRenderer{
		styles:    styles,
		showEmail: showEmail,
		showBio:   showBio,
	}
}

// RenderUser renders one result row, truncated to width
func (r *UserRenderer) RenderUser(u domain.User, isSelected bool, width int) string {
	handleStyle := r.styles.Handle.Width(handleColumnWidth)
	emailStyle := r.styles.Email
	bioStyle := r.styles.Bio
	if isSelected {
		handleStyle = handleStyle.Inherit(r.styles.SelectionBg)
		emailStyle = emailStyle.Inherit(r.styles.SelectionBg)
		bioStyle = bioStyle.Inherit(r.styles.SelectionBg)
	}

	cursor := "  "
	if isSelected {
		cursor = "> "
	}

	parts := []string{cursor, handleStyle.Render(truncate(u.Handle, handleColumnWidth))}
	if r.showEmail && u.Email != "" {
		parts = append(parts, " ", emailStyle.Render(u.Email))
	}
	line := strings.Join(parts, "")

	if r.showBio && u.Bio != "" {
		if width <= 0 {
			width = 80
		}
		// 4 columns of container padding plus a separator
		room := width - 4 - lipgloss.Width(line) - 2
		if room > 3 {
			bio := strings.Join(strings.Fields(u.Bio), " ")
			line += "  " + bioStyle.Render(truncate(bio, room))
		}
	}

	return line
}

// RenderUserDetail renders the full record of u for the pager
func (r *UserRenderer) RenderUserDetail(u domain.User) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(u.Handle))
	b.WriteString("\n\n")

	field := func(key, value string) {
		if value == "" {
			value = "-"
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", r.styles.DetailKey.Render(fmt.Sprintf("%-8s", key)), r.styles.DetailValue.Render(value)))
	}

	field("ID", fmt.Sprintf("%d", u.ID))
	field("Login", u.Handle)
	field("Email", u.Email)
	field("Profile", u.ProfileURL)
	field("Avatar", u.AvatarURL)

	if u.Bio != "" {
		b.WriteString("\n")
		b.WriteString(r.styles.DetailKey.Render("  Bio"))
		b.WriteString("\n")
		for _, line := range strings.Split(u.Bio, "\n") {
			b.WriteString("  " + r.styles.DetailValue.Render(line) + "\n")
		}
	}

	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
