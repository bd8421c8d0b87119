package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"usersearch/internal/domain"
)

func TestCounter(t *testing.T) {
	assert.Equal(t, "", Counter(0, -1))
	assert.Equal(t, "showing 0 of 0", Counter(0, 0))
	assert.Equal(t, "showing 30 of 1204", Counter(30, 1204))
}

func TestRenderEmptyStates(t *testing.T) {
	r := NewRenderer(true, true)

	tests := []struct {
		name  string
		state ViewState
		want  string
	}{
		{"no query", ViewState{TotalCount: -1, Loading: true}, "Press / to search"},
		{"loading", ViewState{Query: "alice", TotalCount: -1, Loading: true}, "Searching..."},
		{"failed", ViewState{Query: "alice", TotalCount: -1, Error: true}, "Search failed. Press r to retry."},
		{"no match", ViewState{Query: "zzzz", TotalCount: 0}, "No users found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, r.Render(tt.state), tt.want)
		})
	}
}

func TestRenderResultWindow(t *testing.T) {
	r := NewRenderer(false, false)

	var results []domain.User
	for _, h := range []string{"u0", "u1", "u2", "u3", "u4", "u5"} {
		results = append(results, domain.User{Handle: h, Email: h + "@example.com"})
	}

	out := r.Render(ViewState{
		Width:          80,
		Query:          "u",
		Page:           1,
		Results:        results,
		TotalCount:     6,
		HasMore:        true,
		SelectedIndex:  2,
		ViewportOffset: 2,
		ViewportHeight: 2,
	})

	assert.Contains(t, out, "↑ 2 more above ↑")
	assert.Contains(t, out, "> u2")
	assert.Contains(t, out, "u3")
	assert.NotContains(t, out, "u4 ")
	assert.Contains(t, out, "↓ 2 more below ↓")
	assert.NotContains(t, out, "@example.com")
	assert.Contains(t, out, "showing 6 of 6")
	assert.Contains(t, out, "n: load more")
}

func TestRenderStatusForFailedPage(t *testing.T) {
	r := NewRenderer(true, true)

	out := r.Render(ViewState{
		Query:      "alice",
		Page:       3,
		Results:    []domain.User{{Handle: "alice1"}},
		TotalCount: 90,
		Error:      true,
		HasMore:    true,
	})

	assert.Contains(t, out, "Page 3 failed, press n to retry")
}

func TestRenderUserShowsEmailAndBio(t *testing.T) {
	styles := NewStyles()
	u := domain.User{Handle: "octocat", Email: "octo@github.com", Bio: "line one\nline two"}

	full := NewUserRenderer(styles, true, true).RenderUser(u, false, 120)
	assert.Contains(t, full, "octo@github.com")
	assert.Contains(t, full, "line one line two")

	bare := NewUserRenderer(styles, false, false).RenderUser(u, false, 120)
	assert.NotContains(t, bare, "octo@github.com")
	assert.NotContains(t, bare, "line one")
}

func TestRenderUserDetail(t *testing.T) {
	r := NewRenderer(true, true)
	out := r.RenderUserDetail(domain.User{
		ID:         583231,
		Handle:     "octocat",
		ProfileURL: "https://github.com/octocat",
		AvatarURL:  "https://avatars.githubusercontent.com/u/583231",
	})

	assert.Contains(t, out, "583231")
	assert.Contains(t, out, "https://github.com/octocat")
	assert.Contains(t, out, "https://avatars.githubusercontent.com/u/583231")
	assert.Regexp(t, `Email\s+-`, out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "ü", truncate("üü", 1))
}
