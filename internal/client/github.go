package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/github"

	"usersearch/internal/domain"
)

// GitHubClient serves the same contract through go-github's SearchService
type GitHubClient struct {
	gh      *github.Client
	perPage int
}

// NewGitHubClient creates a go-github backed client. baseURL is the search
// root (…/search); go-github wants the API root above it.
func NewGitHubClient(baseURL string, httpClient *http.Client, perPage int) (*GitHubClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	root := u.ResolveReference(&url.URL{Path: "./"})

	gh := github.NewClient(httpClient)
	gh.BaseURL = root

	return &GitHubClient{gh: gh, perPage: perPage}, nil
}

// GetUsers fetches one page of users matching term
func (c *GitHubClient) GetUsers(ctx context.Context, term string, page int) (*domain.SearchPage, error) {
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: c.perPage},
	}

	result, resp, err := c.gh.Search.Users(ctx, searchTerm(term), opts)
	if err != nil {
		if resp == nil || resp.Response == nil {
			return nil, &NetworkError{Op: http.MethodGet, URL: c.gh.BaseURL.String() + "search/users", Err: err}
		}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
		he := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		var ger *github.ErrorResponse
		if errors.As(err, &ger) {
			he.Message = ger.Message
		}
		return nil, he
	}

	items := make([]domain.User, 0, len(result.Users))
	for _, u := range result.Users {
		items = append(items, domain.User{
			ID:         u.GetID(),
			Handle:     u.GetLogin(),
			Email:      u.GetEmail(),
			Bio:        u.GetBio(),
			AvatarURL:  u.GetAvatarURL(),
			ProfileURL: u.GetHTMLURL(),
		})
	}

	return &domain.SearchPage{Items: items, TotalCount: result.GetTotal()}, nil
}
