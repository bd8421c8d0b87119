package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"

	"usersearch/internal/domain"
)

// maxErrorBody caps how much of an error response body is kept
const maxErrorBody = 4 << 10

// searchParams is encoded into the /users query string
type searchParams struct {
	Q       string `url:"q"`
	Page    int    `url:"page"`
	PerPage int    `url:"per_page,omitempty"`
}

// wireUser mirrors one entry of the API's items array
type wireUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

type wireSearchResult struct {
	TotalCount int        `json:"total_count"`
	Items      []wireUser `json:"items"`
}

type wireError struct {
	Message string `json:"message"`
}

// RESTClient queries GET {baseURL}/users directly
type RESTClient struct {
	baseURL string
	perPage int
	http    *http.Client
}

// NewRESTClient creates a client for the search root baseURL, e.g.
// https://api.github.com/search
func NewRESTClient(baseURL string, httpClient *http.Client, perPage int) *RESTClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		perPage: perPage,
		http:    httpClient,
	}
}

// GetUsers fetches one page of users matching term
func (c *RESTClient) GetUsers(ctx context.Context, term string, page int) (*domain.SearchPage, error) {
	values, err := query.Values(searchParams{Q: searchTerm(term), Page: page, PerPage: c.perPage})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}
	endpoint := c.baseURL + "/users?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}

	var result wireSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]domain.User, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, domain.User{
			ID:         u.ID,
			Handle:     u.Login,
			Email:      u.Email,
			Bio:        u.Bio,
			AvatarURL:  u.AvatarURL,
			ProfileURL: u.HTMLURL,
		})
	}

	return &domain.SearchPage{Items: items, TotalCount: result.TotalCount}, nil
}

func newHTTPError(resp *http.Response) *HTTPError {
	he := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return he
	}

	var we wireError
	if json.Unmarshal(body, &we) == nil && we.Message != "" {
		he.Message = we.Message
	} else {
		he.Message = strings.TrimSpace(string(body))
	}
	return he
}
