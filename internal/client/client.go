// Package client is a Go client for the DevPulse API. Instances are
// constructed and injected explicitly; there is no package-level singleton.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/devpulse/internal/favorites"
	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/repoview"
	"git.home.luguber.info/inful/devpulse/internal/server/responses"
)

// Client talks to a DevPulse API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ReposQuery mirrors the repository listing filter parameters.
type ReposQuery struct {
	Criteria repoview.Criteria
	Sort     string
	Desc     bool
	Refresh  bool
}

// Repos fetches the repository listing.
func (c *Client) Repos(ctx context.Context, q ReposQuery) (*responses.ReposResponse, error) {
	params := url.Values{}
	if q.Criteria.Search != "" {
		params.Set("search", q.Criteria.Search)
	}
	if q.Criteria.Activity != "" {
		params.Set("activity", string(q.Criteria.Activity))
	}
	if q.Criteria.Status != "" {
		params.Set("status", string(q.Criteria.Status))
	}
	if q.Criteria.Branch != "" {
		params.Set("branch", q.Criteria.Branch)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
		if q.Desc {
			params.Set("order", "desc")
		}
	}
	if q.Refresh {
		params.Set("refresh", "true")
	}

	var resp responses.ReposResponse
	if err := c.get(ctx, "/api/repos", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analyze fetches the recent work summary for a repository.
func (c *Client) Analyze(ctx context.Context, path string, maxCommits, sinceDays int) (*gitscan.WorkSummary, error) {
	var resp responses.AnalyzeResponse
	err := c.post(ctx, "/api/repos/analyze", map[string]any{
		"path": path, "max_commits": maxCommits, "since_days": sinceDays,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Summary, nil
}

// Pull triggers a checkout-and-pull for a repository.
func (c *Client) Pull(ctx context.Context, path, branch string) (*gitscan.PullResult, error) {
	var resp responses.PullResponse
	err := c.post(ctx, "/api/repos/pull", map[string]any{"path": path, "branch": branch}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// ExportCSV downloads the CSV export for the given paths. An empty selection
// returns no data and an empty filename.
func (c *Client) ExportCSV(ctx context.Context, paths []string) (data []byte, filename string, err error) {
	body, err := json.Marshal(map[string]any{"paths": paths})
	if err != nil {
		return nil, "", fmt.Errorf("marshal export request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/export/csv", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil, "", nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, "", c.errorFrom(res)
	}

	data, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}
	return data, filenameFrom(res.Header.Get("Content-Disposition")), nil
}

// Favorites fetches the user's favorites.
func (c *Client) Favorites(ctx context.Context) ([]favorites.Favorite, error) {
	var resp responses.FavoritesResponse
	if err := c.get(ctx, "/api/favorites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite marks a repository as favorite.
func (c *Client) AddFavorite(ctx context.Context, repoPath, repoName string) error {
	return c.post(ctx, "/api/favorites", map[string]string{
		"repo_path": repoPath, "repo_name": repoName,
	}, nil)
}

// RemoveFavorite removes a repository from favorites.
func (c *Client) RemoveFavorite(ctx context.Context, repoPath string) error {
	params := url.Values{}
	params.Set("path", repoPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/favorites?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return c.errorFrom(res)
	}
	return nil
}

// CheckFavorites resolves favorite status for a batch of paths.
func (c *Client) CheckFavorites(ctx context.Context, paths []string) (map[string]bool, error) {
	var resp responses.FavoriteCheckResponse
	if err := c.post(ctx, "/api/favorites/check", map[string]any{"paths": paths}, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// Status fetches the daemon status.
func (c *Client) Status(ctx context.Context) (*responses.StatusResponse, error) {
	var resp responses.StatusResponse
	if err := c.get(ctx, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.errorFrom(res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) errorFrom(res *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := res.Status
	if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: res.StatusCode, Message: msg}
}

// filenameFrom extracts the filename from a Content-Disposition header.
func filenameFrom(disposition string) string {
	const marker = `filename="`
	i := strings.Index(disposition, marker)
	if i < 0 {
		return ""
	}
	rest := disposition[i+len(marker):]
	if j := strings.Index(rest, `"`); j >= 0 {
		return rest[:j]
	}
	return rest
}
