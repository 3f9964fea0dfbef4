// Package gh fetches code repository metadata from the GitHub API.
package gh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v83/github"
)

const (
	codeHost = "github.com"

	contributorPageSize = 100
	commitPageSize      = 100
	commitWindowDays    = 30
)

// Contributor is one repository contributor with their commit count.
type Contributor struct {
	Login         string `json:"login" yaml:"login"`
	Contributions int    `json:"contributions" yaml:"contributions"`
}

// RepoMeta is the repository metadata read by the metrics.
type RepoMeta struct {
	Owner           string        `json:"owner" yaml:"owner"`
	Repo            string        `json:"repo" yaml:"repo"`
	Description     string        `json:"description,omitempty" yaml:"description,omitempty"`
	License         string        `json:"license,omitempty" yaml:"license,omitempty"`
	Stars           int           `json:"stars" yaml:"stars"`
	Forks           int           `json:"forks" yaml:"forks"`
	Language        string        `json:"language,omitempty" yaml:"language,omitempty"`
	Archived        bool          `json:"archived" yaml:"archived"`
	CloneURL        string        `json:"clone_url,omitempty" yaml:"cloneUrl,omitempty"`
	AvgDailyCommits float64       `json:"avg_daily_commits" yaml:"avgDailyCommits"`
	Contributors    []Contributor `json:"contributors,omitempty" yaml:"contributors,omitempty"`
}

// Client wraps the GitHub API client used by the metrics.
type Client struct {
	gh *github.Client
}

// New creates a GitHub metadata client. The HTTP client should carry
// authentication (see net.GetOAuthClient), anonymous access works but
// is heavily rate limited.
func New(httpClient *http.Client) *Client {
	return &Client{gh: github.NewClient(httpClient)}
}

// ParseRepoURL extracts the owner/repo pair from a GitHub URL.
func ParseRepoURL(rawURL string) (owner, repo string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("malformed GitHub URL: %q", rawURL)
	}
	if !strings.Contains(u.Host, codeHost) {
		return "", "", fmt.Errorf("not a GitHub URL: %q", rawURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed GitHub URL path: %q", rawURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// GetRepoMeta fetches repository info, contributors, and recent commit
// activity for a GitHub repository URL. Contributor and commit fetch
// failures are logged and leave the corresponding fields empty, the
// repository info itself is required.
func (c *Client) GetRepoMeta(ctx context.Context, codeURL string) (*RepoMeta, error) {
	owner, repo, err := ParseRepoURL(codeURL)
	if err != nil {
		return nil, err
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("getting repo %s/%s: %w", owner, repo, err)
	}
	checkRateLimit(resp)

	meta := &RepoMeta{
		Owner:       owner,
		Repo:        repo,
		Description: r.GetDescription(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Language:    r.GetLanguage(),
		Archived:    r.GetArchived(),
		CloneURL:    r.GetCloneURL(),
	}
	if r.License != nil {
		meta.License = r.License.GetSPDXID()
	}

	meta.Contributors = c.getContributors(ctx, owner, repo)
	meta.AvgDailyCommits = c.getCommitActivity(ctx, owner, repo)

	slog.Debug("fetched repo metadata",
		"repo", owner+"/"+repo,
		"stars", meta.Stars,
		"contributors", len(meta.Contributors),
	)

	return meta, nil
}

func (c *Client) getContributors(ctx context.Context, owner, repo string) []Contributor {
	opt := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: contributorPageSize},
	}
	items, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opt)
	if err != nil {
		slog.Warn("failed to list contributors", "repo", owner+"/"+repo, "error", err)
		return nil
	}
	checkRateLimit(resp)

	list := make([]Contributor, 0, len(items))
	for _, u := range items {
		list = append(list, Contributor{
			Login:         u.GetLogin(),
			Contributions: u.GetContributions(),
		})
	}
	return list
}

func (c *Client) getCommitActivity(ctx context.Context, owner, repo string) float64 {
	opt := &github.CommitsListOptions{
		Since:       time.Now().UTC().AddDate(0, 0, -commitWindowDays),
		ListOptions: github.ListOptions{PerPage: commitPageSize},
	}
	commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opt)
	if err != nil {
		slog.Warn("failed to list commits", "repo", owner+"/"+repo, "error", err)
		return 0
	}
	checkRateLimit(resp)

	return float64(len(commits)) / float64(commitWindowDays)
}

// Probe reports whether the repository behind the URL is reachable.
func (c *Client) Probe(ctx context.Context, rawURL string) bool {
	owner, repo, err := ParseRepoURL(rawURL)
	if err != nil {
		return false
	}
	_, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	checkRateLimit(resp)
	return err == nil
}

// ValidateToken verifies that the client's credentials are accepted by
// the GitHub API.
func (c *Client) ValidateToken(ctx context.Context) error {
	_, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) {
			return fmt.Errorf("GitHub token rejected: %s", ghErr.Response.Status)
		}
		return fmt.Errorf("validating GitHub token: %w", err)
	}
	checkRateLimit(resp)
	return nil
}
