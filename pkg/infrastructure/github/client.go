// Package github talks to the GitHub REST API: repository metadata,
// recent commits, releases, and repository search. A token raises the
// unauthenticated rate limit but is never required.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

const (
	repoTimeout      = 10 * time.Second
	maxCommits       = 3
	maxReleases      = 50
	commitMsgMax     = 77
	shortSHALen      = 8
	maxSearchResults = 30
)

// ReleaseRecord is one raw release as GitHub reports it. The changelog
// engine classifies the body; nothing here is interpreted.
type ReleaseRecord struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
	HTMLURL     string `json:"html_url"`
}

// Client queries the GitHub REST API.
type Client struct {
	logger  zerolog.Logger
	http    *httpx.Client
	apiBase string
	token   string
}

// NewClient builds a GitHub client. The token comes from configuration
// and may be empty.
func NewClient(logger zerolog.Logger, cfg *research.ServerConfig) *Client {
	return &Client{
		logger: logger.With().Str("component", "github").Logger(),
		http: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(repoTimeout),
			httpx.WithRateLimit(1, 5),
			httpx.WithoutRedirects()),
		apiBase: "https://api.github.com",
		token:   cfg.GitHubToken,
	}
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if c.token != "" {
		h["Authorization"] = "token " + c.token
	}
	return h
}

type repoDoc struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Watchers    int    `json:"watchers_count"`
	OpenIssues  int    `json:"open_issues_count"`
	Language    string `json:"language"`
	License     *struct {
		Name string `json:"name"`
	} `json:"license"`
	UpdatedAt string   `json:"updated_at"`
	Topics    []string `json:"topics"`
	Homepage  string   `json:"homepage"`
	Archived  bool     `json:"archived"`
}

// GetRepoInfo fetches repository metadata. A 301 (renamed or
// transferred repo) is followed once via the Location header and the
// new full name is reported.
func (c *Client) GetRepoInfo(ctx context.Context, owner, repo string) (*research.RepoInfo, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s", c.apiBase, url.PathEscape(owner), url.PathEscape(repo))

	doc, err := c.getRepoDoc(ctx, reqURL, owner, repo, true)
	if err != nil {
		return nil, err
	}

	info := &research.RepoInfo{
		FullName:    doc.FullName,
		Description: doc.Description,
		Stars:       doc.Stars,
		Forks:       doc.Forks,
		Watchers:    doc.Watchers,
		OpenIssues:  doc.OpenIssues,
		Language:    doc.Language,
		LastUpdated: doc.UpdatedAt,
		Topics:      doc.Topics,
		Homepage:    doc.Homepage,
		Archived:    doc.Archived,
	}
	if doc.License != nil {
		info.License = doc.License.Name
	}

	// Open PR count goes through the search API, which is more accurate
	// than paging the pulls endpoint. Its failure leaves the field nil.
	if prs, err := c.openPRCount(ctx, doc.FullName); err == nil {
		info.OpenPRs = &prs
	} else {
		c.logger.Debug().Str("repo", doc.FullName).Err(err).Msg("open PR count lookup failed")
	}

	return info, nil
}

func (c *Client) getRepoDoc(ctx context.Context, reqURL, owner, repo string, followMoved bool) (*repoDoc, error) {
	resp, err := c.http.Get(ctx, reqURL, c.headers())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var doc repoDoc
		if err := httpx.DecodeJSON(resp.Body, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	case http.StatusMovedPermanently:
		location := resp.Header.Get("Location")
		if !followMoved || location == "" {
			return nil, errors.New(errors.CodeNotFound, "github",
				fmt.Sprintf("repository %s/%s has moved and the new location was not reported", owner, repo), nil)
		}
		c.logger.Debug().Str("repo", owner+"/"+repo).Str("location", location).Msg("following repository redirect")
		return c.getRepoDoc(ctx, location, owner, repo, false)
	case http.StatusNotFound:
		return nil, errors.New(errors.CodeNotFound, "github",
			fmt.Sprintf("repository %s/%s not found: check the spelling, the repository may be private or renamed", owner, repo), nil)
	case http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return nil, errors.New(errors.CodeRateLimited, "github",
				fmt.Sprintf("GitHub rate limit exhausted (resets at %s): set GITHUB_TOKEN for higher limits",
					rateResetTime(resp.Header.Get("X-RateLimit-Reset"))), nil)
		}
		return nil, errors.New(errors.CodeUpstreamForbidden, "github",
			fmt.Sprintf("access denied to %s/%s: the repository may be private", owner, repo), nil)
	default:
		return nil, errors.New(errors.CodeUpstreamUnavailable, "github",
			fmt.Sprintf("GitHub returned HTTP %d for %s/%s", resp.StatusCode, owner, repo), nil)
	}
}

func (c *Client) openPRCount(ctx context.Context, fullName string) (int, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("repo:%s type:pr state:open", fullName))
	params.Set("per_page", "1")
	reqURL := c.apiBase + "/search/issues?" + params.Encode()

	var payload struct {
		TotalCount int `json:"total_count"`
	}
	if err := c.http.GetJSON(ctx, reqURL, c.headers(), &payload); err != nil {
		return 0, err
	}
	return payload.TotalCount, nil
}

// GetRecentCommits fetches up to count recent commits in display form:
// short SHA, first message line, relative date.
func (c *Client) GetRecentCommits(ctx context.Context, owner, repo string, count int) ([]research.Commit, error) {
	if count < 1 || count > maxCommits {
		count = maxCommits
	}
	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d",
		c.apiBase, url.PathEscape(owner), url.PathEscape(repo), count)

	var payload []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string `json:"name"`
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := c.http.GetJSON(ctx, reqURL, c.headers(), &payload); err != nil {
		return nil, err
	}

	commits := make([]research.Commit, 0, len(payload))
	for _, item := range payload {
		if len(commits) >= count {
			break
		}
		message := item.Commit.Message
		if idx := strings.IndexByte(message, '\n'); idx >= 0 {
			message = message[:idx]
		}
		if len([]rune(message)) > commitMsgMax+3 {
			message = textutil.Truncate(message, commitMsgMax) + "..."
		}
		sha := item.SHA
		if len(sha) > shortSHALen {
			sha = sha[:shortSHALen]
		}
		author := item.Commit.Author.Name
		if author == "" {
			author = "Unknown"
		}
		commits = append(commits, research.Commit{
			SHA:     sha,
			Message: message,
			Author:  author,
			Date:    textutil.FormatTimeAgo(item.Commit.Author.Date),
		})
	}
	return commits, nil
}

// GetReleases fetches up to count raw releases for the changelog
// engine, newest first.
func (c *Client) GetReleases(ctx context.Context, owner, repo string, count int) ([]ReleaseRecord, error) {
	if count < 1 || count > maxReleases {
		count = maxReleases
	}
	reqURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
		c.apiBase, url.PathEscape(owner), url.PathEscape(repo), count)

	var payload []struct {
		TagName     string `json:"tag_name"`
		Name        string `json:"name"`
		Body        string `json:"body"`
		PublishedAt string `json:"published_at"`
		Author      struct {
			Login string `json:"login"`
		} `json:"author"`
		HTMLURL string `json:"html_url"`
	}
	if err := c.http.GetJSON(ctx, reqURL, c.headers(), &payload); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return nil, errors.New(errors.CodeNotFound, "github",
				fmt.Sprintf("repository %s/%s not found", owner, repo), nil)
		}
		return nil, err
	}

	releases := make([]ReleaseRecord, 0, len(payload))
	for _, item := range payload {
		if len(releases) >= count {
			break
		}
		releases = append(releases, ReleaseRecord{
			TagName:     item.TagName,
			Name:        item.Name,
			Body:        item.Body,
			PublishedAt: item.PublishedAt,
			Author:      item.Author.Login,
			HTMLURL:     item.HTMLURL,
		})
	}
	return releases, nil
}

// SearchRepoSummaries finds repositories matching query, sorted by
// stars. language narrows the search when non-empty.
func (c *Client) SearchRepoSummaries(ctx context.Context, query, language string, limit int) ([]research.RepoSummary, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	q := query
	if language != "" {
		q += " language:" + language
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", fmt.Sprintf("%d", limit))
	reqURL := c.apiBase + "/search/repositories?" + params.Encode()

	var payload struct {
		Items []struct {
			FullName    string `json:"full_name"`
			Description string `json:"description"`
			Stars       int    `json:"stargazers_count"`
			Language    string `json:"language"`
			HTMLURL     string `json:"html_url"`
		} `json:"items"`
	}
	if err := c.http.GetJSON(ctx, reqURL, c.headers(), &payload); err != nil {
		return nil, err
	}

	repos := make([]research.RepoSummary, 0, len(payload.Items))
	for _, item := range payload.Items {
		if len(repos) >= limit {
			break
		}
		repos = append(repos, research.RepoSummary{
			FullName:    item.FullName,
			Description: item.Description,
			Stars:       item.Stars,
			Language:    item.Language,
			URL:         item.HTMLURL,
		})
	}
	return repos, nil
}

func rateResetTime(reset string) string {
	if reset == "" {
		return "unknown"
	}
	var epoch int64
	if _, err := fmt.Sscanf(reset, "%d", &epoch); err != nil {
		return "unknown"
	}
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}
