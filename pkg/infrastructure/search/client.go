// Package search implements the meta-search client backed by a local
// SearXNG instance, plus the query augmentation used for example and
// article hunting.
package search

import (
	"context"
	"fmt"
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
	searchTimeout   = 10 * time.Second
	maxSnippetChars = 200
	snippetSuffix   = "…"
)

// Options filter one search call.
type Options struct {
	Category   string
	MaxResults int
	TimeRange  string // day, week, month, year; empty means no filter
}

// Client queries the SearXNG JSON API.
type Client struct {
	logger     zerolog.Logger
	http       *httpx.Client
	baseURL    string
	category   string
	maxResults int
}

// NewClient builds a search client for the configured endpoint.
func NewClient(logger zerolog.Logger, cfg *research.ServerConfig) *Client {
	return &Client{
		logger: logger.With().Str("component", "search").Logger(),
		http: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(searchTimeout),
			httpx.WithRateLimit(5, 5)),
		baseURL:    cfg.SearxBaseURL,
		category:   cfg.DefaultCategory,
		maxResults: cfg.MaxResults,
	}
}

type searxResult struct {
	Title     string  `json:"title"`
	PrettyURL string  `json:"pretty_url"`
	URL       string  `json:"url"`
	Content   string  `json:"content"`
	Snippet   string  `json:"snippet"`
	Engine    string  `json:"engine"`
	Score     float64 `json:"score"`
}

// Search returns up to opts.MaxResults hits for query, preserving the
// upstream ranking. A response without a results array is treated as
// malformed.
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]research.SearchHit, error) {
	category := opts.Category
	if category == "" {
		category = c.category
	}
	limit := opts.MaxResults
	if limit < 1 {
		limit = 1
	}
	if limit > c.maxResults {
		limit = c.maxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("categories", category)
	params.Set("format", "json")
	params.Set("pageno", "1")
	if opts.TimeRange != "" {
		params.Set("time_range", opts.TimeRange)
	}

	reqURL := c.baseURL + "?" + params.Encode()
	c.logger.Debug().Str("query", query).Str("category", category).Int("limit", limit).Msg("Searching")

	var payload struct {
		Results []searxResult `json:"results"`
	}
	headers := map[string]string{"Accept": "application/json"}
	if err := c.http.GetJSON(ctx, reqURL, headers, &payload); err != nil {
		if se, ok := httpx.AsStatus(err); ok {
			return nil, errors.New(errors.CodeUpstreamUnavailable, "search",
				fmt.Sprintf("search endpoint returned HTTP %d", se.StatusCode), err)
		}
		return nil, err
	}
	if payload.Results == nil {
		return nil, errors.New(errors.CodeUpstreamMalformed, "search",
			"search response has no results array", nil)
	}

	hits := make([]research.SearchHit, 0, limit)
	for _, item := range payload.Results {
		if len(hits) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = strings.TrimSpace(item.PrettyURL)
		}
		if title == "" {
			title = strings.TrimSpace(item.URL)
		}
		if title == "" {
			title = "Untitled"
		}
		snippet := strings.TrimSpace(item.Content)
		if snippet == "" {
			snippet = strings.TrimSpace(item.Snippet)
		}
		if snippet != "" && len([]rune(snippet)) > maxSnippetChars {
			snippet = textutil.Truncate(snippet, maxSnippetChars-1) + snippetSuffix
		}
		hits = append(hits, research.SearchHit{
			Title:   title,
			URL:     item.URL,
			Snippet: snippet,
			Engine:  item.Engine,
			Score:   item.Score,
		})
	}

	c.logger.Debug().Int("hits", len(hits)).Msg("Search complete")
	return hits, nil
}
