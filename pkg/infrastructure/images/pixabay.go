// Package images searches the Pixabay stock-photo API. The API key is
// optional server-wide; callers must check HasAPIKey before searching
// so they can fall back to a plain web search.
package images

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

const (
	searchTimeout = 10 * time.Second

	// Pixabay rejects per_page outside [3,200].
	minPerPage = 3
	maxPerPage = 200
)

// ImageTypes and Orientations are the request enums Pixabay accepts.
var (
	ImageTypes   = []string{"all", "photo", "illustration", "vector"}
	Orientations = []string{"all", "horizontal", "vertical"}
)

// Client queries the Pixabay REST API.
type Client struct {
	logger  zerolog.Logger
	http    *httpx.Client
	apiBase string
	key     string
}

// NewClient builds a Pixabay client. An empty key disables searches.
func NewClient(logger zerolog.Logger, cfg *research.ServerConfig) *Client {
	return &Client{
		logger: logger.With().Str("component", "images").Logger(),
		http: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(searchTimeout),
			httpx.WithRateLimit(2, 5)),
		apiBase: "https://pixabay.com/api/",
		key:     cfg.PixabayAPIKey,
	}
}

// HasAPIKey reports whether a Pixabay key is configured.
func (c *Client) HasAPIKey() bool { return c.key != "" }

// Search runs a safe-search image query. perPage is clamped to the
// range Pixabay accepts.
func (c *Client) Search(ctx context.Context, query, imageType, orientation string, perPage int) ([]research.ImageResult, error) {
	if !c.HasAPIKey() {
		return nil, errors.New(errors.CodeConfigurationInvalid, "images",
			"Pixabay API key is not configured: set PIXABAY_API_KEY (free key at https://pixabay.com/api/docs/)", nil)
	}
	if perPage < minPerPage {
		perPage = minPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("q", query)
	params.Set("image_type", imageType)
	params.Set("orientation", orientation)
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	params.Set("safesearch", "true")

	var payload struct {
		Hits []struct {
			Tags          string `json:"tags"`
			ImageWidth    int    `json:"imageWidth"`
			ImageHeight   int    `json:"imageHeight"`
			Views         int    `json:"views"`
			Downloads     int    `json:"downloads"`
			Likes         int    `json:"likes"`
			User          string `json:"user"`
			WebformatURL  string `json:"webformatURL"`
			LargeImageURL string `json:"largeImageURL"`
			FullHDURL     string `json:"fullHDURL"`
		} `json:"hits"`
	}
	if err := c.http.GetJSON(ctx, c.apiBase+"?"+params.Encode(), nil, &payload); err != nil {
		if httpx.IsStatus(err, http.StatusBadRequest) {
			return nil, errors.New(errors.CodeInvalidParameter, "images",
				"Pixabay rejected the query: check the API key and parameters", err)
		}
		if httpx.IsStatus(err, http.StatusTooManyRequests) {
			return nil, errors.New(errors.CodeRateLimited, "images",
				"Pixabay rate limit exceeded, retry later", err)
		}
		return nil, err
	}

	results := make([]research.ImageResult, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		results = append(results, research.ImageResult{
			Tags:       splitTags(hit.Tags),
			Width:      hit.ImageWidth,
			Height:     hit.ImageHeight,
			Views:      hit.Views,
			Downloads:  hit.Downloads,
			Likes:      hit.Likes,
			User:       hit.User,
			PreviewURL: hit.WebformatURL,
			LargeURL:   hit.LargeImageURL,
			FullHDURL:  hit.FullHDURL,
		})
	}

	c.logger.Debug().Str("query", query).Int("hits", len(results)).Msg("pixabay search complete")
	return results, nil
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
