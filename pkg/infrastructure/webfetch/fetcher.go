// Package webfetch fetches pages and renders them as readable markdown
// or raw HTML, recording per-domain fetch health along the way.
package webfetch

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
	fetchTimeout = 30 * time.Second
	maxBodyBytes = 4 << 20

	// DefaultRawChars bounds FetchRaw when the caller passes no limit.
	DefaultRawChars = 50000
	// MaxRawChars is the hard ceiling for raw HTML fetches.
	MaxRawChars = 500000
)

// Fetcher retrieves pages over plain HTTP, following redirects.
type Fetcher struct {
	logger zerolog.Logger
	http   *httpx.Client
	health *HealthTracker
}

// NewFetcher builds a Fetcher that records outcomes into health.
func NewFetcher(logger zerolog.Logger, cfg *research.ServerConfig, health *HealthTracker) *Fetcher {
	return &Fetcher{
		logger: logger.With().Str("component", "webfetch").Logger(),
		http:   httpx.New(logger, cfg.UserAgent, httpx.WithTimeout(fetchTimeout)),
		health: health,
	}
}

// FetchMarkdown retrieves url and returns its readable content as
// markdown, clamped to maxChars.
func (f *Fetcher) FetchMarkdown(ctx context.Context, rawURL string, maxChars int) (string, error) {
	html, host, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	markdown, err := htmlToMarkdown(html, host)
	if err != nil {
		return "", err
	}
	if markdown == "" {
		return "", errors.New(errors.CodeUpstreamMalformed, "webfetch",
			"fetch completed but returned no readable content", nil)
	}
	return textutil.Clamp(markdown, maxChars), nil
}

// FetchRaw retrieves url and returns the raw HTML, clamped to maxChars.
// A non-positive maxChars falls back to DefaultRawChars.
func (f *Fetcher) FetchRaw(ctx context.Context, rawURL string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultRawChars
	}
	if maxChars > MaxRawChars {
		maxChars = MaxRawChars
	}

	html, _, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	html = strings.TrimSpace(html)
	if html == "" {
		return "", errors.New(errors.CodeUpstreamMalformed, "webfetch",
			"fetch completed but returned no HTML content", nil)
	}
	return textutil.Clamp(html, maxChars), nil
}

// Health exposes the tracker for the report resource.
func (f *Fetcher) Health() *HealthTracker {
	return f.health
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (body, host string, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "", errors.New(errors.CodeInvalidParameter, "webfetch",
			fmt.Sprintf("invalid URL %q: an absolute http(s) URL is required", rawURL), parseErr)
	}
	domain := u.Hostname()

	start := time.Now()
	resp, err := f.http.Get(ctx, rawURL, nil)
	elapsed := time.Since(start)
	if err != nil {
		f.record(domain, StatusError, 0, elapsed)
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		f.record(domain, StatusBlocked, resp.StatusCode, elapsed)
		return "", "", errors.New(errors.CodeUpstreamForbidden, "webfetch",
			fmt.Sprintf("blocked by anti-bot protection on %s (HTTP %d)", domain, resp.StatusCode), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		f.record(domain, StatusRateLimited, resp.StatusCode, elapsed)
		return "", "", errors.New(errors.CodeRateLimited, "webfetch",
			fmt.Sprintf("rate limited by %s (HTTP 429), wait and retry", domain), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		f.record(domain, StatusError, resp.StatusCode, elapsed)
		return "", "", errors.New(errors.CodeUpstreamUnavailable, "webfetch",
			fmt.Sprintf("%s returned HTTP %d", domain, resp.StatusCode), nil)
	}

	data, err := httpx.ReadBody(resp.Body, maxBodyBytes)
	if err != nil {
		f.record(domain, StatusError, resp.StatusCode, elapsed)
		return "", "", err
	}

	f.record(domain, StatusOK, resp.StatusCode, elapsed)
	f.logger.Debug().Str("domain", domain).Int("bytes", len(data)).Msg("Fetched page")
	return string(data), domain, nil
}

func (f *Fetcher) record(domain string, status FetchStatus, httpStatus int, elapsed time.Duration) {
	if f.health != nil {
		f.health.Record(domain, status, httpStatus, elapsed)
	}
}
