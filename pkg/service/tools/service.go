// Package tools wires the research clients into the MCP tool surface.
// Every tool goes through the same dispatch path: decode and validate
// arguments, run the handler, clamp the reply, and record exactly one
// usage event.
package tools

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/docs"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/extract"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/github"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/images"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/registry"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/statuspage"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/webfetch"
	"github.com/searxng-tools/web-research-assist/pkg/service/usage"
)

// Service carries every client the tool handlers need. Constructed once
// at bootstrap and shared by all handlers; the clients are safe for
// concurrent use.
type Service struct {
	logger  zerolog.Logger
	cfg     *research.ServerConfig
	search  *search.Client
	fetcher *webfetch.Fetcher
	reg     *registry.Client
	github  *github.Client
	images  *images.Client
	status  *statuspage.Client
	docs    *docs.Discoverer
	extract *extract.Extractor
	usage   *usage.Tracker
}

// NewService builds the full client graph from one config.
func NewService(logger zerolog.Logger, cfg *research.ServerConfig, tracker *usage.Tracker) *Service {
	searchClient := search.NewClient(logger, cfg)
	fetcher := webfetch.NewFetcher(logger, cfg, webfetch.NewHealthTracker(time.Hour))
	githubClient := github.NewClient(logger, cfg)

	return &Service{
		logger:  logger.With().Str("component", "tools").Logger(),
		cfg:     cfg,
		search:  searchClient,
		fetcher: fetcher,
		reg:     registry.NewClient(logger, cfg, githubClient),
		github:  githubClient,
		images:  images.NewClient(logger, cfg),
		status:  statuspage.NewClient(logger, cfg),
		docs:    docs.NewDiscoverer(logger, cfg, searchClient, fetcher),
		extract: extract.New(logger),
		usage:   tracker,
	}
}

// Fetcher exposes the fetch layer so the resource registrar can serve
// the domain health report.
func (s *Service) Fetcher() *webfetch.Fetcher { return s.fetcher }

// Usage exposes the tracker for shutdown logging.
func (s *Service) Usage() *usage.Tracker { return s.usage }

// Registry, GitHub, and Status expose the clients the resource
// registrar shares with the tool handlers.
func (s *Service) Registry() *registry.Client { return s.reg }

func (s *Service) GitHub() *github.Client { return s.github }

func (s *Service) Status() *statuspage.Client { return s.status }
