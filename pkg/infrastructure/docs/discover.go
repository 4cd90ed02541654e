// Package docs locates official API documentation sites and mines
// topic pages for overview text, parameters, code examples, and
// related links.
package docs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
)

const probeTimeout = 5 * time.Second

// Curated documentation bases checked before any probing.
var knownDocs = map[string]string{
	"stripe":        "https://docs.stripe.com",
	"openai":        "https://platform.openai.com/docs",
	"anthropic":     "https://docs.anthropic.com",
	"github":        "https://docs.github.com",
	"gitlab":        "https://docs.gitlab.com",
	"twilio":        "https://www.twilio.com/docs",
	"sendgrid":      "https://docs.sendgrid.com",
	"slack":         "https://api.slack.com",
	"discord":       "https://discord.com/developers/docs",
	"telegram":      "https://core.telegram.org/bots/api",
	"aws":           "https://docs.aws.amazon.com",
	"gcp":           "https://cloud.google.com/docs",
	"google-cloud":  "https://cloud.google.com/docs",
	"azure":         "https://learn.microsoft.com/azure",
	"cloudflare":    "https://developers.cloudflare.com",
	"vercel":        "https://vercel.com/docs",
	"netlify":       "https://docs.netlify.com",
	"heroku":        "https://devcenter.heroku.com",
	"digitalocean":  "https://docs.digitalocean.com",
	"react":         "https://react.dev",
	"vue":           "https://vuejs.org/guide",
	"angular":       "https://angular.dev",
	"svelte":        "https://svelte.dev/docs",
	"nextjs":        "https://nextjs.org/docs",
	"next.js":       "https://nextjs.org/docs",
	"nuxt":          "https://nuxt.com/docs",
	"django":        "https://docs.djangoproject.com",
	"flask":         "https://flask.palletsprojects.com",
	"fastapi":       "https://fastapi.tiangolo.com",
	"express":       "https://expressjs.com",
	"rails":         "https://guides.rubyonrails.org",
	"laravel":       "https://laravel.com/docs",
	"spring":        "https://docs.spring.io",
	"kubernetes":    "https://kubernetes.io/docs",
	"docker":        "https://docs.docker.com",
	"terraform":     "https://developer.hashicorp.com/terraform/docs",
	"ansible":       "https://docs.ansible.com",
	"postgresql":    "https://www.postgresql.org/docs",
	"postgres":      "https://www.postgresql.org/docs",
	"mysql":         "https://dev.mysql.com/doc",
	"mongodb":       "https://www.mongodb.com/docs",
	"redis":         "https://redis.io/docs",
	"elasticsearch": "https://www.elastic.co/guide",
	"sqlite":        "https://www.sqlite.org/docs.html",
	"npm":           "https://docs.npmjs.com",
	"node":          "https://nodejs.org/docs/latest/api",
	"nodejs":        "https://nodejs.org/docs/latest/api",
	"go":            "https://go.dev/doc",
	"golang":        "https://go.dev/doc",
	"rust":          "https://doc.rust-lang.org",
	"python":        "https://docs.python.org/3",
	"typescript":    "https://www.typescriptlang.org/docs",
	"tailwind":      "https://tailwindcss.com/docs",
	"tailwindcss":   "https://tailwindcss.com/docs",
	"graphql":       "https://graphql.org/learn",
	"pytorch":       "https://pytorch.org/docs",
	"tensorflow":    "https://www.tensorflow.org/api_docs",
	"pandas":        "https://pandas.pydata.org/docs",
	"numpy":         "https://numpy.org/doc",
}

// URL shapes probed for unknown APIs; .com shapes come before .io so
// the first 2xx wins the preference.
var docURLPatterns = []string{
	"https://docs.%s.com",
	"https://%s.com/docs",
	"https://%s.com/docs/api",
	"https://developers.%s.com",
	"https://%s.dev",
	"https://docs.%s.io",
	"https://%s.io/docs",
	"https://api.%s.com/docs",
}

// Searcher is the slice of the meta-search client the discoverer needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]research.SearchHit, error)
}

// PageFetcher is the slice of the web fetcher the miner needs.
type PageFetcher interface {
	FetchRaw(ctx context.Context, rawURL string, maxChars int) (string, error)
}

// Discoverer finds documentation bases and gathers topic pages.
type Discoverer struct {
	logger   zerolog.Logger
	probe    *httpx.Client
	searcher Searcher
	fetcher  PageFetcher
}

// NewDiscoverer builds a Discoverer on top of the shared search client
// and fetcher.
func NewDiscoverer(logger zerolog.Logger, cfg *research.ServerConfig, searcher Searcher, fetcher PageFetcher) *Discoverer {
	return &Discoverer{
		logger: logger.With().Str("component", "docs").Logger(),
		probe: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(probeTimeout),
			httpx.WithRetries(1)),
		searcher: searcher,
		fetcher:  fetcher,
	}
}

// DiscoverBase resolves the documentation base URL for apiName:
// curated table, then URL shape probing, then a web search for the
// official documentation.
func (d *Discoverer) DiscoverBase(ctx context.Context, apiName string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(apiName))
	if base, ok := knownDocs[key]; ok {
		return base, nil
	}

	slug := strings.NewReplacer(" ", "", ".", "", "_", "-").Replace(key)
	if base, ok := d.probePatterns(ctx, docURLPatterns, slug); ok {
		d.logger.Debug().Str("api", apiName).Str("base", base).Msg("documentation base probed")
		return base, nil
	}

	return d.discoverViaSearch(ctx, apiName)
}

// probePatterns HEAD-checks each URL shape in order and returns the
// first that answers 2xx.
func (d *Discoverer) probePatterns(ctx context.Context, patterns []string, slug string) (string, bool) {
	for _, pattern := range patterns {
		candidate := fmt.Sprintf(pattern, slug)
		resp, err := d.probe.Head(ctx, candidate)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return candidate, true
		}
	}
	return "", false
}

func (d *Discoverer) discoverViaSearch(ctx context.Context, apiName string) (string, error) {
	hits, err := d.searcher.Search(ctx, apiName+" API official documentation", search.Options{
		Category:   "it",
		MaxResults: 5,
	})
	if err != nil {
		return "", err
	}
	for _, hit := range hits {
		lower := strings.ToLower(hit.URL)
		if strings.Contains(lower, "docs") || strings.Contains(lower, "developer") || strings.Contains(lower, "api") {
			return hit.URL, nil
		}
	}

	return "", errors.New(errors.CodeNotFound, "docs",
		fmt.Sprintf("could not locate documentation for %q: try a more specific name or the vendor's site", apiName), nil)
}

// docsHost extracts the hostname for site-restricted searching.
func docsHost(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Hostname()
}
