// Package registry looks up package metadata across npm, PyPI,
// crates.io, and the Go module proxy, and searches for candidate
// packages. PyPI and Go have no usable native search, so discovery for
// those delegates to repository search.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

const registryTimeout = 10 * time.Second

// RepoSearcher is the slice of the repo client that package discovery
// needs for PyPI and Go.
type RepoSearcher interface {
	SearchRepoSummaries(ctx context.Context, query, language string, limit int) ([]research.RepoSummary, error)
}

// Client resolves package metadata from the four supported registries.
type Client struct {
	logger zerolog.Logger
	http   *httpx.Client
	repos  RepoSearcher

	npmBase          string
	npmDownloadsBase string
	pypiBase         string
	cratesBase       string
	goProxyBase      string
	pkgGoDevBase     string
}

// NewClient builds a registry client. repos may be nil, in which case
// PyPI and Go package discovery report a configuration error.
func NewClient(logger zerolog.Logger, cfg *research.ServerConfig, repos RepoSearcher) *Client {
	return &Client{
		logger: logger.With().Str("component", "registry").Logger(),
		http: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(registryTimeout),
			httpx.WithRateLimit(5, 5)),
		repos:            repos,
		npmBase:          "https://registry.npmjs.org",
		npmDownloadsBase: "https://api.npmjs.org",
		pypiBase:         "https://pypi.org",
		cratesBase:       "https://crates.io/api/v1/crates",
		goProxyBase:      "https://proxy.golang.org",
		pkgGoDevBase:     "https://pkg.go.dev",
	}
}

// Info fetches the latest published metadata for one package.
func (c *Client) Info(ctx context.Context, name string, reg research.Registry) (*research.PackageInfo, error) {
	switch reg {
	case research.RegistryNPM:
		return c.npmInfo(ctx, name)
	case research.RegistryPyPI:
		return c.pypiInfo(ctx, name)
	case research.RegistryCrates:
		return c.cratesInfo(ctx, name)
	case research.RegistryGo:
		return c.goInfo(ctx, name)
	default:
		return nil, errors.New(errors.CodeInvalidParameter, "registry",
			fmt.Sprintf("unknown registry %q, supported: npm, pypi, crates, go", reg), nil)
	}
}

// Search finds up to limit candidate packages matching query.
func (c *Client) Search(ctx context.Context, query string, reg research.Registry, limit int) ([]research.PackageInfo, error) {
	if limit < 1 {
		limit = 1
	}
	switch reg {
	case research.RegistryNPM:
		return c.npmSearch(ctx, query, limit)
	case research.RegistryCrates:
		return c.cratesSearch(ctx, query, limit)
	case research.RegistryPyPI:
		return c.repoDelegatedSearch(ctx, query, "python", research.RegistryPyPI, limit)
	case research.RegistryGo:
		return c.repoDelegatedSearch(ctx, query, "go", research.RegistryGo, limit)
	default:
		return nil, errors.New(errors.CodeInvalidParameter, "registry",
			fmt.Sprintf("unknown registry %q, supported: npm, pypi, crates, go", reg), nil)
	}
}

// repoDelegatedSearch turns repository search hits into candidate
// package names: the bare repo name for PyPI, the full module path for
// Go.
func (c *Client) repoDelegatedSearch(ctx context.Context, query, language string, reg research.Registry, limit int) ([]research.PackageInfo, error) {
	if c.repos == nil {
		return nil, errors.New(errors.CodeConfigurationInvalid, "registry",
			fmt.Sprintf("%s package discovery needs the repo client", reg), nil)
	}

	repos, err := c.repos.SearchRepoSummaries(ctx, query, language, limit)
	if err != nil {
		return nil, err
	}

	packages := make([]research.PackageInfo, 0, len(repos))
	for _, r := range repos {
		pkg := research.PackageInfo{
			Registry:    reg,
			Description: r.Description,
			Repository:  r.URL,
		}
		if reg == research.RegistryGo {
			pkg.Name = "github.com/" + r.FullName
			pkg.Homepage = "https://pkg.go.dev/github.com/" + r.FullName
		} else {
			pkg.Name = candidatePyPIName(r.FullName)
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}

func (c *Client) notFound(name string, reg research.Registry) error {
	return errors.New(errors.CodeNotFound, "registry",
		fmt.Sprintf("package %q not found in %s", name, reg), nil)
}
