// Package resources serves the read-only research lookups as MCP
// resource templates. Resolvers reuse the same clients as the tools and
// marshal records to indented JSON.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/core/changelog"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/github"
	"github.com/searxng-tools/web-research-assist/pkg/service/tools"
)

const (
	resourceReleaseCount = 5
	historyDays          = 7
)

// Registrar wires the resource templates onto the server.
type Registrar struct {
	logger  zerolog.Logger
	service *tools.Service
}

// NewRegistrar builds a registrar sharing the tool layer's clients.
func NewRegistrar(logger zerolog.Logger, service *tools.Service) *Registrar {
	return &Registrar{
		logger:  logger.With().Str("component", "resources").Logger(),
		service: service,
	}
}

type templateSpec struct {
	uriTemplate string
	name        string
	description string
	mimeType    string
	handler     func(ctx context.Context, r *Registrar, uri string) (string, error)
}

var templates = []templateSpec{
	{
		uriTemplate: "package://{registry}/{name}",
		name:        "Package Information",
		description: "Package metadata from npm, PyPI, crates.io, or the Go module proxy",
		mimeType:    "application/json",
		handler:     handlePackageResource,
	},
	{
		uriTemplate: "github://{owner}/{repo}",
		name:        "GitHub Repository",
		description: "Repository health metrics and recent commits",
		mimeType:    "application/json",
		handler:     handleGithubResource,
	},
	{
		uriTemplate: "status://{service}",
		name:        "Service Status",
		description: "Normalized service health reading from the provider's status page",
		mimeType:    "application/json",
		handler:     handleStatusResource,
	},
	{
		uriTemplate: "changelog://{registry}/{package}",
		name:        "Package Changelog",
		description: "Classified release notes for a package",
		mimeType:    "application/json",
		handler:     handleChangelogResource,
	},
	{
		uriTemplate: "domain-health://report",
		name:        "Domain Health Report",
		description: "Per-domain fetch success, block, and rate-limit statistics",
		mimeType:    "text/markdown",
		handler:     handleDomainHealthResource,
	},
}

// RegisterAll registers every resource template on the server.
func (r *Registrar) RegisterAll(srv *server.MCPServer) error {
	for _, spec := range templates {
		spec := spec
		template := mcp.NewResourceTemplate(
			spec.uriTemplate,
			spec.name,
			mcp.WithTemplateDescription(spec.description),
			mcp.WithTemplateMIMEType(spec.mimeType),
		)
		srv.AddResourceTemplate(template, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			text, err := spec.handler(ctx, r, req.Params.URI)
			if err != nil {
				// Lookup failures become readable resource text.
				text = err.Error()
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      req.Params.URI,
					MIMEType: spec.mimeType,
					Text:     text,
				},
			}, nil
		})
		r.logger.Info().Str("template", spec.uriTemplate).Msg("Registered resource template")
	}
	return nil
}

// splitURI splits "scheme://rest" and returns the rest.
func splitURI(uri string) (string, error) {
	parts := strings.SplitN(uri, "://", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid resource URI: %s", uri)
	}
	return parts[1], nil
}

// splitFirstSegment separates the first path segment from the rest, so
// names with slashes (Go module paths) survive intact.
func splitFirstSegment(path string) (string, string, error) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected two path segments in %q", path)
	}
	return parts[0], parts[1], nil
}

func handlePackageResource(ctx context.Context, r *Registrar, uri string) (string, error) {
	rest, err := splitURI(uri)
	if err != nil {
		return "", err
	}
	reg, name, err := splitFirstSegment(rest)
	if err != nil {
		return "", err
	}
	if !research.ValidRegistry(reg) {
		return fmt.Sprintf("Unknown registry: %s. Supported: npm, pypi, crates, go", reg), nil
	}

	info, err := r.service.Registry().Info(ctx, name, research.Registry(reg))
	if err != nil {
		return fmt.Sprintf("Failed to fetch %s package '%s': %s", reg, name, err), nil
	}
	return marshalIndent(info)
}

func handleGithubResource(ctx context.Context, r *Registrar, uri string) (string, error) {
	rest, err := splitURI(uri)
	if err != nil {
		return "", err
	}
	owner, repo, err := splitFirstSegment(rest)
	if err != nil {
		return "", err
	}

	info, err := r.service.GitHub().GetRepoInfo(ctx, owner, repo)
	if err != nil {
		return fmt.Sprintf("Failed to fetch '%s/%s': %s", owner, repo, err), nil
	}
	// Commits are best effort here, as in the github_repo tool.
	if commits, commitErr := r.service.GitHub().GetRecentCommits(ctx, owner, repo, 3); commitErr == nil {
		info.RecentCommits = commits
	}
	return marshalIndent(info)
}

func handleStatusResource(ctx context.Context, r *Registrar, uri string) (string, error) {
	service, err := splitURI(uri)
	if err != nil {
		return "", err
	}
	status, err := r.service.Status().Check(ctx, service, false, historyDays)
	if err != nil {
		return fmt.Sprintf("Failed to check status for '%s': %s", service, err), nil
	}
	return marshalIndent(status)
}

func handleChangelogResource(ctx context.Context, r *Registrar, uri string) (string, error) {
	rest, err := splitURI(uri)
	if err != nil {
		return "", err
	}
	reg, pkg, err := splitFirstSegment(rest)
	if err != nil {
		return "", err
	}
	if !research.ValidRegistry(reg) {
		return fmt.Sprintf("Unknown registry: %s. Supported: npm, pypi, crates, go", reg), nil
	}

	info, err := r.service.Registry().Info(ctx, pkg, research.Registry(reg))
	if err != nil || info.Repository == "" {
		return fmt.Sprintf("Could not find repository for package '%s'", pkg), nil
	}
	owner, repo, err := github.ParseRepoInput(info.Repository)
	if err != nil {
		return fmt.Sprintf("The repository for '%s' (%s) is not hosted on GitHub", pkg, info.Repository), nil
	}
	records, err := r.service.GitHub().GetReleases(ctx, owner, repo, resourceReleaseCount)
	if err != nil {
		return fmt.Sprintf("Failed to fetch changelog for '%s': %s", pkg, err), nil
	}

	inputs := make([]changelog.ReleaseInput, 0, len(records))
	for _, rec := range records {
		version := rec.TagName
		if version == "" {
			version = rec.Name
		}
		date := rec.PublishedAt
		if len(date) >= 10 {
			date = date[:10]
		}
		inputs = append(inputs, changelog.ReleaseInput{
			Version: version,
			Date:    date,
			Author:  rec.Author,
			Body:    rec.Body,
			URL:     rec.HTMLURL,
		})
	}
	log := changelog.Build(pkg, research.Registry(reg), info.Repository, inputs, "", "")
	return marshalIndent(log)
}

func handleDomainHealthResource(_ context.Context, r *Registrar, _ string) (string, error) {
	return r.service.Fetcher().Health().FormatReport(), nil
}

func marshalIndent(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
