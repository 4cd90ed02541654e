package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/core/changelog"
	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/github"
)

func handlePackageInfo(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args packageInfoArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"name":     args.Name,
		"registry": args.Registry,
	}

	info, err := s.reg.Info(ctx, args.Name, research.Registry(args.Registry))
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return fmt.Sprintf("Package '%s' not found on %s.\n\nDouble-check the package name and try again.",
				args.Name, args.Registry), params, err
		}
		return fmt.Sprintf("Failed to fetch %s package '%s': %s", args.Registry, args.Name, friendly(err)), params, err
	}
	return formatPackageInfo(info), params, nil
}

func formatPackageInfo(info *research.PackageInfo) string {
	lines := []string{
		fmt.Sprintf("Package: %s (%s)", info.Name, info.Registry),
		strings.Repeat("=", 40),
		"Version: " + info.Version,
	}
	if info.License != "" {
		lines = append(lines, "License: "+info.License)
	}
	if info.Downloads != "" {
		lines = append(lines, "Downloads: "+info.Downloads)
	}
	lines = append(lines, "Last Updated: "+textutil.FormatTimeAgo(info.LastUpdated))
	if info.DependenciesCount != nil {
		lines = append(lines, fmt.Sprintf("Dependencies: %d direct", *info.DependenciesCount))
	}
	// Registries expose no advisory data here, so no Security line.
	lines = append(lines, "")
	if info.Repository != "" {
		lines = append(lines, "Repository: "+info.Repository)
	}
	if info.Homepage != "" && info.Homepage != info.Repository {
		lines = append(lines, "Homepage: "+info.Homepage)
	}
	if info.Description != "" {
		lines = append(lines, "\nDescription: "+info.Description)
	}
	return strings.Join(lines, "\n")
}

func handlePackageSearch(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args packageSearchArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"query":       args.Query,
		"registry":    args.Registry,
		"max_results": args.MaxResults,
	}

	packages, err := s.reg.Search(ctx, args.Query, research.Registry(args.Registry), args.MaxResults)
	if err != nil {
		return fmt.Sprintf("Search failed for '%s' on %s: %s", args.Query, args.Registry, friendly(err)), params, err
	}
	if len(packages) == 0 {
		return fmt.Sprintf("No packages found for '%s' on %s.\n\nTry different keywords or check another registry.",
			args.Query, args.Registry), params, nil
	}

	lines := []string{
		fmt.Sprintf("Search Results for '%s' on %s:", args.Query, args.Registry),
		strings.Repeat("─", 50),
	}
	for i, pkg := range packages {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, pkg.Name))
		if pkg.Version != "" {
			lines = append(lines, "   Version: "+pkg.Version)
		}
		if pkg.Downloads != "" {
			lines = append(lines, "   Downloads: "+pkg.Downloads)
		}
		if pkg.Description != "" {
			desc := pkg.Description
			if len([]rune(desc)) > 100 {
				desc = textutil.Truncate(desc, 100) + "..."
			}
			lines = append(lines, "   Description: "+desc)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), params, nil
}

func handleGetChangelog(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args getChangelogArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"package":      args.Package,
		"registry":     args.Registry,
		"max_releases": args.MaxReleases,
	}

	info, reg := resolvePackage(ctx, s, args.Package, args.Registry)
	if info == nil || info.Repository == "" {
		err := errors.New(errors.CodeNotFound, "tools",
			fmt.Sprintf("Could not find repository for package '%s'", args.Package), nil)
		return friendly(err) + "\n\nChangelog retrieval needs a package whose registry metadata links a GitHub repository.", params, err
	}
	params["registry"] = string(reg)

	owner, repoName, err := github.ParseRepoInput(info.Repository)
	if err != nil {
		return fmt.Sprintf("The repository for '%s' (%s) is not hosted on GitHub; release notes are unavailable.",
			args.Package, info.Repository), params, err
	}

	records, err := s.github.GetReleases(ctx, owner, repoName, args.MaxReleases)
	if err != nil {
		return fmt.Sprintf("Changelog fetch failed for %s: %s", args.Package, friendly(err)), params, err
	}

	inputs := make([]changelog.ReleaseInput, 0, len(records))
	for _, rec := range records {
		version := rec.TagName
		if version == "" {
			version = rec.Name
		}
		inputs = append(inputs, changelog.ReleaseInput{
			Version: version,
			Date:    releaseDate(rec.PublishedAt),
			Author:  rec.Author,
			Body:    rec.Body,
			URL:     rec.HTMLURL,
		})
	}

	log := changelog.Build(args.Package, reg, info.Repository, inputs, args.FromVersion, args.ToVersion)
	return formatChangelog(log), params, nil
}

// resolvePackage finds the package metadata, trying the registries in
// display order when the caller asked for auto detection.
func resolvePackage(ctx context.Context, s *Service, name, registryArg string) (*research.PackageInfo, research.Registry) {
	if registryArg != "auto" {
		reg := research.Registry(registryArg)
		info, err := s.reg.Info(ctx, name, reg)
		if err != nil {
			return nil, reg
		}
		return info, reg
	}
	for _, reg := range research.KnownRegistries {
		info, err := s.reg.Info(ctx, name, reg)
		if err == nil {
			return info, reg
		}
	}
	return nil, ""
}

func releaseDate(publishedAt string) string {
	if len(publishedAt) >= 10 {
		return publishedAt[:10]
	}
	return publishedAt
}

func formatChangelog(log research.Changelog) string {
	lines := []string{
		fmt.Sprintf("Changelog for %s (%s)", log.Package, log.Registry),
		strings.Repeat("─", 50),
		"Repository: " + log.Repository,
		"",
	}

	if len(log.Releases) == 0 {
		lines = append(lines, "No releases found in the requested window.")
		return strings.Join(lines, "\n")
	}

	for _, release := range log.Releases {
		header := release.Version
		if release.Date != "" {
			header += " (" + release.Date + ")"
		}
		if release.Author != "" {
			header += " by " + release.Author
		}
		lines = append(lines, header)
		appendChangeGroup(&lines, "⚠️ Breaking Changes:", release.BreakingChanges)
		appendChangeGroup(&lines, "✨ New Features:", release.NewFeatures)
		appendChangeGroup(&lines, "🐛 Bug Fixes:", release.BugFixes)
		if release.URL != "" {
			lines = append(lines, "   "+release.URL)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		strings.Repeat("─", 50),
		fmt.Sprintf("Releases analyzed: %d | Breaking changes: %d",
			log.Summary.TotalReleases, log.Summary.BreakingCount),
		fmt.Sprintf("Upgrade difficulty: %s", log.Summary.Difficulty),
		log.Summary.Recommendation,
	)
	return strings.Join(lines, "\n")
}

func appendChangeGroup(lines *[]string, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	*lines = append(*lines, "   "+heading)
	for _, item := range items {
		*lines = append(*lines, "      - "+item)
	}
}
