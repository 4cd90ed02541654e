package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/searxng-tools/web-research-assist/pkg/core/compare"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
)

// Registries probed when guessing where a technology is published.
var compareRegistries = []research.Registry{
	research.RegistryNPM,
	research.RegistryPyPI,
	research.RegistryCrates,
}

func handleCompareTech(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args compareTechArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}

	category := args.Category
	if category == compare.CategoryAuto {
		category = compare.InferCategory(args.Technologies)
	}
	aspects := compare.AspectsFor(category, args.Aspects)

	params := map[string]interface{}{
		"technologies":         args.Technologies,
		"category":             args.Category,
		"detected_category":    category,
		"num_aspects":          len(aspects),
		"max_results_per_tech": args.MaxResultsPerTech,
	}

	// One sub-task per technology. Sub-task failures leave nil findings;
	// the aggregate fills those cells with the not-found marker.
	findings := make([]*compare.TechFindings, len(args.Technologies))
	g, gctx := errgroup.WithContext(ctx)
	for i, tech := range args.Technologies {
		i, tech := i, tech
		g.Go(func() error {
			findings[i] = gatherTechFindings(gctx, s, tech, aspects, args.MaxResultsPerTech)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Sprintf("Technology comparison failed: %s", friendly(err)), params, err
	}

	comparison := compare.Aggregate(args.Technologies, category, aspects, findings)
	out, err := json.MarshalIndent(comparison, "", "  ")
	if err != nil {
		return fmt.Sprintf("Technology comparison failed: %s", err), params, err
	}
	return string(out), params, nil
}

// gatherTechFindings collects package metadata, the best-matching
// repository, and one search per aspect for a single technology. Every
// upstream call is best effort.
func gatherTechFindings(ctx context.Context, s *Service, tech string, aspects []string, maxResults int) *compare.TechFindings {
	findings := &compare.TechFindings{
		Tech:    tech,
		Aspects: make(map[string]string, len(aspects)),
	}

	name := strings.ToLower(strings.TrimSpace(tech))
	for _, reg := range compareRegistries {
		if info, err := s.reg.Info(ctx, name, reg); err == nil {
			findings.Package = info
			break
		}
	}

	if repos, err := s.github.SearchRepoSummaries(ctx, tech, "", 1); err == nil && len(repos) > 0 {
		findings.Repo = &repos[0]
	}

	for _, aspect := range aspects {
		hits, err := s.search.Search(ctx, compare.AspectQuery(tech, aspect), search.Options{
			Category:   "it",
			MaxResults: maxResults,
		})
		if err != nil {
			s.logger.Debug().Str("tech", tech).Str("aspect", aspect).Err(err).Msg("Aspect search failed")
			continue
		}
		findings.Aspects[aspect] = compare.PickAspectValue(hits, aspect)
		if len(hits) > 0 {
			findings.Sources = append(findings.Sources, hits[0].URL)
		}
	}
	return findings
}
