package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/core/errparse"
	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
)

const solutionSnippetChars = 200

func handleTranslateError(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args translateErrorArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}

	parsed := errparse.Parse(args.ErrorMessage, args.Language, args.Framework)
	params := map[string]interface{}{
		"error_type":  parsed.ErrorType,
		"language":    string(parsed.Language),
		"framework":   string(parsed.Framework),
		"max_results": args.MaxResults,
	}

	query := errparse.BuildQuery(parsed)

	// Fetch extra hits so filtering still leaves enough.
	hits, err := s.search.Search(ctx, query, search.Options{
		Category:   "it",
		MaxResults: args.MaxResults * 2,
	})
	if err != nil {
		return fmt.Sprintf("Error translation failed: %s\n\n"+
			"Try simplifying the error message or provide language/framework context.",
			friendly(err)), params, err
	}
	hits = errparse.FilterAndRank(hits, args.MaxResults)

	if len(hits) == 0 {
		return formatNoSolutions(parsed), params, nil
	}
	return formatSolutions(parsed, query, hits), params, nil
}

func formatNoSolutions(parsed research.ParsedError) string {
	language := string(parsed.Language)
	if parsed.Language == research.LangUnknown {
		language = "Unknown"
	}
	framework := string(parsed.Framework)
	if framework == "" {
		framework = "None detected"
	}
	return fmt.Sprintf("No solutions found for this error.\n\n"+
		"Parsed Error Info:\n"+
		"- Type: %s\n"+
		"- Language: %s\n"+
		"- Framework: %s\n\n"+
		"Try:\n"+
		"- Providing more context with language/framework parameters\n"+
		"- Searching for just the error type: %s\n"+
		"- Using web_search with broader terms",
		parsed.ErrorType, language, framework, parsed.ErrorType)
}

func formatSolutions(parsed research.ParsedError, query string, hits []research.SearchHit) string {
	lines := []string{
		"Error Translation Results",
		strings.Repeat("═", 70),
		"",
		"📋 Parsed Error Information:",
		"   Error Type: " + parsed.ErrorType,
	}
	if parsed.Language != research.LangUnknown {
		lines = append(lines, "   Language: "+titleCase(string(parsed.Language)))
	}
	if parsed.Framework != research.FrameworkNone {
		lines = append(lines, "   Framework: "+titleCase(string(parsed.Framework)))
	}
	if parsed.File != "" {
		location := parsed.File
		if parsed.Line > 0 {
			location += fmt.Sprintf(":%d", parsed.Line)
		}
		lines = append(lines, "   Location: "+location)
	}

	lines = append(lines,
		"",
		"🔍 Search Query: "+query,
		"",
		"💡 Top Solutions (Stack Overflow prioritized):",
		strings.Repeat("─", 70),
		"",
	)

	for i, hit := range hits {
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, errparse.SourceTag(hit.URL), hit.Title))
		if votes, ok := errparse.VoteCount(hit.Snippet); ok {
			lines = append(lines, fmt.Sprintf("   Votes: %d", votes))
		}
		lines = append(lines, "   "+hit.URL)
		if hit.Snippet != "" {
			snippet := strings.TrimSpace(strings.ReplaceAll(hit.Snippet, "\n", " "))
			if len([]rune(snippet)) > solutionSnippetChars {
				snippet = textutil.Truncate(snippet, solutionSnippetChars) + "..."
			}
			lines = append(lines, "   "+snippet)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		strings.Repeat("─", 70),
		"",
		"💡 Tips:",
		"- Check accepted answers (marked with ✓) first",
		"- Look for solutions with high vote counts",
		"- Verify the solution matches your exact error",
		"- Use crawl_url to get full answer details",
	)
	return strings.Join(lines, "\n")
}
