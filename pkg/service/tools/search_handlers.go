package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
)

func handleWebSearch(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args webSearchArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"query":       args.Query,
		"category":    args.Category,
		"max_results": args.MaxResults,
	}

	hits, err := s.search.Search(ctx, args.Query, search.Options{
		Category:   args.Category,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		return fmt.Sprintf("Search failed: %s", friendly(err)), params, err
	}
	if len(hits) == 0 {
		return fmt.Sprintf("No results for '%s' in category '%s'.", args.Query, args.Category), params, nil
	}

	blocks := make([]string, 0, len(hits))
	for i, hit := range hits {
		lines := []string{
			fmt.Sprintf("%d. %s", i+1, hit.Title),
			"   URL: " + hit.URL,
		}
		if hit.Engine != "" {
			lines = append(lines, "   Engine: "+hit.Engine)
		}
		if hit.Snippet != "" {
			lines = append(lines, "   "+hit.Snippet)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n"), params, nil
}

func handleSearchExamples(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args searchExamplesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"query":        args.Query,
		"content_type": args.ContentType,
		"time_range":   args.TimeRange,
		"max_results":  args.MaxResults,
	}

	timeRange := args.TimeRange
	if timeRange == "all" {
		timeRange = ""
	}
	hits, err := s.search.Search(ctx, search.AugmentExampleQuery(args.Query, args.ContentType), search.Options{
		Category:   "it",
		MaxResults: args.MaxResults,
		TimeRange:  timeRange,
	})
	if err != nil {
		return fmt.Sprintf("Search failed for '%s': %s", args.Query, friendly(err)), params, err
	}
	if len(hits) == 0 {
		rangeName := args.TimeRange
		if rangeName == "all" {
			rangeName = "all time"
		}
		return fmt.Sprintf("No examples found for '%s' in the %s range.\n\n"+
			"Try:\n"+
			"- Broader search terms\n"+
			"- A different time range\n"+
			"- Removing version numbers or very specific constraints", args.Query, rangeName), params, nil
	}

	timeLabel := "All time"
	if args.TimeRange != "all" {
		timeLabel = titleCase(args.TimeRange)
	}
	lines := []string{
		"Code Examples & Articles for: " + args.Query,
		fmt.Sprintf("Time Range: %s | Content Type: %s", timeLabel, titleCase(args.ContentType)),
		strings.Repeat("─", 50),
		"",
	}
	for i, hit := range hits {
		lines = append(lines, fmt.Sprintf("%d. %s%s", i+1, search.SourceLabel(hit.URL), hit.Title))
		entry := "   " + hit.URL
		if hit.Snippet != "" {
			entry += "\n   " + hit.Snippet
		}
		lines = append(lines, entry, "")
	}
	return strings.Join(lines, "\n"), params, nil
}

func handleSearchImages(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args searchImagesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"query":       args.Query,
		"image_type":  args.ImageType,
		"orientation": args.Orientation,
		"max_results": args.MaxResults,
	}

	if !s.images.HasAPIKey() {
		body, err := imageSearchFallback(ctx, s, args)
		return body, params, err
	}

	results, err := s.images.Search(ctx, args.Query, args.ImageType, args.Orientation, args.MaxResults)
	if err != nil {
		switch {
		case errors.IsCode(err, errors.CodeInvalidParameter):
			return fmt.Sprintf("Invalid search parameters for '%s'. Check your search terms and filters.", args.Query), params, err
		case errors.IsCode(err, errors.CodeRateLimited):
			return "Rate limit exceeded. Please wait a moment and try again.", params, err
		}
		return fmt.Sprintf("Image search failed for '%s': %s", args.Query, friendly(err)), params, err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No images found for '%s'.\n\n"+
			"Try:\n"+
			"- Different search terms\n"+
			"- Broader keywords\n"+
			"- A different image type or orientation", args.Query), params, nil
	}

	lines := []string{
		"Stock Images for: " + args.Query,
		fmt.Sprintf("Type: %s | Orientation: %s | Found: %d images",
			titleCase(args.ImageType), titleCase(args.Orientation), len(results)),
		strings.Repeat("─", 70),
		"",
	}
	for i, img := range results {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, strings.Join(img.Tags, ", ")),
			fmt.Sprintf("   Resolution: %dx%d | 👁️ %s | ⬇️ %s | ❤️ %s",
				img.Width, img.Height,
				textutil.FormatCount(int64(img.Views)),
				textutil.FormatCount(int64(img.Downloads)),
				textutil.FormatCount(int64(img.Likes))),
			"   By: "+img.User,
			"   Preview: "+img.PreviewURL,
			"   Large: "+img.LargeURL,
		)
		if img.FullHDURL != "" && img.FullHDURL != img.LargeURL {
			lines = append(lines, "   Full HD: "+img.FullHDURL)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), params, nil
}

// imageSearchFallback serves image queries through the meta-search
// backend when no Pixabay key is configured.
func imageSearchFallback(ctx context.Context, s *Service, args searchImagesArgs) (string, error) {
	hits, err := s.search.Search(ctx, args.Query+" stock photo free", search.Options{
		Category:   "images",
		MaxResults: args.MaxResults,
	})
	if err != nil || len(hits) == 0 {
		return "⚠️ Pixabay API key not configured and web search returned no results.\n\n" +
				"To enable full image search:\n" +
				"1. Get a free API key from: https://pixabay.com/api/docs/\n" +
				"2. Set the environment variable: PIXABAY_API_KEY=your_key_here\n" +
				"3. Restart the MCP server",
			errors.New(errors.CodeConfigurationInvalid, "tools",
				"Pixabay API key not configured", err)
	}

	lines := []string{
		"Image Search Results for: " + args.Query,
		"(Using web search - configure PIXABAY_API_KEY for better stock photo results)",
		strings.Repeat("─", 70),
		"",
	}
	for i, hit := range hits {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, hit.Title), "   "+hit.URL)
		if hit.Snippet != "" {
			lines = append(lines, "   "+textutil.Truncate(hit.Snippet, 100))
		}
		lines = append(lines, "")
	}
	lines = append(lines,
		strings.Repeat("─", 70),
		"For better stock photo results with resolution info:",
		"1. Get a free API key from: https://pixabay.com/api/docs/",
		"2. Set: PIXABAY_API_KEY=your_key_here",
	)
	return strings.Join(lines, "\n"), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
