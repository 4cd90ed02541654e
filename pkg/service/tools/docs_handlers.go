package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

func handleAPIDocs(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args apiDocsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"api_name":    args.APIName,
		"topic":       args.Topic,
		"docs_url":    "not_found",
		"max_results": args.MaxResults,
	}

	base, err := s.docs.DiscoverBase(ctx, args.APIName)
	if err != nil {
		return fmt.Sprintf("Could not find official documentation for '%s'.\n\n"+
			"Try:\n"+
			"- Checking the API name spelling\n"+
			"- Providing the docs URL directly (e.g. 'https://docs.example.com')\n"+
			"- Using web_search to find the documentation manually", args.APIName), params, err
	}
	params["docs_url"] = base

	doc, err := s.docs.GatherTopic(ctx, args.APIName, base, args.Topic, args.MaxResults)
	if err != nil {
		return fmt.Sprintf("Found documentation site: %s\n"+
			"But could not fetch results for topic: '%s'\n\n"+
			"Try:\n"+
			"- Broader search terms\n"+
			"- Different wording (e.g. 'customers' instead of 'create customer')\n"+
			"- Browsing the docs directly: %s", base, args.Topic, base), params, err
	}
	return formatAPIDoc(doc), params, nil
}

func formatAPIDoc(doc *research.APIDoc) string {
	lines := []string{
		"API Documentation: " + doc.APIName,
		"Topic: " + doc.Topic,
		strings.Repeat("═", 70),
		"Docs: " + doc.DocsBaseURL,
		"",
	}

	if doc.Overview != "" {
		lines = append(lines, "Overview:", doc.Overview, "")
	}
	if len(doc.Parameters) > 0 {
		lines = append(lines, "Parameters:")
		for _, p := range doc.Parameters {
			entry := "   - " + p.Name
			if p.Type != "" {
				entry += " (" + p.Type + ")"
			}
			if p.Description != "" {
				entry += ": " + p.Description
			}
			lines = append(lines, entry)
		}
		lines = append(lines, "")
	}
	if len(doc.Examples) > 0 {
		lines = append(lines, "Examples:")
		for _, ex := range doc.Examples {
			label := ex.Language
			if label == "" {
				label = "code"
			}
			lines = append(lines, "", "["+label+"]", ex.Code)
		}
		lines = append(lines, "")
	}
	if len(doc.Notes) > 0 {
		lines = append(lines, "Notes:")
		for _, note := range doc.Notes {
			lines = append(lines, "   - "+note)
		}
		lines = append(lines, "")
	}
	if len(doc.RelatedLinks) > 0 {
		lines = append(lines, "Related Links:")
		for _, link := range doc.RelatedLinks {
			lines = append(lines, fmt.Sprintf("   - %s: %s", link.Title, link.URL))
		}
		lines = append(lines, "")
	}
	if len(doc.Sources) > 0 {
		lines = append(lines, "Fetched from:")
		for _, src := range doc.Sources {
			lines = append(lines, "   - "+src)
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
