package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/extract"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/webfetch"
)

func handleCrawlURL(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args crawlURLArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"url":       args.URL,
		"max_chars": args.MaxChars,
		"domain":    search.Host(args.URL),
	}

	body, err := s.fetcher.FetchMarkdown(ctx, args.URL, args.MaxChars)
	if err != nil {
		// Blocked and rate-limited fetches already carry the domain in
		// their message.
		if errors.IsCode(err, errors.CodeUpstreamForbidden) || errors.IsCode(err, errors.CodeRateLimited) {
			return friendly(err), params, err
		}
		return fmt.Sprintf("Crawl failed for %s: %s", args.URL, friendly(err)), params, err
	}
	return body, params, nil
}

func handleExtractData(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args extractDataArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"url":           args.URL,
		"extract_type":  args.ExtractType,
		"has_selectors": len(args.Selectors) > 0,
		"max_items":     args.MaxItems,
		"domain":        search.Host(args.URL),
	}

	// Extraction wants the whole page; the JSON reply is clamped by the
	// dispatcher anyway.
	html, err := s.fetcher.FetchRaw(ctx, args.URL, webfetch.MaxRawChars)
	if err != nil {
		return fmt.Sprintf("Data extraction failed for %s: %s", args.URL, friendly(err)), params, err
	}
	doc, err := s.extract.Parse(html)
	if err != nil {
		return fmt.Sprintf("Data extraction failed for %s: %s", args.URL, friendly(err)), params, err
	}

	envelope := map[string]interface{}{
		"type":   args.ExtractType,
		"source": args.URL,
	}
	switch args.ExtractType {
	case extract.ModeTable:
		envelope["tables"] = s.extract.Tables(doc, args.MaxItems)
	case extract.ModeList:
		envelope["lists"] = s.extract.Lists(doc, args.MaxItems)
	case extract.ModeFields:
		envelope["data"] = s.extract.Fields(doc, args.Selectors)
	case extract.ModeJSONLD:
		envelope["data"] = s.extract.JSONLD(doc)
	default:
		envelope["data"] = s.extract.Auto(doc, args.MaxItems)
	}

	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Sprintf("Data extraction failed for %s: %s", args.URL, err), params, err
	}
	return string(out), params, nil
}
