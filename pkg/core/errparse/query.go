package errparse

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

// Package-registry hosts that rank well for error-looking queries but
// never explain an error.
var irrelevantHosts = map[string]bool{
	"hub.docker.com": true,
	"crates.io":      true,
	"npmjs.com":      true,
	"pypi.org":       true,
	"pkg.go.dev":     true,
}

var votePattern = regexp.MustCompile(`(\d+)\s*votes?`)

// BuildQuery renders the structured error as a search query biased
// toward Stack Overflow. Empty parts are omitted.
func BuildQuery(parsed research.ParsedError) string {
	parts := make([]string, 0, 4+len(parsed.KeyTerms))
	if parsed.Language != research.LangUnknown && parsed.Language != "" {
		parts = append(parts, string(parsed.Language))
	}
	if parsed.Framework != research.FrameworkNone {
		parts = append(parts, string(parsed.Framework))
	}
	if parsed.ErrorType != "" && parsed.ErrorType != "Unknown Error" {
		parts = append(parts, parsed.ErrorType)
	}
	parts = append(parts, parsed.KeyTerms...)
	parts = append(parts, "site:stackoverflow.com")
	return strings.Join(parts, " ")
}

// FilterAndRank drops registry hosts, pulls Stack Overflow hits to the
// front preserving upstream order, and truncates to max.
func FilterAndRank(hits []research.SearchHit, max int) []research.SearchHit {
	filtered := make([]research.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if irrelevantHosts[hitHost(hit.URL)] {
			continue
		}
		filtered = append(filtered, hit)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return isStackOverflow(filtered[i].URL) && !isStackOverflow(filtered[j].URL)
	})

	if max > 0 && len(filtered) > max {
		filtered = filtered[:max]
	}
	return filtered
}

// SourceTag labels a hit for the reply: [SO] for Stack Overflow,
// [Web] otherwise.
func SourceTag(rawURL string) string {
	if isStackOverflow(rawURL) {
		return "[SO]"
	}
	return "[Web]"
}

// VoteCount surfaces a "N votes" figure from a snippet when present.
func VoteCount(snippet string) (int, bool) {
	m := votePattern.FindStringSubmatch(snippet)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isStackOverflow(rawURL string) bool {
	return strings.Contains(hitHost(rawURL), "stackoverflow.com")
}

func hitHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
