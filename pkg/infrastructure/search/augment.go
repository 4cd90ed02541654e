package search

import (
	"net/url"
	"strings"
)

// AugmentExampleQuery biases a query toward code or article sources.
// The returned string goes to the meta-search endpoint as-is.
func AugmentExampleQuery(query, contentType string) string {
	switch contentType {
	case "code":
		return query + " (site:github.com OR site:stackoverflow.com OR site:gist.github.com OR example OR snippet)"
	case "articles":
		return query + " (tutorial OR guide OR article OR blog OR how to OR documentation)"
	default:
		return query + " (example OR tutorial OR guide)"
	}
}

// SourceLabel derives the display tag for a hit from its URL host.
// Unrecognized hosts get no tag.
func SourceLabel(rawURL string) string {
	switch {
	case strings.Contains(rawURL, "github.com"):
		return "[GitHub] "
	case strings.Contains(rawURL, "stackoverflow.com"):
		return "[Stack Overflow] "
	case strings.Contains(rawURL, "medium.com"), strings.Contains(rawURL, "dev.to"):
		return "[Article] "
	}
	return ""
}

// Host extracts the hostname from a URL, or "" when unparseable.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
