// Package textutil holds the small text helpers shared by the research
// clients and the tool layer: response clamping, cell sanitization,
// relative-time rendering, and count humanization.
package textutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TruncationSuffix marks a clamped response body.
const TruncationSuffix = "\n\n…[truncated]"

// Clamp limits s to max characters. When the input is longer, the result
// is cut so that it still fits max after the truncation suffix is
// appended. Clamping an already-clamped string is a no-op. A
// non-positive max disables clamping.
func Clamp(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	suffix := []rune(TruncationSuffix)
	if max <= len(suffix) {
		return string(runes[:max])
	}
	return string(runes[:max-len(suffix)]) + TruncationSuffix
}

// Sanitize strips control characters from extracted text and collapses
// whitespace runs to single spaces. TAB, LF, and CR count as whitespace;
// every other character below U+0020, and U+007F, is dropped. The result
// carries no leading or trailing whitespace, so sanitizing twice returns
// the same string.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pendingSpace = b.Len() > 0
		case r < 0x20 || r == 0x7f:
			// dropped
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate returns at most max characters of s with no suffix added.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// FormatCount renders a count the way registries display download
// figures, e.g. 50.3M or 12.5K.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISOTime parses the timestamp shapes the upstream APIs emit:
// RFC3339 with or without fractional seconds, zone-less ISO, and bare
// dates. Zone-less values are read as UTC.
func ParseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// FormatTimeAgo converts an ISO timestamp to a relative phrase such as
// "just now", "5m ago", "3h ago", "12d ago", "2mo ago", or "1y ago".
// An empty input yields "unknown"; an unparseable input is returned
// unchanged.
func FormatTimeAgo(iso string) string {
	return formatTimeAgoAt(iso, time.Now().UTC())
}

func formatTimeAgoAt(iso string, now time.Time) string {
	if iso == "" {
		return "unknown"
	}
	t, err := ParseISOTime(iso)
	if err != nil {
		return iso
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	days := int(diff.Hours()) / 24
	switch {
	case days < 1:
		hours := int(diff.Hours())
		if hours < 1 {
			if minutes := int(diff.Minutes()); minutes > 0 {
				return fmt.Sprintf("%dm ago", minutes)
			}
			return "just now"
		}
		return fmt.Sprintf("%dh ago", hours)
	case days < 30:
		return fmt.Sprintf("%dd ago", days)
	case days < 365:
		return fmt.Sprintf("%dmo ago", days/30)
	default:
		return fmt.Sprintf("%dy ago", days/365)
	}
}
