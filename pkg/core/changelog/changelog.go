// Package changelog classifies release notes into breaking changes,
// features, and fixes, and rolls a release window up into an upgrade
// difficulty verdict.
package changelog

import (
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

// ReleaseInput is one raw release handed to Build. The repo client's
// records are mapped into this shape so the engine stays independent of
// the transport.
type ReleaseInput struct {
	Version string
	Date    string
	Author  string
	Body    string
	URL     string
}

var (
	breakingMarkers = []string{
		"breaking change", "breaking:", "breaking", "removed", "deprecated",
		"incompatible", "migration required", "must upgrade", "⚠️", "🚨",
	}
	featureMarkers = []string{"new:", "added:", "feature:", "✨", "🎉", "feat:"}
	fixMarkers     = []string{"fix:", "fixed:", "bugfix:", "bug fix:", "🐛", "patch:"}
)

// Recommendations keyed by difficulty bucket.
var recommendations = map[research.Difficulty]string{
	research.DifficultyLow:    "Safe to upgrade: no breaking changes detected in this window.",
	research.DifficultyMedium: "Review the breaking changes before upgrading; small migrations may be needed.",
	research.DifficultyHigh:   "Plan this upgrade: several breaking changes require migration work and testing.",
}

// Build classifies releases into the changelog record. Releases outside
// the [fromVersion, toVersion] window are skipped when bounds are given.
func Build(pkg string, reg research.Registry, repository string, inputs []ReleaseInput, fromVersion, toVersion string) research.Changelog {
	log := research.Changelog{
		Package:    pkg,
		Registry:   reg,
		Repository: repository,
		Releases:   []research.Release{},
	}

	breakingTotal := 0
	for _, input := range inputs {
		if !inWindow(input.Version, fromVersion, toVersion) {
			continue
		}
		release := classify(input)
		breakingTotal += len(release.BreakingChanges)
		log.Releases = append(log.Releases, release)
	}

	difficulty := BucketDifficulty(breakingTotal)
	log.Summary = research.ChangelogSummary{
		TotalReleases:  len(log.Releases),
		BreakingCount:  breakingTotal,
		Difficulty:     difficulty,
		Recommendation: recommendations[difficulty],
	}
	return log
}

func classify(input ReleaseInput) research.Release {
	release := research.Release{
		Version: input.Version,
		Date:    input.Date,
		Author:  input.Author,
		URL:     input.URL,
	}

	for _, line := range strings.Split(input.Body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case matchesAny(lower, breakingMarkers):
			release.BreakingChanges = append(release.BreakingChanges, cleanLine(line, breakingMarkers))
		case matchesAny(lower, featureMarkers):
			release.NewFeatures = append(release.NewFeatures, cleanLine(line, featureMarkers))
		case matchesAny(lower, fixMarkers):
			release.BugFixes = append(release.BugFixes, cleanLine(line, fixMarkers))
		}
	}
	return release
}

func matchesAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// cleanLine strips leading bullets and a "marker:" category prefix so
// grouped output does not repeat its own heading. Bare keywords like
// "Deprecated …" stay: removing them would change the sentence.
func cleanLine(line string, markers []string) string {
	s := strings.TrimLeft(line, "-*• \t")
	lower := strings.ToLower(s)
	for _, marker := range markers {
		if !strings.HasPrefix(lower, marker) {
			continue
		}
		rest := s[len(marker):]
		if strings.HasSuffix(marker, ":") || strings.HasPrefix(strings.TrimSpace(rest), ":") {
			stripped := strings.TrimLeft(strings.TrimSpace(rest), ":- ")
			if stripped != "" {
				return stripped
			}
		}
		break
	}
	return s
}

// BucketDifficulty maps a cumulative breaking-change count to the
// upgrade difficulty.
func BucketDifficulty(breakingCount int) research.Difficulty {
	switch {
	case breakingCount == 0:
		return research.DifficultyLow
	case breakingCount <= 2:
		return research.DifficultyMedium
	default:
		return research.DifficultyHigh
	}
}

// Recommendation returns the fixed advice line for a difficulty.
func Recommendation(d research.Difficulty) string {
	return recommendations[d]
}

// inWindow bounds version between from and to with a best-effort
// string compare after trimming the leading v.
func inWindow(version, from, to string) bool {
	v := normalizeVersion(version)
	if from != "" && v < normalizeVersion(from) {
		return false
	}
	if to != "" && v > normalizeVersion(to) {
		return false
	}
	return true
}

func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
