// Package compare holds the pure logic of technology comparison:
// category inference, aspect defaults, and picking cell values out of
// search snippets. The fan-out that gathers the data lives in the tool
// layer.
package compare

import (
	"sort"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

// NotFound is the cell value when no snippet mentioned an aspect.
const NotFound = "Information not found"

// Categories accepted by the comparator.
const (
	CategoryFramework = "framework"
	CategoryLibrary   = "library"
	CategoryDatabase  = "database"
	CategoryLanguage  = "language"
	CategoryTool      = "tool"
	CategoryAuto      = "auto"
)

// ValidCategory reports whether c names a known category or auto.
func ValidCategory(c string) bool {
	switch c {
	case CategoryFramework, CategoryLibrary, CategoryDatabase, CategoryLanguage, CategoryTool, CategoryAuto:
		return true
	}
	return false
}

// Default aspects per category, in display order.
var categoryAspects = map[string][]string{
	CategoryFramework: {"performance", "learning_curve", "ecosystem", "popularity", "features"},
	CategoryLibrary:   {"performance", "features", "ecosystem", "popularity", "bundle_size"},
	CategoryDatabase:  {"performance", "data_model", "scaling", "use_cases", "ecosystem"},
	CategoryLanguage:  {"performance", "learning_curve", "ecosystem", "jobs", "use_cases"},
	CategoryTool:      {"performance", "features", "configuration", "ecosystem"},
}

// Token membership tables for category inference.
var categoryTokens = map[string][]string{
	CategoryFramework: {
		"react", "vue", "angular", "svelte", "django", "flask", "fastapi",
		"express", "next", "nextjs", "nuxt", "rails", "laravel", "spring",
		"symfony", "ember", "solid",
	},
	CategoryDatabase: {
		"postgres", "postgresql", "mysql", "mariadb", "mongodb", "redis",
		"sqlite", "cassandra", "dynamodb", "couchdb", "elasticsearch",
		"clickhouse", "cockroachdb", "neo4j",
	},
	CategoryLanguage: {
		"python", "javascript", "typescript", "go", "golang", "rust", "java",
		"kotlin", "swift", "ruby", "php", "c++", "c#", "scala", "elixir",
	},
	CategoryTool: {
		"webpack", "vite", "rollup", "esbuild", "babel", "eslint", "prettier",
		"docker", "kubernetes", "terraform", "jenkins", "ansible", "make",
	},
}

// InferCategory guesses the category from token membership. Majority
// wins; ties and no-matches fall back to library.
func InferCategory(technologies []string) string {
	counts := map[string]int{}
	for _, tech := range technologies {
		token := strings.ToLower(strings.TrimSpace(tech))
		for category, tokens := range categoryTokens {
			for _, t := range tokens {
				if token == t {
					counts[category]++
				}
			}
		}
	}

	best, bestCount := CategoryLibrary, 0
	// Deterministic iteration for stable tie-breaking.
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if counts[category] > bestCount {
			best, bestCount = category, counts[category]
		}
	}
	return best
}

// AspectsFor returns the default aspect list for category, or the
// caller's own list when provided.
func AspectsFor(category string, custom []string) []string {
	if len(custom) > 0 {
		return custom
	}
	if aspects, ok := categoryAspects[category]; ok {
		return aspects
	}
	return categoryAspects[CategoryLibrary]
}

// AspectQuery renders the meta-search query for one tech/aspect pair.
func AspectQuery(tech, aspect string) string {
	return tech + " " + strings.ReplaceAll(aspect, "_", " ")
}

// PickAspectValue selects the first snippet sentence mentioning the
// aspect keyword. Hits are scanned in rank order.
func PickAspectValue(hits []research.SearchHit, aspect string) string {
	keywords := strings.Split(strings.ToLower(aspect), "_")
	for _, hit := range hits {
		for _, sentence := range splitSentences(hit.Snippet) {
			lower := strings.ToLower(sentence)
			for _, kw := range keywords {
				if kw != "" && strings.Contains(lower, kw) {
					return strings.TrimSpace(sentence)
				}
			}
		}
	}
	return NotFound
}

// TechFindings is everything one sub-task gathered for a technology.
type TechFindings struct {
	Tech    string
	Package *research.PackageInfo
	Repo    *research.RepoSummary
	Aspects map[string]string
	Sources []string
}

// Summarize produces the one-line verdict for a technology from what
// the sub-task found, preferring the package description over the repo
// description.
func (f *TechFindings) Summarize() string {
	if f.Package != nil && f.Package.Description != "" {
		return f.Package.Description
	}
	if f.Repo != nil && f.Repo.Description != "" {
		return f.Repo.Description
	}
	return NotFound
}

// Aggregate merges per-technology findings into the comparison matrix.
// Missing cells become NotFound so every aspect row is complete.
func Aggregate(technologies []string, category string, aspects []string, findings []*TechFindings) research.TechComparison {
	comparison := research.TechComparison{
		Technologies: technologies,
		Category:     category,
		Aspects:      make(map[string]map[string]string, len(aspects)),
		Summary:      make(map[string]string, len(technologies)),
	}

	byTech := make(map[string]*TechFindings, len(findings))
	for _, f := range findings {
		if f != nil {
			byTech[f.Tech] = f
		}
	}

	for _, aspect := range aspects {
		row := make(map[string]string, len(technologies))
		for _, tech := range technologies {
			value := NotFound
			if f, ok := byTech[tech]; ok {
				if v, ok := f.Aspects[aspect]; ok && v != "" {
					value = v
				}
			}
			row[tech] = value
		}
		comparison.Aspects[aspect] = row
	}

	seen := map[string]bool{}
	for _, tech := range technologies {
		f, ok := byTech[tech]
		if !ok {
			comparison.Summary[tech] = NotFound
			continue
		}
		comparison.Summary[tech] = f.Summarize()
		for _, src := range f.Sources {
			if !seen[src] {
				seen[src] = true
				comparison.Sources = append(comparison.Sources, src)
			}
		}
	}

	return comparison
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}
