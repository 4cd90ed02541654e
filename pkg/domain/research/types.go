// Package research defines the record types exchanged between the research
// clients, the pipelines, and the tool layer. All records are value types
// constructed per call; none are shared mutably.
package research

import "time"

// Registry identifies a package registry protocol
type Registry string

const (
	RegistryNPM    Registry = "npm"
	RegistryPyPI   Registry = "pypi"
	RegistryCrates Registry = "crates"
	RegistryGo     Registry = "go"
)

// KnownRegistries lists the supported registries in display order
var KnownRegistries = []Registry{RegistryNPM, RegistryPyPI, RegistryCrates, RegistryGo}

// ValidRegistry reports whether s names a supported registry
func ValidRegistry(s string) bool {
	switch Registry(s) {
	case RegistryNPM, RegistryPyPI, RegistryCrates, RegistryGo:
		return true
	}
	return false
}

// Language identifies a programming language detected in an error message
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangGo         Language = "go"
	LangUnknown    Language = "unknown"
)

// Framework identifies a web framework detected in an error message.
// The empty value means no framework was recognized.
type Framework string

const (
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkAngular Framework = "angular"
	FrameworkDjango  Framework = "django"
	FrameworkFlask   Framework = "flask"
	FrameworkFastAPI Framework = "fastapi"
	FrameworkExpress Framework = "express"
	FrameworkNext    Framework = "next"
	FrameworkNone    Framework = ""
)

// ServiceState is the closed set of normalized service health states
type ServiceState string

const (
	StateOperational     ServiceState = "operational"
	StateDegraded        ServiceState = "degraded_performance"
	StatePartialOutage   ServiceState = "partial_outage"
	StateMajorOutage     ServiceState = "major_outage"
	StateMaintenance     ServiceState = "under_maintenance"
	StateUnknown         ServiceState = "unknown"
)

// Emoji returns the display symbol for a service state. Pure function of
// the enum; unknown values collapse to the question mark.
func (s ServiceState) Emoji() string {
	switch s {
	case StateOperational:
		return "✅"
	case StateDegraded:
		return "🟡"
	case StatePartialOutage:
		return "🟠"
	case StateMajorOutage:
		return "🔴"
	case StateMaintenance:
		return "🔧"
	default:
		return "❓"
	}
}

// Difficulty buckets an upgrade by its cumulative breaking-change count
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

// SearchHit is one ranked result from the meta-search backend
type SearchHit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet,omitempty"`
	Engine  string  `json:"engine,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// PackageInfo is the normalized view of a package across registries
type PackageInfo struct {
	Name              string   `json:"name"`
	Registry          Registry `json:"registry"`
	Version           string   `json:"version,omitempty"`
	Description       string   `json:"description,omitempty"`
	License           string   `json:"license,omitempty"`
	Downloads         string   `json:"downloads,omitempty"`
	LastUpdated       string   `json:"last_updated,omitempty"`
	Repository        string   `json:"repository,omitempty"`
	DependenciesCount *int     `json:"dependencies_count,omitempty"`
	Homepage          string   `json:"homepage,omitempty"`
}

// Commit is one repository commit in display form
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// RepoInfo is the normalized view of a hosted repository.
// OpenPRs is nil when the PR-count sub-query failed; zero is a real count.
type RepoInfo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description,omitempty"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Watchers      int      `json:"watchers"`
	OpenIssues    int      `json:"open_issues"`
	OpenPRs       *int     `json:"open_prs,omitempty"`
	Language      string   `json:"language,omitempty"`
	License       string   `json:"license,omitempty"`
	LastUpdated   string   `json:"last_updated,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	Homepage      string   `json:"homepage,omitempty"`
	Archived      bool     `json:"archived,omitempty"`
	RecentCommits []Commit `json:"recent_commits,omitempty"`
}

// RepoSummary is a minimal repository search hit used for package
// discovery and repo guessing.
type RepoSummary struct {
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars"`
	Language    string `json:"language,omitempty"`
	URL         string `json:"url"`
}

// ImageResult is one stock-image search hit
type ImageResult struct {
	Tags       []string `json:"tags"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Views      int      `json:"views"`
	Downloads  int      `json:"downloads"`
	Likes      int      `json:"likes"`
	User       string   `json:"user"`
	PreviewURL string   `json:"preview_url"`
	LargeURL   string   `json:"large_url"`
	FullHDURL  string   `json:"full_hd_url,omitempty"`
}

// ParsedError is the structured reading of a pasted error message.
// KeyTerms preserves insertion order and contains no duplicates.
type ParsedError struct {
	Language  Language  `json:"language"`
	Framework Framework `json:"framework,omitempty"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	File      string    `json:"file,omitempty"`
	Line      int       `json:"line,omitempty"`
	KeyTerms  []string  `json:"key_terms"`
}

// APIDocParameter is one documented parameter triple
type APIDocParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// APIDocExample is one fenced code example with its language tag
type APIDocExample struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

// APIDocLink is an in-page link to a related documentation page
type APIDocLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// APIDoc aggregates everything the doc discoverer mined for one topic
type APIDoc struct {
	APIName      string            `json:"api_name"`
	Topic        string            `json:"topic"`
	DocsBaseURL  string            `json:"docs_base_url,omitempty"`
	Overview     string            `json:"overview,omitempty"`
	Parameters   []APIDocParameter `json:"parameters,omitempty"`
	Examples     []APIDocExample   `json:"examples,omitempty"`
	Notes        []string          `json:"notes,omitempty"`
	RelatedLinks []APIDocLink      `json:"related_links,omitempty"`
	Sources      []string          `json:"sources,omitempty"`
}

// TableData is one extracted HTML table; every row maps header to cell text
type TableData struct {
	Caption string              `json:"caption,omitempty"`
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

// ListData is one extracted HTML list
type ListData struct {
	Title  string   `json:"title,omitempty"`
	Items  []string `json:"items"`
	Nested bool     `json:"nested"`
}

// Release is one classified release-notes entry
type Release struct {
	Version         string   `json:"version"`
	Date            string   `json:"date,omitempty"`
	Author          string   `json:"author,omitempty"`
	BreakingChanges []string `json:"breaking_changes,omitempty"`
	NewFeatures     []string `json:"new_features,omitempty"`
	BugFixes        []string `json:"bug_fixes,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	URL             string   `json:"url,omitempty"`
	MigrationGuide  string   `json:"migration_guide,omitempty"`
}

// ChangelogSummary rolls the release window up into an upgrade verdict
type ChangelogSummary struct {
	TotalReleases  int        `json:"total_releases"`
	BreakingCount  int        `json:"breaking_count"`
	Difficulty     Difficulty `json:"difficulty"`
	Recommendation string     `json:"recommendation"`
}

// Changelog is the full result of a changelog retrieval
type Changelog struct {
	Package    string           `json:"package"`
	Registry   Registry         `json:"registry"`
	Repository string           `json:"repository,omitempty"`
	Releases   []Release        `json:"releases"`
	Summary    ChangelogSummary `json:"summary"`
}

// ServiceIncident is one incident from a status page
type ServiceIncident struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at,omitempty"`
	ResolvedAt string `json:"resolved_at,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// ServiceComponent is one named component with its own state
type ServiceComponent struct {
	Name   string       `json:"name"`
	Status ServiceState `json:"status"`
}

// ServiceStatus is the normalized health reading for one service
type ServiceStatus struct {
	Service          string             `json:"service"`
	Status           ServiceState       `json:"status"`
	StatusPageURL    string             `json:"status_page_url,omitempty"`
	CheckedAt        string             `json:"checked_at"`
	CurrentIncidents []ServiceIncident  `json:"current_incidents"`
	Components       []ServiceComponent `json:"components,omitempty"`
	RecentIncidents  []ServiceIncident  `json:"recent_incidents,omitempty"`
	UptimePercentage *float64           `json:"uptime_percentage,omitempty"`
}

// TechComparison is the aggregated matrix produced by the comparator
type TechComparison struct {
	Technologies []string                     `json:"technologies"`
	Category     string                       `json:"category"`
	Aspects      map[string]map[string]string `json:"aspects"`
	Summary      map[string]string            `json:"summary"`
	Sources      []string                     `json:"sources,omitempty"`
}

// NowUTC returns the current time in UTC. Indirection point for tests.
var NowUTC = func() time.Time { return time.Now().UTC() }
