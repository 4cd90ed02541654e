package tools

import (
	"fmt"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/core/compare"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/extract"
)

// Argument structs double as the source of the reflected input schemas,
// so their json and jsonschema tags are contract. Out-of-range values
// are rejected rather than clamped; defaults are applied by validate.

func missing(param string) error {
	return errors.New(errors.CodeMissingParameter, "tools",
		fmt.Sprintf("%s is required", param), nil)
}

func outOfRange(param string, lo, hi int) error {
	return errors.New(errors.CodeInvalidParameter, "tools",
		fmt.Sprintf("%s must be between %d and %d", param, lo, hi), nil)
}

func badEnum(param, value string, allowed ...string) error {
	return errors.New(errors.CodeInvalidParameter, "tools",
		fmt.Sprintf("%s must be one of %s (got %q)", param, strings.Join(allowed, ", "), value), nil)
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

var searchCategories = []string{"general", "it", "news", "science", "videos", "images", "files"}

type webSearchArgs struct {
	Query      string `json:"query" jsonschema:"required,description=Natural-language web query"`
	Reasoning  string `json:"reasoning" jsonschema:"required,description=Why you are calling this tool (recorded in usage analytics)"`
	Category   string `json:"category,omitempty" jsonschema:"enum=general,enum=it,enum=news,enum=science,enum=videos,enum=images,enum=files,description=Search category"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=10,default=5,description=How many ranked hits to return"`
}

func (a *webSearchArgs) validate(cfg *research.ServerConfig) error {
	if strings.TrimSpace(a.Query) == "" {
		return missing("query")
	}
	if a.Category == "" {
		a.Category = cfg.DefaultCategory
	}
	if !oneOf(a.Category, searchCategories...) {
		return badEnum("category", a.Category, searchCategories...)
	}
	if a.MaxResults == 0 {
		a.MaxResults = cfg.DefaultResults
	}
	if a.MaxResults < 1 || a.MaxResults > 10 {
		return outOfRange("max_results", 1, 10)
	}
	return nil
}

type searchExamplesArgs struct {
	Query       string `json:"query" jsonschema:"required,description=What you are looking for (e.g. 'React hooks tutorial')"`
	Reasoning   string `json:"reasoning" jsonschema:"required,description=Why you are searching for examples"`
	ContentType string `json:"content_type,omitempty" jsonschema:"enum=code,enum=articles,enum=both,default=both,description=Kind of content to find"`
	TimeRange   string `json:"time_range,omitempty" jsonschema:"enum=day,enum=week,enum=month,enum=year,enum=all,default=all,description=How recent the content should be"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=10,default=5,description=How many results to return"`
}

func (a *searchExamplesArgs) validate(cfg *research.ServerConfig) error {
	if strings.TrimSpace(a.Query) == "" {
		return missing("query")
	}
	if a.ContentType == "" {
		a.ContentType = "both"
	}
	if !oneOf(a.ContentType, "code", "articles", "both") {
		return badEnum("content_type", a.ContentType, "code", "articles", "both")
	}
	if a.TimeRange == "" {
		a.TimeRange = "all"
	}
	if !oneOf(a.TimeRange, "day", "week", "month", "year", "all") {
		return badEnum("time_range", a.TimeRange, "day", "week", "month", "year", "all")
	}
	if a.MaxResults == 0 {
		a.MaxResults = cfg.DefaultResults
	}
	if a.MaxResults < 1 || a.MaxResults > 10 {
		return outOfRange("max_results", 1, 10)
	}
	return nil
}

type searchImagesArgs struct {
	Query       string `json:"query" jsonschema:"required,description=What to search for (e.g. 'office workspace')"`
	Reasoning   string `json:"reasoning" jsonschema:"required,description=Why you are searching for images"`
	ImageType   string `json:"image_type,omitempty" jsonschema:"enum=all,enum=photo,enum=illustration,enum=vector,default=all,description=Type of image"`
	Orientation string `json:"orientation,omitempty" jsonschema:"enum=all,enum=horizontal,enum=vertical,default=all,description=Image orientation preference"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=10,description=Maximum number of results"`
}

func (a *searchImagesArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.Query) == "" {
		return missing("query")
	}
	if a.ImageType == "" {
		a.ImageType = "all"
	}
	if !oneOf(a.ImageType, "all", "photo", "illustration", "vector") {
		return badEnum("image_type", a.ImageType, "all", "photo", "illustration", "vector")
	}
	if a.Orientation == "" {
		a.Orientation = "all"
	}
	if !oneOf(a.Orientation, "all", "horizontal", "vertical") {
		return badEnum("orientation", a.Orientation, "all", "horizontal", "vertical")
	}
	if a.MaxResults == 0 {
		a.MaxResults = 10
	}
	if a.MaxResults < 1 || a.MaxResults > 20 {
		return outOfRange("max_results", 1, 20)
	}
	return nil
}

type crawlURLArgs struct {
	URL       string `json:"url" jsonschema:"required,description=HTTP(S) URL to fetch (ideally from web_search output)"`
	Reasoning string `json:"reasoning" jsonschema:"required,description=Why you are crawling this URL"`
	MaxChars  int    `json:"max_chars,omitempty" jsonschema:"minimum=1,maximum=50000,description=Trim the markdown result to this many characters"`
}

func (a *crawlURLArgs) validate(cfg *research.ServerConfig) error {
	if strings.TrimSpace(a.URL) == "" {
		return missing("url")
	}
	if a.MaxChars == 0 {
		a.MaxChars = cfg.CrawlMaxChars
	}
	if a.MaxChars < 1 || a.MaxChars > 50000 {
		return outOfRange("max_chars", 1, 50000)
	}
	return nil
}

var registryNames = []string{"npm", "pypi", "crates", "go"}

type packageInfoArgs struct {
	Name      string `json:"name" jsonschema:"required,description=Package or module name to look up"`
	Registry  string `json:"registry" jsonschema:"required,enum=npm,enum=pypi,enum=crates,enum=go,description=Package registry"`
	Reasoning string `json:"reasoning" jsonschema:"required,description=Why you are looking up this package"`
}

func (a *packageInfoArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.Name) == "" {
		return missing("name")
	}
	if !research.ValidRegistry(a.Registry) {
		return badEnum("registry", a.Registry, registryNames...)
	}
	return nil
}

type packageSearchArgs struct {
	Query      string `json:"query" jsonschema:"required,description=Search keywords (e.g. 'json parser')"`
	Registry   string `json:"registry" jsonschema:"required,enum=npm,enum=pypi,enum=crates,enum=go,description=Package registry to search"`
	Reasoning  string `json:"reasoning" jsonschema:"required,description=Why you are searching for packages"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=10,description=Maximum number of results"`
}

func (a *packageSearchArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.Query) == "" {
		return missing("query")
	}
	if !research.ValidRegistry(a.Registry) {
		return badEnum("registry", a.Registry, registryNames...)
	}
	if a.MaxResults == 0 {
		a.MaxResults = 10
	}
	if a.MaxResults < 1 || a.MaxResults > 20 {
		return outOfRange("max_results", 1, 20)
	}
	return nil
}

type githubRepoArgs struct {
	Repo           string `json:"repo" jsonschema:"required,description=GitHub repository (owner/repo or full URL)"`
	Reasoning      string `json:"reasoning" jsonschema:"required,description=Why you are checking this repository"`
	IncludeCommits *bool  `json:"include_commits,omitempty" jsonschema:"default=true,description=Include recent commit history"`
}

func (a *githubRepoArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.Repo) == "" {
		return missing("repo")
	}
	return nil
}

func (a *githubRepoArgs) includeCommits() bool {
	return a.IncludeCommits == nil || *a.IncludeCommits
}

type translateErrorArgs struct {
	ErrorMessage string `json:"error_message" jsonschema:"required,description=The error message or stack trace to investigate"`
	Reasoning    string `json:"reasoning" jsonschema:"required,description=Why you are investigating this error"`
	Language     string `json:"language,omitempty" jsonschema:"description=Programming language (auto-detected when omitted)"`
	Framework    string `json:"framework,omitempty" jsonschema:"description=Framework context (e.g. 'react' or 'django')"`
	MaxResults   int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=10,default=5,description=Number of solutions to return"`
}

func (a *translateErrorArgs) validate(cfg *research.ServerConfig) error {
	if strings.TrimSpace(a.ErrorMessage) == "" {
		return missing("error_message")
	}
	if a.MaxResults == 0 {
		a.MaxResults = cfg.DefaultResults
	}
	if a.MaxResults < 1 || a.MaxResults > 10 {
		return outOfRange("max_results", 1, 10)
	}
	return nil
}

type apiDocsArgs struct {
	APIName    string `json:"api_name" jsonschema:"required,description=API name (e.g. 'stripe') or base docs URL"`
	Topic      string `json:"topic" jsonschema:"required,description=What to look for (e.g. 'create customer' or 'webhooks')"`
	Reasoning  string `json:"reasoning" jsonschema:"required,description=Why you are looking up this API"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=5,default=3,description=Number of doc pages to mine"`
}

func (a *apiDocsArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.APIName) == "" {
		return missing("api_name")
	}
	if strings.TrimSpace(a.Topic) == "" {
		return missing("topic")
	}
	if a.MaxResults == 0 {
		a.MaxResults = 3
	}
	if a.MaxResults < 1 || a.MaxResults > 5 {
		return outOfRange("max_results", 1, 5)
	}
	return nil
}

type extractDataArgs struct {
	URL         string            `json:"url" jsonschema:"required,description=HTTP(S) URL to extract structured data from"`
	Reasoning   string            `json:"reasoning" jsonschema:"required,description=Why you are extracting data from this URL"`
	ExtractType string            `json:"extract_type,omitempty" jsonschema:"enum=table,enum=list,enum=fields,enum=json-ld,enum=auto,default=auto,description=Extraction mode"`
	Selectors   map[string]string `json:"selectors,omitempty" jsonschema:"description=CSS selectors for field extraction (fields mode only)"`
	MaxItems    int               `json:"max_items,omitempty" jsonschema:"minimum=1,maximum=500,default=100,description=Maximum number of items to extract"`
}

func (a *extractDataArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.URL) == "" {
		return missing("url")
	}
	if a.ExtractType == "" {
		a.ExtractType = extract.ModeAuto
	}
	if !extract.ValidMode(a.ExtractType) {
		return badEnum("extract_type", a.ExtractType,
			extract.ModeTable, extract.ModeList, extract.ModeFields, extract.ModeJSONLD, extract.ModeAuto)
	}
	if a.ExtractType == extract.ModeFields && len(a.Selectors) == 0 {
		return errors.New(errors.CodeMissingParameter, "tools",
			"selectors is required when extract_type is 'fields'", nil)
	}
	if a.MaxItems == 0 {
		a.MaxItems = 100
	}
	if a.MaxItems < 1 || a.MaxItems > 500 {
		return outOfRange("max_items", 1, 500)
	}
	return nil
}

type compareTechArgs struct {
	Technologies      []string `json:"technologies" jsonschema:"required,description=Two to five technologies to compare"`
	Reasoning         string   `json:"reasoning" jsonschema:"required,description=Why you are comparing these technologies"`
	Category          string   `json:"category,omitempty" jsonschema:"enum=framework,enum=library,enum=database,enum=language,enum=tool,enum=auto,default=auto,description=Technology category"`
	Aspects           []string `json:"aspects,omitempty" jsonschema:"description=Specific aspects to compare (auto-selected when omitted)"`
	MaxResultsPerTech int      `json:"max_results_per_tech,omitempty" jsonschema:"minimum=1,maximum=10,default=3,description=Search results per technology and aspect"`
}

func (a *compareTechArgs) validate(*research.ServerConfig) error {
	if len(a.Technologies) < 2 {
		return errors.New(errors.CodeInvalidParameter, "tools",
			"provide at least 2 technologies to compare", nil)
	}
	if len(a.Technologies) > 5 {
		return errors.New(errors.CodeInvalidParameter, "tools",
			"provide at most 5 technologies to compare", nil)
	}
	if a.Category == "" {
		a.Category = compare.CategoryAuto
	}
	if !compare.ValidCategory(a.Category) {
		return badEnum("category", a.Category,
			compare.CategoryFramework, compare.CategoryLibrary, compare.CategoryDatabase,
			compare.CategoryLanguage, compare.CategoryTool, compare.CategoryAuto)
	}
	if a.MaxResultsPerTech == 0 {
		a.MaxResultsPerTech = 3
	}
	if a.MaxResultsPerTech < 1 || a.MaxResultsPerTech > 10 {
		return outOfRange("max_results_per_tech", 1, 10)
	}
	return nil
}

type getChangelogArgs struct {
	Package     string `json:"package" jsonschema:"required,description=Package name (e.g. 'react' or 'fastapi')"`
	Reasoning   string `json:"reasoning" jsonschema:"required,description=Why you are checking the changelog"`
	Registry    string `json:"registry,omitempty" jsonschema:"enum=npm,enum=pypi,enum=crates,enum=go,enum=auto,default=auto,description=Package registry"`
	FromVersion string `json:"from_version,omitempty" jsonschema:"description=Lower bound of the release window"`
	ToVersion   string `json:"to_version,omitempty" jsonschema:"description=Upper bound of the release window"`
	MaxReleases int    `json:"max_releases,omitempty" jsonschema:"minimum=1,maximum=50,default=10,description=Maximum releases to fetch"`
}

func (a *getChangelogArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.Package) == "" {
		return missing("package")
	}
	if a.Registry == "" {
		a.Registry = "auto"
	}
	if a.Registry != "auto" && !research.ValidRegistry(a.Registry) {
		return badEnum("registry", a.Registry, "npm", "pypi", "crates", "go", "auto")
	}
	if a.MaxReleases == 0 {
		a.MaxReleases = 10
	}
	if a.MaxReleases < 1 || a.MaxReleases > 50 {
		return outOfRange("max_releases", 1, 50)
	}
	return nil
}

type checkServiceStatusArgs struct {
	Service        string `json:"service" jsonschema:"required,description=Service name (e.g. 'stripe' or 'github')"`
	Reasoning      string `json:"reasoning" jsonschema:"required,description=Why you are checking service status"`
	IncludeHistory bool   `json:"include_history,omitempty" jsonschema:"default=false,description=Include recently resolved incidents"`
	Days           int    `json:"days,omitempty" jsonschema:"minimum=1,maximum=30,default=7,description=History window in days"`
}

func (a *checkServiceStatusArgs) validate(*research.ServerConfig) error {
	if strings.TrimSpace(a.Service) == "" {
		return missing("service")
	}
	if a.Days == 0 {
		a.Days = 7
	}
	if a.Days < 1 || a.Days > 30 {
		return outOfRange("days", 1, 30)
	}
	return nil
}
