package research

import (
	"os"
	"path/filepath"
)

// ServerConfig carries all runtime settings for the research server.
// Values come from defaults, then an optional env file, then process
// environment, then command-line flags, in that order.
type ServerConfig struct {
	SearxBaseURL     string `json:"searx_base_url"`
	DefaultCategory  string `json:"default_category"`
	DefaultResults   int    `json:"default_results"`
	MaxResults       int    `json:"max_results"`
	CrawlMaxChars    int    `json:"crawl_max_chars"`
	MaxResponseChars int    `json:"max_response_chars"`
	UsageLogPath     string `json:"usage_log_path"`
	PixabayAPIKey    string `json:"-"`
	GitHubToken      string `json:"-"`
	UserAgent        string `json:"user_agent"`
	LogLevel         string `json:"log_level"`
}

// DefaultServerConfig returns the baseline configuration before any
// env file, environment variable, or flag overrides are applied.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		SearxBaseURL:     "http://localhost:2288/search",
		DefaultCategory:  "general",
		DefaultResults:   5,
		MaxResults:       10,
		CrawlMaxChars:    8000,
		MaxResponseChars: 8000,
		UsageLogPath:     DefaultUsageLogPath(),
		UserAgent:        "web-research-assistant/1.0",
		LogLevel:         "info",
	}
}

// DefaultUsageLogPath resolves the usage store location under the XDG
// config directory, falling back to ~/.config when XDG_CONFIG_HOME is
// unset. A last-resort relative path keeps the tracker usable even when
// the home directory cannot be determined.
func DefaultUsageLogPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("web-research-assistant", "usage.json")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "web-research-assistant", "usage.json")
}
