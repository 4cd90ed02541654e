package research

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRegistry(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"npm", "npm", true},
		{"pypi", "pypi", true},
		{"crates", "crates", true},
		{"go proxy", "go", true},
		{"unknown registry", "maven", false},
		{"empty", "", false},
		{"case sensitive", "NPM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidRegistry(tt.input))
		})
	}
}

func TestServiceState_Emoji(t *testing.T) {
	tests := []struct {
		state ServiceState
		want  string
	}{
		{StateOperational, "✅"},
		{StateDegraded, "🟡"},
		{StatePartialOutage, "🟠"},
		{StateMajorOutage, "🔴"},
		{StateMaintenance, "🔧"},
		{StateUnknown, "❓"},
		{ServiceState("bogus"), "❓"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Emoji())
		})
	}
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "http://localhost:2288/search", cfg.SearxBaseURL)
	assert.Equal(t, "general", cfg.DefaultCategory)
	assert.Equal(t, 5, cfg.DefaultResults)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, 8000, cfg.CrawlMaxChars)
	assert.Equal(t, 8000, cfg.MaxResponseChars)
	assert.Equal(t, "web-research-assistant/1.0", cfg.UserAgent)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.UsageLogPath)
	assert.Empty(t, cfg.PixabayAPIKey)
	assert.Empty(t, cfg.GitHubToken)
}

func TestDefaultUsageLogPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	got := DefaultUsageLogPath()
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "web-research-assistant", "usage.json"), got)
}

func TestDefaultUsageLogPath_HomeFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/home-test")

	got := DefaultUsageLogPath()
	assert.Equal(t, filepath.Join("/tmp/home-test", ".config", "web-research-assistant", "usage.json"), got)
}
