package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/service/bootstrap"
	"github.com/searxng-tools/web-research-assist/pkg/service/lifecycle"
)

// Build-time variables set via ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"
	// GitCommit is the git commit SHA at build time
	GitCommit = "unknown"
	// BuildTime is the time of the build
	BuildTime = "unknown"
)

// FlagConfig holds all command line flags
type FlagConfig struct {
	configFile       *string
	searxURL         *string
	logLevel         *string
	usageLog         *string
	maxResponseChars *int
	version          *bool
}

func parseFlags() *FlagConfig {
	flags := &FlagConfig{
		configFile:       flag.String("config", "", "Path to env configuration file"),
		searxURL:         flag.String("searx-url", "", "SearXNG search endpoint URL"),
		logLevel:         flag.String("log-level", "", "Log level (debug, info, warn, error)"),
		usageLog:         flag.String("usage-log", "", "Path to the usage log file"),
		maxResponseChars: flag.Int("max-response-chars", 0, "Maximum characters per tool reply"),
		version:          flag.Bool("version", false, "Show version information"),
	}
	flag.Parse()
	return flags
}

func handleSpecialFlags(flags *FlagConfig) {
	if *flags.version {
		fmt.Println("web-research-assistant " + getVersion())
		os.Exit(0)
	}
}

func main() {
	flags := parseFlags()
	handleSpecialFlags(flags)

	config, err := loadAndConfigureServer(flags)
	if err != nil {
		log.Error().Err(err).Msg("Failed to configure server")
		os.Exit(1)
	}

	logger := log.With().Logger()
	bootstrapper := bootstrap.NewBootstrapper(logger, config, getVersion())
	manager := lifecycle.NewManager(logger, config, bootstrapper)

	runServerWithShutdown(manager)
}

// loadAndConfigureServer loads configuration from defaults, env file,
// environment variables, and flags, in increasing precedence.
func loadAndConfigureServer(flags *FlagConfig) (*research.ServerConfig, error) {
	if err := loadEnvFile(*flags.configFile); err != nil {
		return nil, err
	}

	config := research.DefaultServerConfig()
	applyEnvMappings(config)
	applyFlagOverrides(config, flags)
	setupLogging(config.LogLevel)

	return config, nil
}

func applyFlagOverrides(config *research.ServerConfig, flags *FlagConfig) {
	if *flags.searxURL != "" {
		config.SearxBaseURL = *flags.searxURL
	}
	if *flags.logLevel != "" {
		config.LogLevel = *flags.logLevel
	}
	if *flags.usageLog != "" {
		config.UsageLogPath = *flags.usageLog
	}
	if *flags.maxResponseChars > 0 {
		config.MaxResponseChars = *flags.maxResponseChars
	}
}

// EnvConfigMapping defines how environment variables map to configuration fields
type EnvConfigMapping struct {
	EnvKey string
	Setter func(config *research.ServerConfig, value string)
}

func buildEnvMappings() []EnvConfigMapping {
	return []EnvConfigMapping{
		{"SEARXNG_BASE_URL", func(config *research.ServerConfig, value string) {
			config.SearxBaseURL = value
		}},
		{"SEARXNG_DEFAULT_CATEGORY", func(config *research.ServerConfig, value string) {
			config.DefaultCategory = value
		}},
		{"SEARXNG_DEFAULT_RESULTS", func(config *research.ServerConfig, value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				config.DefaultResults = parsed
			}
		}},
		{"SEARXNG_MAX_RESULTS", func(config *research.ServerConfig, value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				config.MaxResults = parsed
			}
		}},
		{"SEARXNG_CRAWL_MAX_CHARS", func(config *research.ServerConfig, value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				config.CrawlMaxChars = parsed
			}
		}},
		{"MCP_MAX_RESPONSE_CHARS", func(config *research.ServerConfig, value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				config.MaxResponseChars = parsed
			}
		}},
		{"MCP_USAGE_LOG", func(config *research.ServerConfig, value string) {
			config.UsageLogPath = value
		}},
		{"PIXABAY_API_KEY", func(config *research.ServerConfig, value string) {
			config.PixabayAPIKey = value
		}},
		{"GITHUB_TOKEN", func(config *research.ServerConfig, value string) {
			config.GitHubToken = value
		}},
		{"SEARXNG_MCP_USER_AGENT", func(config *research.ServerConfig, value string) {
			config.UserAgent = value
		}},
		{"LOG_LEVEL", func(config *research.ServerConfig, value string) {
			config.LogLevel = value
		}},
	}
}

// loadEnvFile loads environment variables from file
func loadEnvFile(configFile string) error {
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	return nil
}

// applyEnvMappings applies environment variable mappings to configuration
func applyEnvMappings(config *research.ServerConfig) {
	for _, mapping := range buildEnvMappings() {
		if val := os.Getenv(mapping.EnvKey); val != "" {
			mapping.Setter(config, val)
		}
	}
}

// runServerWithShutdown runs the server with graceful shutdown handling
func runServerWithShutdown(manager *lifecycle.Manager) {
	ctx := context.Background()

	serverErr := make(chan error, 1)
	go func() {
		if err := manager.Start(ctx); err != nil {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during server shutdown")
		}

		// Give final logs a moment to flush.
		time.Sleep(100 * time.Millisecond)

	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}

// setupLogging configures structured logging
func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Stdout carries the MCP protocol; logs go to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

// getVersion returns the version information
func getVersion() string {
	if Version == "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
	}
	return fmt.Sprintf("v%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}
