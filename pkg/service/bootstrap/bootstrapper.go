// Package bootstrap provides server initialization and setup logic
package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/service/prompts"
	"github.com/searxng-tools/web-research-assist/pkg/service/resources"
	"github.com/searxng-tools/web-research-assist/pkg/service/tools"
	"github.com/searxng-tools/web-research-assist/pkg/service/usage"
)

const serverName = "web-research-assistant"

// Bootstrapper handles server initialization and component registration.
type Bootstrapper struct {
	logger  zerolog.Logger
	config  *research.ServerConfig
	version string
	service *tools.Service
}

// NewBootstrapper creates a new bootstrapper instance.
func NewBootstrapper(logger zerolog.Logger, config *research.ServerConfig, version string) *Bootstrapper {
	return &Bootstrapper{
		logger:  logger.With().Str("component", "bootstrapper").Logger(),
		config:  config,
		version: version,
	}
}

// InitializeDirectories creates the usage store directory.
func (b *Bootstrapper) InitializeDirectories() error {
	if b.config.UsageLogPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.config.UsageLogPath), 0o755); err != nil {
		return errors.New(errors.CodeIoError, "bootstrapper",
			fmt.Sprintf("failed to create usage log directory for %s", b.config.UsageLogPath), err)
	}
	return nil
}

// CreateMCPServer creates a new mcp-go server with capabilities.
func (b *Bootstrapper) CreateMCPServer() *server.MCPServer {
	return server.NewMCPServer(
		serverName,
		b.version,
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
}

// RegisterComponents builds the client graph and registers all tools,
// resources, and prompts with the MCP server.
func (b *Bootstrapper) RegisterComponents(mcpServer *server.MCPServer) error {
	if mcpServer == nil {
		return errors.New(errors.CodeInternalError, "bootstrapper", "mcp server not initialized", nil)
	}

	tracker := usage.NewTracker(b.logger, b.config.UsageLogPath)
	b.service = tools.NewService(b.logger, b.config, tracker)

	if err := b.service.RegisterAll(mcpServer); err != nil {
		return errors.New(errors.CodeToolExecutionFailed, "bootstrapper", "failed to register tools", err)
	}
	if err := resources.NewRegistrar(b.logger, b.service).RegisterAll(mcpServer); err != nil {
		return errors.New(errors.CodeToolExecutionFailed, "bootstrapper", "failed to register resources", err)
	}
	if err := prompts.NewRegistry(b.logger).RegisterAll(mcpServer); err != nil {
		return errors.New(errors.CodeToolExecutionFailed, "bootstrapper", "failed to register prompts", err)
	}
	return nil
}

// Service exposes the tool service after RegisterComponents has run,
// so the lifecycle manager can log the usage summary at shutdown.
func (b *Bootstrapper) Service() *tools.Service {
	return b.service
}
