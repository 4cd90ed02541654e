// Package lifecycle provides server lifecycle management functionality
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/service/bootstrap"
)

// Manager handles server startup and shutdown logic.
type Manager struct {
	logger           zerolog.Logger
	config           *research.ServerConfig
	bootstrapper     *bootstrap.Bootstrapper
	mcpServer        *server.MCPServer
	isMcpInitialized bool
	shutdownMutex    sync.Mutex
	isShuttingDown   bool
	startTime        time.Time
}

// NewManager creates a new lifecycle manager.
func NewManager(logger zerolog.Logger, config *research.ServerConfig, bootstrapper *bootstrap.Bootstrapper) *Manager {
	return &Manager{
		logger:       logger.With().Str("component", "lifecycle").Logger(),
		config:       config,
		bootstrapper: bootstrapper,
		startTime:    time.Now(),
	}
}

// Start initializes the server and serves the stdio transport. It
// blocks until the transport closes.
func (m *Manager) Start(ctx context.Context) error {
	m.logger.Info().
		Str("searx_base_url", m.config.SearxBaseURL).
		Str("usage_log", m.config.UsageLogPath).
		Msg("Starting web research assistant MCP server")

	if err := m.bootstrapper.InitializeDirectories(); err != nil {
		return err
	}

	if !m.isMcpInitialized {
		if err := m.initializeMCPServer(); err != nil {
			return err
		}
	}

	m.logger.Info().Msg("Starting stdio transport")
	return server.ServeStdio(m.mcpServer)
}

func (m *Manager) initializeMCPServer() error {
	m.mcpServer = m.bootstrapper.CreateMCPServer()
	if m.mcpServer == nil {
		return errors.New(errors.CodeInternalError, "lifecycle", "failed to create mcp-go server", nil)
	}
	if err := m.bootstrapper.RegisterComponents(m.mcpServer); err != nil {
		return err
	}
	m.isMcpInitialized = true
	m.logger.Info().Msg("MCP server initialized")
	return nil
}

// Shutdown logs the final usage summary. Safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownMutex.Lock()
	defer m.shutdownMutex.Unlock()

	if m.isShuttingDown {
		return nil
	}
	m.isShuttingDown = true

	m.logger.Info().Dur("uptime", m.Uptime()).Msg("Shutting down MCP server")

	if svc := m.bootstrapper.Service(); svc != nil {
		summary := svc.Usage().Summary()
		m.logger.Info().
			Int("total_calls", summary.Totals.TotalCalls).
			Str("most_used_tool", summary.Totals.MostUsedTool).
			Msg("Session usage summary")
	}

	m.logger.Info().Msg("MCP server shutdown complete")
	return nil
}

// Uptime returns how long the server has been running.
func (m *Manager) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// IsInitialized reports whether the MCP server is initialized.
func (m *Manager) IsInitialized() bool {
	return m.isMcpInitialized
}

// IsShuttingDown reports whether shutdown has begun.
func (m *Manager) IsShuttingDown() bool {
	m.shutdownMutex.Lock()
	defer m.shutdownMutex.Unlock()
	return m.isShuttingDown
}
