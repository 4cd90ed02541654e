package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	pkgerrors "github.com/pkg/errors"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/service/usage"
)

// toolHandler runs one tool call. It returns the reply body, the
// parameter map recorded in the usage event, and the call error. A
// handler may return both a body and an error when it has friendlier
// text than the error message.
type toolHandler func(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error)

// ToolConfig describes one tool: its schema prototype and handler.
type ToolConfig struct {
	Name        string
	Description string
	Args        interface{}
	Handler     toolHandler
}

var toolConfigs = []ToolConfig{
	{
		Name:        "web_search",
		Description: "Search the web through the local SearXNG instance and return ranked hits.",
		Args:        webSearchArgs{},
		Handler:     handleWebSearch,
	},
	{
		Name:        "search_examples",
		Description: "Find code examples, tutorials, and technical articles, optionally filtered by recency.",
		Args:        searchExamplesArgs{},
		Handler:     handleSearchExamples,
	},
	{
		Name:        "search_images",
		Description: "Search royalty-free stock images via Pixabay, with a web-search fallback.",
		Args:        searchImagesArgs{},
		Handler:     handleSearchImages,
	},
	{
		Name:        "crawl_url",
		Description: "Fetch a URL and return the page text as markdown for quoting or analysis.",
		Args:        crawlURLArgs{},
		Handler:     handleCrawlURL,
	},
	{
		Name:        "package_info",
		Description: "Look up package metadata from npm, PyPI, crates.io, or the Go module proxy.",
		Args:        packageInfoArgs{},
		Handler:     handlePackageInfo,
	},
	{
		Name:        "package_search",
		Description: "Search a package registry by keywords to discover candidate libraries.",
		Args:        packageSearchArgs{},
		Handler:     handlePackageSearch,
	},
	{
		Name:        "github_repo",
		Description: "Fetch GitHub repository health metrics: stars, issues, activity, license.",
		Args:        githubRepoArgs{},
		Handler:     handleGithubRepo,
	},
	{
		Name:        "translate_error",
		Description: "Parse an error message or stack trace and find ranked solutions, Stack Overflow first.",
		Args:        translateErrorArgs{},
		Handler:     handleTranslateError,
	},
	{
		Name:        "api_docs",
		Description: "Discover official API documentation and mine it for a topic: overview, parameters, examples.",
		Args:        apiDocsArgs{},
		Handler:     handleAPIDocs,
	},
	{
		Name:        "extract_data",
		Description: "Extract structured data (tables, lists, fields, JSON-LD) from a web page as JSON.",
		Args:        extractDataArgs{},
		Handler:     handleExtractData,
	},
	{
		Name:        "compare_tech",
		Description: "Compare 2-5 technologies side by side across category-appropriate aspects.",
		Args:        compareTechArgs{},
		Handler:     handleCompareTech,
	},
	{
		Name:        "get_changelog",
		Description: "Fetch release notes for a package and classify breaking changes, features, and fixes.",
		Args:        getChangelogArgs{},
		Handler:     handleGetChangelog,
	},
	{
		Name:        "check_service_status",
		Description: "Check whether an API service or platform is experiencing issues right now.",
		Args:        checkServiceStatusArgs{},
		Handler:     handleCheckServiceStatus,
	},
}

// ToolConfigs exposes the catalog for registration and tests.
func ToolConfigs() []ToolConfig {
	return toolConfigs
}

// RegisterAll registers every tool in the catalog on the server.
func (s *Service) RegisterAll(srv *server.MCPServer) error {
	for _, cfg := range toolConfigs {
		schema, err := json.Marshal(reflectSchema(cfg.Args))
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to build schema for tool %s", cfg.Name)
		}
		tool := mcp.NewToolWithRawSchema(cfg.Name, cfg.Description, schema)
		srv.AddTool(tool, s.dispatch(cfg))
		s.logger.Info().Str("tool", cfg.Name).Msg("Registered tool")
	}
	return nil
}

// dispatch wraps a handler with the shared call contract: reasoning is
// mandatory, the reply is clamped to MaxResponseChars, and exactly one
// usage event is recorded per call. Handler errors become reply text,
// never protocol errors.
func (s *Service) dispatch(cfg ToolConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		requestID := "req_" + uuid.NewString()
		args := req.GetArguments()
		reasoning, _ := args["reasoning"].(string)

		s.logger.Debug().Str("request_id", requestID).Str("tool", cfg.Name).Msg("Tool call")

		var body string
		var params map[string]interface{}
		var handlerErr error

		raw, marshalErr := json.Marshal(args)
		switch {
		case marshalErr != nil:
			handlerErr = errors.New(errors.CodeInvalidParameter, "tools",
				"arguments could not be decoded", marshalErr)
		case strings.TrimSpace(reasoning) == "":
			handlerErr = errors.New(errors.CodeMissingParameter, "tools",
				"reasoning is required: explain why you are calling "+cfg.Name, nil)
		default:
			body, params, handlerErr = cfg.Handler(ctx, s, raw)
		}

		if handlerErr != nil {
			if body == "" {
				body = friendly(handlerErr)
			}
			s.logger.Debug().Str("request_id", requestID).Str("tool", cfg.Name).
				Err(handlerErr).Msg("Tool call failed")
		}

		body = textutil.Clamp(body, s.cfg.MaxResponseChars)

		event := usage.Event{
			Tool:              cfg.Name,
			Reasoning:         reasoning,
			Parameters:        params,
			ResponseTimeMs:    time.Since(start).Milliseconds(),
			Success:           handlerErr == nil,
			ResponseSizeBytes: len(body),
		}
		if handlerErr != nil {
			event.ErrorMessage = handlerErr.Error()
		}
		if err := s.usage.Track(event); err != nil {
			s.logger.Warn().Str("request_id", requestID).Err(err).Msg("Usage tracking failed")
		}

		return mcp.NewToolResultText(body), nil
	}
}

// friendly renders an error as reply text, dropping the code prefix
// that structured errors put in Error().
func friendly(err error) string {
	var e *errors.Error
	if pkgerrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// decodeArgs unmarshals the raw argument JSON into the typed struct.
func decodeArgs(raw json.RawMessage, into interface{}) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.New(errors.CodeInvalidParameter, "tools",
			"arguments do not match the tool schema", err)
	}
	return nil
}
