package prompts

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptNamed(t *testing.T, name string) PromptAndHandler {
	t.Helper()
	for _, p := range prompts {
		if p.name == name {
			return p
		}
	}
	t.Fatalf("no prompt named %s", name)
	return PromptAndHandler{}
}

func renderPrompt(t *testing.T, p PromptAndHandler, args map[string]string) string {
	t.Helper()
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = args

	result, err := p.GetHandler()(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)

	content, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestPromptCatalog(t *testing.T) {
	names := map[string]bool{}
	for _, p := range prompts {
		assert.False(t, names[p.name], "duplicate prompt %s", p.name)
		names[p.name] = true
		assert.NotNil(t, p.render)
		assert.NotEmpty(t, p.description)
	}
	assert.Len(t, prompts, 5)

	for _, name := range []string{
		"research_package", "debug_error", "compare_technologies",
		"evaluate_repository", "check_service_health",
	} {
		assert.True(t, names[name], "missing prompt %s", name)
	}
}

func TestResearchPackageDefaultsRegistry(t *testing.T) {
	text := renderPrompt(t, promptNamed(t, "research_package"), map[string]string{
		"package": "express",
	})
	assert.Contains(t, text, `research the "express" package from npm`)
	assert.Contains(t, text, "package://npm/express")
}

func TestResearchPackageRequiresPackage(t *testing.T) {
	p := promptNamed(t, "research_package")
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"registry": "pypi"}

	_, err := p.GetHandler()(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required argument: package")
}

func TestDebugErrorContextBlock(t *testing.T) {
	p := promptNamed(t, "debug_error")

	text := renderPrompt(t, p, map[string]string{
		"error_message": "TypeError: cannot read undefined",
		"language":      "javascript",
	})
	assert.Contains(t, text, "TypeError: cannot read undefined")
	assert.Contains(t, text, "Language: javascript")
	assert.NotContains(t, text, "Framework:")

	text = renderPrompt(t, p, map[string]string{
		"error_message": "boom",
	})
	assert.Contains(t, text, "Not specified")
}

func TestCompareTechnologiesUsesUseCase(t *testing.T) {
	text := renderPrompt(t, promptNamed(t, "compare_technologies"), map[string]string{
		"tech1":    "react",
		"tech2":    "vue",
		"use_case": "dashboards",
	})
	assert.Contains(t, text, "**react** vs **vue** for dashboards")
	assert.Contains(t, text, "**My use case**: dashboards")
}

func TestEvaluateRepositoryReferencesResource(t *testing.T) {
	text := renderPrompt(t, promptNamed(t, "evaluate_repository"), map[string]string{
		"owner": "rs",
		"repo":  "zerolog",
	})
	assert.Contains(t, text, "**rs/zerolog**")
	assert.Contains(t, text, "github://rs/zerolog")
}

func TestCheckServiceHealthExpandsList(t *testing.T) {
	text := renderPrompt(t, promptNamed(t, "check_service_health"), map[string]string{
		"services": "github, stripe,, openai",
	})
	assert.Contains(t, text, "- status://github")
	assert.Contains(t, text, "- status://stripe")
	assert.Contains(t, text, "- status://openai")
}

func TestRegisterAll(t *testing.T) {
	srv := server.NewMCPServer("test", "0.0.0",
		server.WithPromptCapabilities(true),
	)
	require.NoError(t, NewRegistry(zerolog.Nop()).RegisterAll(srv))
}
