// Package prompts registers reusable research prompt templates.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// promptArg declares one template argument. Optional arguments fall
// back to their default when the client omits them.
type promptArg struct {
	name        string
	description string
	required    bool
	fallback    string
}

// PromptAndHandler pairs a prompt declaration with its renderer.
type PromptAndHandler struct {
	name        string
	description string
	args        []promptArg
	render      func(args map[string]string) string
}

// Registry registers the research prompts on the server.
type Registry struct {
	logger zerolog.Logger
}

// NewRegistry creates a prompt registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{logger: logger.With().Str("component", "prompt-registry").Logger()}
}

// RegisterAll registers every prompt template.
func (r *Registry) RegisterAll(srv *server.MCPServer) error {
	for _, p := range prompts {
		p := p
		srv.AddPrompt(p.GetPrompt(), p.GetHandler())
		r.logger.Info().Str("name", p.name).Msg("Registered prompt")
	}
	return nil
}

// GetPrompt builds the prompt declaration with its argument schema.
func (p *PromptAndHandler) GetPrompt() mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(p.description)}
	for _, arg := range p.args {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(arg.description)}
		if arg.required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(arg.name, argOpts...))
	}
	return mcp.NewPrompt(p.name, opts...)
}

// GetHandler renders the template with defaults applied and required
// arguments enforced.
func (p *PromptAndHandler) GetHandler() server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := make(map[string]string, len(p.args))
		for _, arg := range p.args {
			value := strings.TrimSpace(req.Params.Arguments[arg.name])
			if value == "" {
				if arg.required {
					return nil, fmt.Errorf("missing required argument: %s", arg.name)
				}
				value = arg.fallback
			}
			args[arg.name] = value
		}
		return &mcp.GetPromptResult{
			Description: p.description,
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: p.render(args),
					},
				},
			},
		}, nil
	}
}

var prompts = []PromptAndHandler{
	{
		name:        "research_package",
		description: "Thoroughly evaluate a package before adding it to a project",
		args: []promptArg{
			{name: "package", description: "Package name to research", required: true},
			{name: "registry", description: "Registry the package lives on (npm, pypi, crates, go)", fallback: "npm"},
		},
		render: renderResearchPackage,
	},
	{
		name:        "debug_error",
		description: "Understand and fix an error message",
		args: []promptArg{
			{name: "error_message", description: "The error message to debug", required: true},
			{name: "language", description: "Programming language the error came from"},
			{name: "framework", description: "Framework in use when the error occurred"},
		},
		render: renderDebugError,
	},
	{
		name:        "compare_technologies",
		description: "Compare two frameworks, libraries, or tools",
		args: []promptArg{
			{name: "tech1", description: "First technology", required: true},
			{name: "tech2", description: "Second technology", required: true},
			{name: "use_case", description: "What the technology will be used for", fallback: "general use"},
		},
		render: renderCompareTechnologies,
	},
	{
		name:        "evaluate_repository",
		description: "Evaluate a GitHub repository before using or contributing to it",
		args: []promptArg{
			{name: "owner", description: "Repository owner", required: true},
			{name: "repo", description: "Repository name", required: true},
		},
		render: renderEvaluateRepository,
	},
	{
		name:        "check_service_health",
		description: "Check the health of multiple services before a deployment",
		args: []promptArg{
			{name: "services", description: "Comma-separated service names", required: true},
		},
		render: renderCheckServiceHealth,
	},
}

func renderResearchPackage(args map[string]string) string {
	pkg, registry := args["package"], args["registry"]
	return fmt.Sprintf(`Please research the "%s" package from %s and provide:

1. **Overview**: What does this package do? What problem does it solve?
2. **Popularity & Trust**: Download stats, GitHub stars, maintenance activity
3. **Security**: Any known vulnerabilities or security concerns?
4. **Dependencies**: How many dependencies does it have? Any concerns?
5. **Alternatives**: What are the main alternatives and how does this compare?
6. **Recommendation**: Should I use this package? Why or why not?

Use the package://%s/%s resource to get the package information, then search for additional context about alternatives and community sentiment.`,
		pkg, registry, registry, pkg)
}

func renderDebugError(args map[string]string) string {
	var contextParts []string
	if args["language"] != "" {
		contextParts = append(contextParts, "Language: "+args["language"])
	}
	if args["framework"] != "" {
		contextParts = append(contextParts, "Framework: "+args["framework"])
	}
	context := "Not specified"
	if len(contextParts) > 0 {
		context = strings.Join(contextParts, "\n")
	}

	return fmt.Sprintf(`I encountered this error and need help debugging it:

`+"```"+`
%s
`+"```"+`

**Context:**
%s

Please help me:
1. **Understand**: What does this error mean in plain terms?
2. **Root Cause**: What typically causes this error?
3. **Fix**: How can I resolve this issue? Provide code examples if applicable.
4. **Prevention**: How can I prevent this error in the future?

Use the translate_error tool to find relevant Stack Overflow discussions and solutions.`,
		args["error_message"], context)
}

func renderCompareTechnologies(args map[string]string) string {
	tech1, tech2, useCase := args["tech1"], args["tech2"], args["use_case"]
	return fmt.Sprintf(`Please compare **%s** vs **%s** for %s.

Analyze the following aspects:

1. **Performance**: Speed, resource usage, scalability
2. **Developer Experience**: Learning curve, documentation, tooling
3. **Ecosystem**: Community size, available plugins/extensions, job market
4. **Maintenance**: Release frequency, backward compatibility, long-term viability
5. **Use Cases**: When to choose one over the other

Use the compare_tech tool to gather data, then provide a clear recommendation with reasoning.

**My use case**: %s

Which one should I choose and why?`,
		tech1, tech2, useCase, useCase)
}

func renderEvaluateRepository(args map[string]string) string {
	owner, repo := args["owner"], args["repo"]
	return fmt.Sprintf(`Please evaluate the GitHub repository **%s/%s** for potential use in my project.

Analyze:

1. **Health**: Is this project actively maintained? Check recent commits, issue response time, PR activity.
2. **Quality**: Code quality indicators, test coverage, documentation quality.
3. **Community**: Number of contributors, community engagement, responsiveness to issues.
4. **Stability**: Version history, breaking changes, deprecation policy.
5. **Security**: Any known vulnerabilities? Security policy in place?
6. **License**: Is the license compatible with my use case?

Use the github://%s/%s resource to get repository information.

Provide a clear recommendation: Should I use this project? What are the risks?`,
		owner, repo, owner, repo)
}

func renderCheckServiceHealth(args map[string]string) string {
	var resourceCalls []string
	for _, svc := range strings.Split(args["services"], ",") {
		svc = strings.TrimSpace(svc)
		if svc == "" {
			continue
		}
		resourceCalls = append(resourceCalls, "- status://"+svc)
	}

	return fmt.Sprintf(`Please check the health status of the following services:

%s

For each service, report:
1. **Status**: Operational, degraded, or experiencing issues?
2. **Active Incidents**: Any ongoing problems?
3. **Recent History**: Any recent outages or maintenance?

If any services are having issues, suggest:
- Workarounds or alternatives
- Expected resolution time (if available)
- Impact on my application`,
		strings.Join(resourceCalls, "\n"))
}
