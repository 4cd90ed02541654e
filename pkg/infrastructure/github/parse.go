package github

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
)

var (
	repoURLPattern  = regexp.MustCompile(`https?://(?:www\.)?github\.com/([a-zA-Z0-9_.-]+)/([a-zA-Z0-9_.-]+?)(?:\.git|/.*)?$`)
	repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// Site sections that look like owner/repo paths but are not repositories.
var nonRepoOwners = map[string]bool{
	"search":        true,
	"explore":       true,
	"topics":        true,
	"trending":      true,
	"settings":      true,
	"notifications": true,
	"new":           true,
	"organizations": true,
	"marketplace":   true,
}

// ParseRepoInput normalizes an accepted repository reference to an
// owner/repo pair. Accepts "owner/repo" or a github.com URL (with or
// without a .git suffix); anything else is rejected.
func ParseRepoInput(input string) (owner, repo string, err error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", "", errors.New(errors.CodeInvalidParameter, "github", "repository reference is empty", nil)
	}

	if strings.Contains(trimmed, "github.com") {
		m := repoURLPattern.FindStringSubmatch(trimmed)
		if m == nil || nonRepoOwners[strings.ToLower(m[1])] {
			return "", "", errors.New(errors.CodeInvalidParameter, "github",
				fmt.Sprintf("%q is not a repository URL: expected https://github.com/owner/repo", trimmed), nil)
		}
		return m[1], strings.TrimSuffix(m[2], ".git"), nil
	}

	if strings.Contains(trimmed, "/") {
		parts := strings.SplitN(trimmed, "/", 2)
		owner, repo = parts[0], parts[1]
		if !repoNamePattern.MatchString(owner) || !repoNamePattern.MatchString(repo) {
			return "", "", errors.New(errors.CodeInvalidParameter, "github",
				fmt.Sprintf("%q is not a valid owner/repo reference", trimmed), nil)
		}
		return owner, repo, nil
	}

	return "", "", errors.New(errors.CodeInvalidParameter, "github",
		fmt.Sprintf("%q is not a repository reference: expected 'owner/repo' or a full GitHub URL", trimmed), nil)
}
