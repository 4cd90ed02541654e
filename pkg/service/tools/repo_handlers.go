package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/github"
)

const recentCommitCount = 3

func handleGithubRepo(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args githubRepoArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"repo":            args.Repo,
		"include_commits": args.includeCommits(),
	}

	owner, repoName, err := github.ParseRepoInput(args.Repo)
	if err != nil {
		return "", params, err
	}

	info, err := s.github.GetRepoInfo(ctx, owner, repoName)
	if err != nil {
		// Repo client errors carry the suggestion text.
		return friendly(err), params, err
	}

	var commits []research.Commit
	if args.includeCommits() {
		// Commit failures never fail the whole call.
		commits, err = s.github.GetRecentCommits(ctx, owner, repoName, recentCommitCount)
		if err != nil {
			s.logger.Debug().Str("repo", info.FullName).Err(err).Msg("Commit fetch failed")
			commits = nil
		}
	}
	return formatRepoInfo(info, commits), params, nil
}

func formatRepoInfo(info *research.RepoInfo, commits []research.Commit) string {
	header := info.FullName
	if info.Description != "" {
		header += " - " + info.Description
	}
	lines := []string{
		header,
		strings.Repeat("─", 50),
		fmt.Sprintf("⭐ %s | 🍴 %s | 👁️ %s",
			textutil.FormatCount(int64(info.Stars)),
			textutil.FormatCount(int64(info.Forks)),
			textutil.FormatCount(int64(info.Watchers))),
	}
	if info.Language != "" {
		lines = append(lines, "Language: "+info.Language)
	}
	if info.License != "" {
		lines = append(lines, "License: "+info.License)
	}
	lines = append(lines, "Updated "+textutil.FormatTimeAgo(info.LastUpdated))

	issueLine := fmt.Sprintf("Open Issues: %d", info.OpenIssues)
	if info.OpenPRs != nil {
		issueLine += fmt.Sprintf(" | Open PRs: %d", *info.OpenPRs)
	}
	lines = append(lines, issueLine)

	if info.Archived {
		lines = append(lines, "⚠️ This repository is archived (read-only)")
	}
	if len(info.Topics) > 0 {
		topics := info.Topics
		if len(topics) > 5 {
			topics = topics[:5]
		}
		lines = append(lines, "Topics: "+strings.Join(topics, ", "))
	}
	if info.Homepage != "" {
		lines = append(lines, "", "Homepage: "+info.Homepage)
	}
	if len(commits) > 0 {
		lines = append(lines, "", "Recent Commits:")
		for _, commit := range commits {
			lines = append(lines, fmt.Sprintf("- [%s] %s (%s)", commit.Date, commit.Message, commit.Author))
		}
	}
	return strings.Join(lines, "\n")
}
