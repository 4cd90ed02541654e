package registry

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

const maxLicenseChars = 100

func (c *Client) pypiInfo(ctx context.Context, name string) (*research.PackageInfo, error) {
	reqURL := c.pypiBase + "/pypi/" + url.PathEscape(name) + "/json"

	var doc struct {
		Info struct {
			Name         string            `json:"name"`
			Version      string            `json:"version"`
			Summary      string            `json:"summary"`
			License      string            `json:"license"`
			HomePage     string            `json:"home_page"`
			ProjectURLs  map[string]string `json:"project_urls"`
			RequiresDist []string          `json:"requires_dist"`
		} `json:"info"`
		URLs []struct {
			UploadTime string `json:"upload_time_iso_8601"`
		} `json:"urls"`
	}
	if err := c.http.GetJSON(ctx, reqURL, nil, &doc); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return nil, c.notFound(name, research.RegistryPyPI)
		}
		return nil, err
	}

	// project_urls is frequently null; a nil map reads as empty.
	urls := doc.Info.ProjectURLs
	repository := urls["Source"]
	if repository == "" {
		repository = urls["Repository"]
	}
	if repository == "" {
		repository = urls["Homepage"]
	}

	homepage := doc.Info.HomePage
	if homepage == "" {
		homepage = urls["Homepage"]
	}

	info := &research.PackageInfo{
		Name:        doc.Info.Name,
		Registry:    research.RegistryPyPI,
		Version:     doc.Info.Version,
		Description: doc.Info.Summary,
		License:     textutil.Truncate(strings.TrimSpace(doc.Info.License), maxLicenseChars),
		Repository:  repository,
		Homepage:    homepage,
	}
	if len(doc.URLs) > 0 {
		info.LastUpdated = doc.URLs[0].UploadTime
	}
	if doc.Info.RequiresDist != nil {
		n := len(doc.Info.RequiresDist)
		info.DependenciesCount = &n
	}
	return info, nil
}

// candidatePyPIName guesses the PyPI package name behind a repository:
// the repo part of owner/repo, lowercased, underscores flattened.
func candidatePyPIName(fullName string) string {
	name := fullName
	if idx := strings.LastIndex(fullName, "/"); idx >= 0 {
		name = fullName[idx+1:]
	}
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}
