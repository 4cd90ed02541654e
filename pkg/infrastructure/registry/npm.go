package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

type npmDoc struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	DistTags    map[string]string `json:"dist-tags"`
	Time        map[string]string `json:"time"`
	License     json.RawMessage   `json:"license"`
	Homepage    string            `json:"homepage"`
	Repository  json.RawMessage   `json:"repository"`
	Versions    map[string]struct {
		Dependencies map[string]string `json:"dependencies"`
	} `json:"versions"`
}

func (c *Client) npmInfo(ctx context.Context, name string) (*research.PackageInfo, error) {
	reqURL := c.npmBase + "/" + url.PathEscape(name)

	var doc npmDoc
	if err := c.http.GetJSON(ctx, reqURL, nil, &doc); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return nil, c.notFound(name, research.RegistryNPM)
		}
		return nil, err
	}

	latest := doc.DistTags["latest"]
	info := &research.PackageInfo{
		Name:        doc.Name,
		Registry:    research.RegistryNPM,
		Version:     latest,
		Description: doc.Description,
		License:     stringOrField(doc.License, "type"),
		LastUpdated: doc.Time[latest],
		Repository:  cleanRepoURL(stringOrField(doc.Repository, "url")),
		Homepage:    doc.Homepage,
	}
	if v, ok := doc.Versions[latest]; ok {
		n := len(v.Dependencies)
		info.DependenciesCount = &n
	}

	// Weekly downloads come from a separate endpoint; failures there
	// should not sink the whole lookup.
	if downloads, err := c.npmDownloads(ctx, name); err == nil && downloads > 0 {
		info.Downloads = textutil.FormatCount(downloads)
	} else if err != nil {
		c.logger.Debug().Str("package", name).Err(err).Msg("npm downloads lookup failed")
	}

	return info, nil
}

func (c *Client) npmDownloads(ctx context.Context, name string) (int64, error) {
	reqURL := c.npmDownloadsBase + "/downloads/point/last-week/" + url.PathEscape(name)

	var payload struct {
		Downloads int64 `json:"downloads"`
	}
	if err := c.http.GetJSON(ctx, reqURL, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Downloads, nil
}

func (c *Client) npmSearch(ctx context.Context, query string, limit int) ([]research.PackageInfo, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("size", fmt.Sprintf("%d", limit))
	reqURL := c.npmBase + "/-/v1/search?" + params.Encode()

	var payload struct {
		Objects []struct {
			Package struct {
				Name        string `json:"name"`
				Version     string `json:"version"`
				Description string `json:"description"`
				Date        string `json:"date"`
				Links       struct {
					Homepage   string `json:"homepage"`
					Repository string `json:"repository"`
				} `json:"links"`
			} `json:"package"`
		} `json:"objects"`
	}
	if err := c.http.GetJSON(ctx, reqURL, nil, &payload); err != nil {
		return nil, err
	}

	packages := make([]research.PackageInfo, 0, len(payload.Objects))
	for _, obj := range payload.Objects {
		p := obj.Package
		packages = append(packages, research.PackageInfo{
			Name:        p.Name,
			Registry:    research.RegistryNPM,
			Version:     p.Version,
			Description: p.Description,
			LastUpdated: p.Date,
			Repository:  cleanRepoURL(p.Links.Repository),
			Homepage:    p.Links.Homepage,
		})
	}
	return packages, nil
}

// stringOrField reads a JSON value that upstreams ship either as a bare
// string or as an object; field names the object key to read.
func stringOrField(raw json.RawMessage, field string) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj[field].(string); ok {
			return v
		}
	}
	return ""
}

// cleanRepoURL normalizes VCS URL forms like git+https://host/x.git to
// a plain https URL.
func cleanRepoURL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = strings.TrimSuffix(s, ".git")
	if strings.HasPrefix(s, "git://") {
		s = "https://" + strings.TrimPrefix(s, "git://")
	}
	if strings.HasPrefix(s, "ssh://git@") {
		s = "https://" + strings.TrimPrefix(s, "ssh://git@")
	}
	return s
}
