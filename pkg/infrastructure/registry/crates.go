package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

type cratePayload struct {
	Name        string `json:"name"`
	MaxVersion  string `json:"max_version"`
	Downloads   int64  `json:"downloads"`
	UpdatedAt   string `json:"updated_at"`
	Repository  string `json:"repository"`
	Homepage    string `json:"homepage"`
	Description string `json:"description"`
}

func (c *Client) cratesInfo(ctx context.Context, name string) (*research.PackageInfo, error) {
	reqURL := c.cratesBase + "/" + url.PathEscape(name)

	var doc struct {
		Crate    cratePayload `json:"crate"`
		Versions []struct {
			License string `json:"license"`
		} `json:"versions"`
	}
	if err := c.http.GetJSON(ctx, reqURL, nil, &doc); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return nil, c.notFound(name, research.RegistryCrates)
		}
		return nil, err
	}

	info := crateToPackage(doc.Crate)
	if len(doc.Versions) > 0 {
		info.License = doc.Versions[0].License
	}
	return &info, nil
}

func (c *Client) cratesSearch(ctx context.Context, query string, limit int) ([]research.PackageInfo, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", fmt.Sprintf("%d", limit))
	reqURL := c.cratesBase + "?" + params.Encode()

	var payload struct {
		Crates []cratePayload `json:"crates"`
	}
	if err := c.http.GetJSON(ctx, reqURL, nil, &payload); err != nil {
		return nil, err
	}

	packages := make([]research.PackageInfo, 0, len(payload.Crates))
	for _, cr := range payload.Crates {
		packages = append(packages, crateToPackage(cr))
	}
	return packages, nil
}

func crateToPackage(cr cratePayload) research.PackageInfo {
	info := research.PackageInfo{
		Name:        cr.Name,
		Registry:    research.RegistryCrates,
		Version:     cr.MaxVersion,
		Description: cr.Description,
		LastUpdated: cr.UpdatedAt,
		Repository:  cr.Repository,
		Homepage:    cr.Homepage,
	}
	if cr.Downloads > 0 {
		info.Downloads = textutil.FormatCount(cr.Downloads)
	}
	return info
}
