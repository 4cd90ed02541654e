package registry

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/mod/module"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

// goInfo resolves a module through the Go proxy. The proxy only knows
// versions and timestamps, so the pkg.go.dev page stands in as homepage
// and supplies the description when it parses.
func (c *Client) goInfo(ctx context.Context, modulePath string) (*research.PackageInfo, error) {
	escaped, err := module.EscapePath(modulePath)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidParameter, "registry",
			"invalid Go module path "+modulePath, err)
	}

	reqURL := c.goProxyBase + "/" + escaped + "/@latest"

	var doc struct {
		Version string `json:"Version"`
		Time    string `json:"Time"`
	}
	if err := c.http.GetJSON(ctx, reqURL, nil, &doc); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) || httpx.IsStatus(err, http.StatusGone) {
			return nil, c.notFound(modulePath, research.RegistryGo)
		}
		return nil, err
	}

	info := &research.PackageInfo{
		Name:        modulePath,
		Registry:    research.RegistryGo,
		Version:     doc.Version,
		LastUpdated: doc.Time,
		Homepage:    "https://pkg.go.dev/" + modulePath,
	}
	info.Description = c.pkgGoDevDescription(ctx, modulePath)
	return info, nil
}

// pkgGoDevDescription scrapes the module's pkg.go.dev page for its
// description meta tag. Best effort: any failure leaves the
// description empty.
func (c *Client) pkgGoDevDescription(ctx context.Context, modulePath string) string {
	resp, err := c.http.Get(ctx, c.pkgGoDevBase+"/"+modulePath, nil)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	page, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.logger.Debug().Str("module", modulePath).Err(err).Msg("Unparseable pkg.go.dev page")
		return ""
	}
	if desc, ok := page.Find(`meta[name="Description"]`).Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	if desc, ok := page.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}
