package docs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/webfetch"
)

const (
	// MaxTopicPages bounds how many documentation pages one call mines.
	MaxTopicPages = 3

	minOverviewChars = 80
	maxParameters    = 20
	maxExamples      = 5
	maxNotes         = 5
	maxRelatedLinks  = 10
)

// GatherTopic finds the pages on the documentation site covering topic
// and merges what they say into one APIDoc. Pages are fetched in
// parallel under the caller's deadline; individual page failures are
// logged and skipped.
func (d *Discoverer) GatherTopic(ctx context.Context, apiName, base, topic string, maxPages int) (*research.APIDoc, error) {
	if maxPages < 1 || maxPages > MaxTopicPages {
		maxPages = MaxTopicPages
	}

	host := docsHost(base)
	query := fmt.Sprintf("site:%s %s %s", host, apiName, topic)
	hits, err := d.searcher.Search(ctx, query, search.Options{
		Category:   "it",
		MaxResults: maxPages,
	})
	if err != nil {
		d.logger.Debug().Str("query", query).Err(err).Msg("site search failed, mining the base page")
	}

	pageURLs := make([]string, 0, maxPages)
	for _, hit := range hits {
		if len(pageURLs) >= maxPages {
			break
		}
		pageURLs = append(pageURLs, hit.URL)
	}
	if len(pageURLs) == 0 {
		pageURLs = []string{base}
	}

	result := &research.APIDoc{
		APIName:     apiName,
		Topic:       topic,
		DocsBaseURL: base,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPages)
	for _, pageURL := range pageURLs {
		pageURL := pageURL
		g.Go(func() error {
			html, err := d.fetcher.FetchRaw(gctx, pageURL, webfetch.DefaultRawChars)
			if err != nil {
				d.logger.Debug().Str("url", pageURL).Err(err).Msg("doc page fetch failed")
				return nil
			}
			mined, err := minePage(html, pageURL, host)
			if err != nil {
				d.logger.Debug().Str("url", pageURL).Err(err).Msg("doc page parse failed")
				return nil
			}
			mu.Lock()
			mergeDoc(result, mined)
			result.Sources = append(result.Sources, pageURL)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(result.Sources) == 0 {
		return nil, errors.New(errors.CodeUpstreamUnavailable, "docs",
			fmt.Sprintf("no documentation pages for %q topic %q could be fetched", apiName, topic), nil)
	}
	return result, nil
}

// minedPage is the per-page extraction before merging.
type minedPage struct {
	overview   string
	parameters []research.APIDocParameter
	examples   []research.APIDocExample
	notes      []string
	links      []research.APIDocLink
}

func minePage(html, pageURL, host string) (*minedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	page := &minedPage{}

	// Overview: the first substantial paragraph in the main content area.
	content := doc.Find("main, article, .content, .markdown-body").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := textutil.Sanitize(p.Text())
		if len([]rune(text)) >= minOverviewChars {
			page.overview = text
			return false
		}
		return true
	})

	page.parameters = mineParameters(content)
	page.examples = mineExamples(content)
	page.notes = mineNotes(content)
	page.links = mineLinks(doc, pageURL, host)

	return page, nil
}

// mineParameters reads name/type/description triples from parameter
// tables or definition lists.
func mineParameters(content *goquery.Selection) []research.APIDocParameter {
	var params []research.APIDocParameter

	content.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers := []string{}
		table.Find("thead th, tr:first-child th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.ToLower(textutil.Sanitize(th.Text())))
		})
		nameIdx, typeIdx, descIdx := columnIndexes(headers)
		if nameIdx < 0 {
			return
		}
		table.Find("tbody tr, tr").Each(func(_ int, tr *goquery.Selection) {
			if len(params) >= maxParameters {
				return
			}
			cells := tr.Find("td")
			if cells.Length() <= nameIdx {
				return
			}
			param := research.APIDocParameter{
				Name: textutil.Sanitize(cells.Eq(nameIdx).Text()),
			}
			if param.Name == "" {
				return
			}
			if typeIdx >= 0 && cells.Length() > typeIdx {
				param.Type = textutil.Sanitize(cells.Eq(typeIdx).Text())
			}
			if descIdx >= 0 && cells.Length() > descIdx {
				param.Description = textutil.Sanitize(cells.Eq(descIdx).Text())
			}
			params = append(params, param)
		})
	})

	if len(params) == 0 {
		content.Find("dl").Each(func(_ int, dl *goquery.Selection) {
			dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
				if len(params) >= maxParameters {
					return
				}
				name := textutil.Sanitize(dt.Text())
				if name == "" {
					return
				}
				params = append(params, research.APIDocParameter{
					Name:        name,
					Description: textutil.Sanitize(dt.NextFiltered("dd").Text()),
				})
			})
		})
	}

	return params
}

func columnIndexes(headers []string) (name, typ, desc int) {
	name, typ, desc = -1, -1, -1
	for i, h := range headers {
		switch {
		case name < 0 && (strings.Contains(h, "name") || strings.Contains(h, "parameter") || strings.Contains(h, "field")):
			name = i
		case typ < 0 && strings.Contains(h, "type"):
			typ = i
		case desc < 0 && strings.Contains(h, "desc"):
			desc = i
		}
	}
	return name, typ, desc
}

// mineExamples collects fenced code blocks with their language tags.
func mineExamples(content *goquery.Selection) []research.APIDocExample {
	var examples []research.APIDocExample
	content.Find("pre code").EachWithBreak(func(_ int, code *goquery.Selection) bool {
		text := strings.TrimSpace(code.Text())
		if text == "" {
			return true
		}
		lang := ""
		if class, ok := code.Attr("class"); ok {
			for _, token := range strings.Fields(class) {
				if strings.HasPrefix(token, "language-") {
					lang = strings.TrimPrefix(token, "language-")
					break
				}
			}
		}
		examples = append(examples, research.APIDocExample{Language: lang, Code: text})
		return len(examples) < maxExamples
	})
	return examples
}

func mineNotes(content *goquery.Selection) []string {
	var notes []string
	content.Find(".warning, .note, .tip, .admonition, blockquote").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := textutil.Sanitize(sel.Text()); text != "" {
			notes = append(notes, text)
		}
		return len(notes) < maxNotes
	})
	return notes
}

// mineLinks keeps in-page anchors that stay on the documentation host,
// resolved to absolute URLs.
func mineLinks(doc *goquery.Document, pageURL, host string) []research.APIDocLink {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var links []research.APIDocLink
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		title := textutil.Sanitize(a.Text())
		if title == "" || strings.HasPrefix(href, "#") {
			return true
		}
		resolved, err := base.Parse(href)
		if err != nil || resolved.Hostname() != host || seen[resolved.String()] {
			return true
		}
		seen[resolved.String()] = true
		links = append(links, research.APIDocLink{Title: title, URL: resolved.String()})
		return len(links) < maxRelatedLinks
	})
	return links
}

func mergeDoc(dst *research.APIDoc, page *minedPage) {
	if dst.Overview == "" {
		dst.Overview = page.overview
	}
	for _, p := range page.parameters {
		if len(dst.Parameters) >= maxParameters {
			break
		}
		dst.Parameters = append(dst.Parameters, p)
	}
	for _, ex := range page.examples {
		if len(dst.Examples) >= maxExamples {
			break
		}
		dst.Examples = append(dst.Examples, ex)
	}
	for _, n := range page.notes {
		if len(dst.Notes) >= maxNotes {
			break
		}
		dst.Notes = append(dst.Notes, n)
	}
	for _, l := range page.links {
		if len(dst.RelatedLinks) >= maxRelatedLinks {
			break
		}
		dst.RelatedLinks = append(dst.RelatedLinks, l)
	}
}
