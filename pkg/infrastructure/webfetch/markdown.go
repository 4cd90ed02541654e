package webfetch

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
)

// Dropped wholesale before conversion; none of these carry readable
// page content.
var strippedSelectors = []string{"script", "style", "nav", "header", "footer", "aside", "noscript"}

// Content roots tried in order. The first one with substantive text
// wins; otherwise the whole body is converted.
var contentSelectors = []string{"main", "article", "[role=main]", "#content", ".content"}

const minContentRunes = 100

// htmlToMarkdown isolates the readable region of an HTML page and
// renders it as markdown. host makes relative links absolute.
func htmlToMarkdown(html, host string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.New(errors.CodeUpstreamMalformed, "webfetch", "failed to parse HTML", err)
	}

	doc.Find(strings.Join(strippedSelectors, ", ")).Remove()

	root := doc.Selection
	if body := doc.Find("body"); body.Length() > 0 {
		root = body
	}
	for _, sel := range contentSelectors {
		candidate := doc.Find(sel).First()
		if candidate.Length() == 0 {
			continue
		}
		if len([]rune(strings.TrimSpace(candidate.Text()))) >= minContentRunes {
			root = candidate
			break
		}
	}

	converter := md.NewConverter(host, true, nil)
	return strings.TrimSpace(converter.Convert(root)), nil
}
