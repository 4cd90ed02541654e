// Package extract pulls structured data out of HTML documents: tables,
// lists, selector-addressed fields, and embedded JSON-LD. All emitted
// text is sanitized so downstream JSON stays clean.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

// Modes accepted by the extractor.
const (
	ModeTable  = "table"
	ModeList   = "list"
	ModeFields = "fields"
	ModeJSONLD = "json-ld"
	ModeAuto   = "auto"
)

// ValidMode reports whether mode names a supported extraction mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeTable, ModeList, ModeFields, ModeJSONLD, ModeAuto:
		return true
	}
	return false
}

const autoSectionLimit = 3

// Extractor mines goquery documents. Stateless apart from the logger.
type Extractor struct {
	logger zerolog.Logger
}

// New builds an Extractor.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger.With().Str("component", "extract").Logger()}
}

// Parse reads raw HTML into a goquery document.
func (e *Extractor) Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.New(errors.CodeInvalidParameter, "extract", "page could not be parsed as HTML", err)
	}
	return doc, nil
}

// Tables extracts up to maxItems tables. Rows whose cell count does not
// match the header row are dropped.
func (e *Extractor) Tables(doc *goquery.Document, maxItems int) []research.TableData {
	var tables []research.TableData
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if len(tables) >= maxItems {
			return false
		}

		headers, headersFromData := tableHeaders(table)
		if len(headers) == 0 {
			return true
		}

		data := research.TableData{
			Caption: textutil.Sanitize(table.Find("caption").First().Text()),
			Headers: headers,
			Rows:    []map[string]string{},
		}

		table.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
			if headersFromData && rowIdx == 0 {
				return
			}
			cells := tr.Find("td")
			if cells.Length() != len(headers) {
				return
			}
			row := make(map[string]string, len(headers))
			cells.Each(func(i int, td *goquery.Selection) {
				row[headers[i]] = textutil.Sanitize(td.Text())
			})
			data.Rows = append(data.Rows, row)
		})

		tables = append(tables, data)
		return true
	})
	return tables
}

// tableHeaders finds the header cells. fromData reports that the
// headers were lifted from the first data row, which must then be
// excluded from the row scan.
func tableHeaders(table *goquery.Selection) (headers []string, fromData bool) {
	collect := func(sel *goquery.Selection) {
		sel.Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, textutil.Sanitize(cell.Text()))
		})
	}

	if thead := table.Find("thead th"); thead.Length() > 0 {
		collect(thead)
		return headers, false
	}
	firstRow := table.Find("tr").First()
	if th := firstRow.Find("th"); th.Length() > 0 {
		collect(th)
		return headers, false
	}
	collect(firstRow.Find("td"))
	return headers, true
}

// Lists extracts up to maxItems lists from ul, ol, and dl elements.
// The title comes from the nearest preceding heading.
func (e *Extractor) Lists(doc *goquery.Document, maxItems int) []research.ListData {
	var lists []research.ListData
	doc.Find("ul, ol, dl").EachWithBreak(func(_ int, list *goquery.Selection) bool {
		if len(lists) >= maxItems {
			return false
		}
		// Nested lists are reported through their parent.
		if list.ParentsFiltered("ul, ol, dl").Length() > 0 {
			return true
		}

		data := research.ListData{
			Title: precedingHeading(list),
			Items: []string{},
		}

		if goquery.NodeName(list) == "dl" {
			list.Find("dt").Each(func(_ int, dt *goquery.Selection) {
				term := textutil.Sanitize(dt.Text())
				def := textutil.Sanitize(dt.NextFiltered("dd").Text())
				if term == "" {
					return
				}
				if def != "" {
					data.Items = append(data.Items, term+": "+def)
				} else {
					data.Items = append(data.Items, term)
				}
			})
		} else {
			list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				if li.Find("ul, ol").Length() > 0 {
					data.Nested = true
				}
				if text := textutil.Sanitize(li.Text()); text != "" {
					data.Items = append(data.Items, text)
				}
			})
		}

		if len(data.Items) > 0 {
			lists = append(lists, data)
		}
		return true
	})
	return lists
}

func precedingHeading(sel *goquery.Selection) string {
	for prev := sel.Prev(); prev.Length() > 0; prev = prev.Prev() {
		switch goquery.NodeName(prev) {
		case "h1", "h2", "h3", "h4":
			return textutil.Sanitize(prev.Text())
		}
	}
	return ""
}

// Fields resolves named CSS selectors against the document. A selector
// with one match yields a string, several matches a string slice, and
// no matches is omitted from the result.
func (e *Extractor) Fields(doc *goquery.Document, selectors map[string]string) map[string]interface{} {
	result := make(map[string]interface{}, len(selectors))
	for name, selector := range selectors {
		matches := doc.Find(selector)
		switch matches.Length() {
		case 0:
		case 1:
			result[name] = textutil.Sanitize(matches.Text())
		default:
			values := make([]string, 0, matches.Length())
			matches.Each(func(_ int, m *goquery.Selection) {
				values = append(values, textutil.Sanitize(m.Text()))
			})
			result[name] = values
		}
	}
	return result
}

// JSONLD decodes every application/ld+json script block. Malformed
// blocks are skipped.
func (e *Extractor) JSONLD(doc *goquery.Document) []interface{} {
	var blocks []interface{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		var v interface{}
		if err := json.Unmarshal([]byte(script.Text()), &v); err != nil {
			e.logger.Debug().Err(err).Msg("skipping malformed JSON-LD block")
			return
		}
		blocks = append(blocks, v)
	})
	return blocks
}

// Auto combines JSON-LD with the first few tables and lists.
func (e *Extractor) Auto(doc *goquery.Document, maxItems int) map[string]interface{} {
	limit := autoSectionLimit
	if maxItems < limit {
		limit = maxItems
	}

	result := map[string]interface{}{}
	if blocks := e.JSONLD(doc); len(blocks) > 0 {
		result["json_ld"] = blocks
	}
	if tables := e.Tables(doc, limit); len(tables) > 0 {
		result["tables"] = tables
	}
	if lists := e.Lists(doc, limit); len(lists) > 0 {
		result["lists"] = lists
	}
	return result
}
