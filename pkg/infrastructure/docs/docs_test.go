package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/search"
)

type stubSearcher struct {
	hits []research.SearchHit
	err  error
	got  []string
}

func (s *stubSearcher) Search(_ context.Context, query string, _ search.Options) ([]research.SearchHit, error) {
	s.got = append(s.got, query)
	return s.hits, s.err
}

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) FetchRaw(_ context.Context, rawURL string, _ int) (string, error) {
	if page, ok := f.pages[rawURL]; ok {
		return page, nil
	}
	return "", errors.New(errors.CodeNotFound, "webfetch", "no such page", nil)
}

func newDiscoverer(searcher Searcher, fetcher PageFetcher) *Discoverer {
	return NewDiscoverer(zerolog.Nop(), research.DefaultServerConfig(), searcher, fetcher)
}

func TestDiscoverBaseCurated(t *testing.T) {
	d := newDiscoverer(&stubSearcher{}, &stubFetcher{})

	base, err := d.DiscoverBase(context.Background(), "Stripe")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.stripe.com", base)
}

func TestDiscoverBaseSearchFallback(t *testing.T) {
	// The probe patterns all point at real TLDs, so with no reachable
	// candidates discovery lands on the search fallback.
	searcher := &stubSearcher{hits: []research.SearchHit{
		{Title: "Acme blog", URL: "https://blog.acme.example/post"},
		{Title: "Acme docs", URL: "https://developer.acme.example/reference"},
	}}
	d := newDiscoverer(searcher, &stubFetcher{})
	d.probe = nil

	// Skip probing entirely by pointing the patterns at nothing.
	base, err := d.discoverViaSearch(context.Background(), "acmeservice")
	require.NoError(t, err)
	assert.Equal(t, "https://developer.acme.example/reference", base)
	require.Len(t, searcher.got, 1)
	assert.Equal(t, "acmeservice API official documentation", searcher.got[0])
}

func TestDiscoverBaseProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newDiscoverer(&stubSearcher{}, &stubFetcher{})
	base, ok := d.probePatterns(context.Background(), []string{
		srv.URL + "/docs/%s",
	}, "acme")
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/docs/acme", base)
}

const docPage = `<html><body><main>
<p>Short.</p>
<p>The charges endpoint lets you create, retrieve, and refund payments with full control over capture timing and metadata handling.</p>
<table>
  <thead><tr><th>Parameter</th><th>Type</th><th>Description</th></tr></thead>
  <tbody>
    <tr><td>amount</td><td>integer</td><td>Amount in cents</td></tr>
    <tr><td>currency</td><td>string</td><td>Three-letter ISO code</td></tr>
  </tbody>
</table>
<pre><code class="language-python">charge = client.charges.create(amount=2000)</code></pre>
<div class="note">Amounts are always in the smallest currency unit.</div>
<a href="/docs/refunds">Refunds</a>
<a href="https://elsewhere.example/offsite">Offsite</a>
</main></body></html>`

func TestGatherTopic(t *testing.T) {
	searcher := &stubSearcher{hits: []research.SearchHit{
		{Title: "Charges", URL: "https://docs.acme.example/docs/charges"},
	}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://docs.acme.example/docs/charges": docPage,
	}}
	d := newDiscoverer(searcher, fetcher)

	doc, err := d.GatherTopic(context.Background(), "acme", "https://docs.acme.example", "charges", 3)
	require.NoError(t, err)

	assert.Equal(t, "acme", doc.APIName)
	assert.Contains(t, doc.Overview, "charges endpoint")
	assert.NotContains(t, doc.Overview, "Short")

	require.Len(t, doc.Parameters, 2)
	assert.Equal(t, "amount", doc.Parameters[0].Name)
	assert.Equal(t, "integer", doc.Parameters[0].Type)
	assert.Equal(t, "Amount in cents", doc.Parameters[0].Description)

	require.Len(t, doc.Examples, 1)
	assert.Equal(t, "python", doc.Examples[0].Language)

	require.Len(t, doc.Notes, 1)
	assert.Contains(t, doc.Notes[0], "smallest currency unit")

	require.Len(t, doc.RelatedLinks, 1)
	assert.Equal(t, "https://docs.acme.example/docs/refunds", doc.RelatedLinks[0].URL)

	assert.Equal(t, []string{"https://docs.acme.example/docs/charges"}, doc.Sources)
	require.Len(t, searcher.got, 1)
	assert.True(t, strings.HasPrefix(searcher.got[0], "site:docs.acme.example"))
}

func TestGatherTopicFallsBackToBase(t *testing.T) {
	searcher := &stubSearcher{err: errors.New(errors.CodeUpstreamUnavailable, "search", "down", nil)}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://docs.acme.example": docPage,
	}}
	d := newDiscoverer(searcher, fetcher)

	doc, err := d.GatherTopic(context.Background(), "acme", "https://docs.acme.example", "charges", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://docs.acme.example"}, doc.Sources)
}

func TestGatherTopicAllPagesFail(t *testing.T) {
	searcher := &stubSearcher{hits: []research.SearchHit{
		{Title: "Gone", URL: "https://docs.acme.example/gone"},
	}}
	d := newDiscoverer(searcher, &stubFetcher{})

	_, err := d.GatherTopic(context.Background(), "acme", "https://docs.acme.example", "charges", 3)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUpstreamUnavailable))
}
