package search

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
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := research.DefaultServerConfig()
	cfg.SearxBaseURL = srv.URL + "/search"
	return NewClient(zerolog.Nop(), cfg), srv
}

func TestClient_Search(t *testing.T) {
	var gotQuery, gotCategory, gotFormat string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = q.Get("q")
		gotCategory = q.Get("categories")
		gotFormat = q.Get("format")
		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "Go Tutorial", "url": "https://go.dev/tour", "content": "Learn Go", "engine": "google", "score": 2.5},
				{"title": "Go by Example", "url": "https://gobyexample.com", "content": "Examples", "engine": "duckduckgo", "score": 1.2}
			]
		}`))
	})

	hits, err := c.Search(context.Background(), "golang tutorial", Options{MaxResults: 5})
	require.NoError(t, err)

	assert.Equal(t, "golang tutorial", gotQuery)
	assert.Equal(t, "general", gotCategory)
	assert.Equal(t, "json", gotFormat)
	require.Len(t, hits, 2)
	assert.Equal(t, "Go Tutorial", hits[0].Title)
	assert.Equal(t, "https://go.dev/tour", hits[0].URL)
	assert.Equal(t, "google", hits[0].Engine)
	assert.InDelta(t, 2.5, hits[0].Score, 0.001)
}

func TestClient_Search_PreservesRanking(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"title": "first", "url": "https://a.example"},
			{"title": "second", "url": "https://b.example"},
			{"title": "third", "url": "https://c.example"}
		]}`))
	})

	hits, err := c.Search(context.Background(), "q", Options{MaxResults: 3})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{hits[0].Title, hits[1].Title, hits[2].Title})
}

func TestClient_Search_LimitAndClamp(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString(`{"results": [`)
		for i := 0; i < 20; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`{"title": "t", "url": "https://x.example"}`)
		}
		sb.WriteString(`]}`)
		_, _ = w.Write([]byte(sb.String()))
	})

	t.Run("respects requested count", func(t *testing.T) {
		hits, err := c.Search(context.Background(), "q", Options{MaxResults: 3})
		require.NoError(t, err)
		assert.Len(t, hits, 3)
	})

	t.Run("caps at configured maximum", func(t *testing.T) {
		hits, err := c.Search(context.Background(), "q", Options{MaxResults: 100})
		require.NoError(t, err)
		assert.Len(t, hits, 10)
	})

	t.Run("floors at one", func(t *testing.T) {
		hits, err := c.Search(context.Background(), "q", Options{MaxResults: -5})
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})
}

func TestClient_Search_TitleFallbacks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"title": "", "pretty_url": "example.com/page", "url": "https://example.com/page"},
			{"title": "", "pretty_url": "", "url": "https://example.com/other"},
			{"title": "", "pretty_url": "", "url": ""}
		]}`))
	})

	hits, err := c.Search(context.Background(), "q", Options{MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "example.com/page", hits[0].Title)
	assert.Equal(t, "https://example.com/other", hits[1].Title)
	assert.Equal(t, "Untitled", hits[2].Title)
}

func TestClient_Search_SnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"title": "t", "url": "https://x.example", "content": "` + long + `"}]}`))
	})

	hits, err := c.Search(context.Background(), "q", Options{MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.LessOrEqual(t, len([]rune(hits[0].Snippet)), maxSnippetChars)
	assert.True(t, strings.HasSuffix(hits[0].Snippet, snippetSuffix))
}

func TestClient_Search_TimeRange(t *testing.T) {
	var gotTimeRange string
	var hadTimeRange bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotTimeRange = r.URL.Query().Get("time_range")
		hadTimeRange = r.URL.Query().Has("time_range")
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	_, err := c.Search(context.Background(), "q", Options{MaxResults: 5, TimeRange: "week"})
	require.NoError(t, err)
	assert.Equal(t, "week", gotTimeRange)

	_, err = c.Search(context.Background(), "q", Options{MaxResults: 5})
	require.NoError(t, err)
	assert.False(t, hadTimeRange)
}

func TestClient_Search_MissingResultsArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answers": []}`))
	})

	_, err := c.Search(context.Background(), "q", Options{MaxResults: 5})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstreamMalformed, errors.CodeOf(err))
}

func TestClient_Search_EmptyResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	hits, err := c.Search(context.Background(), "q", Options{MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestClient_Search_UpstreamDown(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "q", Options{MaxResults: 5})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstreamUnavailable, errors.CodeOf(err))
}

func TestAugmentExampleQuery(t *testing.T) {
	t.Run("code mode adds site restrictions", func(t *testing.T) {
		got := AugmentExampleQuery("rust lifetimes", "code")
		assert.Contains(t, got, "rust lifetimes")
		assert.Contains(t, got, "site:github.com")
		assert.Contains(t, got, "site:stackoverflow.com")
		assert.Contains(t, got, "site:gist.github.com")
	})

	t.Run("articles mode adds tutorial tokens", func(t *testing.T) {
		got := AugmentExampleQuery("react hooks", "articles")
		assert.Contains(t, got, "tutorial OR guide OR article OR blog OR how to OR documentation")
	})

	t.Run("both mode adds generic tokens", func(t *testing.T) {
		got := AugmentExampleQuery("go channels", "both")
		assert.Contains(t, got, "example OR tutorial OR guide")
		assert.NotContains(t, got, "site:")
	})
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/golang/go", "[GitHub] "},
		{"https://stackoverflow.com/q/123", "[Stack Overflow] "},
		{"https://medium.com/@dev/post", "[Article] "},
		{"https://dev.to/someone/post", "[Article] "},
		{"https://example.com/blog", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceLabel(tt.url))
		})
	}
}

func TestHost(t *testing.T) {
	assert.Equal(t, "stackoverflow.com", Host("https://stackoverflow.com/questions/1"))
	assert.Equal(t, "", Host("://bad"))
}
