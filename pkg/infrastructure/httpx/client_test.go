package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
)

func TestClient_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")
	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "research-test/1.0", gotUA)
}

func TestClient_ExtraHeaders(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "application/json", gotAccept)
}

func TestClient_RetriesConnectionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL
	srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0", WithRetries(2), WithTimeout(time.Second))

	start := time.Now()
	_, err := c.Get(context.Background(), dead, nil)
	require.Error(t, err)

	assert.Equal(t, errors.CodeUpstreamUnavailable, errors.CodeOf(err))
	assert.GreaterOrEqual(t, time.Since(start), retryBaseDelay)
}

func TestClient_NoRetryOnHTTPStatus(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")
	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 1, hits)
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"express","version":"4.18.2"}`))
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")

	var out struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	err := c.GetJSON(context.Background(), srv.URL, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "express", out.Name)
	assert.Equal(t, "4.18.2", out.Version)
}

func TestClient_GetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")
	err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})
	require.Error(t, err)

	assert.True(t, IsStatus(err, http.StatusNotFound))
	se, ok := AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_GetJSON_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")
	err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstreamMalformed, errors.CodeOf(err))
}

func TestClient_WithoutRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.com/moved")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0", WithoutRedirects())
	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "https://example.com/moved", resp.Header.Get("Location"))
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	c := New(zerolog.Nop(), "research-test/1.0")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Get(ctx, srv.URL, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, errors.CodeUpstreamTimeout, errors.CodeOf(err))
}

func TestBackoffDelay_Bounds(t *testing.T) {
	for attempt := 0; attempt < 6; attempt++ {
		d := backoffDelay(attempt)
		assert.LessOrEqual(t, d, retryMaxDelay)
		if expected := retryBaseDelay * (1 << attempt); expected < retryMaxDelay {
			assert.GreaterOrEqual(t, d, expected)
		}
	}
}
