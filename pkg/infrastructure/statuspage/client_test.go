package statuspage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(zerolog.Nop(), research.DefaultServerConfig())
}

func TestNormalizeServiceName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"GitHub", "github"},
		{"gh", "github"},
		{"Claude API", "anthropic"},
		{"anthropic claude api", "anthropic"},
		{"Google Cloud Platform", "gcp"},
		{"fal.ai", "fal"},
		{"Eleven Labs", "elevenlabs"},
		{"stripe status", "stripe"},
		{"some-new-service", "somenewservice"},
		{"postgres", "postgresql"},
		{"example.com", "example"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeServiceName(tt.input))
		})
	}
}

func TestFindStatusPage(t *testing.T) {
	base, candidates := FindStatusPage("github")
	assert.Equal(t, "https://www.githubstatus.com", base)
	assert.Empty(t, candidates)

	base, candidates = FindStatusPage("unknownservice")
	assert.Empty(t, base)
	require.Len(t, candidates, 5)
	assert.Equal(t, "https://status.unknownservice.com", candidates[0])
	assert.Equal(t, "https://unknownservice.statuspage.io", candidates[1])
	assert.Equal(t, "https://unknownservice.com/status", candidates[2])
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		text string
		want research.ServiceState
	}{
		{"All Systems Operational", research.StateOperational},
		{"No active incidents", research.StateOperational},
		{"Degraded performance on API", research.StateDegraded},
		{"Investigating elevated error rates", research.StateDegraded},
		{"Partial outage", research.StatePartialOutage},
		{"Major outage across regions", research.StateMajorOutage},
		{"Scheduled maintenance window", research.StateMaintenance},
		{"lorem ipsum", research.StateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeState(tt.text))
		})
	}
}

func TestCheckStatuspageAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/status.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": map[string]string{"indicator": "minor", "description": "Partially degraded service"},
		})
	})
	mux.HandleFunc("/api/v2/incidents/unresolved.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"incidents": []map[string]interface{}{
				{
					"name":       "Elevated API error rates",
					"status":     "investigating",
					"impact":     "minor",
					"created_at": "2025-06-01T10:00:00Z",
					"incident_updates": []map[string]string{
						{"body": "We are investigating elevated error rates."},
					},
				},
			},
		})
	})
	mux.HandleFunc("/api/v2/components.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"components": []map[string]string{
				{"name": "Website", "status": "operational"},
				{"name": "API", "status": "degraded_performance"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t)
	status := &research.ServiceStatus{
		Service:          "example",
		Status:           research.StateUnknown,
		CurrentIncidents: []research.ServiceIncident{},
	}
	require.True(t, c.checkStatuspageAPI(context.Background(), srv.URL, status))

	assert.Equal(t, research.StateDegraded, status.Status)
	require.Len(t, status.CurrentIncidents, 1)
	assert.Equal(t, "Elevated API error rates", status.CurrentIncidents[0].Title)
	assert.Equal(t, "We are investigating elevated error rates.", status.CurrentIncidents[0].Summary)

	// Non-operational components sort first.
	require.Len(t, status.Components, 2)
	assert.Equal(t, "API", status.Components[0].Name)
	assert.Equal(t, research.StateDegraded, status.Components[0].Status)
}

func TestCheckStatuspageAPIMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t)
	status := &research.ServiceStatus{Status: research.StateUnknown}
	assert.False(t, c.checkStatuspageAPI(context.Background(), srv.URL, status))
}

func TestFetchIncidentHistoryWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	research.NowUTC = func() time.Time { return now }
	t.Cleanup(func() { research.NowUTC = func() time.Time { return time.Now().UTC() } })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/incidents.json", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"incidents": []map[string]interface{}{
				{"name": "Recent", "status": "resolved", "resolved_at": "2025-06-08T00:00:00Z"},
				{"name": "Old", "status": "resolved", "resolved_at": "2025-05-01T00:00:00Z"},
				{"name": "Ongoing", "status": "investigating"},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t)
	history := c.fetchIncidentHistory(context.Background(), srv.URL, 7)
	require.Len(t, history, 1)
	assert.Equal(t, "Recent", history[0].Title)
}

func TestCheckHTML(t *testing.T) {
	page := `<html><body>
		<div class="page-status status-none"><span>All Systems Operational</span></div>
		` + filler() + `
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c := newTestClient(t)
	status := &research.ServiceStatus{Status: research.StateUnknown}
	require.True(t, c.checkHTML(context.Background(), srv.URL, status))
	assert.Equal(t, research.StateOperational, status.Status)
}

func TestCheckHTMLWithIncidents(t *testing.T) {
	page := `<html><body>
		<div class="status-banner">Investigating connectivity issues</div>
		<div class="incident-item"><h3 class="incident-title">Database connectivity degraded</h3></div>
		` + filler() + `
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c := newTestClient(t)
	status := &research.ServiceStatus{Status: research.StateUnknown}
	require.True(t, c.checkHTML(context.Background(), srv.URL, status))

	assert.Equal(t, research.StateDegraded, status.Status)
	require.Len(t, status.CurrentIncidents, 1)
	assert.Equal(t, "Database connectivity degraded", status.CurrentIncidents[0].Title)
}

// filler pads test pages past the minimum-size gate for HTML parsing.
func filler() string {
	s := "<!-- "
	for i := 0; i < 20; i++ {
		s += "padding "
	}
	return s + " -->"
}
