// Package statuspage resolves a service name to its status page and
// reads the current health from it. Three strategies run in order:
// the Statuspage.io JSON API, an HTML keyword parse, and a plain
// reachability probe.
package statuspage

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/core/textutil"
	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
	"github.com/searxng-tools/web-research-assist/pkg/infrastructure/httpx"
)

const (
	checkTimeout = 10 * time.Second
	probeTimeout = 5 * time.Second

	maxComponents = 10
	maxIncidents  = 3
	maxHTMLBytes  = 200_000
)

// Client checks service health via public status pages.
type Client struct {
	logger zerolog.Logger
	http   *httpx.Client
	probe  *httpx.Client
}

// NewClient builds a status client. The probe client carries a shorter
// timeout since HEAD candidates are tried in sequence.
func NewClient(logger zerolog.Logger, cfg *research.ServerConfig) *Client {
	return &Client{
		logger: logger.With().Str("component", "statuspage").Logger(),
		http: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(checkTimeout),
			httpx.WithRateLimit(2, 5)),
		probe: httpx.New(logger, cfg.UserAgent,
			httpx.WithTimeout(probeTimeout),
			httpx.WithRetries(1)),
	}
}

// Check resolves the status page for service and reads its health.
// includeHistory adds resolved incidents from the last days days when
// the Statuspage JSON API is available.
func (c *Client) Check(ctx context.Context, service string, includeHistory bool, days int) (*research.ServiceStatus, error) {
	base, candidates := FindStatusPage(service)
	if base == "" {
		base = c.probeCandidates(ctx, candidates)
	}
	if base == "" {
		normalized := NormalizeServiceName(service)
		return nil, errors.New(errors.CodeNotFound, "statuspage",
			fmt.Sprintf("could not find a status page for %q: try %s.com/status or search for '%s status page'",
				service, normalized, service), nil)
	}

	status := &research.ServiceStatus{
		Service:          service,
		Status:           research.StateUnknown,
		StatusPageURL:    base,
		CheckedAt:        research.NowUTC().Format(time.RFC3339),
		CurrentIncidents: []research.ServiceIncident{},
	}

	if c.checkStatuspageAPI(ctx, base, status) {
		if includeHistory {
			status.RecentIncidents = c.fetchIncidentHistory(ctx, base, days)
		}
		return status, nil
	}
	if c.checkHTML(ctx, base, status) {
		return status, nil
	}

	// Reachability only: the page exists but needs JavaScript to render.
	if resp, err := c.probe.Head(ctx, base); err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode < 400 {
			return status, nil
		}
		return nil, errors.New(errors.CodeUpstreamUnavailable, "statuspage",
			fmt.Sprintf("status page %s returned HTTP %d", base, resp.StatusCode), nil)
	}
	return nil, errors.New(errors.CodeUpstreamUnavailable, "statuspage",
		fmt.Sprintf("status page %s is unreachable", base), nil)
}

func (c *Client) probeCandidates(ctx context.Context, candidates []string) string {
	for _, candidate := range candidates {
		resp, err := c.probe.Head(ctx, candidate)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode < 400 {
			c.logger.Debug().Str("url", candidate).Msg("status page candidate responded")
			return candidate
		}
	}
	return ""
}

var indicatorStates = map[string]research.ServiceState{
	"none":        research.StateOperational,
	"minor":       research.StateDegraded,
	"major":       research.StatePartialOutage,
	"critical":    research.StateMajorOutage,
	"maintenance": research.StateMaintenance,
}

// checkStatuspageAPI reads the standard Statuspage.io JSON endpoints.
// Returns false when the page does not expose them.
func (c *Client) checkStatuspageAPI(ctx context.Context, base string, status *research.ServiceStatus) bool {
	root := strings.TrimRight(base, "/")

	var statusDoc struct {
		Status struct {
			Indicator   string `json:"indicator"`
			Description string `json:"description"`
		} `json:"status"`
	}
	if err := c.http.GetJSON(ctx, root+"/api/v2/status.json", nil, &statusDoc); err != nil {
		return false
	}

	state, ok := indicatorStates[statusDoc.Status.Indicator]
	if !ok {
		state = research.StateUnknown
	}
	status.Status = state

	var incidentsDoc struct {
		Incidents []statuspageIncident `json:"incidents"`
	}
	if err := c.http.GetJSON(ctx, root+"/api/v2/incidents/unresolved.json", nil, &incidentsDoc); err == nil {
		for _, inc := range incidentsDoc.Incidents {
			if len(status.CurrentIncidents) >= maxIncidents {
				break
			}
			status.CurrentIncidents = append(status.CurrentIncidents, inc.toRecord())
		}
	}

	var componentsDoc struct {
		Components []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"components"`
	}
	if err := c.http.GetJSON(ctx, root+"/api/v2/components.json", nil, &componentsDoc); err == nil {
		for _, comp := range componentsDoc.Components {
			state := research.ServiceState(comp.Status)
			switch state {
			case research.StateOperational, research.StateDegraded, research.StatePartialOutage,
				research.StateMajorOutage, research.StateMaintenance:
			default:
				state = research.StateUnknown
			}
			status.Components = append(status.Components, research.ServiceComponent{
				Name:   comp.Name,
				Status: state,
			})
		}
		// Degraded components first so truncation keeps the interesting ones.
		sort.SliceStable(status.Components, func(i, j int) bool {
			return status.Components[i].Status != research.StateOperational &&
				status.Components[j].Status == research.StateOperational
		})
		if len(status.Components) > maxComponents {
			status.Components = status.Components[:maxComponents]
		}
	}

	return true
}

type statuspageIncident struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Impact     string `json:"impact"`
	CreatedAt  string `json:"created_at"`
	ResolvedAt string `json:"resolved_at"`
	Updates    []struct {
		Body string `json:"body"`
	} `json:"incident_updates"`
}

func (i statuspageIncident) toRecord() research.ServiceIncident {
	rec := research.ServiceIncident{
		Title:      i.Name,
		Status:     i.Status,
		Impact:     i.Impact,
		StartedAt:  i.CreatedAt,
		ResolvedAt: i.ResolvedAt,
	}
	if len(i.Updates) > 0 {
		rec.Summary = textutil.Truncate(textutil.Sanitize(i.Updates[0].Body), 200)
	}
	return rec
}

// fetchIncidentHistory returns resolved incidents from the last days
// days, best-effort.
func (c *Client) fetchIncidentHistory(ctx context.Context, base string, days int) []research.ServiceIncident {
	root := strings.TrimRight(base, "/")
	var doc struct {
		Incidents []statuspageIncident `json:"incidents"`
	}
	if err := c.http.GetJSON(ctx, root+"/api/v2/incidents.json", nil, &doc); err != nil {
		c.logger.Debug().Str("url", root).Err(err).Msg("incident history unavailable")
		return nil
	}

	cutoff := research.NowUTC().AddDate(0, 0, -days)
	var history []research.ServiceIncident
	for _, inc := range doc.Incidents {
		if inc.ResolvedAt == "" {
			continue
		}
		resolved, err := textutil.ParseISOTime(inc.ResolvedAt)
		if err != nil || resolved.Before(cutoff) {
			continue
		}
		history = append(history, inc.toRecord())
	}
	return history
}

// checkHTML parses the status page markup for health keywords.
// Returns false when the page cannot be fetched or yields no reading.
func (c *Client) checkHTML(ctx context.Context, base string, status *research.ServiceStatus) bool {
	resp, err := c.http.Get(ctx, base, nil)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := httpx.ReadBody(resp.Body, maxHTMLBytes)
	if err != nil || len(body) < 100 {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return false
	}

	// Banner elements whose class mentions "status" usually carry the
	// overall reading.
	doc.Find(`[class*="status"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if state := NormalizeState(sel.Text()); state != research.StateUnknown {
			status.Status = state
			return false
		}
		return true
	})

	if status.Status == research.StateUnknown {
		status.Status = NormalizeState(string(body))
	}

	doc.Find(`[class*="incident"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := sel.Find(`[class*="title"], [class*="name"], h3, h4`).First()
		text := textutil.Sanitize(title.Text())
		if text != "" {
			status.CurrentIncidents = append(status.CurrentIncidents, research.ServiceIncident{Title: text})
		}
		return len(status.CurrentIncidents) < maxIncidents
	})

	return status.Status != research.StateUnknown
}

// NormalizeState buckets free-form status text into the closed state
// set. Keyword order matters: the calmer readings win ties the way
// status banners phrase them.
func NormalizeState(text string) research.ServiceState {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "all systems operational", "all systems normal", "fully operational",
		"no active incidents", "no incidents", "operational"):
		return research.StateOperational
	case containsAny(lower, "degraded", "investigating", "identified", "slow", "performance issues"):
		return research.StateDegraded
	case containsAny(lower, "partial", "some systems", "limited"):
		return research.StatePartialOutage
	case containsAny(lower, "major outage", "major", "outage", "offline", "down"):
		return research.StateMajorOutage
	case strings.Contains(lower, "maintenance"):
		return research.StateMaintenance
	default:
		return research.StateUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
