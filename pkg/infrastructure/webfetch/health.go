package webfetch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// FetchStatus classifies the outcome of one fetch for health tracking.
type FetchStatus string

const (
	StatusOK          FetchStatus = "ok"
	StatusBlocked     FetchStatus = "blocked"
	StatusRateLimited FetchStatus = "rate_limited"
	StatusError       FetchStatus = "error"
)

type fetchEvent struct {
	at         time.Time
	status     FetchStatus
	httpStatus int
	elapsed    time.Duration
}

// DomainMetrics aggregates fetch outcomes for one domain inside the
// rolling window.
type DomainMetrics struct {
	Domain            string
	TotalRequests     int
	SuccessCount      int
	BlockedCount      int
	RateLimitedCount  int
	ErrorCount        int
	AvgResponseTimeMs float64
	LastStatus        FetchStatus
	LastFetchTime     string
}

// SuccessRate is the percentage of OK fetches.
func (m DomainMetrics) SuccessRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.SuccessCount) / float64(m.TotalRequests) * 100
}

// BlockRate is the percentage of blocked fetches.
func (m DomainMetrics) BlockRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.BlockedCount) / float64(m.TotalRequests) * 100
}

// HealthTracker keeps per-domain fetch outcomes in a rolling window.
// It is in-memory only; nothing here is persisted.
type HealthTracker struct {
	mu     sync.RWMutex
	window time.Duration
	events map[string][]fetchEvent
	now    func() time.Time
}

// NewHealthTracker builds a tracker with the given rolling window.
func NewHealthTracker(window time.Duration) *HealthTracker {
	return &HealthTracker{
		window: window,
		events: make(map[string][]fetchEvent),
		now:    time.Now,
	}
}

// Record adds one fetch outcome for domain.
func (t *HealthTracker) Record(domain string, status FetchStatus, httpStatus int, elapsed time.Duration) {
	if domain == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.events[domain] = append(t.events[domain], fetchEvent{
		at:         now,
		status:     status,
		httpStatus: httpStatus,
		elapsed:    elapsed,
	})
	t.prune(domain, now)
}

// Metrics returns the windowed metrics for domain, or false when the
// domain has no events inside the window.
func (t *HealthTracker) Metrics(domain string) (DomainMetrics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metricsLocked(domain)
}

func (t *HealthTracker) metricsLocked(domain string) (DomainMetrics, bool) {
	t.prune(domain, t.now())

	events := t.events[domain]
	if len(events) == 0 {
		return DomainMetrics{}, false
	}

	m := DomainMetrics{Domain: domain, TotalRequests: len(events)}
	var totalMs float64
	for _, e := range events {
		totalMs += float64(e.elapsed.Milliseconds())
		switch e.status {
		case StatusOK:
			m.SuccessCount++
		case StatusBlocked:
			m.BlockedCount++
		case StatusRateLimited:
			m.RateLimitedCount++
		case StatusError:
			m.ErrorCount++
		}
	}
	m.AvgResponseTimeMs = totalMs / float64(len(events))

	last := events[len(events)-1]
	m.LastStatus = last.status
	m.LastFetchTime = last.at.UTC().Format(time.RFC3339)
	return m, true
}

// AllMetrics returns every tracked domain sorted by block rate, worst
// first.
func (t *HealthTracker) AllMetrics() []DomainMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	metrics := make([]DomainMetrics, 0, len(t.events))
	for domain := range t.events {
		if m, ok := t.metricsLocked(domain); ok {
			metrics = append(metrics, m)
		}
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].BlockRate() != metrics[j].BlockRate() {
			return metrics[i].BlockRate() > metrics[j].BlockRate()
		}
		return metrics[i].Domain < metrics[j].Domain
	})
	return metrics
}

// IsHealthy reports whether the domain's block rate stays at or under
// 50% inside the window. Unknown domains count as healthy.
func (t *HealthTracker) IsHealthy(domain string) bool {
	m, ok := t.Metrics(domain)
	if !ok {
		return true
	}
	return m.BlockRate() <= 50.0
}

// FormatReport renders a human-readable markdown report of every
// tracked domain.
func (t *HealthTracker) FormatReport() string {
	metrics := t.AllMetrics()
	if len(metrics) == 0 {
		return "No domain metrics recorded yet."
	}

	var b strings.Builder
	b.WriteString("# Domain Health Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", t.now().UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "Total domains tracked: %d\n\n", len(metrics))
	b.WriteString("## Domain Metrics (sorted by block rate)\n")

	for _, m := range metrics {
		fmt.Fprintf(&b, "### %s\n", m.Domain)
		fmt.Fprintf(&b, "- Requests: %d\n", m.TotalRequests)
		fmt.Fprintf(&b, "- Success rate: %.1f%%\n", m.SuccessRate())
		fmt.Fprintf(&b, "- Block rate: %.1f%%\n", m.BlockRate())
		fmt.Fprintf(&b, "- Rate limited: %d\n", m.RateLimitedCount)
		fmt.Fprintf(&b, "- Errors: %d\n", m.ErrorCount)
		fmt.Fprintf(&b, "- Avg response time: %.1fms\n", m.AvgResponseTimeMs)
		fmt.Fprintf(&b, "- Last status: %s\n", m.LastStatus)
		fmt.Fprintf(&b, "- Last fetch: %s\n\n", m.LastFetchTime)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// prune drops events older than the window. Caller holds the lock.
func (t *HealthTracker) prune(domain string, now time.Time) {
	events, ok := t.events[domain]
	if !ok {
		return
	}
	cutoff := now.Add(-t.window)
	idx := 0
	for idx < len(events) && events[idx].at.Before(cutoff) {
		idx++
	}
	if idx == len(events) {
		delete(t.events, domain)
		return
	}
	if idx > 0 {
		t.events[domain] = append([]fetchEvent(nil), events[idx:]...)
	}
}
