package webfetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthTracker_RecordAndMetrics(t *testing.T) {
	tr := NewHealthTracker(time.Hour)

	tr.Record("example.com", StatusOK, 200, 120*time.Millisecond)
	tr.Record("example.com", StatusOK, 200, 80*time.Millisecond)
	tr.Record("example.com", StatusBlocked, 403, 40*time.Millisecond)
	tr.Record("example.com", StatusRateLimited, 429, 10*time.Millisecond)
	tr.Record("example.com", StatusError, 500, 30*time.Millisecond)

	m, ok := tr.Metrics("example.com")
	require.True(t, ok)
	assert.Equal(t, 5, m.TotalRequests)
	assert.Equal(t, 2, m.SuccessCount)
	assert.Equal(t, 1, m.BlockedCount)
	assert.Equal(t, 1, m.RateLimitedCount)
	assert.Equal(t, 1, m.ErrorCount)
	assert.InDelta(t, 40.0, m.SuccessRate(), 0.01)
	assert.InDelta(t, 20.0, m.BlockRate(), 0.01)
	assert.Equal(t, StatusError, m.LastStatus)
	assert.NotEmpty(t, m.LastFetchTime)
}

func TestHealthTracker_UnknownDomain(t *testing.T) {
	tr := NewHealthTracker(time.Hour)

	_, ok := tr.Metrics("never-seen.example")
	assert.False(t, ok)
	assert.True(t, tr.IsHealthy("never-seen.example"))
}

func TestHealthTracker_RollingWindow(t *testing.T) {
	tr := NewHealthTracker(time.Hour)
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	current := base
	tr.now = func() time.Time { return current }

	tr.Record("old.example", StatusOK, 200, time.Millisecond)

	current = base.Add(2 * time.Hour)
	tr.Record("old.example", StatusBlocked, 403, time.Millisecond)

	m, ok := tr.Metrics("old.example")
	require.True(t, ok)
	assert.Equal(t, 1, m.TotalRequests)
	assert.Equal(t, 1, m.BlockedCount)

	current = base.Add(4 * time.Hour)
	_, ok = tr.Metrics("old.example")
	assert.False(t, ok)
}

func TestHealthTracker_IsHealthy(t *testing.T) {
	tr := NewHealthTracker(time.Hour)

	tr.Record("blocked.example", StatusBlocked, 403, time.Millisecond)
	tr.Record("blocked.example", StatusBlocked, 403, time.Millisecond)
	tr.Record("blocked.example", StatusOK, 200, time.Millisecond)
	assert.False(t, tr.IsHealthy("blocked.example"))

	tr.Record("fine.example", StatusOK, 200, time.Millisecond)
	tr.Record("fine.example", StatusBlocked, 403, time.Millisecond)
	assert.True(t, tr.IsHealthy("fine.example"))
}

func TestHealthTracker_AllMetricsSortedByBlockRate(t *testing.T) {
	tr := NewHealthTracker(time.Hour)

	tr.Record("clean.example", StatusOK, 200, time.Millisecond)
	tr.Record("half.example", StatusOK, 200, time.Millisecond)
	tr.Record("half.example", StatusBlocked, 403, time.Millisecond)
	tr.Record("walled.example", StatusBlocked, 403, time.Millisecond)

	all := tr.AllMetrics()
	require.Len(t, all, 3)
	assert.Equal(t, "walled.example", all[0].Domain)
	assert.Equal(t, "half.example", all[1].Domain)
	assert.Equal(t, "clean.example", all[2].Domain)
}

func TestHealthTracker_FormatReport(t *testing.T) {
	tr := NewHealthTracker(time.Hour)

	t.Run("empty tracker", func(t *testing.T) {
		assert.Equal(t, "No domain metrics recorded yet.", tr.FormatReport())
	})

	t.Run("with metrics", func(t *testing.T) {
		tr.Record("example.com", StatusOK, 200, 50*time.Millisecond)
		tr.Record("example.com", StatusBlocked, 403, 20*time.Millisecond)

		report := tr.FormatReport()
		assert.Contains(t, report, "# Domain Health Report")
		assert.Contains(t, report, "Total domains tracked: 1")
		assert.Contains(t, report, "### example.com")
		assert.Contains(t, report, "Success rate: 50.0%")
		assert.Contains(t, report, "Block rate: 50.0%")
	})
}
