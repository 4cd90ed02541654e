package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

func fixedNow(t *testing.T, now time.Time) {
	t.Helper()
	research.NowUTC = func() time.Time { return now }
	t.Cleanup(func() { research.NowUTC = func() time.Time { return time.Now().UTC() } })
}

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "usage.json")
}

func TestTrackStampsAndPersists(t *testing.T) {
	fixedNow(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC))
	path := storePath(t)
	tracker := NewTracker(zerolog.Nop(), path)

	err := tracker.Track(Event{
		Tool:              "web_search",
		Reasoning:         "find docs",
		ResponseTimeMs:    120,
		Success:           true,
		ResponseSizeBytes: 512,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var persisted struct {
		Sessions []Event `json:"sessions"`
		Summary  Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Len(t, persisted.Sessions, 1)

	event := persisted.Sessions[0]
	assert.Equal(t, "2025-06-01T14:30:00Z", event.Timestamp)
	assert.Equal(t, "20250601_14", event.SessionID)
	assert.Equal(t, "web_search", event.Tool)

	assert.Equal(t, 1, persisted.Summary.Totals.TotalCalls)
	assert.Equal(t, "web_search", persisted.Summary.Totals.MostUsedTool)
}

func TestSummaryMath(t *testing.T) {
	tracker := NewTracker(zerolog.Nop(), storePath(t))

	require.NoError(t, tracker.Track(Event{Tool: "crawl_url", Reasoning: "read page", ResponseTimeMs: 100, Success: true}))
	require.NoError(t, tracker.Track(Event{Tool: "crawl_url", Reasoning: "read page", ResponseTimeMs: 300, Success: false}))
	require.NoError(t, tracker.Track(Event{Tool: "web_search", Reasoning: "look around", ResponseTimeMs: 50, Success: true}))

	summary := tracker.Summary()

	crawl := summary.Tools["crawl_url"]
	assert.Equal(t, 2, crawl.Count)
	assert.Equal(t, 1, crawl.SuccessCount)
	assert.InDelta(t, 200.0, crawl.AvgResponseTime, 0.001)
	assert.Equal(t, 2, crawl.CommonReasonings["read page"])

	assert.Equal(t, 3, summary.Totals.TotalCalls)
	assert.Equal(t, "crawl_url", summary.Totals.MostUsedTool)
	assert.InDelta(t, 150.0, summary.Totals.AverageResponseTime, 0.001)
}

func TestReasoningKeyTruncation(t *testing.T) {
	tracker := NewTracker(zerolog.Nop(), storePath(t))
	long := strings.Repeat("r", 80)

	require.NoError(t, tracker.Track(Event{Tool: "web_search", Reasoning: long}))

	summary := tracker.Summary()
	key := strings.Repeat("r", 50)
	assert.Equal(t, 1, summary.Tools["web_search"].CommonReasonings[key])
}

func TestReloadDerivesSummary(t *testing.T) {
	path := storePath(t)

	first := NewTracker(zerolog.Nop(), path)
	require.NoError(t, first.Track(Event{Tool: "github_repo", Reasoning: "check health", ResponseTimeMs: 80, Success: true}))
	require.NoError(t, first.Track(Event{Tool: "github_repo", Reasoning: "check health", ResponseTimeMs: 120, Success: true}))

	second := NewTracker(zerolog.Nop(), path)
	assert.Equal(t, 2, second.EventCount())

	summary := second.Summary()
	assert.Equal(t, 2, summary.Tools["github_repo"].Count)
	assert.InDelta(t, 100.0, summary.Tools["github_repo"].AvgResponseTime, 0.001)
}

func TestCorruptStoreStartsEmpty(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	tracker := NewTracker(zerolog.Nop(), path)
	assert.Equal(t, 0, tracker.EventCount())

	// The next track replaces the corrupt file.
	require.NoError(t, tracker.Track(Event{Tool: "web_search", Reasoning: "r"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestSummaryReturnsCopy(t *testing.T) {
	tracker := NewTracker(zerolog.Nop(), storePath(t))
	require.NoError(t, tracker.Track(Event{Tool: "web_search", Reasoning: "r"}))

	summary := tracker.Summary()
	summary.Tools["web_search"].CommonReasonings["injected"] = 99

	fresh := tracker.Summary()
	_, present := fresh.Tools["web_search"].CommonReasonings["injected"]
	assert.False(t, present)
}

func TestConcurrentTracking(t *testing.T) {
	tracker := NewTracker(zerolog.Nop(), storePath(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tracker.Track(Event{Tool: "web_search", Reasoning: "parallel"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, tracker.EventCount())
	assert.Equal(t, 20, tracker.Summary().Totals.TotalCalls)
}

func TestTrackCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "usage.json")
	tracker := NewTracker(zerolog.Nop(), path)

	require.NoError(t, tracker.Track(Event{Tool: "web_search", Reasoning: "r"}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
