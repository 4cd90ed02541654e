// Package usage records every tool invocation to a JSON store under
// the user's config directory: the raw event list plus a rolling
// summary. The tracker is the only persisted shared mutable state in
// the server, so all mutation and the disk flush sit behind one mutex.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

const reasoningKeyLen = 50

// Event is one recorded tool invocation. Timestamp and SessionID are
// stamped by Track.
type Event struct {
	Timestamp         string                 `json:"timestamp"`
	Tool              string                 `json:"tool"`
	Reasoning         string                 `json:"reasoning"`
	Parameters        map[string]interface{} `json:"parameters,omitempty"`
	ResponseTimeMs    int64                  `json:"response_time_ms"`
	Success           bool                   `json:"success"`
	ErrorMessage      string                 `json:"error_message,omitempty"`
	ResponseSizeBytes int                    `json:"response_size_bytes"`
	SessionID         string                 `json:"session_id"`
}

// ToolSummary is the rolling per-tool aggregate.
type ToolSummary struct {
	Count            int            `json:"count"`
	SuccessCount     int            `json:"success_count"`
	AvgResponseTime  float64        `json:"avg_response_time"`
	CommonReasonings map[string]int `json:"common_reasonings"`
}

// Totals is the global aggregate across tools.
type Totals struct {
	TotalCalls          int     `json:"total_calls"`
	MostUsedTool        string  `json:"most_used_tool,omitempty"`
	AverageResponseTime float64 `json:"average_response_time"`
}

// Summary combines the per-tool and global aggregates.
type Summary struct {
	Tools  map[string]ToolSummary `json:"tools"`
	Totals Totals                 `json:"totals"`
}

type store struct {
	Sessions []Event `json:"sessions"`
	Summary  Summary `json:"summary"`
}

// Tracker persists usage events. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	logger zerolog.Logger
	path   string
	store  store
}

// NewTracker loads the store at path, starting empty when the file is
// absent or corrupt. The summary is re-derived from the loaded events
// so a hand-edited or partially written file cannot skew it.
func NewTracker(logger zerolog.Logger, path string) *Tracker {
	t := &Tracker{
		logger: logger.With().Str("component", "usage").Logger(),
		path:   path,
		store:  store{Sessions: []Event{}},
	}

	data, err := os.ReadFile(path)
	if err == nil {
		var loaded store
		if jsonErr := json.Unmarshal(data, &loaded); jsonErr != nil {
			t.logger.Warn().Str("path", path).Err(jsonErr).Msg("usage store is corrupt, starting empty")
		} else {
			t.store.Sessions = loaded.Sessions
			if t.store.Sessions == nil {
				t.store.Sessions = []Event{}
			}
		}
	} else if !os.IsNotExist(err) {
		t.logger.Warn().Str("path", path).Err(err).Msg("usage store unreadable, starting empty")
	}

	t.store.Summary = deriveSummary(t.store.Sessions)
	return t
}

// Track stamps, appends, and persists one event. The disk flush stays
// inside the critical section so the on-disk and in-memory views agree.
func (t *Tracker) Track(event Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := research.NowUTC()
	event.Timestamp = now.Format(time.RFC3339)
	event.SessionID = now.Format("20060102_15")

	t.store.Sessions = append(t.store.Sessions, event)
	applyEvent(&t.store.Summary, event)

	if err := t.persist(); err != nil {
		t.logger.Warn().Str("path", t.path).Err(err).Msg("usage store flush failed")
		return err
	}
	return nil
}

// Summary returns a deep copy of the current aggregates.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := Summary{
		Tools:  make(map[string]ToolSummary, len(t.store.Summary.Tools)),
		Totals: t.store.Summary.Totals,
	}
	for tool, ts := range t.store.Summary.Tools {
		reasonings := make(map[string]int, len(ts.CommonReasonings))
		for k, v := range ts.CommonReasonings {
			reasonings[k] = v
		}
		ts.CommonReasonings = reasonings
		out.Tools[tool] = ts
	}
	return out
}

// EventCount reports how many events the store holds.
func (t *Tracker) EventCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.store.Sessions)
}

func (t *Tracker) persist() error {
	data, err := json.MarshalIndent(t.store, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "usage-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, t.path)
}

func deriveSummary(events []Event) Summary {
	summary := Summary{Tools: map[string]ToolSummary{}}
	for _, event := range events {
		applyEvent(&summary, event)
	}
	return summary
}

// applyEvent folds one event into the rolling aggregates with running
// means, so replay and incremental update give identical results.
func applyEvent(summary *Summary, event Event) {
	if summary.Tools == nil {
		summary.Tools = map[string]ToolSummary{}
	}

	ts := summary.Tools[event.Tool]
	if ts.CommonReasonings == nil {
		ts.CommonReasonings = map[string]int{}
	}
	ts.Count++
	if event.Success {
		ts.SuccessCount++
	}
	ts.AvgResponseTime += (float64(event.ResponseTimeMs) - ts.AvgResponseTime) / float64(ts.Count)
	ts.CommonReasonings[reasoningKey(event.Reasoning)]++
	summary.Tools[event.Tool] = ts

	summary.Totals.TotalCalls++
	summary.Totals.AverageResponseTime +=
		(float64(event.ResponseTimeMs) - summary.Totals.AverageResponseTime) / float64(summary.Totals.TotalCalls)

	best, bestCount := "", 0
	for tool, agg := range summary.Tools {
		if agg.Count > bestCount || (agg.Count == bestCount && tool < best) {
			best, bestCount = tool, agg.Count
		}
	}
	summary.Totals.MostUsedTool = best
}

func reasoningKey(reasoning string) string {
	runes := []rune(reasoning)
	if len(runes) > reasoningKeyLen {
		return string(runes[:reasoningKeyLen])
	}
	return reasoning
}

// Path reports where the store is persisted, for startup logging.
func (t *Tracker) Path() string { return t.path }

// String implements fmt.Stringer for debug logs.
func (t *Tracker) String() string {
	return fmt.Sprintf("usage.Tracker(%s)", t.path)
}
