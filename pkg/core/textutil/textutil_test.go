package textutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	t.Run("short input unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Clamp("hello", 100))
	})

	t.Run("long input gets suffix within limit", func(t *testing.T) {
		src := strings.Repeat("x", 500)
		got := Clamp(src, 200)
		assert.Len(t, []rune(got), 200)
		assert.True(t, strings.HasSuffix(got, TruncationSuffix))
	})

	t.Run("idempotent", func(t *testing.T) {
		src := strings.Repeat("abc ", 1000)
		once := Clamp(src, 300)
		twice := Clamp(once, 300)
		assert.Equal(t, once, twice)
	})

	t.Run("multibyte runes counted as characters", func(t *testing.T) {
		src := strings.Repeat("日本語テキスト", 100)
		got := Clamp(src, 50)
		assert.Len(t, []rune(got), 50)
		assert.True(t, strings.HasSuffix(got, TruncationSuffix))
	})

	t.Run("limit smaller than suffix", func(t *testing.T) {
		got := Clamp(strings.Repeat("y", 100), 5)
		assert.Len(t, []rune(got), 5)
	})

	t.Run("non-positive limit disables clamping", func(t *testing.T) {
		src := strings.Repeat("z", 100)
		assert.Equal(t, src, Clamp(src, 0))
		assert.Equal(t, src, Clamp(src, -1))
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"null bytes stripped", "a\x00b", "ab"},
		{"bell and escape stripped", "a\x07b\x1bc", "abc"},
		{"delete stripped", "a\x7fb", "ab"},
		{"tabs and newlines collapse", "a\t\tb\n\nc\r\nd", "a b c d"},
		{"runs of spaces collapse", "a    b", "a b"},
		{"leading and trailing trimmed", "  padded  ", "padded"},
		{"vertical tab stripped not spaced", "a\vb", "ab"},
		{"unicode preserved", "café → 東京", "café → 東京"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{"a\x00 b\tc", "  x  \x1b y ", "plain", "\v\f\x7f"}
		for _, in := range inputs {
			once := Sanitize(in)
			assert.Equal(t, once, Sanitize(once))
		}
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "日本語", Truncate("日本語テキスト", 3))
	assert.Equal(t, "", Truncate("hello", 0))
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{50_300_000, "50.3M"},
		{1_000_000, "1.0M"},
		{12_500, "12.5K"},
		{1_000, "1.0K"},
		{999, "999"},
		{0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.n))
		})
	}
}

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"rfc3339 zulu", "2024-03-01T12:30:00Z"},
		{"rfc3339 offset", "2024-03-01T12:30:00+00:00"},
		{"fractional seconds", "2024-03-01T12:30:00.123456Z"},
		{"no zone", "2024-03-01T12:30:00"},
		{"space separator", "2024-03-01 12:30:00"},
		{"date only", "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISOTime(tt.input)
			require.NoError(t, err)
			assert.Equal(t, 2024, got.Year())
			assert.Equal(t, time.March, got.Month())
		})
	}

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ParseISOTime("not a time")
		assert.Error(t, err)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := ParseISOTime("")
		assert.Error(t, err)
	})
}

func TestFormatTimeAgoAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5*time.Minute - 10*time.Second), "5m ago"},
		{"hours ago", now.Add(-3*time.Hour - time.Minute), "3h ago"},
		{"days ago", now.Add(-48 * time.Hour), "2d ago"},
		{"months ago", now.Add(-75 * 24 * time.Hour), "2mo ago"},
		{"years ago", now.Add(-800 * 24 * time.Hour), "2y ago"},
		{"future clock skew", now.Add(time.Hour), "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTimeAgoAt(tt.at.Format(time.RFC3339), now))
		})
	}

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "unknown", formatTimeAgoAt("", now))
	})

	t.Run("unparseable input passes through", func(t *testing.T) {
		assert.Equal(t, "yesterday-ish", formatTimeAgoAt("yesterday-ish", now))
	})
}
