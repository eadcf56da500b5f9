package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceTag(t *testing.T) {
	tests := []struct {
		input    string
		expected SourceTag
		ok       bool
	}{
		{"forum", SourceForum, true},
		{"microblog", SourceMicroblog, true},
		{"video", SourceVideo, true},
		{"professional-network", SourceProfessional, true},
		{"professional", SourceProfessional, true},
		{"profnet", SourceProfessional, true},
		{"web", SourceWeb, true},
		{"usenet", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tag, ok := ParseSourceTag(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, tag)
		})
	}
}

func TestSourceTag_IsPlatform(t *testing.T) {
	assert.True(t, SourceForum.IsPlatform())
	assert.True(t, SourceMicroblog.IsPlatform())
	assert.False(t, SourceWeb.IsPlatform())
	assert.False(t, SourceTag("bogus").IsPlatform())
}

func TestDateWindow_Days(t *testing.T) {
	now := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)

	week := DateWindow{Start: now.AddDate(0, 0, -7), End: now}
	assert.Equal(t, 7.0, week.Days())

	// Same-day windows never divide recency by zero.
	sameDay := DateWindow{Start: now, End: now}
	assert.Equal(t, 1.0, sameDay.Days())
}

func TestDateWindow_Contains(t *testing.T) {
	w := DateWindow{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.True(t, w.Contains(w.Start.AddDate(0, 0, 3)))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}

func TestDateWindow_Valid(t *testing.T) {
	now := time.Now()

	assert.True(t, DateWindow{Start: now.AddDate(0, 0, -1), End: now}.Valid())
	assert.False(t, DateWindow{Start: now, End: now.AddDate(0, 0, -1)}.Valid())
	assert.False(t, DateWindow{}.Valid())
	assert.False(t, DateWindow{End: now}.Valid())
}

func TestLastDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	w := LastDays(now, 7)
	assert.Equal(t, now, w.End)
	assert.Equal(t, now.AddDate(0, 0, -7), w.Start)

	// Non-positive day counts clamp to a one-day window.
	assert.Equal(t, now.AddDate(0, 0, -1), LastDays(now, 0).Start)
}

func TestContentItem_IdentityKey(t *testing.T) {
	item := ContentItem{Source: SourceForum, Permalink: "https://forum.example/1"}
	assert.Equal(t, "forum|https://forum.example/1", item.IdentityKey())

	other := ContentItem{Source: SourceWeb, Permalink: "https://forum.example/1"}
	assert.NotEqual(t, item.IdentityKey(), other.IdentityKey())
}

func TestReport_Failed(t *testing.T) {
	report := Report{
		Sources: []SourceTag{SourceForum, SourceWeb},
		Errors:  map[string]string{"forum": "down"},
	}
	assert.False(t, report.Failed())

	report.Errors["web"] = "down"
	assert.True(t, report.Failed())

	empty := Report{}
	assert.False(t, empty.Failed())
}
