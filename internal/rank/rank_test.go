package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobterminal/earnings-terminal/internal/model"
)

var now = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

func item(id, title, summary string, age time.Duration) model.NewsItem {
	return model.NewsItem{
		ID:          id,
		PublishedAt: now.Add(-age),
		Tickers:     []string{"ACME"},
		Title:       title,
		Summary:     summary,
	}
}

func TestRank_EarningsHeadlineOutranksGenericMention(t *testing.T) {
	r := New(DefaultConfig())

	strong := item("strong", "ACME Q3 earnings beat expectations", "EPS of $1.42, revenue up sharply", 2*24*time.Hour)
	strong.Tags.Earnings = true
	strong.Classification.Impact = model.ImpactHigh
	strong.Classification.RumorLevel = model.RumorConfirmed

	weak := item("weak", "ACME hires new CFO", "The company said results of the search pleased the board", 100*24*time.Hour)

	got := r.Rank([]model.NewsItem{weak, strong}, "ACME", 2025, model.Q3, now)
	require.Len(t, got, 2)
	assert.Equal(t, "strong", got[0].Item.ID)
	assert.GreaterOrEqual(t, got[0].Score, 90.0)
	assert.LessOrEqual(t, got[1].Score, 20.0)
}

func TestRank_HardFilter(t *testing.T) {
	r := New(DefaultConfig())

	otherTicker := item("other", "ZENO Q3 earnings beat", "", 24*time.Hour)
	otherTicker.Tickers = []string{"ZENO"}

	stale := item("stale", "ACME Q3 earnings beat", "", 20*30*24*time.Hour)

	future := item("future", "ACME Q3 earnings preview", "", 0)
	future.PublishedAt = now.Add(24 * time.Hour)

	offTopic := item("offtopic", "ACME sponsors city marathon", "Runners praised the event", 24*time.Hour)

	got := r.Rank([]model.NewsItem{otherTicker, stale, future, offTopic}, "ACME", 2025, model.Q3, now)
	assert.Empty(t, got)
}

func TestRank_QuarterPhraseVariants(t *testing.T) {
	r := New(DefaultConfig())

	tests := []struct {
		name  string
		title string
	}{
		{"numeric", "ACME Q2 results breakdown"},
		{"written out", "ACME second quarter results breakdown"},
		{"year plus quarter corroboration", "ACME 2025 quarter in review: results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Rank([]model.NewsItem{item("x", tt.title, "", 24*time.Hour)}, "ACME", 2025, model.Q2, now)
			assert.Len(t, got, 1)
		})
	}
}

func TestRank_HeadlineQuarterBeatsSummaryQuarter(t *testing.T) {
	r := New(DefaultConfig())

	inTitle := item("title", "ACME Q1 results", "", 24*time.Hour)
	inBody := item("body", "ACME results", "Numbers cover Q1", 24*time.Hour)

	got := r.Rank([]model.NewsItem{inBody, inTitle}, "ACME", 2025, model.Q1, now)
	require.Len(t, got, 2)
	assert.Equal(t, "title", got[0].Item.ID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestRank_RecencyDecay(t *testing.T) {
	r := New(DefaultConfig())

	fresh := item("fresh", "ACME Q1 results", "", 2*24*time.Hour)
	month := item("month", "ACME Q1 results", "", 20*24*time.Hour)
	older := item("older", "ACME Q1 results", "", 60*24*time.Hour)
	ancient := item("ancient", "ACME Q1 results", "", 200*24*time.Hour)

	got := r.Rank([]model.NewsItem{ancient, older, month, fresh}, "ACME", 2025, model.Q1, now)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"fresh", "month", "older", "ancient"},
		[]string{got[0].Item.ID, got[1].Item.ID, got[2].Item.ID, got[3].Item.ID})

	cfg := DefaultConfig()
	assert.InDelta(t, cfg.RecencyWeekBonus, got[0].Score-got[3].Score, 0.001)
}

func TestRank_StableTieOrder(t *testing.T) {
	r := New(DefaultConfig())

	first := item("first", "ACME Q4 results", "", 24*time.Hour)
	second := item("second", "ACME Q4 results", "", 24*time.Hour)

	got := r.Rank([]model.NewsItem{first, second}, "ACME", 2025, model.Q4, now)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Item.ID)
	assert.Equal(t, "second", got[1].Item.ID)
}

func TestRank_Deterministic(t *testing.T) {
	r := New(DefaultConfig())

	corpus := []model.NewsItem{
		item("a", "ACME Q3 earnings beat expectations", "EPS of $1.42", 2*24*time.Hour),
		item("b", "ACME Q3 revenue slips", "", 10*24*time.Hour),
		item("c", "ACME results preview", "what to expect from Q3", 40*24*time.Hour),
	}

	first := r.Rank(corpus, "ACME", 2025, model.Q3, now)
	second := r.Rank(corpus, "ACME", 2025, model.Q3, now)
	assert.Equal(t, first, second)
}
