// Package rank selects and orders candidate news items worth parsing for
// a given (ticker, fiscal year, quarter). Ranking is pure and
// deterministic: equal scores keep their original corpus order.
package rank

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jacobterminal/earnings-terminal/internal/config"
	"github.com/jacobterminal/earnings-terminal/internal/extract"
	"github.com/jacobterminal/earnings-terminal/internal/model"
)

// Candidate is one corpus item that survived the hard filter, with its
// relevance score.
type Candidate struct {
	Item  model.NewsItem
	Score float64
}

// Ranker scores corpus items against an identity key using a fixed set
// of additive bonuses.
type Ranker struct {
	cfg config.RankerConfig
}

// New creates a Ranker with the given scoring bonuses.
func New(cfg config.RankerConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank filters the corpus down to plausible candidates for the key and
// returns them ordered by descending relevance. Items failing the hard
// filter are excluded entirely, not down-ranked.
func (r *Ranker) Rank(corpus []model.NewsItem, ticker string, fiscalYear int, quarter model.Quarter, now time.Time) []Candidate {
	cutoff := now.AddDate(0, -r.cfg.WindowMonths, 0)
	phrases := extract.QuarterPhrases(quarter)
	yearToken := strconv.Itoa(fiscalYear)

	var candidates []Candidate
	for _, item := range corpus {
		if !item.Mentions(ticker) {
			continue
		}
		if item.PublishedAt.Before(cutoff) || item.PublishedAt.After(now) {
			continue
		}

		title := strings.ToLower(item.Title)
		body := strings.ToLower(item.Summary)
		text := title + " " + body

		quarterHit := containsAny(text, phrases...) ||
			(strings.Contains(text, yearToken) && strings.Contains(text, "quarter"))
		domainHit := item.Tags.Earnings ||
			containsAny(text, "earnings", "eps", "revenue", "results", "guidance")
		if !quarterHit && !domainHit {
			continue
		}

		candidates = append(candidates, Candidate{
			Item:  item,
			Score: r.score(item, title, body, text, phrases, now),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// score sums the independent relevance bonuses for one item.
func (r *Ranker) score(item model.NewsItem, title, body, text string, phrases []string, now time.Time) float64 {
	var s float64

	if item.Tags.Earnings {
		s += r.cfg.EarningsTagBonus
	}
	if item.Classification.Impact == model.ImpactHigh && strings.Contains(title, "earnings") {
		s += r.cfg.HighImpactBonus
	}
	if item.Classification.RumorLevel == model.RumorConfirmed {
		s += r.cfg.ConfirmedBonus
	}

	// Quarter phrase placement: headline beats summary.
	switch {
	case containsAny(title, phrases...):
		s += r.cfg.QuarterInTitleBonus
	case containsAny(body, phrases...):
		s += r.cfg.QuarterInBodyBonus
	}

	if containsAny(text, "beat", "miss", "inline", "in line") {
		s += r.cfg.VerdictKeywordBonus
	}
	if strings.Contains(text, "eps") {
		s += r.cfg.EPSKeywordBonus
	}
	if strings.Contains(text, "revenue") {
		s += r.cfg.RevenueKeywordBonus
	}

	// Recency decay.
	age := now.Sub(item.PublishedAt)
	switch {
	case age < 7*24*time.Hour:
		s += r.cfg.RecencyWeekBonus
	case age < 30*24*time.Hour:
		s += r.cfg.RecencyMonthBonus
	case age < 90*24*time.Hour:
		s += r.cfg.RecencyQuarterBonus
	}

	return s
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
