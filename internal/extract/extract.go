// Package extract turns free-text news items into structured earnings
// facts with a confidence score. Extraction is pure: the same input
// always yields the same output.
package extract

import (
	"math"
	"strings"

	"github.com/jacobterminal/earnings-terminal/internal/config"
	"github.com/jacobterminal/earnings-terminal/internal/model"
)

// Fact is a candidate set of structured earnings facts pulled from one
// news item.
type Fact struct {
	ActualEPS  *float64
	RevenueUSD *float64
	Session    model.Session
	Result     model.Result
	Confidence float64
}

// Usable reports whether the fact carries enough signal to back a record:
// either a verdict or a concrete EPS number.
func (f *Fact) Usable() bool {
	return f != nil && (f.Result != model.ResultUnknown || f.ActualEPS != nil)
}

// Extractor applies the pattern cascades with a fixed set of confidence
// tunables. It holds no mutable state.
type Extractor struct {
	cfg config.ExtractConfig
}

// New creates an Extractor with the given tunables.
func New(cfg config.ExtractConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract parses one news item into a Fact. It returns nil when the item
// is not earnings-related or yields neither a verdict nor any structured
// number. That is the expected outcome for most of the corpus and is not
// an error.
func (e *Extractor) Extract(item model.NewsItem) *Fact {
	text := strings.ToLower(item.Title + " " + item.Summary)

	// Gate: skip items with no earnings vocabulary and no earnings tag.
	if !item.Tags.Earnings && !containsAny(text, "earnings", "eps", "revenue", "results") {
		return nil
	}

	result, matched := classify(text)

	fact := &Fact{
		ActualEPS:  extractEPS(text),
		RevenueUSD: extractRevenue(text),
		Session:    detectSession(text),
		Result:     result,
	}
	if !fact.Usable() && fact.RevenueUSD == nil {
		return nil
	}

	fact.Confidence = e.compose(item, fact, matched)
	return fact
}

// compose builds the final confidence score. Every contribution is
// additive and the total is capped, so extra corroborating signals can
// never lower the score.
func (e *Extractor) compose(item model.NewsItem, fact *Fact, matchedPatterns int) float64 {
	conf := e.cfg.BaseConfidence
	if matchedPatterns > 1 {
		conf += float64(matchedPatterns-1) * e.cfg.PerPatternBonus
	}
	conf = math.Min(conf, e.cfg.ClassificationCap)

	if fact.ActualEPS != nil {
		conf += e.cfg.EPSBonus
	}
	if fact.RevenueUSD != nil {
		conf += e.cfg.RevenueBonus
	}
	if item.Tags.Earnings {
		conf += e.cfg.EarningsTagBonus
	}
	if item.Classification.RumorLevel == model.RumorConfirmed {
		conf += e.cfg.ConfirmedBonus
	}
	return math.Min(conf, e.cfg.ConfidenceCap)
}

// containsAny checks if s contains any of the given substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
