package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the ranker and extractor tunables are internally
// consistent.
func (c *Config) Validate() error {
	var errs []string

	bonuses := map[string]float64{
		"ranker.earnings_tag_bonus":     c.Ranker.EarningsTagBonus,
		"ranker.high_impact_bonus":      c.Ranker.HighImpactBonus,
		"ranker.confirmed_bonus":        c.Ranker.ConfirmedBonus,
		"ranker.quarter_in_title_bonus": c.Ranker.QuarterInTitleBonus,
		"ranker.quarter_in_body_bonus":  c.Ranker.QuarterInBodyBonus,
		"ranker.verdict_keyword_bonus":  c.Ranker.VerdictKeywordBonus,
		"ranker.eps_keyword_bonus":      c.Ranker.EPSKeywordBonus,
		"ranker.revenue_keyword_bonus":  c.Ranker.RevenueKeywordBonus,
		"ranker.recency_week_bonus":     c.Ranker.RecencyWeekBonus,
		"ranker.recency_month_bonus":    c.Ranker.RecencyMonthBonus,
		"ranker.recency_quarter_bonus":  c.Ranker.RecencyQuarterBonus,
		"extract.base_confidence":       c.Extract.BaseConfidence,
		"extract.per_pattern_bonus":     c.Extract.PerPatternBonus,
		"extract.eps_bonus":             c.Extract.EPSBonus,
		"extract.revenue_bonus":         c.Extract.RevenueBonus,
		"extract.earnings_tag_bonus":    c.Extract.EarningsTagBonus,
		"extract.confirmed_bonus":       c.Extract.ConfirmedBonus,
	}
	for name, b := range bonuses {
		if b < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.Extract.ConfidenceCap <= 0 || c.Extract.ConfidenceCap > 1 {
		errs = append(errs, "extract.confidence_cap must be in (0, 1]")
	}
	if c.Extract.ClassificationCap <= 0 || c.Extract.ClassificationCap > c.Extract.ConfidenceCap {
		errs = append(errs, "extract.classification_cap must be in (0, confidence_cap]")
	}
	if c.Extract.BaseConfidence > c.Extract.ClassificationCap {
		errs = append(errs, "extract.base_confidence must be <= classification_cap")
	}
	if c.Ranker.WindowMonths <= 0 {
		errs = append(errs, "ranker.window_months must be > 0")
	}
	if c.Backfill.TTLHours <= 0 {
		errs = append(errs, "backfill.ttl_hours must be > 0")
	}
	if c.Backfill.RetentionYears < 1 {
		errs = append(errs, "backfill.retention_years must be >= 1")
	}
	if c.Backfill.MaxConcurrent < 1 {
		errs = append(errs, "backfill.max_concurrent must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
