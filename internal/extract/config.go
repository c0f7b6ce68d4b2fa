package extract

import "github.com/jacobterminal/earnings-terminal/internal/config"

// DefaultConfig returns the extractor tunables the application ships
// with. Each bonus is additive so stacking signals can only raise the
// final confidence, and the cap keeps text-derived facts below fully
// authoritative ones.
func DefaultConfig() config.ExtractConfig {
	return config.ExtractConfig{
		BaseConfidence:    0.5,
		PerPatternBonus:   0.05,
		ClassificationCap: 0.7,
		EPSBonus:          0.2,
		RevenueBonus:      0.15,
		EarningsTagBonus:  0.05,
		ConfirmedBonus:    0.05,
		ConfidenceCap:     0.95,
	}
}
