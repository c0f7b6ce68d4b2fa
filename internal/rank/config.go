package rank

import "github.com/jacobterminal/earnings-terminal/internal/config"

// DefaultConfig returns the relevance bonuses the application ships with.
func DefaultConfig() config.RankerConfig {
	return config.RankerConfig{
		EarningsTagBonus:    50,
		HighImpactBonus:     30,
		ConfirmedBonus:      20,
		QuarterInTitleBonus: 40,
		QuarterInBodyBonus:  20,
		VerdictKeywordBonus: 25,
		EPSKeywordBonus:     15,
		RevenueKeywordBonus: 10,
		RecencyWeekBonus:    20,
		RecencyMonthBonus:   10,
		RecencyQuarterBonus: 5,
		WindowMonths:        18,
	}
}
