package model

import (
	"fmt"
	"time"
)

// Session indicates when in the trading day earnings are reported.
type Session string

const (
	SessionBMO Session = "BMO" // before market open
	SessionAMC Session = "AMC" // after market close
	SessionTBA Session = "TBA"
)

// Result is the beat/miss/inline verdict for a quarter.
type Result string

const (
	ResultBeat    Result = "Beat"
	ResultMiss    Result = "Miss"
	ResultInline  Result = "Inline"
	ResultUnknown Result = "Unknown"
)

// Source is the provenance tier of a record's facts.
type Source string

const (
	SourceAuthoritative Source = "authoritative"
	SourceTextExtracted Source = "textExtracted"
	SourcePlaceholder   Source = "placeholder"
)

// Tier orders sources by trustworthiness; higher means more trusted.
func (s Source) Tier() int {
	switch s {
	case SourceAuthoritative:
		return 2
	case SourceTextExtracted:
		return 1
	default:
		return 0
	}
}

// EarningsRecord is the reconciled per-quarter earnings state for one ticker.
// Identity fields (Ticker, FiscalYear, Quarter) are immutable once created;
// everything else is replaced wholesale by a winning upsert.
type EarningsRecord struct {
	Ticker          string    `json:"ticker" yaml:"ticker"`
	FiscalYear      int       `json:"fiscal_year" yaml:"fiscal_year"`
	Quarter         Quarter   `json:"quarter" yaml:"quarter"`
	ActualEPS       *float64  `json:"actual_eps,omitempty" yaml:"actual_eps,omitempty"`
	RevenueUSD      *float64  `json:"revenue_usd,omitempty" yaml:"revenue_usd,omitempty"`
	Session         Session   `json:"session" yaml:"session"`
	Result          Result    `json:"result" yaml:"result"`
	Source          Source    `json:"source" yaml:"source"`
	OriginArticleID string    `json:"origin_article_id,omitempty" yaml:"origin_article_id,omitempty"`
	Confidence      float64   `json:"confidence" yaml:"confidence"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Key returns the identity key for this record.
func (r EarningsRecord) Key() string {
	return RecordKey(r.Ticker, r.FiscalYear, r.Quarter)
}

// RecordKey builds the canonical identity key for a (ticker, year, quarter).
func RecordKey(ticker string, fiscalYear int, quarter Quarter) string {
	return fmt.Sprintf("%s:%d:%s", ticker, fiscalYear, quarter)
}

// BackfillAttempt records the last reconciliation attempt for one identity
// key. Its only purpose is throttling the orchestrator; absence means the
// key has never been attempted.
type BackfillAttempt struct {
	ID               string    `json:"id"`
	LastAttemptAt    time.Time `json:"last_attempt_at"`
	NewsIndexVersion int64     `json:"news_index_version"`
	Succeeded        bool      `json:"succeeded"`
}
