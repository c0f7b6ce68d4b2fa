package model

import "time"

// Impact buckets assigned by the upstream classifier.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Rumor levels assigned by the upstream classifier.
const (
	RumorConfirmed   = "confirmed"
	RumorUnconfirmed = "unconfirmed"
)

// NewsTags carries editorial flags set by the corpus supplier.
type NewsTags struct {
	Earnings bool `json:"earnings" yaml:"earnings"`
	Macro    bool `json:"macro,omitempty" yaml:"macro,omitempty"`
	MA       bool `json:"ma,omitempty" yaml:"ma,omitempty"`
}

// NewsClassification is the upstream classifier's take on an item.
type NewsClassification struct {
	Impact     string  `json:"impact" yaml:"impact"`
	RumorLevel string  `json:"rumor_level" yaml:"rumor_level"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// NewsItem is one article from the corpus supplier. The core never
// mutates items; the slice handed to Rank/RequestBackfill is read-only.
type NewsItem struct {
	ID             string             `json:"id" yaml:"id"`
	PublishedAt    time.Time          `json:"published_at" yaml:"published_at"`
	Tickers        []string           `json:"tickers" yaml:"tickers"`
	Title          string             `json:"title" yaml:"title"`
	Summary        string             `json:"summary" yaml:"summary"`
	Tags           NewsTags           `json:"tags" yaml:"tags"`
	Classification NewsClassification `json:"classification" yaml:"classification"`
}

// Mentions reports whether the item references the given ticker.
func (n NewsItem) Mentions(ticker string) bool {
	for _, t := range n.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}
