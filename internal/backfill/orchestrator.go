// Package backfill decides when a reconciliation attempt is warranted
// for an identity key, runs the ranking and extraction cascade, and
// throttles retries so the same key is never hammered.
package backfill

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jacobterminal/earnings-terminal/internal/blobstore"
	"github.com/jacobterminal/earnings-terminal/internal/extract"
	"github.com/jacobterminal/earnings-terminal/internal/model"
	"github.com/jacobterminal/earnings-terminal/internal/rank"
	"github.com/jacobterminal/earnings-terminal/internal/record"
)

// blobKey is where the orchestrator mirrors its attempt metadata.
const blobKey = "backfill_attempts"

// DefaultTTL is the minimum wait before retrying a key whose corpus has
// not changed.
const DefaultTTL = 24 * time.Hour

// snapshot is the persisted shape of the orchestrator's state.
type snapshot struct {
	IndexVersion int64                            `json:"index_version"`
	Attempts     map[string]model.BackfillAttempt `json:"attempts"`
}

// Stats summarizes orchestrator activity for the status surfaces.
type Stats struct {
	Attempts     int   `json:"attempts"`
	Succeeded    int   `json:"succeeded"`
	InFlight     int   `json:"in_flight"`
	IndexVersion int64 `json:"index_version"`
}

// Orchestrator owns the attempt metadata and the in-flight set. At most
// one backfill runs per identity key at a time; attempts for different
// keys proceed fully in parallel.
type Orchestrator struct {
	records   *record.Store
	ranker    *rank.Ranker
	extractor *extract.Extractor
	saver     *blobstore.Saver

	ttl time.Duration
	now func() time.Time

	indexVersion atomic.Int64

	mu       sync.Mutex
	attempts map[string]model.BackfillAttempt
	inflight map[string]struct{}
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithTTL overrides the retry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) { o.ttl = ttl }
}

// WithClock overrides the orchestrator's time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator hydrated from the blob store. Absent or
// unreadable metadata starts fresh, which only means keys become
// eligible again sooner than strictly necessary.
func New(ctx context.Context, records *record.Store, ranker *rank.Ranker, extractor *extract.Extractor, blobs blobstore.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		records:   records,
		ranker:    ranker,
		extractor: extractor,
		saver:     blobstore.NewSaver(blobs, blobKey),
		ttl:       DefaultTTL,
		now:       time.Now,
		attempts:  make(map[string]model.BackfillAttempt),
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	blob, err := blobs.Get(ctx, blobKey)
	if err != nil {
		zap.L().Warn("backfill: load failed, starting fresh", zap.Error(err))
		return o
	}
	if blob == nil {
		return o
	}
	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		zap.L().Warn("backfill: corrupt snapshot, starting fresh", zap.Error(err))
		return o
	}
	o.indexVersion.Store(snap.IndexVersion)
	if snap.Attempts != nil {
		o.attempts = snap.Attempts
	}
	return o
}

// Close flushes the pending metadata snapshot.
func (o *Orchestrator) Close() {
	o.saver.Close()
}

// MarkNewsIndexUpdated bumps the corpus version counter. Keys gated by
// TTL become eligible again immediately because their recorded version
// falls behind.
func (o *Orchestrator) MarkNewsIndexUpdated() {
	v := o.indexVersion.Add(1)
	zap.L().Debug("backfill: news index updated", zap.Int64("version", v))
	o.persist()
}

// NewsIndexVersion returns the current corpus version counter.
func (o *Orchestrator) NewsIndexVersion() int64 {
	return o.indexVersion.Load()
}

// ShouldAttempt decides whether a backfill for the key is warranted.
func (o *Orchestrator) ShouldAttempt(ticker string, fiscalYear int, quarter model.Quarter) bool {
	// Real data already present: nothing to backfill.
	if rec := o.records.Get(ticker, fiscalYear, quarter); rec != nil &&
		rec.Source.Tier() > model.SourcePlaceholder.Tier() && rec.ActualEPS != nil {
		return false
	}

	o.mu.Lock()
	attempt, attempted := o.attempts[model.RecordKey(ticker, fiscalYear, quarter)]
	o.mu.Unlock()

	// Never attempted: always eligible.
	if !attempted {
		return true
	}

	// Within TTL and nothing new in the corpus: hold off.
	if o.now().Sub(attempt.LastAttemptAt) < o.ttl &&
		attempt.NewsIndexVersion >= o.indexVersion.Load() {
		return false
	}
	return true
}

// RequestBackfill runs one reconciliation attempt for the key against
// the supplied corpus. It returns true only when a record was actually
// applied; every other outcome, including "another attempt is already
// running", is a silent no-op rather than an error.
func (o *Orchestrator) RequestBackfill(ctx context.Context, ticker string, fiscalYear int, quarter model.Quarter, corpus []model.NewsItem) bool {
	if !o.ShouldAttempt(ticker, fiscalYear, quarter) {
		return false
	}

	key := model.RecordKey(ticker, fiscalYear, quarter)

	// Add-if-absent: the loser of a concurrent race backs off with no
	// side effects.
	o.mu.Lock()
	if _, busy := o.inflight[key]; busy {
		o.mu.Unlock()
		return false
	}
	o.inflight[key] = struct{}{}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inflight, key)
		o.mu.Unlock()
	}()

	// Re-check after winning the slot: a concurrent attempt may have
	// finished between the eligibility check and the insert above.
	if !o.ShouldAttempt(ticker, fiscalYear, quarter) {
		return false
	}

	version := o.indexVersion.Load()
	candidates := o.ranker.Rank(corpus, ticker, fiscalYear, quarter, o.now())

	// First usable fact wins: the ranking order already encodes "best".
	var fact *extract.Fact
	var origin string
	for _, c := range candidates {
		// Skip articles that name a different quarter outright.
		if _, q, ok := extract.Period(c.Item); ok && q != quarter {
			continue
		}
		if f := o.extractor.Extract(c.Item); f.Usable() {
			fact = f
			origin = c.Item.ID
			break
		}
	}

	applied := false
	if fact != nil {
		applied = o.records.Upsert(model.EarningsRecord{
			Ticker:          ticker,
			FiscalYear:      fiscalYear,
			Quarter:         quarter,
			ActualEPS:       fact.ActualEPS,
			RevenueUSD:      fact.RevenueUSD,
			Session:         fact.Session,
			Result:          fact.Result,
			Source:          model.SourceTextExtracted,
			OriginArticleID: origin,
			Confidence:      fact.Confidence,
		})
	}

	o.mu.Lock()
	o.attempts[key] = model.BackfillAttempt{
		ID:               uuid.New().String(),
		LastAttemptAt:    o.now().UTC(),
		NewsIndexVersion: version,
		Succeeded:        fact != nil,
	}
	o.mu.Unlock()
	o.persist()

	zap.L().Info("backfill: attempt finished",
		zap.String("key", key),
		zap.Int("candidates", len(candidates)),
		zap.Bool("usable_fact", fact != nil),
		zap.Bool("applied", applied),
	)
	return applied
}

// Stats returns attempt counters for the status surfaces.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Stats{
		Attempts:     len(o.attempts),
		InFlight:     len(o.inflight),
		IndexVersion: o.indexVersion.Load(),
	}
	for _, a := range o.attempts {
		if a.Succeeded {
			st.Succeeded++
		}
	}
	return st
}

func (o *Orchestrator) persist() {
	o.mu.Lock()
	snap := snapshot{
		IndexVersion: o.indexVersion.Load(),
		Attempts:     make(map[string]model.BackfillAttempt, len(o.attempts)),
	}
	for k, v := range o.attempts {
		snap.Attempts[k] = v
	}
	o.mu.Unlock()

	blob, err := json.Marshal(snap)
	if err != nil {
		zap.L().Warn("backfill: marshal snapshot failed", zap.Error(err))
		return
	}
	o.saver.Save(blob)
}
