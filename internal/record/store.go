// Package record owns the reconciled per-quarter earnings records and
// the confidence-gated merge rule that keeps them consistent.
package record

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jacobterminal/earnings-terminal/internal/blobstore"
	"github.com/jacobterminal/earnings-terminal/internal/model"
)

// blobKey is where the store mirrors its map in the durable blob store.
const blobKey = "earnings_records"

// Store holds the authoritative map of EarningsRecord keyed by
// (ticker, fiscalYear, quarter). All mutations go through the
// confidence gate, which makes merges order-independent: replaying any
// set of writes in any order converges on the highest-confidence record
// per key.
type Store struct {
	mu      sync.Mutex
	records map[string]model.EarningsRecord

	saver *blobstore.Saver
	now   func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store hydrated from the blob store. An absent or
// unreadable blob starts the store empty; that only costs durability of
// past sessions, never correctness.
func New(ctx context.Context, blobs blobstore.Store, opts ...Option) *Store {
	s := &Store{
		records: make(map[string]model.EarningsRecord),
		saver:   blobstore.NewSaver(blobs, blobKey),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	blob, err := blobs.Get(ctx, blobKey)
	if err != nil {
		zap.L().Warn("record: load failed, starting empty", zap.Error(err))
		return s
	}
	if blob == nil {
		return s
	}
	if err := json.Unmarshal(blob, &s.records); err != nil {
		zap.L().Warn("record: corrupt snapshot, starting empty", zap.Error(err))
		s.records = make(map[string]model.EarningsRecord)
	}
	return s
}

// Close flushes the pending snapshot.
func (s *Store) Close() {
	s.saver.Close()
}

// Upsert applies one record through the confidence gate. It returns
// false and leaves the map untouched when an existing record at the same
// key has strictly greater confidence; otherwise it replaces the record,
// stamps UpdatedAt and reports true.
func (s *Store) Upsert(rec model.EarningsRecord) bool {
	s.mu.Lock()
	applied := s.upsertLocked(rec)
	if applied {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !applied {
		zap.L().Debug("record: stale write rejected",
			zap.String("key", rec.Key()),
			zap.Float64("confidence", rec.Confidence),
		)
	}
	return applied
}

// BulkUpsert applies each record through the same gate and returns how
// many were applied. Used for the initial corpus load.
func (s *Store) BulkUpsert(recs []model.EarningsRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, rec := range recs {
		if s.upsertLocked(rec) {
			applied++
		}
	}
	if applied > 0 {
		s.persistLocked()
	}
	return applied
}

func (s *Store) upsertLocked(rec model.EarningsRecord) bool {
	key := rec.Key()
	if existing, ok := s.records[key]; ok && existing.Confidence > rec.Confidence {
		return false
	}
	rec.UpdatedAt = s.now().UTC()
	s.records[key] = rec
	return true
}

// Get returns the record for a key, or nil when none exists.
func (s *Store) Get(ticker string, fiscalYear int, quarter model.Quarter) *model.EarningsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[model.RecordKey(ticker, fiscalYear, quarter)]
	if !ok {
		return nil
	}
	return &rec
}

// ListForTicker returns all records for a ticker, newest quarter first.
// A fiscalYear of 0 means all years.
func (s *Store) ListForTicker(ticker string, fiscalYear int) []model.EarningsRecord {
	s.mu.Lock()
	var recs []model.EarningsRecord
	for _, rec := range s.records {
		if rec.Ticker != ticker {
			continue
		}
		if fiscalYear != 0 && rec.FiscalYear != fiscalYear {
			continue
		}
		recs = append(recs, rec)
	}
	s.mu.Unlock()

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].FiscalYear != recs[j].FiscalYear {
			return recs[i].FiscalYear > recs[j].FiscalYear
		}
		return recs[i].Quarter.Ordinal() > recs[j].Quarter.Ordinal()
	})
	return recs
}

// Prune drops records older than yearsToKeep fiscal years and returns
// how many were removed.
func (s *Store) Prune(yearsToKeep int) int {
	cutoff := s.now().Year() - yearsToKeep

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if rec.FiscalYear < cutoff {
			delete(s.records, key)
			removed++
		}
	}
	if removed > 0 {
		s.persistLocked()
	}
	return removed
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persistLocked snapshots the map for the async writer. Callers hold mu.
func (s *Store) persistLocked() {
	blob, err := json.Marshal(s.records)
	if err != nil {
		zap.L().Warn("record: marshal snapshot failed", zap.Error(err))
		return
	}
	s.saver.Save(blob)
}
