package record

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobterminal/earnings-terminal/internal/blobstore"
	"github.com/jacobterminal/earnings-terminal/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(context.Background(), blobstore.NewMemory())
	t.Cleanup(s.Close)
	return s
}

func rec(ticker string, year int, q model.Quarter, conf float64) model.EarningsRecord {
	eps := 1.0
	return model.EarningsRecord{
		Ticker:     ticker,
		FiscalYear: year,
		Quarter:    q,
		ActualEPS:  &eps,
		Session:    model.SessionTBA,
		Result:     model.ResultBeat,
		Source:     model.SourceTextExtracted,
		Confidence: conf,
	}
}

func TestUpsert_ConfidenceGate(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, s.Upsert(rec("ACME", 2025, model.Q3, 0.8)))

	// Strictly lower confidence is a no-op.
	lower := rec("ACME", 2025, model.Q3, 0.5)
	lower.Result = model.ResultMiss
	assert.False(t, s.Upsert(lower))

	got := s.Get("ACME", 2025, model.Q3)
	require.NotNil(t, got)
	assert.Equal(t, model.ResultBeat, got.Result)
	assert.InDelta(t, 0.8, got.Confidence, 0.001)

	// Equal confidence replaces.
	equal := rec("ACME", 2025, model.Q3, 0.8)
	equal.Result = model.ResultInline
	assert.True(t, s.Upsert(equal))
	assert.Equal(t, model.ResultInline, s.Get("ACME", 2025, model.Q3).Result)

	// Higher confidence replaces.
	assert.True(t, s.Upsert(rec("ACME", 2025, model.Q3, 0.95)))
	assert.InDelta(t, 0.95, s.Get("ACME", 2025, model.Q3).Confidence, 0.001)
}

func TestUpsert_OrderIndependentConvergence(t *testing.T) {
	writes := []model.EarningsRecord{
		rec("ACME", 2025, model.Q3, 0.3),
		rec("ACME", 2025, model.Q3, 0.9),
		rec("ACME", 2025, model.Q3, 0.6),
		rec("ACME", 2025, model.Q3, 0.45),
	}

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		s := newTestStore(t)
		shuffled := append([]model.EarningsRecord(nil), writes...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		for _, w := range shuffled {
			s.Upsert(w)
		}

		got := s.Get("ACME", 2025, model.Q3)
		require.NotNil(t, got)
		assert.InDelta(t, 0.9, got.Confidence, 0.001)
	}
}

func TestUpsert_StampsUpdatedAt(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := New(context.Background(), blobstore.NewMemory(), WithClock(func() time.Time { return fixed }))
	t.Cleanup(s.Close)

	s.Upsert(rec("ACME", 2025, model.Q1, 0.5))
	assert.Equal(t, fixed, s.Get("ACME", 2025, model.Q1).UpdatedAt)
}

func TestBulkUpsert(t *testing.T) {
	s := newTestStore(t)
	s.Upsert(rec("ACME", 2025, model.Q3, 0.9))

	applied := s.BulkUpsert([]model.EarningsRecord{
		rec("ACME", 2025, model.Q3, 0.5), // rejected by gate
		rec("ACME", 2025, model.Q2, 0.7),
		rec("ZENO", 2024, model.Q4, 0.6),
	})
	assert.Equal(t, 2, applied)
	assert.Equal(t, 3, s.Count())
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.Get("ACME", 2030, model.Q1))
}

func TestListForTicker_SortedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	s.Upsert(rec("ACME", 2024, model.Q4, 0.5))
	s.Upsert(rec("ACME", 2025, model.Q1, 0.5))
	s.Upsert(rec("ACME", 2025, model.Q3, 0.5))
	s.Upsert(rec("ZENO", 2025, model.Q3, 0.5))

	got := s.ListForTicker("ACME", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "ACME:2025:Q3", got[0].Key())
	assert.Equal(t, "ACME:2025:Q1", got[1].Key())
	assert.Equal(t, "ACME:2024:Q4", got[2].Key())

	oneYear := s.ListForTicker("ACME", 2025)
	require.Len(t, oneYear, 2)
	assert.Equal(t, 2025, oneYear[0].FiscalYear)
	assert.Equal(t, 2025, oneYear[1].FiscalYear)
}

func TestPrune(t *testing.T) {
	fixed := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	s := New(context.Background(), blobstore.NewMemory(), WithClock(func() time.Time { return fixed }))
	t.Cleanup(s.Close)

	s.Upsert(rec("ACME", 2019, model.Q4, 0.5))
	s.Upsert(rec("ACME", 2022, model.Q4, 0.5))
	s.Upsert(rec("ACME", 2025, model.Q4, 0.5))

	removed := s.Prune(4) // cutoff: fiscal years before 2022
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, s.Count())
	assert.Nil(t, s.Get("ACME", 2019, model.Q4))
}

func TestHydration_SurvivesRestart(t *testing.T) {
	blobs := blobstore.NewMemory()

	s := New(context.Background(), blobs)
	s.Upsert(rec("ACME", 2025, model.Q3, 0.8))
	s.Close()

	reopened := New(context.Background(), blobs)
	t.Cleanup(reopened.Close)
	assert.Equal(t, 1, reopened.Count())

	got := reopened.Get("ACME", 2025, model.Q3)
	require.NotNil(t, got)
	assert.InDelta(t, 0.8, got.Confidence, 0.001)
}

func TestHydration_CorruptBlobStartsEmpty(t *testing.T) {
	blobs := blobstore.NewMemory()
	require.NoError(t, blobs.Set(context.Background(), "earnings_records", []byte("{not json")))

	s := New(context.Background(), blobs)
	t.Cleanup(s.Close)
	assert.Equal(t, 0, s.Count())
}

// rejectingBlobs fails every write.
type rejectingBlobs struct{}

func (rejectingBlobs) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (rejectingBlobs) Set(context.Context, string, []byte) error   { return errors.New("disk full") }
func (rejectingBlobs) Close() error                                { return nil }

func TestUpsert_PersistenceFailureKeepsMemoryAuthoritative(t *testing.T) {
	s := New(context.Background(), rejectingBlobs{})
	t.Cleanup(s.Close)

	assert.True(t, s.Upsert(rec("ACME", 2025, model.Q3, 0.8)))

	got := s.Get("ACME", 2025, model.Q3)
	require.NotNil(t, got)
	assert.InDelta(t, 0.8, got.Confidence, 0.001)
	assert.Equal(t, 1, s.Count())
	assert.NotPanics(t, s.Close)
}

func TestUpsert_ConcurrentSameKey(t *testing.T) {
	s := newTestStore(t)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		conf := 0.1 * float64(i+1)
		go func() {
			defer func() { done <- struct{}{} }()
			s.Upsert(rec("ACME", 2025, model.Q3, conf))
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	got := s.Get("ACME", 2025, model.Q3)
	require.NotNil(t, got)
	assert.InDelta(t, 0.8, got.Confidence, 0.001)
}
