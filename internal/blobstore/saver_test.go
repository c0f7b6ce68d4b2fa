package blobstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore rejects every write.
type failingStore struct {
	sets atomic.Int32
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) { return nil, nil }

func (f *failingStore) Set(context.Context, string, []byte) error {
	f.sets.Add(1)
	return errors.New("disk full")
}

func (f *failingStore) Close() error { return nil }

func TestSaver_FlushesOnClose(t *testing.T) {
	mem := NewMemory()
	s := NewSaver(mem, "state")

	s.Save([]byte("v1"))
	s.Save([]byte("v2"))
	s.Close()

	blob, err := mem.Get(context.Background(), "state")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), blob)
}

func TestSaver_CloseIsIdempotent(t *testing.T) {
	s := NewSaver(NewMemory(), "state")
	s.Save([]byte("v1"))
	s.Close()
	assert.NotPanics(t, s.Close)
}

func TestSaver_WriteFailureIsSwallowed(t *testing.T) {
	fs := &failingStore{}
	s := NewSaver(fs, "state")

	s.Save([]byte("v1"))
	assert.NotPanics(t, s.Close)
	assert.GreaterOrEqual(t, fs.sets.Load(), int32(1))

	s.Save([]byte("after close"))
	assert.NotPanics(t, s.Close)
}

func TestSaver_CloseWithoutSaves(t *testing.T) {
	mem := NewMemory()
	s := NewSaver(mem, "state")
	s.Close()

	blob, err := mem.Get(context.Background(), "state")
	require.NoError(t, err)
	assert.Nil(t, blob)
}
