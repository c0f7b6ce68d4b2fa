package blobstore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Saver mirrors snapshots into a blob key asynchronously. Save never
// blocks the caller and coalesces bursts: only the latest snapshot is
// written. Write failures degrade durability only; they are logged and
// swallowed, and the in-memory state stays authoritative.
type Saver struct {
	store Store
	key   string

	mu      sync.Mutex
	pending []byte
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewSaver starts the background writer for one blob key.
func NewSaver(store Store, key string) *Saver {
	s := &Saver{
		store:  store,
		key:    key,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// Save queues a snapshot for writing, replacing any not-yet-written one.
func (s *Saver) Save(blob []byte) {
	s.mu.Lock()
	s.pending = blob
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Close flushes any pending snapshot and stops the writer. Safe to call
// more than once.
func (s *Saver) Close() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.flush()
	})
}

func (s *Saver) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.notify:
			s.flush()
		case <-s.done:
			return
		}
	}
}

func (s *Saver) flush() {
	s.mu.Lock()
	blob := s.pending
	s.pending = nil
	s.mu.Unlock()
	if blob == nil {
		return
	}
	if err := s.store.Set(context.Background(), s.key, blob); err != nil {
		zap.L().Warn("blobstore: snapshot write failed",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}
