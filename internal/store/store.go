// Package store implements the persistent key-value store: an in-memory
// mirror of JSON documents backed by a durable Backend. Writes never fail
// from the caller's point of view; backend failures degrade to memory-only
// state and are logged.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tupadhub/tupadhub/internal/repository"
)

// Entry is one persisted document and the revision of its last write.
type Entry struct {
	Key      string
	Value    []byte
	Revision int64
}

// Backend is the durable storage behind the mirror. Get returns
// repository.ErrNotFound for absent keys.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, value []byte) (int64, error)
	Since(ctx context.Context, revision int64) ([]Entry, error)
}

// Recorder observes store activity, typically for metrics.
type Recorder interface {
	StoreWrite(key string, ok bool)
	ExternalChange(key string)
}

type nopRecorder struct{}

func (nopRecorder) StoreWrite(string, bool) {}
func (nopRecorder) ExternalChange(string)   {}

// Store mirrors backend documents in memory and notifies subscribers on change.
type Store struct {
	backend  Backend
	recorder Recorder
	logger   *slog.Logger

	// writeMu orders backend writes and refreshes. Mirror reads only take mu.
	writeMu sync.Mutex

	mu     sync.RWMutex
	mirror map[string][]byte
	known  map[string]bool  // keys whose backend state has been read
	revs   map[string]int64 // last backend revision reflected in the mirror
	cursor int64

	subMu   sync.Mutex
	subs    map[int]func(key string)
	nextSub int
}

// New creates a store over backend. A nil recorder or logger is allowed.
func New(backend Backend, recorder Recorder, logger *slog.Logger) *Store {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		backend:  backend,
		recorder: recorder,
		logger:   logger,
		mirror:   make(map[string][]byte),
		known:    make(map[string]bool),
		revs:     make(map[string]int64),
		subs:     make(map[int]func(string)),
	}
}

// Get decodes the value stored under key, or returns def when the key is
// absent, unreadable, or holds a payload that does not decode into T.
func Get[T any](ctx context.Context, s *Store, key string, def T) T {
	raw, ok := s.load(ctx, key)
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("corrupt stored value, using default", "key", key, "error", err)
		return def
	}
	return v
}

// Set stores v under key. The mirror is updated before the backend write,
// so a failed write still leaves the current process with the new state.
func Set[T any](ctx context.Context, s *Store, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("value not serializable, write dropped", "key", key, "error", err)
		s.recorder.StoreWrite(key, false)
		return
	}
	s.put(ctx, key, raw)
}

func (s *Store) load(ctx context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	raw, ok := s.mirror[key]
	known := s.known[key]
	s.mu.RUnlock()
	if ok || known {
		return raw, ok
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.mirror[key]; ok || s.known[key] {
		return raw, ok
	}

	entry, err := s.backend.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		s.known[key] = true
		return nil, false
	}
	if err != nil {
		s.logger.Warn("store read failed", "key", key, "error", err)
		return nil, false
	}

	s.mirror[key] = entry.Value
	s.known[key] = true
	s.revs[key] = entry.Revision
	return entry.Value, true
}

func (s *Store) put(ctx context.Context, key string, raw []byte) {
	s.writeMu.Lock()

	s.mu.Lock()
	s.mirror[key] = raw
	s.known[key] = true
	s.mu.Unlock()

	rev, err := s.backend.Put(ctx, key, raw)
	if err != nil {
		s.logger.Warn("store write failed, keeping in-memory state", "key", key, "error", err)
		s.recorder.StoreWrite(key, false)
	} else {
		s.mu.Lock()
		if rev > s.revs[key] {
			s.revs[key] = rev
		}
		s.mu.Unlock()
		s.recorder.StoreWrite(key, true)
	}
	s.writeMu.Unlock()

	s.notify(key)
}

// Subscribe registers fn to be called with the key after every write and
// every externally observed change. The returned func removes it.
func (s *Store) Subscribe(fn func(key string)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(key string) {
	s.subMu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Refresh pulls backend entries written since the last refresh, by this or
// any other process, and applies those that differ from the mirror.
func (s *Store) Refresh(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	cursor := s.cursor
	s.mu.RUnlock()

	entries, err := s.backend.Since(ctx, cursor)
	if err != nil {
		s.logger.Warn("store refresh failed", "error", err)
		return
	}

	var changed []string
	s.mu.Lock()
	for _, e := range entries {
		if e.Revision > s.cursor {
			s.cursor = e.Revision
		}
		if e.Revision <= s.revs[e.Key] {
			continue
		}
		s.revs[e.Key] = e.Revision
		s.known[e.Key] = true
		if current, ok := s.mirror[e.Key]; ok && bytes.Equal(current, e.Value) {
			continue
		}
		s.mirror[e.Key] = e.Value
		changed = append(changed, e.Key)
	}
	s.mu.Unlock()

	for _, key := range changed {
		s.logger.Debug("external store change", "key", key)
		s.recorder.ExternalChange(key)
		s.notify(key)
	}
}

// Watch calls Refresh every interval until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
