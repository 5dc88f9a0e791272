// Package autosave folds debounced editor drafts back into the project
// collection. Each open project has one Session holding the pre and post
// drafts; edits reschedule a single pending commit ticket.
package autosave

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// DefaultDebounce is the quiet period between the last edit and its commit.
const DefaultDebounce = 400 * time.Millisecond

// Recorder observes commit activity, typically for metrics.
type Recorder interface {
	Commit(phase string)
	Superseded()
}

type nopRecorder struct{}

func (nopRecorder) Commit(string) {}
func (nopRecorder) Superseded()   {}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *Reconciler) { r.clock = c }
}

// WithRecorder sets the commit recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) { r.recorder = rec }
}

// Reconciler owns the editor sessions of open projects.
type Reconciler struct {
	projects *project.Service
	debounce time.Duration
	clock    Clock
	recorder Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewReconciler creates a reconciler committing through projects.
// A non-positive debounce falls back to DefaultDebounce.
func NewReconciler(projects *project.Service, debounce time.Duration, logger *slog.Logger, opts ...Option) *Reconciler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Reconciler{
		projects: projects,
		debounce: debounce,
		clock:    systemClock{},
		recorder: nopRecorder{},
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns the session for project id, starting one from the stored
// record if none is open.
func (r *Reconciler) Open(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, nil
	}

	p, err := r.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s := newSession(r, context.WithoutCancel(ctx), *p)
	r.sessions[id] = s
	r.logger.Debug("editor opened", "project_id", id)
	return s, nil
}

// Lookup returns the open session for id, if any.
func (r *Reconciler) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Discard cancels any pending commit for id and closes its session.
func (r *Reconciler) Discard(id string) {
	if s, ok := r.Lookup(id); ok {
		s.Discard()
	}
}

// CloseAll flushes and closes every open session.
func (r *Reconciler) CloseAll(ctx context.Context) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		if _, err := s.Close(ctx); err != nil {
			r.logger.Warn("failed to flush editor on close", "project_id", s.id, "error", err)
		}
	}
}

func (r *Reconciler) forget(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[s.id] == s {
		delete(r.sessions, s.id)
	}
}
