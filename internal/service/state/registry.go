package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/pkg/log"
)

var (
	ErrClosed = errors.New("session registry is shut down")
	ErrFull   = errors.New("too many live chat sessions")
)

// Factory builds a fresh session for a conversation id.
type Factory func(ctx context.Context, id string) *session.Session

type Option func(*Registry)

// WithIdleTTL drops sessions nobody has touched for ttl. Start runs the sweep.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithMaxLive caps the number of live sessions. Zero means no cap.
func WithMaxLive(n int) Option {
	return func(r *Registry) { r.maxLive = n }
}

// WithOnDrop is called with the id of every session removed by Drop or Sweep.
func WithOnDrop(fn func(id string)) Option {
	return func(r *Registry) { r.onDrop = fn }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

type entry struct {
	sess     *session.Session
	lastUsed time.Time
}

// Registry keeps one live session per conversation for shells that serve
// many users at once.
type Registry struct {
	factory Factory
	ttl     time.Duration
	maxLive int
	onDrop  func(id string)
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool
	done     chan struct{}
}

func NewRegistry(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		factory:  factory,
		now:      time.Now,
		sessions: make(map[string]*entry),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for id, creating it on first use.
func (r *Registry) Get(ctx context.Context, id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if e, ok := r.sessions[id]; ok {
		e.lastUsed = r.now()
		return e.sess, nil
	}
	if r.maxLive > 0 && len(r.sessions) >= r.maxLive {
		return nil, ErrFull
	}

	s := r.factory(ctx, id)
	r.sessions[id] = &entry{sess: s, lastUsed: r.now()}
	log.FromCtx(ctx).Debug().Str("session", id).Int("live", len(r.sessions)).Msg("session created")
	return s, nil
}

// Lookup returns a live session and marks it as used.
func (r *Registry) Lookup(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.sess, true
}

// Drop tears the session down and forgets it. The next Get starts over.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.release(id, e.sess)
	}
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
// A session still presenting a reply is kept.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	expired := make(map[string]*session.Session)
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) && !e.sess.Pending() {
			expired[id] = e.sess
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for id, s := range expired {
		r.release(id, s)
	}
	return len(expired)
}

func (r *Registry) release(id string, s *session.Session) {
	s.Teardown()
	if r.onDrop != nil {
		r.onDrop(id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Start sweeps idle sessions every half TTL until ctx is done or the registry
// shuts down. Without a TTL it returns at once.
func (r *Registry) Start(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}

	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	logger := log.FromCtx(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.done:
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Debug().Int("expired", n).Int("live", r.Len()).Msg("idle sessions dropped")
			}
		}
	}
}

// Shutdown tears down every live session. Later Get calls fail with ErrClosed.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	for _, e := range sessions {
		e.sess.Teardown()
	}
	log.FromCtx(ctx).Info().Int("sessions", len(sessions)).Msg("chat sessions closed")
	return nil
}
