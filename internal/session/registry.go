package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/carousel"
	"github.com/Zachkp/portfolio/internal/content"
)

// ErrClosed is returned by Create after Close.
var ErrClosed = errors.New("session: registry closed")

// Config bounds the registry.
type Config struct {
	Capacity int
	IdleTTL  time.Duration
	Carousel carousel.Config
}

type Option func(*Registry)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithScheduler is handed to every controller the registry creates.
func WithScheduler(s carousel.Scheduler) Option {
	return func(r *Registry) { r.sched = s }
}

// WithEventHook is called for every applied carousel transition of every
// session.
func WithEventHook(fn func(carousel.Event)) Option {
	return func(r *Registry) { r.onEvent = fn }
}

// WithSizeHook is called with the session count whenever it changes.
func WithSizeHook(fn func(int)) Option {
	return func(r *Registry) { r.onSize = fn }
}

// Registry maps session IDs to sessions.
type Registry struct {
	site  *content.Site
	cfg   Config
	cache *lru.Cache[string, *Session]

	log     zerolog.Logger
	sched   carousel.Scheduler
	onEvent func(carousel.Event)
	onSize  func(int)
	now     func() time.Time

	mu     sync.Mutex
	closed bool
}

// New creates a registry whose sessions open on the site's first project.
func New(site *content.Site, cfg Config, opts ...Option) (*Registry, error) {
	if site == nil || site.DefaultProject() == nil {
		return nil, errors.New("session: site has no projects")
	}
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("session: capacity must be positive, got %d", cfg.Capacity)
	}
	r := &Registry{
		site:  site,
		cfg:   cfg,
		log:   zerolog.Nop(),
		sched: carousel.SystemScheduler,
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}

	cache, err := lru.NewWithEvict[string, *Session](cfg.Capacity, r.evicted)
	if err != nil {
		return nil, fmt.Errorf("session: create cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) evicted(id string, s *Session) {
	s.close()
	r.log.Debug().Str("session", id).Msg("session closed")
	r.reportSize()
}

func (r *Registry) reportSize() {
	if r.onSize != nil {
		r.onSize(r.cache.Len())
	}
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// Create mounts a new session with its own controller.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	s := newSession(uuid.NewString(), r.now())
	ctrl, err := carousel.New(r.site.DefaultProject(), r.cfg.Carousel,
		carousel.WithScheduler(r.sched),
		carousel.WithLogger(r.log.With().Str("session", s.ID).Logger()),
		carousel.WithListener(func(snap carousel.Snapshot) {
			s.publish(snap)
			if r.onEvent != nil {
				r.onEvent(snap.Event)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("session: mount carousel: %w", err)
	}
	s.Controller = ctrl

	r.cache.Add(s.ID, s)
	r.reportSize()
	r.log.Debug().Str("session", s.ID).Msg("session created")
	return s, nil
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown or expired. created reports whether a new ID was issued.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool, err error) {
	if s, ok := r.Get(id); ok {
		return s, false, nil
	}
	s, err = r.Create()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Remove ends a session.
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

func (r *Registry) Len() int { return r.cache.Len() }

// Sweep closes sessions idle for longer than the TTL and returns how many
// it removed.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTTL)
	removed := 0
	for _, id := range r.cache.Keys() {
		s, ok := r.cache.Peek(id)
		if !ok || !s.LastSeen().Before(cutoff) {
			continue
		}
		if r.cache.Remove(id) {
			removed++
		}
	}
	if removed > 0 {
		r.log.Info().Int("removed", removed).Int("active", r.cache.Len()).Msg("expired idle sessions")
	}
	return removed
}

// Run sweeps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.cfg.IdleTTL <= 0 {
		return
	}
	interval := r.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close ends every session. Create fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	r.cache.Purge()
}
