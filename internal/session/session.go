// Package session keeps one carousel controller per visitor.
//
// Sessions live in a bounded LRU keyed by the session cookie. A session
// that falls out of the cache, idles past its TTL or is left over at
// shutdown has its controller closed, so no carousel timer outlives the
// visitor that owns it.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zachkp/portfolio/internal/carousel"
)

// Session is one visitor's carousel and embedded player.
type Session struct {
	ID         string
	Controller *carousel.Controller
	Player     *carousel.PlayerTracker

	lastSeen atomic.Int64

	mu     sync.Mutex
	subs   map[int]chan carousel.Snapshot
	nextID int
	closed bool
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID:     id,
		Player: carousel.NewPlayerTracker(),
		subs:   make(map[int]chan carousel.Snapshot),
	}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen is the time of the last request that used the session.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Subscribe returns a channel carrying the latest snapshot after every
// applied transition. Slow readers only ever see the newest snapshot.
// The channel is closed when the session ends or cancel is called.
func (s *Session) Subscribe() (<-chan carousel.Snapshot, func()) {
	ch := make(chan carousel.Snapshot, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Subscribers is the number of open subscriptions.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) publish(snap carousel.Snapshot) {
	s.Player.Follow(snap.ProjectID, snap.Index)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Replace the unread snapshot with the newer one.
		latest := snap
		select {
		case old := <-ch:
			if old.Version > latest.Version {
				latest = old
			}
		default:
		}
		select {
		case ch <- latest:
		default:
		}
	}
}

func (s *Session) close() {
	if s.Controller != nil {
		s.Controller.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
