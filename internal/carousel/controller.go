// Package carousel implements the media presentation controller behind the
// Projects section: a selected-item pointer into the active project's
// media, an auto-advance timer, a transition lock, manual navigation,
// fullscreen, and per-item load/error tracking with placeholder
// substitution.
//
// A Controller owns exactly one auto-advance timer. Every path that
// changes the project, disables auto-advance, enters fullscreen or closes
// the controller stops that timer before continuing; timer callbacks carry
// a generation number so a callback that lost the race with Stop is
// discarded instead of advancing a second time.
package carousel

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/content"
)

// Config holds the controller's timing constants.
type Config struct {
	AutoAdvanceInterval time.Duration
	TransitionLock      time.Duration
	SettleDelay         time.Duration
	PlaceholderRef      string
}

// DefaultConfig returns the timings the site ships with.
func DefaultConfig() Config {
	return Config{
		AutoAdvanceInterval: 4 * time.Second,
		TransitionLock:      500 * time.Millisecond,
		SettleDelay:         300 * time.Millisecond,
		PlaceholderRef:      "/static/img/placeholder.svg",
	}
}

type Option func(*Controller)

// WithScheduler replaces the time.AfterFunc backed scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithListener registers fn to receive a snapshot after every applied
// transition. fn is called without the controller lock held, so snapshots
// can arrive out of order under concurrent use; compare Version.
func WithListener(fn func(Snapshot)) Option {
	return func(c *Controller) { c.listener = fn }
}

type state struct {
	project       *content.Project
	index         int
	autoAdvance   bool
	transitioning bool
	fullscreen    bool
	loaded        map[int]bool
	failed        map[int]bool
}

func newState(p *content.Project) state {
	return state{
		project:     p,
		autoAdvance: len(p.Media) > 1,
		loaded:      make(map[int]bool),
		failed:      make(map[int]bool),
	}
}

func (s *state) count() int { return len(s.project.Media) }

type Controller struct {
	cfg      Config
	sched    Scheduler
	log      zerolog.Logger
	listener func(Snapshot)

	mu        sync.Mutex
	st        state
	closed    bool
	version   uint64
	autoTimer Timer
	autoGen   uint64
	lockTimer Timer
	lockGen   uint64
}

// ErrNoMedia is returned by New for a project without media.
var ErrNoMedia = errors.New("carousel: project has no media")

// New mounts a controller with p selected.
func New(p *content.Project, cfg Config, opts ...Option) (*Controller, error) {
	if p == nil || len(p.Media) == 0 {
		return nil, ErrNoMedia
	}
	c := &Controller{
		cfg:   cfg,
		sched: SystemScheduler,
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.SelectProject(p)
	return c, nil
}

// SelectProject replaces the carousel state wholesale: index 0, load and
// error flags cleared, auto-advance re-enabled, and a settle lock.
func (c *Controller) SelectProject(p *content.Project) bool {
	if p == nil || len(p.Media) == 0 {
		return false
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.stopAutoLocked()
	c.stopLockLocked()
	c.st = newState(p)
	c.lockLocked(c.cfg.SettleDelay)
	c.armAutoLocked()
	c.log.Debug().Str("project", p.ID).Int("media", len(p.Media)).Msg("carousel project selected")
	snap := c.commitLocked(EventSelect)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// Next moves forward one item, wrapping to 0, and disables auto-advance.
func (c *Controller) Next() bool {
	return c.navigate(EventNext, func(st *state) int { return wrap(st.index+1, st.count()) })
}

// Previous moves back one item, wrapping to the last, and disables
// auto-advance.
func (c *Controller) Previous() bool {
	return c.navigate(EventPrevious, func(st *state) int { return wrap(st.index-1, st.count()) })
}

// JumpTo selects index i and disables auto-advance. Out-of-range indices
// and the current index are ignored.
func (c *Controller) JumpTo(i int) bool {
	return c.navigate(EventJump, func(st *state) int {
		if i < 0 || i >= st.count() {
			return st.index
		}
		return i
	})
}

func (c *Controller) navigate(ev Event, target func(*state) int) bool {
	c.mu.Lock()
	if !c.canMoveLocked() {
		c.mu.Unlock()
		return false
	}
	next := target(&c.st)
	if next == c.st.index {
		c.mu.Unlock()
		return false
	}
	c.st.index = next
	c.st.autoAdvance = false
	c.stopAutoLocked()
	c.lockLocked(c.cfg.TransitionLock)
	snap := c.commitLocked(ev)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// Advance steps forward without wrapping and without disabling
// auto-advance. It is what an embedded video reports when it ends.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	if !c.canMoveLocked() || c.st.index >= c.st.count()-1 {
		c.mu.Unlock()
		return false
	}
	c.st.index++
	c.lockLocked(c.cfg.TransitionLock)
	snap := c.commitLocked(EventAdvance)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// ToggleFullscreen flips fullscreen. Entering it turns auto-advance off;
// leaving it does not turn it back on.
func (c *Controller) ToggleFullscreen() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.st.fullscreen = !c.st.fullscreen
	if c.st.fullscreen {
		c.st.autoAdvance = false
		c.stopAutoLocked()
	} else {
		c.armAutoLocked()
	}
	snap := c.commitLocked(EventFullscreen)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// ToggleAutoAdvance flips auto-advance directly. Projects with a single
// item never auto-advance, so the toggle is ignored for them.
func (c *Controller) ToggleAutoAdvance() bool {
	c.mu.Lock()
	if c.closed || c.st.count() <= 1 {
		c.mu.Unlock()
		return false
	}
	c.st.autoAdvance = !c.st.autoAdvance
	if c.st.autoAdvance {
		c.armAutoLocked()
	} else {
		c.stopAutoLocked()
	}
	snap := c.commitLocked(EventAutoAdvance)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// ReportLoadSuccess marks the current item as loaded.
func (c *Controller) ReportLoadSuccess() bool {
	c.mu.Lock()
	i := c.st.index
	c.mu.Unlock()
	return c.ReportLoadSuccessAt(i)
}

// ReportLoadSuccessAt marks item i loaded if it is still the current
// item. Reports for an item the carousel has already moved past are
// dropped.
func (c *Controller) ReportLoadSuccessAt(i int) bool {
	c.mu.Lock()
	if c.closed || i != c.st.index || c.st.loaded[i] {
		c.mu.Unlock()
		return false
	}
	c.st.loaded[i] = true
	snap := c.commitLocked(EventLoadSuccess)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// ReportLoadError records that item i failed to load. The failure sticks
// until the next SelectProject; the item renders as the placeholder and
// counts as loaded so the overlay clears.
func (c *Controller) ReportLoadError(i int) bool {
	c.mu.Lock()
	if c.closed || i < 0 || i >= c.st.count() || c.st.failed[i] {
		c.mu.Unlock()
		return false
	}
	c.st.failed[i] = true
	c.st.loaded[i] = true
	c.log.Debug().Str("project", c.st.project.ID).Int("index", i).Msg("carousel media failed to load")
	snap := c.commitLocked(EventLoadError)
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// Close tears down all timers. The controller ignores every call after
// Close.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopAutoLocked()
	c.stopLockLocked()
	snap := c.commitLocked(EventClosed)
	c.mu.Unlock()
	c.notify(snap)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(c.lastEvent())
}

func (c *Controller) lastEvent() Event {
	if c.closed {
		return EventClosed
	}
	return ""
}

// AutoArmed reports whether an auto-advance timer is pending.
func (c *Controller) AutoArmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoTimer != nil
}

func (c *Controller) canMoveLocked() bool {
	return !c.closed && !c.st.transitioning && c.st.count() > 1
}

func (c *Controller) autoEligibleLocked() bool {
	return !c.closed && c.st.autoAdvance && !c.st.fullscreen && c.st.count() > 1
}

// armAutoLocked starts the auto-advance timer if its preconditions hold
// and none is pending.
func (c *Controller) armAutoLocked() {
	if c.autoTimer != nil || !c.autoEligibleLocked() {
		return
	}
	c.autoGen++
	gen := c.autoGen
	c.autoTimer = c.sched.AfterFunc(c.cfg.AutoAdvanceInterval, func() { c.autoTick(gen) })
}

func (c *Controller) stopAutoLocked() {
	if c.autoTimer != nil {
		c.autoTimer.Stop()
		c.autoTimer = nil
	}
	c.autoGen++
}

func (c *Controller) autoTick(gen uint64) {
	c.mu.Lock()
	if gen != c.autoGen || c.closed {
		c.mu.Unlock()
		return
	}
	c.autoTimer = nil
	var snap *Snapshot
	// A tick that lands inside the transition lock is skipped, not queued.
	if c.autoEligibleLocked() && !c.st.transitioning {
		c.st.index = wrap(c.st.index+1, c.st.count())
		c.lockLocked(c.cfg.TransitionLock)
		snap = c.commitLocked(EventAutoTick)
	}
	c.armAutoLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) lockLocked(d time.Duration) {
	c.stopLockLocked()
	c.st.transitioning = true
	c.lockGen++
	gen := c.lockGen
	c.lockTimer = c.sched.AfterFunc(d, func() { c.unlock(gen) })
}

func (c *Controller) stopLockLocked() {
	if c.lockTimer != nil {
		c.lockTimer.Stop()
		c.lockTimer = nil
	}
	c.lockGen++
}

func (c *Controller) unlock(gen uint64) {
	c.mu.Lock()
	if gen != c.lockGen || c.closed {
		c.mu.Unlock()
		return
	}
	c.lockTimer = nil
	c.st.transitioning = false
	snap := c.commitLocked(EventSettled)
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) commitLocked(ev Event) *Snapshot {
	c.version++
	snap := c.snapshotLocked(ev)
	return &snap
}

func (c *Controller) snapshotLocked(ev Event) Snapshot {
	st := &c.st
	n := st.count()
	item := st.project.Media[st.index]
	if st.failed[st.index] {
		item = content.MediaItem{Kind: content.KindImage, SourceRef: c.cfg.PlaceholderRef, Caption: item.Caption}
	}
	phase := PhaseLoading
	switch {
	case st.failed[st.index]:
		phase = PhaseError
	case st.loaded[st.index]:
		phase = PhaseReady
	}
	indicators := make([]Indicator, n)
	for i := range indicators {
		indicators[i] = Indicator{Index: i, Active: i == st.index, Failed: st.failed[i]}
	}
	return Snapshot{
		Project:       st.project,
		ProjectID:     st.project.ID,
		ProjectTitle:  st.project.Title,
		Index:         st.index,
		Count:         n,
		Item:          item,
		Phase:         phase,
		AutoAdvance:   st.autoAdvance,
		Transitioning: st.transitioning,
		Fullscreen:    st.fullscreen,
		CanNavigate:   n > 1,
		Position:      position(st.index, n),
		Indicators:    indicators,
		Event:         ev,
		Version:       c.version,
	}
}

func (c *Controller) notify(snap *Snapshot) {
	if snap == nil || c.listener == nil {
		return
	}
	c.listener(*snap)
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
