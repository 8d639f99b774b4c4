package carousel

import "sync"

// Player is the embedded video player as the carousel sees it: an opaque
// capability, not a state machine the carousel steps through.
type Player interface {
	Play()
	Pause()
	Mute()
	Unmute()
	Progress() float64
}

// PlayerState is what the page last reported about the embed.
type PlayerState struct {
	Project  string  `json:"project"`
	Index    int     `json:"index"`
	Playing  bool    `json:"playing"`
	Muted    bool    `json:"muted"`
	Progress float64 `json:"progress"`
}

// PlayerTracker mirrors the browser-side embed. It follows the carousel
// index but shares no state with the transition lock.
type PlayerTracker struct {
	mu sync.Mutex
	st PlayerState
}

var _ Player = (*PlayerTracker)(nil)

// NewPlayerTracker starts playing and muted, which is how embeds autoplay.
func NewPlayerTracker() *PlayerTracker {
	return &PlayerTracker{st: PlayerState{Playing: true, Muted: true}}
}

func (p *PlayerTracker) Play() {
	p.mu.Lock()
	p.st.Playing = true
	p.mu.Unlock()
}

func (p *PlayerTracker) Pause() {
	p.mu.Lock()
	p.st.Playing = false
	p.mu.Unlock()
}

func (p *PlayerTracker) Mute() {
	p.mu.Lock()
	p.st.Muted = true
	p.mu.Unlock()
}

func (p *PlayerTracker) Unmute() {
	p.mu.Lock()
	p.st.Muted = false
	p.mu.Unlock()
}

// Progress is the playback position as a percentage.
func (p *PlayerTracker) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.Progress
}

// ReportTime records a position report in seconds. Reports without a
// known duration are ignored.
func (p *PlayerTracker) ReportTime(current, duration float64) {
	if duration <= 0 {
		return
	}
	pct := current / duration * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	p.mu.Lock()
	p.st.Progress = pct
	p.mu.Unlock()
}

// Ended marks playback finished.
func (p *PlayerTracker) Ended() {
	p.mu.Lock()
	p.st.Playing = false
	p.st.Progress = 100
	p.mu.Unlock()
}

// Follow resets progress and resumes playback when the carousel moves to
// a different item. Mute carries over. It reports whether a reset
// happened.
func (p *PlayerTracker) Follow(project string, index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if project == p.st.Project && index == p.st.Index {
		return false
	}
	p.st.Project = project
	p.st.Index = index
	p.st.Progress = 0
	p.st.Playing = true
	return true
}

func (p *PlayerTracker) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st
}
