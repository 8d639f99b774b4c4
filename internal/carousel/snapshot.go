package carousel

import (
	"fmt"

	"github.com/Zachkp/portfolio/internal/content"
)

// Phase is the load state of the item at the current index. A single
// tagged value replaces separate loaded/errored flags so the two can
// never both be set.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Event names the transition that produced a snapshot.
type Event string

const (
	EventSelect      Event = "select"
	EventSettled     Event = "settled"
	EventAutoTick    Event = "auto_tick"
	EventAdvance     Event = "advance"
	EventNext        Event = "next"
	EventPrevious    Event = "previous"
	EventJump        Event = "jump"
	EventFullscreen  Event = "fullscreen"
	EventAutoAdvance Event = "auto_advance"
	EventLoadSuccess Event = "load_success"
	EventLoadError   Event = "load_error"
	EventClosed      Event = "closed"
)

// Indicator is one dot in the position strip.
type Indicator struct {
	Index  int  `json:"index"`
	Active bool `json:"active"`
	Failed bool `json:"failed"`
}

// Snapshot is a read-only copy of the controller state, enough to render
// the active item, the position indicator and the controls.
type Snapshot struct {
	Project       *content.Project  `json:"-"`
	ProjectID     string            `json:"project_id"`
	ProjectTitle  string            `json:"project_title"`
	Index         int               `json:"index"`
	Count         int               `json:"count"`
	Item          content.MediaItem `json:"item"`
	Phase         Phase             `json:"phase"`
	AutoAdvance   bool              `json:"auto_advance"`
	Transitioning bool              `json:"transitioning"`
	Fullscreen    bool              `json:"fullscreen"`
	CanNavigate   bool              `json:"can_navigate"`
	Position      string            `json:"position"`
	Indicators    []Indicator       `json:"indicators"`
	Event         Event             `json:"event"`
	Version       uint64            `json:"version"`
}

// Loading reports whether the loading overlay should be shown.
func (s Snapshot) Loading() bool { return s.Phase == PhaseLoading }

func position(index, count int) string {
	return fmt.Sprintf("%d / %d", index+1, count)
}
