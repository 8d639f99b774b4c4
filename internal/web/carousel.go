package web

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/carousel"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/session"
)

const ssePing = 25 * time.Second

// carouselView is what the fragment and the JSON endpoints render.
type carouselView struct {
	carousel.Snapshot
	Applied  bool                 `json:"applied"`
	Player   carousel.PlayerState `json:"player"`
	Projects []content.Project    `json:"-"`
}

func (s *Server) view(sess *session.Session, snap carousel.Snapshot, applied bool) carouselView {
	return carouselView{
		Snapshot: snap,
		Applied:  applied,
		Player:   sess.Player.State(),
		Projects: s.site.Projects,
	}
}

// render answers with JSON for API clients and the carousel fragment for
// htmx swaps.
func (s *Server) render(c *gin.Context, sess *session.Session, applied bool) {
	v := s.view(sess, sess.Controller.Snapshot(), applied)
	c.Header("X-Carousel-Applied", strconv.FormatBool(applied))
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, v)
		return
	}
	c.HTML(http.StatusOK, "carousel.html", v)
}

func (s *Server) carouselState(c *gin.Context) {
	s.render(c, sessionFrom(c), false)
}

// carouselAction wraps a controller operation. Operations the controller
// ignores (transition lock, single item) still answer 200 with the
// unchanged state.
func (s *Server) carouselAction(op func(*session.Session) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		s.render(c, sess, op(sess))
	}
}

func (s *Server) selectProject(c *gin.Context) {
	p, ok := s.site.Project(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown project"})
		return
	}
	sess := sessionFrom(c)
	s.render(c, sess, sess.Controller.SelectProject(p))
}

func indexParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return i, true
}

func (s *Server) jump(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	sess := sessionFrom(c)
	s.render(c, sess, sess.Controller.JumpTo(i))
}

func (s *Server) mediaLoaded(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	sess := sessionFrom(c)
	s.render(c, sess, sess.Controller.ReportLoadSuccessAt(i))
}

func (s *Server) mediaError(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	sess := sessionFrom(c)
	s.render(c, sess, sess.Controller.ReportLoadError(i))
}

func (s *Server) playerAction(c *gin.Context) {
	sess := sessionFrom(c)
	applied := true
	switch c.Param("action") {
	case "play":
		sess.Player.Play()
	case "pause":
		sess.Player.Pause()
	case "mute":
		sess.Player.Mute()
	case "unmute":
		sess.Player.Unmute()
	case "ended":
		sess.Player.Ended()
		applied = sess.Controller.Advance()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown player action"})
		return
	}
	s.render(c, sess, applied)
}

func (s *Server) playerProgress(c *gin.Context) {
	current, err1 := strconv.ParseFloat(c.PostForm("current"), 64)
	duration, err2 := strconv.ParseFloat(c.PostForm("duration"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current and duration must be numbers"})
		return
	}
	sess := sessionFrom(c)
	sess.Player.ReportTime(current, duration)
	c.JSON(http.StatusOK, sess.Player.State())
}

// carouselEvents streams a snapshot after every applied transition as
// server-sent events, starting with the current state.
func (s *Server) carouselEvents(c *gin.Context) {
	sess := sessionFrom(c)
	updates, cancel := sess.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", s.view(sess, sess.Controller.Snapshot(), false))
	c.Writer.Flush()

	ping := time.NewTicker(ssePing)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", s.view(sess, snap, true))
			return true
		case <-ping.C:
			c.SSEvent("ping", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
