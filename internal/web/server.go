// Package web serves the portfolio: the page itself, the htmx fragments
// the page swaps in, the carousel endpoints, the contact form and the
// admin dashboard.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/session"
	"github.com/Zachkp/portfolio/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Config holds the server's own settings.
type Config struct {
	Development      bool
	ImagesDir        string
	AdminUsername    string
	AdminPassword    string
	VisitorRetention time.Duration
	ContactTimeout   time.Duration
	ContactPerMinute int
}

// Deps are the collaborators the handlers use.
type Deps struct {
	Site     *content.Site
	Sessions *session.Registry
	Store    *store.Store
	Metrics  *metrics.Metrics
	Sender   contact.Sender
	Logger   zerolog.Logger
}

type Server struct {
	cfg      Config
	site     *content.Site
	sessions *session.Registry
	store    *store.Store
	metrics  *metrics.Metrics
	sender   contact.Sender
	limiter  *contact.Limiter
	log      zerolog.Logger

	adminToken string
	engine     *gin.Engine

	// background visitor writes
	tracking sync.WaitGroup
}

// New builds the gin engine and registers every route.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Site == nil || deps.Sessions == nil || deps.Store == nil || deps.Metrics == nil {
		return nil, errors.New("web: site, sessions, store and metrics are required")
	}
	if deps.Sender == nil {
		deps.Sender = contact.Disabled
	}
	if cfg.ContactTimeout <= 0 {
		cfg.ContactTimeout = 10 * time.Second
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		site:       deps.Site,
		sessions:   deps.Sessions,
		store:      deps.Store,
		metrics:    deps.Metrics,
		sender:     deps.Sender,
		limiter:    contact.NewLimiter(cfg.ContactPerMinute),
		log:        deps.Logger,
		adminToken: token,
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(s.log))
	r.Use(s.metrics.Middleware())
	r.Use(s.visitorTracking())
	r.SetHTMLTemplate(tmpl)

	r.StaticFS("/static", http.FS(static))
	if cfg.ImagesDir != "" {
		r.Static("/images", cfg.ImagesDir)
	}

	s.routes(r)
	s.engine = r

	s.log.Info().Msg("admin access available at /admin/login")
	if cfg.Development {
		s.log.Debug().Str("token", s.adminToken).Msg("admin token (development only)")
	}
	return s, nil
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	r.GET("/", s.withSession(), s.index)
	r.GET("/contact-form", s.contactForm)
	r.GET("/work-content", s.workContent)
	r.GET("/education-content", s.educationContent)
	r.POST("/contact", s.submitContact)

	c := r.Group("/carousel", s.withSession())
	c.GET("", s.carouselState)
	c.GET("/events", s.carouselEvents)
	c.POST("/projects/:id", s.selectProject)
	c.POST("/next", s.carouselAction(func(sess *session.Session) bool { return sess.Controller.Next() }))
	c.POST("/previous", s.carouselAction(func(sess *session.Session) bool { return sess.Controller.Previous() }))
	c.POST("/jump/:index", s.jump)
	c.POST("/fullscreen", s.carouselAction(func(sess *session.Session) bool { return sess.Controller.ToggleFullscreen() }))
	c.POST("/autoplay", s.carouselAction(func(sess *session.Session) bool { return sess.Controller.ToggleAutoAdvance() }))
	c.POST("/media/:index/loaded", s.mediaLoaded)
	c.POST("/media/:index/error", s.mediaError)
	c.POST("/player/progress", s.playerProgress)
	c.POST("/player/:action", s.playerAction)

	s.adminRoutes(r)
}

// Handler is the http.Handler to serve.
func (s *Server) Handler() http.Handler { return s.engine }

// Wait blocks until background visitor writes have finished.
func (s *Server) Wait() { s.tracking.Wait() }

// RunMaintenance prunes idle rate-limit buckets and purges visitor rows
// older than the retention window until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context, interval time.Duration) {
	s.maintain(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.maintain(ctx)
		}
	}
}

func (s *Server) maintain(ctx context.Context) {
	if n := s.limiter.Prune(); n > 0 {
		s.log.Debug().Int("removed", n).Msg("pruned contact rate limiters")
	}
	if s.cfg.VisitorRetention <= 0 {
		return
	}
	n, err := s.store.PurgeVisitorsBefore(ctx, time.Now().Add(-s.cfg.VisitorRetention))
	if err != nil {
		s.log.Error().Err(err).Msg("visitor cleanup failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("removed", n).Dur("retention", s.cfg.VisitorRetention).Msg("privacy cleanup removed old visitor records")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
}
