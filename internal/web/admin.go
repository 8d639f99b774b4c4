package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	adminCookie      = "admin_token"
	devAdminPassword = "admin123"
)

// adminAuth redirects to the login page unless the admin cookie matches.
func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) adminCredentials() (string, string) {
	user, pass := s.cfg.AdminUsername, s.cfg.AdminPassword
	if user == "" {
		user = "admin"
	}
	if pass == "" && s.cfg.Development {
		s.log.Warn().Msg("using default admin password, set ADMIN_PASSWORD")
		pass = devAdminPassword
	}
	return user, pass
}

func (s *Server) checkCredentials(user, pass string) bool {
	wantUser, wantPass := s.adminCredentials()
	if wantPass == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userOK && passOK
}

func (s *Server) adminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"retention": s.cfg.VisitorRetention.String(),
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		who := s.store.HashIP(c.ClientIP())
		if !s.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			s.log.Warn().Str("client", who).Msg("failed admin login attempt")
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", !s.cfg.Development, true)
		s.log.Info().Str("client", who).Msg("admin login successful")
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", !s.cfg.Development, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin", s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("error loading admin stats")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":    stats,
			"sessions": s.sessions.Len(),
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			s.log.Error().Err(err).Msg("error loading visitors")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load visitors"})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visitors})
	})

	admin.GET("/contacts", func(c *gin.Context) {
		contacts, err := s.store.RecentContacts(c.Request.Context(), 200)
		if err != nil {
			s.log.Error().Err(err).Msg("error loading contact messages")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load messages"})
			return
		}
		c.HTML(http.StatusOK, "admin-contacts.html", gin.H{"contacts": contacts})
	})

	admin.POST("/privacy/purge", func(c *gin.Context) {
		if s.cfg.VisitorRetention <= 0 {
			c.JSON(http.StatusOK, gin.H{"removed": 0})
			return
		}
		n, err := s.store.PurgeVisitorsBefore(c.Request.Context(), time.Now().Add(-s.cfg.VisitorRetention))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge visitor data"})
			return
		}
		s.log.Info().Int64("removed", n).Msg("admin triggered privacy cleanup")
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.log.Info().Str("client", s.store.HashIP(c.ClientIP())).Msg("admin stats exported")
		c.JSON(http.StatusOK, stats)
	})
}
