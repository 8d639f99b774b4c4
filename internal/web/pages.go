package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/store"
)

func (s *Server) index(c *gin.Context) {
	sess := sessionFrom(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":     s.site,
		"skills":   s.site.SkillGroups(),
		"carousel": s.view(sess, sess.Controller.Snapshot(), false),
	})
}

// HTMX contact form endpoint - returns just the form HTML
func (s *Server) contactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title":   "Contact Me",
		"contact": s.site.Contact,
	})
}

func (s *Server) workContent(c *gin.Context) {
	c.HTML(http.StatusOK, "entries.html", gin.H{
		"heading": "Work Experience",
		"entries": s.site.Experience,
	})
}

func (s *Server) educationContent(c *gin.Context) {
	c.HTML(http.StatusOK, "entries.html", gin.H{
		"heading": "Education",
		"entries": s.site.Education,
	})
}

const (
	msgContactSent    = "Thank you for your message! I'll get back to you soon."
	msgContactFailed  = "Sorry, there was an error sending your message. Please try again later."
	msgContactLimited = "You've sent a few messages already. Please wait a minute and try again."
)

// submitContact handles the contact form. Every outcome answers 200 with a
// fragment so htmx swaps it into place.
func (s *Server) submitContact(c *gin.Context) {
	name := c.PostForm("fullName")
	if name == "" {
		name = c.PostForm("name")
	}
	msg := contact.Message{
		Name:  name,
		Email: c.PostForm("email"),
		Body:  c.PostForm("message"),
	}.Normalize()

	if !s.limiter.Allow(c.ClientIP()) {
		s.metrics.RecordContact("rate_limited")
		s.contactError(c, msgContactLimited)
		return
	}
	if err := msg.Validate(); err != nil {
		s.metrics.RecordContact("invalid")
		s.contactError(c, displayError(err))
		return
	}

	ctx := c.Request.Context()
	id, err := s.store.RecordContact(ctx, store.ContactRecord{Name: msg.Name, Email: msg.Email, Body: msg.Body})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store contact message")
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.ContactTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, msg); err != nil {
		result := "failed"
		if errors.Is(err, contact.ErrNotConfigured) {
			result = "not_configured"
		}
		s.metrics.RecordContact(result)
		s.log.Error().Err(err).Int64("id", id).Msg("error sending contact message")
		s.contactError(c, msgContactFailed)
		return
	}

	if id > 0 {
		if err := s.store.MarkDelivered(ctx, id); err != nil {
			s.log.Error().Err(err).Int64("id", id).Msg("failed to mark contact message delivered")
		}
	}
	s.metrics.RecordContact("delivered")
	s.log.Info().Int64("id", id).Msg("contact message sent")
	c.HTML(http.StatusOK, "contact-success.html", gin.H{"success": msgContactSent})
}

func (s *Server) contactError(c *gin.Context, message string) {
	c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": message})
}

// displayError strips the sentinel prefix from a validation error.
func displayError(err error) string {
	msg := strings.TrimPrefix(err.Error(), contact.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return msgContactFailed
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
