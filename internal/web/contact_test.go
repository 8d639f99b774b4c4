package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/contact"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []contact.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m contact.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func contactForm() url.Values {
	return url.Values{
		"fullName": {"  Ada Lovelace "},
		"email":    {"ada@example.com"},
		"message":  {"Would love to chat about the music player."},
	}
}

func TestContact_Delivered(t *testing.T) {
	sender := &fakeSender{}
	e := newTestEnv(t, sender)

	rec := e.do(http.MethodPost, "/contact", contactForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert success")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Ada Lovelace", sender.sent[0].Name)

	msgs, err := e.store.RecentContacts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Delivered)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ContactSubmissions.WithLabelValues("delivered")))
}

func TestContact_AcceptsNameField(t *testing.T) {
	sender := &fakeSender{}
	e := newTestEnv(t, sender)

	form := contactForm()
	form.Del("fullName")
	form.Set("name", "Grace")
	rec := e.do(http.MethodPost, "/contact", form)
	assert.Contains(t, rec.Body.String(), "alert success")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Grace", sender.sent[0].Name)
}

func TestContact_Invalid(t *testing.T) {
	sender := &fakeSender{}
	e := newTestEnv(t, sender)

	form := contactForm()
	form.Set("email", "nope")
	rec := e.do(http.MethodPost, "/contact", form)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert error")
	assert.Contains(t, rec.Body.String(), "Email address is not valid.")
	assert.Empty(t, sender.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ContactSubmissions.WithLabelValues("invalid")))

	msgs, err := e.store.RecentContacts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestContact_SendFailureIsKept(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	e := newTestEnv(t, sender)

	rec := e.do(http.MethodPost, "/contact", contactForm())
	assert.Contains(t, rec.Body.String(), "error sending your message")

	msgs, err := e.store.RecentContacts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Delivered)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ContactSubmissions.WithLabelValues("failed")))
}

func TestContact_NotConfigured(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(http.MethodPost, "/contact", contactForm())
	assert.Contains(t, rec.Body.String(), "alert error")
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ContactSubmissions.WithLabelValues("not_configured")))
}

func TestContact_RateLimited(t *testing.T) {
	sender := &fakeSender{}
	e := newTestEnv(t, sender, func(c *Config) { c.ContactPerMinute = 1 })

	e.do(http.MethodPost, "/contact", contactForm())
	rec := e.do(http.MethodPost, "/contact", contactForm())

	assert.Contains(t, rec.Body.String(), "wait a minute")
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ContactSubmissions.WithLabelValues("rate_limited")))
}

func TestDisplayError(t *testing.T) {
	err := contact.Message{Name: "a", Email: "a@example.com"}.Validate()
	assert.Equal(t, "Message is required.", displayError(err))
}
