package contact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMessage() Message {
	return Message{Name: "Ada", Email: "ada@example.com", Body: "Loved the terminal mail client."}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validMessage().Validate())

	cases := map[string]func(*Message){
		"missing name":    func(m *Message) { m.Name = "" },
		"missing email":   func(m *Message) { m.Email = "" },
		"missing body":    func(m *Message) { m.Body = "" },
		"bad email":       func(m *Message) { m.Email = "not-an-email" },
		"no domain dot":   func(m *Message) { m.Email = "ada@localhost" },
		"display name":    func(m *Message) { m.Email = "Ada <ada@example.com>" },
		"multi-line name": func(m *Message) { m.Name = "Ada\r\nBcc: x@example.com" },
		"too long":        func(m *Message) { m.Body = strings.Repeat("x", MaxBodyRunes+1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := validMessage()
			mutate(&m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidInput)
		})
	}
}

func TestNormalize(t *testing.T) {
	m := Message{Name: "  Ada ", Email: " ada@example.com\n", Body: "\thi "}.Normalize()
	assert.Equal(t, Message{Name: "Ada", Email: "ada@example.com", Body: "hi"}, m)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 429}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 400}))
	assert.True(t, IsRetryable(ErrUnavailable))
	assert.False(t, IsRetryable(ErrInvalidInput))
	assert.False(t, IsRetryable(errors.New("boom")))
}

func TestDisabled(t *testing.T) {
	assert.ErrorIs(t, Disabled.Send(context.Background(), validMessage()), ErrNotConfigured)
}

func TestRelaySender_PostsForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		got = map[string]string{
			"name":    r.PostForm.Get("name"),
			"email":   r.PostForm.Get("email"),
			"message": r.PostForm.Get("message"),
		}
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := NewRelaySender(srv.URL, time.Second).Send(context.Background(), validMessage())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "Loved the terminal mail client.",
	}, got)
}

func TestRelaySender_StatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "form not found", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewRelaySender(srv.URL, time.Second).Send(context.Background(), validMessage())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "form not found", apiErr.Message)
	assert.False(t, IsRetryable(err))
}

func TestRelaySender_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewRelaySender(url, time.Second).Send(context.Background(), validMessage())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSMTPSender(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: "587", User: "me@example.com", Password: "pw", To: "inbox@example.com"})
	var gotAddr string
	var gotMsg []byte
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, "me@example.com", from)
		assert.Equal(t, []string{"inbox@example.com"}, to)
		return nil
	}

	require.NoError(t, s.Send(context.Background(), validMessage()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Portfolio Contact: Ada\r\n")
	assert.Contains(t, string(gotMsg), "Reply-To: ada@example.com\r\n")
	assert.Contains(t, string(gotMsg), "Loved the terminal mail client.")
}

func TestSMTPSender_NotConfigured(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: "587"})
	assert.ErrorIs(t, s.Send(context.Background(), validMessage()), ErrNotConfigured)
}

func TestSMTPSender_FailureIsRetryable(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "h", Port: "25", User: "u", Password: "p", To: "t@example.com"})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 try later") }

	err := s.Send(context.Background(), validMessage())
	assert.True(t, IsRetryable(err))
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetrying_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	next := SenderFunc(func(context.Context, Message) error {
		if calls.Add(1) < 3 {
			return &APIError{Service: "relay", StatusCode: 502}
		}
		return nil
	})

	err := NewRetrying(next, fastRetry(3)).Send(context.Background(), validMessage())
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetrying_StopsOnPermanent(t *testing.T) {
	var calls atomic.Int32
	next := SenderFunc(func(context.Context, Message) error {
		calls.Add(1)
		return &APIError{Service: "relay", StatusCode: 422}
	})

	err := NewRetrying(next, fastRetry(5)).Send(context.Background(), validMessage())
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetrying_GivesUp(t *testing.T) {
	var calls atomic.Int32
	next := SenderFunc(func(context.Context, Message) error {
		calls.Add(1)
		return ErrUnavailable
	})

	err := NewRetrying(next, fastRetry(4)).Send(context.Background(), validMessage())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualValues(t, 4, calls.Load())
}

func TestRetrying_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	next := SenderFunc(func(context.Context, Message) error {
		cancel()
		return ErrUnavailable
	})

	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}
	err := NewRetrying(next, cfg).Send(ctx, validMessage())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("a"), "one token refills every 30s")

	now = now.Add(11 * time.Minute)
	assert.Equal(t, 2, l.Prune())
}
