// Package contact validates contact form submissions and delivers them
// through a third-party form relay or SMTP.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MaxBodyRunes caps the message length.
const MaxBodyRunes = 5000

// Sentinel errors for common failure modes.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotConfigured = errors.New("contact delivery not configured")
	ErrUnavailable   = errors.New("service unavailable")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Message is a contact form submission.
type Message struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Body  string `json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (m Message) Normalize() Message {
	return Message{
		Name:  strings.TrimSpace(m.Name),
		Email: strings.TrimSpace(m.Email),
		Body:  strings.TrimSpace(m.Body),
	}
}

// Validate checks the submission. All failures wrap ErrInvalidInput and
// carry a message fit for display.
func (m Message) Validate() error {
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case m.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case m.Body == "":
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	case utf8.RuneCountInString(m.Body) > MaxBodyRunes:
		return fmt.Errorf("%w: message is longer than %d characters", ErrInvalidInput, MaxBodyRunes)
	case strings.ContainsAny(m.Name, "\r\n"):
		return fmt.Errorf("%w: name must be a single line", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(m.Email)
	if err != nil || addr.Address != m.Email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return fmt.Errorf("%w: email address is not valid", ErrInvalidInput)
	}
	return nil
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// Disabled is the Sender used when nothing is configured.
var Disabled Sender = SenderFunc(func(context.Context, Message) error {
	return ErrNotConfigured
})

// APIError represents a non-2xx answer from the relay.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

// IsRetryable returns true if the error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	return errors.Is(err, ErrUnavailable)
}
