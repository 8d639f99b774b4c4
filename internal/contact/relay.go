package contact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RelaySender posts the form to a third-party relay endpoint
// (Formspree-style) as name, email and message fields.
type RelaySender struct {
	endpoint string
	client   *http.Client
}

func NewRelaySender(endpoint string, timeout time.Duration) *RelaySender {
	return &RelaySender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *RelaySender) Send(ctx context.Context, m Message) error {
	form := url.Values{}
	form.Set("name", m.Name)
	form.Set("email", m.Email)
	form.Set("message", m.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("relay request: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Service: "relay", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
