package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

const defaultBrevoBaseURL = "https://api.brevo.com"

// BrevoConfig holds the transactional email API settings.
type BrevoConfig struct {
	BaseURL  string
	APIKey   string
	FromName string
	FromAddr string
	Timeout  time.Duration
}

// BrevoMailer sends mail through Brevo's transactional email API.
type BrevoMailer struct {
	client *resty.Client
	from   brevoContact
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func NewBrevoMailer(cfg BrevoConfig) *BrevoMailer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBrevoBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("api-key", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &BrevoMailer{
		client: cli,
		from:   brevoContact{Name: cfg.FromName, Email: cfg.FromAddr},
	}
}

func (m *BrevoMailer) Send(ctx context.Context, email ports.Email) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(brevoEmail{
			Sender:      m.from,
			To:          []brevoContact{{Name: email.ToName, Email: email.To}},
			Subject:     email.Subject,
			HTMLContent: email.HTML,
		}).
		Post("/v3/smtp/email")
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("brevo: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}
