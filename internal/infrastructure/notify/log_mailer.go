package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// LogMailer writes emails to the log instead of sending them. Development only.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) Send(_ context.Context, email ports.Email) error {
	m.log.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Int("html_bytes", len(email.HTML)).
		Msg("email not sent (log mailer)")
	m.log.Debug().Str("to", email.To).Str("html", email.HTML).Msg("email body")
	return nil
}
