package ports

import (
	"context"
	"time"
)

// NotificationKind selects the email template.
type NotificationKind string

const (
	NotifyVerification  NotificationKind = "verification"
	NotifyResend        NotificationKind = "resend"
	NotifyPasswordReset NotificationKind = "password_reset"
)

// Notification is a one-time-code email waiting to be sent.
type Notification struct {
	Kind      NotificationKind
	To        string
	Name      string
	Code      string
	ExpiresIn time.Duration
}

// Notifier accepts notifications for asynchronous delivery. Dispatch never
// blocks and never reports delivery failures to the caller.
type Notifier interface {
	Dispatch(n Notification)
}

// Email is a rendered message ready for a transport.
type Email struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Mailer delivers a single rendered email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
