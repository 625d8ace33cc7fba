// Package metrics defines the custom Prometheus metrics for the auth API.
// HTTP request metrics come from echoprometheus; these count business
// outcomes that the status code alone does not tell apart.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

const namespace = "campusconnect"

// AuthOperationsTotal counts auth operations by outcome.
// Labels:
//   - operation: "signup", "verify", "resend", "login", "forgot", "reset", "profile"
//   - result: "ok" or the failure kind (see Outcome)
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// LoginsBlockedTotal counts logins refused because the account is unverified.
var LoginsBlockedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_unverified_total",
		Help:      "Total number of correct-password logins on unverified accounts.",
	},
)

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrAccountExists):
		return "conflict"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return "already_verified"
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, domain.ErrCodeExpired):
		return "code_expired"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}

// ObserveAuth records one auth operation.
func ObserveAuth(operation string, err error) {
	AuthOperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}
