package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campusconnect"

// NotificationsTotal counts notification outcomes.
// Labels:
//   - kind: verification, resend, password_reset
//   - result: sent, failed, dropped, duplicate
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications by kind and outcome.",
	},
	[]string{"kind", "result"},
)

// QueueDepth tracks notifications waiting in each worker channel.
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SendDuration measures mail transport latency.
var SendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_duration_seconds",
		Help:      "Duration of a single mail transport call.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
