package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = time.Hour

// NotificationDedup records which one-time codes have already been mailed so a
// code is sent at most once even if it is dispatched twice.
// Key format: notify:<email>:<kind>:<code>
type NotificationDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNotificationDedup wraps client. Keys expire after ttl, which should be at
// least the code lifetime.
func NewNotificationDedup(client *redis.Client, ttl time.Duration) *NotificationDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &NotificationDedup{client: client, ttl: ttl}
}

// Claim atomically marks the notification as sent. It reports false when an
// earlier call already claimed the same key.
func (d *NotificationDedup) Claim(ctx context.Context, email, kind, code string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(email, kind, code), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release forgets a claim so a failed send can be tried again later.
func (d *NotificationDedup) Release(ctx context.Context, email, kind, code string) error {
	return d.client.Del(ctx, d.key(email, kind, code)).Err()
}

func (d *NotificationDedup) key(email, kind, code string) string {
	return fmt.Sprintf("notify:%s:%s:%s", email, kind, code)
}
