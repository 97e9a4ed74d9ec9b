package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const defaultDedupTTL = 24 * time.Hour

// NotificationDedup remembers delivered notification intents in Redis.
// Key format: notify:<package_id>:<status>:<unix_timestamp>
type NotificationDedup struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.NotificationDedup = (*NotificationDedup)(nil)

// NewNotificationDedup creates a NotificationDedup. If ttl <= 0, defaultDedupTTL is used.
func NewNotificationDedup(client *redis.Client, ttl time.Duration) *NotificationDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &NotificationDedup{client: client, ttl: ttl}
}

// IsDuplicate reports whether this intent was already delivered.
func (d *NotificationDedup) IsDuplicate(ctx context.Context, packageID string, status domain.PackageStatus, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(packageID, status, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this intent was delivered (expires after the configured ttl).
func (d *NotificationDedup) Mark(ctx context.Context, packageID string, status domain.PackageStatus, ts time.Time) error {
	if err := d.client.Set(ctx, d.key(packageID, status, ts), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func (d *NotificationDedup) key(packageID string, status domain.PackageStatus, ts time.Time) string {
	return fmt.Sprintf("notify:%s:%s:%d", packageID, status, ts.Unix())
}
