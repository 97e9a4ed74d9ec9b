package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 2 * time.Second
	lockRetryDelay  = 25 * time.Millisecond
	releaseTimeout  = 2 * time.Second
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PackageLocker serializes package transitions across processes.
// Key format: lock:package:<package_id>
type PackageLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

var _ ports.Locker = (*PackageLocker)(nil)

// NewPackageLocker creates a PackageLocker. ttl bounds how long a crashed holder
// blocks the package; wait bounds how long Acquire polls for a held lock.
func NewPackageLocker(client *redis.Client, ttl, wait time.Duration) *PackageLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &PackageLocker{client: client, ttl: ttl, wait: wait}
}

// Acquire takes the lock for packageID, polling until it is free or the wait
// budget is spent. It returns domain.ErrPackageBusy in the latter case.
func (l *PackageLocker) Acquire(ctx context.Context, packageID string) (func(), error) {
	key := l.key(packageID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrPackageBusy
		}

		timer := time.NewTimer(lockRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *PackageLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

func (l *PackageLocker) key(packageID string) string {
	return fmt.Sprintf("lock:package:%s", packageID)
}
