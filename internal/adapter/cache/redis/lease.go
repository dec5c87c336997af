package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/strogmv/claimcomms/internal/domain"
)

// releaseScript deletes the lease only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LeaseLocker grants short exclusive leases on ledger keys.
type LeaseLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewLeaseLocker(client redis.UniversalClient, prefix string, ttl time.Duration) *LeaseLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LeaseLocker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire returns domain.ErrKeyBusy while another holder owns key.
func (l *LeaseLocker) Acquire(ctx context.Context, key string) (func(), error) {
	name := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		return nil, domain.ErrKeyBusy
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{name}, token).Err(); err != nil {
			slog.Warn("release lease", "key", name, "error", err)
		}
	}
	return release, nil
}
