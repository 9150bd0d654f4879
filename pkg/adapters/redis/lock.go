// Package redis provides the Redis-backed session store and distributed
// locker used by multi-replica bot deployments.
package redis

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aretw0/tgflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock key only if it still holds our token, so
// an unlock that fires after the TTL expired cannot release someone
// else's acquisition.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// retryInterval is how often a blocked Lock call re-attempts SET NX.
const retryInterval = 50 * time.Millisecond

// Locker implements ports.DistributedLocker with SET NX PX. One update
// per user is in flight at a time across all replicas.
type Locker struct {
	client *backend.Client
	prefix string
	seq    atomic.Int64
}

// NewLocker creates a Redis locker. Keys are namespaced under prefix.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// token returns a value unique to one acquisition of this process.
func (l *Locker) token() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatInt(l.seq.Add(1), 10)
}

// Lock blocks until the key is acquired or ctx is done. The returned
// func releases the lock; after the TTL the lock falls away on its own.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := l.token()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
