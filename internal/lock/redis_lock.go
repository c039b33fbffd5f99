package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Locker hands out short leases so that only one replica runs a periodic
// job per tick. Correctness never depends on the lease; it only avoids
// duplicate work.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	Client redis.Cmdable
	Token  func() string
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{Client: client}
}

func (l *RedisLocker) token() string {
	if l.Token != nil {
		return l.Token()
	}
	return uuid.NewString()
}

// TryLock sets key with a random token if it does not exist. ok is false
// when another holder owns the lease.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	token := l.token()
	acquired, err := l.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrapf(err, "acquire lease %s", key)
	}
	if !acquired {
		return nil, false, nil
	}
	return redisLease{client: l.Client, key: key, token: token}, true, nil
}

type redisLease struct {
	client redis.Scripter
	key    string
	token  string
}

// Release deletes the key only while it still carries our token, so an
// expired lease taken over by another replica is left alone.
func (l redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrapf(err, "release lease %s", l.key)
	}
	return nil
}
