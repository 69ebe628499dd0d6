package lock

import (
	"context"
	"time"

	"bakery-flashsale/internal/pkg/errs"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "flashsale:job-lock:"

var ErrLockHeld = errs.New("job lock held by another instance")

// Only the holder's token may delete the key.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker lets one instance of a fleet run a scheduled job per cycle.
type RedisLocker struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ gocron.Locker = (*RedisLocker)(nil)

func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	token := uuid.NewString()
	acquired, err := l.rdb.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, errs.Wrap(err, "failed to acquire job lock")
	}
	if !acquired {
		return nil, ErrLockHeld
	}
	return &redisLock{rdb: l.rdb, key: keyPrefix + key, token: token}, nil
}

type redisLock struct {
	rdb   redis.Scripter
	key   string
	token string
}

func (l *redisLock) Unlock(ctx context.Context) error {
	if err := unlockScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil {
		return errs.Wrap(err, "failed to release job lock")
	}
	return nil
}
