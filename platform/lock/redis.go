package lock

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
	predis "github.com/DRLee98/random-chat-backend-sub000/platform/redis"
)

const (
	prefixLock = "lock"
	retryMin   = 10 * time.Millisecond
	retryMax   = 250 * time.Millisecond
)

// Only the holder of the token may delete the key.
var releaseScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	pool   *redis.Pool
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// RedisLocker returns a Locker leasing keys in Redis for ttl, so a crashed
// holder cannot block a key forever.
func RedisLocker(pool *redis.Pool, prefix string, ttl, wait time.Duration) Locker {
	return &redisLocker{
		pool:   pool,
		prefix: prefix,
		ttl:    ttl,
		wait:   wait,
	}
}

func (l *redisLocker) Lock(key string) (Release, error) {
	token, err := generate.RandomToken(16)
	if err != nil {
		return nil, err
	}

	var (
		deadline = time.Now().Add(l.wait)
		k        = fmt.Sprintf("%s:%s:%s", prefixLock, l.prefix, key)
		backoff  = retryMin
	)

	for {
		ok, err := l.acquire(k, token)
		if err != nil {
			return nil, err
		}

		if ok {
			return l.release(k, token), nil
		}

		if time.Now().Add(backoff).After(deadline) {
			return nil, unavailable(key, l.wait)
		}

		time.Sleep(backoff)

		if backoff *= 2; backoff > retryMax {
			backoff = retryMax
		}
	}
}

func (l *redisLocker) acquire(key, token string) (bool, error) {
	con := l.pool.Get()
	defer con.Close()

	_, err := redis.String(con.Do(
		predis.CommandSet,
		key,
		token,
		predis.CommandNX,
		predis.CommandPX,
		l.ttl.Milliseconds(),
	))
	if err == redis.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock acquire failed: %s", err)
	}

	return true, nil
}

func (l *redisLocker) release(key, token string) Release {
	return func() error {
		con := l.pool.Get()
		defer con.Close()

		if _, err := releaseScript.Do(con, key, token); err != nil {
			return fmt.Errorf("lock release failed: %s", err)
		}

		return nil
	}
}
