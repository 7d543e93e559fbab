package limiter

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// KEYS[1] quota key, ARGV[1] limit, ARGV[2] window in milliseconds. Returns the
// remaining quota and the window's remaining ttl in milliseconds.
var requestScript = redis.NewScript(1, `
local quota = redis.call("DECR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	quota = tonumber(ARGV[1]) - 1
	redis.call("SET", KEYS[1], quota, "PX", ARGV[2])
	ttl = tonumber(ARGV[2])
end
if quota < 0 then
	quota = -1
end
return {quota, ttl}
`)

type redisLimiter struct {
	prefix string
	pool   *redis.Pool
}

// Redis returns a Redis Limiter implementation.
func Redis(pool *redis.Pool, prefix string) Limiter {
	return &redisLimiter{
		prefix: prefix,
		pool:   pool,
	}
}

func (l *redisLimiter) Request(limitee *Limitee) (int64, time.Time, error) {
	var (
		conn = l.pool.Get()
		key  = fmt.Sprintf("%s:%s", l.prefix, limitee.Hash)
	)
	defer conn.Close()

	res, err := redis.Int64s(requestScript.Do(
		conn,
		key,
		limitee.Limit,
		limitee.WindowSize.Milliseconds(),
	))
	if err != nil {
		return 0, time.Now(), err
	}

	if len(res) != 2 {
		return 0, time.Now(), fmt.Errorf("limiter: unexpected reply %v", res)
	}

	return res[0], time.Now().Add(time.Duration(res[1]) * time.Millisecond), nil
}
