// +build integration

package lock

import (
	"flag"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"

	serr "github.com/DRLee98/random-chat-backend-sub000/error"
)

var redisAddr = flag.String("redis.addr", "127.0.0.1:6379", "Redis address to test against")

func TestRedisLocker(t *testing.T) {
	var (
		pool = &redis.Pool{
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", *redisAddr)
			},
			MaxIdle: 10,
		}
		l = RedisLocker(pool, "locktest", time.Second, 50*time.Millisecond)
	)

	release, err := l.Lock("room.1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.Lock("room.1"); !serr.IsLockUnavailable(err) {
		t.Errorf("have %v, want %v", err, serr.ErrLockUnavailable)
	}

	if err := release(); err != nil {
		t.Fatal(err)
	}

	again, err := l.Lock("room.1")
	if err != nil {
		t.Fatal(err)
	}

	if err := again(); err != nil {
		t.Fatal(err)
	}
}
