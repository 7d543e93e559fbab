package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"
)

// Commands.
const (
	CommandAuth   = "AUTH"
	CommandDecr   = "DECR"
	CommandDel    = "DEL"
	CommandEx     = "EX"
	CommandExec   = "EXEC"
	CommandExpire = "EXPIRE"
	CommandGet    = "GET"
	CommandIncr   = "INCR"
	CommandMulti  = "MULTI"
	CommandNX     = "NX"
	CommandPing   = "PING"
	CommandPX     = "PX"
	CommandSet    = "SET"
)

// Defaults.
const (
	defaultIdleTimeout = 240 * time.Second
	defaultMaxActive   = 64
	defaultMaxIdle     = 10
	defaultNetwork     = "tcp"
)

type borrowFunc func(redis.Conn, time.Time) error
type dialFunc func() (redis.Conn, error)

// Pool returns a connection pool for the server at addr.
func Pool(addr, password string) *redis.Pool {
	return &redis.Pool{
		Dial:         dial(addr, password),
		IdleTimeout:  defaultIdleTimeout,
		MaxActive:    defaultMaxActive,
		MaxIdle:      defaultMaxIdle,
		TestOnBorrow: borrowFunc(borrow),
		Wait:         true,
	}
}

func borrow(c redis.Conn, t time.Time) error {
	if time.Since(t) < time.Minute {
		return nil
	}

	_, err := c.Do(CommandPing)
	return err
}

func dial(addr, password string) dialFunc {
	return func() (redis.Conn, error) {
		opts := []redis.DialOption{
			redis.DialConnectTimeout(5 * time.Second),
		}

		if password != "" {
			opts = append(opts, redis.DialPassword(password))
		}

		return redis.Dial(defaultNetwork, addr, opts...)
	}
}
