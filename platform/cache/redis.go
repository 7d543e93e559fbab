package cache

import (
	"fmt"
	"strings"

	"github.com/gomodule/redigo/redis"

	predis "github.com/DRLee98/random-chat-backend-sub000/platform/redis"
)

const (
	cacheTTLDefault = 86400
	errCode         = -1
)

type redisCountService struct {
	pool *redis.Pool
}

// RedisCountService returns a redis backed CountService.
func RedisCountService(pool *redis.Pool) CountService {
	return &redisCountService{
		pool: pool,
	}
}

func (s *redisCountService) Del(ns, key string) error {
	con := s.pool.Get()
	defer con.Close()

	if _, err := con.Do(predis.CommandDel, prefixKey(ns, key)); err != nil {
		return fmt.Errorf("cache del failed: %s", err)
	}

	return nil
}

func (s *redisCountService) Get(ns, key string) (int, error) {
	con := s.pool.Get()
	defer con.Close()

	count, err := redis.Int(con.Do(predis.CommandGet, prefixKey(ns, key)))
	if err == redis.ErrNil {
		return errCode, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}
	if err != nil {
		return errCode, fmt.Errorf("cache get failed: %s", err)
	}

	return count, nil
}

// Incr only bumps counts already cached, a missing key stays missing so the
// next Get falls through to the source of truth.
func (s *redisCountService) Incr(ns, key string) (int, error) {
	con := s.pool.Get()
	defer con.Close()

	k := prefixKey(ns, key)

	exists, err := redis.Bool(con.Do("EXISTS", k))
	if err != nil {
		return errCode, fmt.Errorf("cache incr failed: %s", err)
	}

	if !exists {
		return errCode, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	_ = con.Send(predis.CommandMulti)
	_ = con.Send(predis.CommandIncr, k)
	_ = con.Send(predis.CommandExpire, k, cacheTTLDefault)

	res, err := redis.Values(con.Do(predis.CommandExec))
	if err != nil {
		return errCode, fmt.Errorf("cache incr failed: %s", err)
	}

	var count int

	if _, err := redis.Scan(res, &count); err != nil {
		return errCode, err
	}

	return count, nil
}

func (s *redisCountService) Set(ns, key string, count int) error {
	con := s.pool.Get()
	defer con.Close()

	_, err := con.Do(
		predis.CommandSet,
		prefixKey(ns, key),
		count,
		predis.CommandEx,
		cacheTTLDefault,
	)
	if err != nil {
		return fmt.Errorf("cache set failed: %s", err)
	}

	return nil
}

func prefixKey(ns, key string) string {
	return strings.Join([]string{countPrefix, ns, key}, KeySeparator)
}
