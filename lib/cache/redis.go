package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// OpTimeout bounds every cache round trip, including the initial connect.
// A slow cache is worse than no cache.
const OpTimeout = 5 * time.Second

// RedisStore implements Store on top of a shared go-redis client. The client
// is connection-pooled and safe for concurrent use; the only state guarded
// here is the one-time connect attempt.
//
// All operations degrade to misses: before Connect succeeds, after the
// breaker opens, and on any transport error. Failures are logged at debug
// level only.
type RedisStore struct {
	rdb     *redis.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger

	mu        sync.Mutex
	connected bool
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(opts RedisOptions, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  OpTimeout,
		ReadTimeout:  OpTimeout,
		WriteTimeout: OpTimeout,
	})
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "redis-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Debug("cache breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &RedisStore{rdb: rdb, breaker: breaker, log: log}
}

// Connect pings the backend once under a mutex so concurrent first users do
// not race. Returning false leaves the store in permanent miss mode until a
// later Connect succeeds.
func (s *RedisStore) Connect(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		s.log.Debug("cache unreachable, running without it", zap.Error(err))
		return false
	}
	s.connected = true
	return true
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// do runs one cache operation through the breaker with the op timeout
// applied. Any failure is swallowed and reported to the caller as "not done".
func (s *RedisStore) do(ctx context.Context, op string, fn func(ctx context.Context) error) bool {
	if !s.available() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if err != nil {
		s.log.Debug("cache operation failed", zap.String("op", op), zap.Error(err))
		return false
	}
	return true
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var payload []byte
	found := false
	ok := s.do(ctx, "get", func(ctx context.Context) error {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		payload, found = data, true
		return nil
	})
	if !ok {
		return nil, false
	}
	return payload, found
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return s.do(ctx, "set", func(ctx context.Context) error {
		return s.rdb.SetEX(ctx, key, value, ttl).Err()
	})
}

func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	return s.do(ctx, "del", func(ctx context.Context) error {
		return s.rdb.Del(ctx, key).Err()
	})
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) map[string][]byte {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out
	}
	s.do(ctx, "mget", func(ctx context.Context) error {
		values, err := s.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		for i, v := range values {
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok {
				out[keys[i]] = []byte(str)
			}
		}
		return nil
	})
	return out
}

func (s *RedisStore) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) bool {
	if len(values) == 0 {
		return true
	}
	// Plain MSET cannot carry a TTL, so pipeline one SETEX per key.
	return s.do(ctx, "mset", func(ctx context.Context) error {
		pipe := s.rdb.Pipeline()
		for key, value := range values {
			pipe.SetEX(ctx, key, value, ttl)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
}

func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) int {
	count := 0
	s.do(ctx, "delpattern", func(ctx context.Context) error {
		iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
			count++
		}
		return iter.Err()
	})
	return count
}
