package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyLoginAttempts = "login_attempts:%s"

// RedisStore shares attempts between instances. Each identifier is a hash
// with fields first_attempt (unix millis) and count, expiring with the window.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient connects to addr.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, identifier string) (Attempt, bool, error) {
	vals, err := s.client.HGetAll(ctx, redisKey(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Attempt{}, false, nil
		}
		return Attempt{}, false, err
	}
	if len(vals) == 0 {
		return Attempt{}, false, nil
	}

	first, err := strconv.ParseInt(vals["first_attempt"], 10, 64)
	if err != nil {
		return Attempt{}, false, fmt.Errorf("decode first_attempt: %w", err)
	}
	count, err := strconv.Atoi(vals["count"])
	if err != nil {
		return Attempt{}, false, fmt.Errorf("decode count: %w", err)
	}
	return Attempt{FirstAttempt: time.UnixMilli(first), Count: count}, true, nil
}

func (s *RedisStore) Save(ctx context.Context, identifier string, a Attempt, ttl time.Duration) error {
	key := redisKey(identifier)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "first_attempt", a.FirstAttempt.UnixMilli(), "count", a.Count)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	return s.client.Del(ctx, redisKey(identifier)).Err()
}

// Ping checks connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func redisKey(identifier string) string {
	return fmt.Sprintf(keyLoginAttempts, identifier)
}

const keyCSRFToken = "csrf:%s"

// TokenStorage keeps issued CSRF tokens in redis so any instance can verify
// them. It satisfies fiber.Storage.
type TokenStorage struct {
	client *redis.Client
}

func NewTokenStorage(client *redis.Client) *TokenStorage {
	return &TokenStorage{client: client}
}

// Get returns nil without error for unknown keys.
func (s *TokenStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), fmt.Sprintf(keyCSRFToken, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *TokenStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.client.Set(context.Background(), fmt.Sprintf(keyCSRFToken, key), val, exp).Err()
}

func (s *TokenStorage) Delete(key string) error {
	return s.client.Del(context.Background(), fmt.Sprintf(keyCSRFToken, key)).Err()
}

// Reset removes every stored token.
func (s *TokenStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, fmt.Sprintf(keyCSRFToken, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client is owned by the caller.
func (s *TokenStorage) Close() error { return nil }
