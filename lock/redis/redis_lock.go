// Package redis provides a Redis implementation of the lock.Locker
// interface, for serializing runs across machines.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payconf/lock"
)

var _ lock.Locker = (*RedisLocker)(nil)
var _ lock.LockHandle = (*redisLockHandle)(nil)

// releaseScript deletes the lock only if this run still owns it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// RedisLocker implements the account lock using Redis SET NX.
type RedisLocker struct {
	client redis.Cmdable
	prefix string
}

// Option is a functional option for configuring RedisLocker.
type Option func(*RedisLocker)

// WithPrefix sets the key prefix for locks.
func WithPrefix(prefix string) Option {
	return func(l *RedisLocker) {
		l.prefix = prefix
	}
}

// NewRedisLocker creates a new Redis-based account locker.
func NewRedisLocker(client redis.Cmdable, opts ...Option) *RedisLocker {
	l := &RedisLocker{
		client: client,
		prefix: "payconf:lock:",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire acquires the lock on the given account key.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (lock.LockHandle, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	redisKey := l.prefix + key
	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, lock.ErrLockHeld
	}

	return &redisLockHandle{client: l.client, key: key, redisKey: redisKey, token: token}, nil
}

// newToken generates a random ownership token so expiry takeovers are not
// released by the previous holder.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// redisLockHandle is a held Redis account lock.
type redisLockHandle struct {
	client   redis.Cmdable
	key      string
	redisKey string
	token    string
}

// Release releases the lock if this run still owns it.
func (h *redisLockHandle) Release(ctx context.Context) error {
	deleted, err := h.client.Eval(ctx, releaseScript, []string{h.redisKey}, h.token).Int64()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", h.key, err)
	}
	if deleted == 0 {
		return lock.ErrLockNotHeld
	}
	return nil
}

// Key returns the locked account key.
func (h *redisLockHandle) Key() string {
	return h.key
}
