// Package redis provides tests for the Redis implementation of the
// lock.Locker interface.
package redis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"payconf/lock"
)

// ============================================================================
// Test Helpers
// ============================================================================

// mockRedisClient is a minimal mock for testing lock behavior.
type mockRedisClient struct {
	goredis.Cmdable
	mu         sync.Mutex
	locks      map[string]string // key -> token
	setNXCalls []setNXCall
}

type setNXCall struct {
	key   string
	value string
	ttl   time.Duration
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{locks: make(map[string]string)}
}

// SetNX implements the SetNX command for testing.
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setNXCalls = append(m.setNXCalls, setNXCall{key: key, value: value.(string), ttl: expiration})

	cmd := goredis.NewBoolCmd(ctx)
	if _, exists := m.locks[key]; exists {
		cmd.SetVal(false)
	} else {
		m.locks[key] = value.(string)
		cmd.SetVal(true)
	}
	return cmd
}

// Eval implements the Eval command for the release script.
func (m *mockRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := goredis.NewCmd(ctx)
	if len(keys) == 0 || len(args) == 0 {
		cmd.SetVal(int64(0))
		return cmd
	}

	key := keys[0]
	token, _ := args[0].(string)
	if held, ok := m.locks[key]; ok && held == token {
		delete(m.locks, key)
		cmd.SetVal(int64(1))
	} else {
		cmd.SetVal(int64(0))
	}
	return cmd
}

// ============================================================================
// RedisLocker Tests
// ============================================================================

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	client := newMockRedisClient()
	locker := NewRedisLocker(client)

	handle, err := locker.Acquire(context.Background(), "acct-usd", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if handle.Key() != "acct-usd" {
		t.Errorf("expected key acct-usd, got %s", handle.Key())
	}

	if len(client.setNXCalls) != 1 {
		t.Fatalf("expected one SetNX call, got %d", len(client.setNXCalls))
	}
	call := client.setNXCalls[0]
	if call.key != "payconf:lock:acct-usd" {
		t.Errorf("expected prefixed key, got %s", call.key)
	}
	if call.ttl != time.Minute {
		t.Errorf("expected TTL 1m, got %v", call.ttl)
	}
	if call.value == "" {
		t.Error("expected a random ownership token")
	}

	if err := handle.Release(context.Background()); err != nil {
		t.Errorf("Release failed: %v", err)
	}
	if len(client.locks) != 0 {
		t.Error("expected the lock deleted")
	}
}

func TestRedisLocker_HeldByAnotherRun(t *testing.T) {
	client := newMockRedisClient()
	locker := NewRedisLocker(client)

	if _, err := locker.Acquire(context.Background(), "acct-usd", time.Minute); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	_, err := locker.Acquire(context.Background(), "acct-usd", time.Minute)
	if !errors.Is(err, lock.ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got %v", err)
	}
}

func TestRedisLocker_ReleaseOnlyOwnToken(t *testing.T) {
	client := newMockRedisClient()
	locker := NewRedisLocker(client)

	handle, err := locker.Acquire(context.Background(), "acct-usd", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Simulate expiry and takeover by another run.
	client.mu.Lock()
	client.locks["payconf:lock:acct-usd"] = "someone-elses-token"
	client.mu.Unlock()

	if err := handle.Release(context.Background()); !errors.Is(err, lock.ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld after takeover, got %v", err)
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.locks["payconf:lock:acct-usd"] != "someone-elses-token" {
		t.Error("release must not delete another run's lock")
	}
}

func TestRedisLocker_WithPrefix(t *testing.T) {
	client := newMockRedisClient()
	locker := NewRedisLocker(client, WithPrefix("other:"))

	if _, err := locker.Acquire(context.Background(), "acct-usd", time.Minute); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !strings.HasPrefix(client.setNXCalls[0].key, "other:") {
		t.Errorf("expected custom prefix, got %s", client.setNXCalls[0].key)
	}
}

func TestRedisLocker_UniqueTokens(t *testing.T) {
	client := newMockRedisClient()
	locker := NewRedisLocker(client)

	if _, err := locker.Acquire(context.Background(), "a", time.Minute); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := locker.Acquire(context.Background(), "b", time.Minute); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if client.setNXCalls[0].value == client.setNXCalls[1].value {
		t.Error("expected distinct ownership tokens per acquire")
	}
}
