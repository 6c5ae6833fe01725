package payconf

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PollAttempts != 10 {
		t.Errorf("expected 10 poll attempts, got %d", cfg.PollAttempts)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.CancelBucketLow != 90 || cfg.CancelBucketHigh != 100 {
		t.Errorf("expected cancel bucket [90,100), got [%d,%d)", cfg.CancelBucketLow, cfg.CancelBucketHigh)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(
		WithPollAttempts(5),
		WithPollInterval(time.Second),
		WithCancelBucket(10, 20),
		WithLockTTL(time.Minute),
	)

	if cfg.PollAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.PollAttempts)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("expected 1s interval, got %v", cfg.PollInterval)
	}
	if cfg.CancelBucketLow != 10 || cfg.CancelBucketHigh != 20 {
		t.Errorf("expected bucket [10,20), got [%d,%d)", cfg.CancelBucketLow, cfg.CancelBucketHigh)
	}
	if cfg.LockTTL != time.Minute {
		t.Errorf("expected 1m TTL, got %v", cfg.LockTTL)
	}
}

func TestConfig_InCancelBucket(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		amount int64
		want   bool
	}{
		{89, false},
		{90, true}, // inclusive low
		{95, true},
		{99, true},
		{100, false}, // exclusive high
		{101, false},
		{0, false},
	}
	for _, tc := range cases {
		if got := cfg.InCancelBucket(tc.amount); got != tc.want {
			t.Errorf("InCancelBucket(%d) = %v, want %v", tc.amount, got, tc.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	bad := []Config{
		{PollAttempts: 0, PollInterval: time.Second, CancelBucketLow: 90, CancelBucketHigh: 100, LockTTL: time.Minute},
		{PollAttempts: 10, PollInterval: -time.Second, CancelBucketLow: 90, CancelBucketHigh: 100, LockTTL: time.Minute},
		{PollAttempts: 10, PollInterval: time.Second, CancelBucketLow: 100, CancelBucketHigh: 90, LockTTL: time.Minute},
		{PollAttempts: 10, PollInterval: time.Second, CancelBucketLow: -1, CancelBucketHigh: 100, LockTTL: time.Minute},
		{PollAttempts: 10, PollInterval: time.Second, CancelBucketLow: 90, CancelBucketHigh: 100, LockTTL: 0},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
