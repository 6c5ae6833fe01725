package payconf

import "time"

// Config holds the tunable parameters of a run.
type Config struct {
	// Polling configuration
	PollAttempts int           // Maximum poll attempts per wait, default 10
	PollInterval time.Duration // Sleep between non-terminal attempts, default 2s

	// Cancellation bucket configuration. The cancellation task is spawned
	// only for simulated amounts in [CancelBucketLow, CancelBucketHigh),
	// the sandbox's delayed-approval codes.
	CancelBucketLow  int64 // Inclusive lower bound, default 90
	CancelBucketHigh int64 // Exclusive upper bound, default 100

	// Lock configuration
	LockTTL time.Duration // Sandbox account lock TTL, default 2min
}

// DefaultConfig returns the default configuration for a run.
func DefaultConfig() Config {
	return Config{
		PollAttempts:     10,
		PollInterval:     2 * time.Second,
		CancelBucketLow:  90,
		CancelBucketHigh: 100,
		LockTTL:          2 * time.Minute,
	}
}

// Option is a function that modifies the Config.
type Option func(*Config)

// WithPollAttempts sets the maximum poll attempts per wait.
func WithPollAttempts(attempts int) Option {
	return func(c *Config) {
		c.PollAttempts = attempts
	}
}

// WithPollInterval sets the sleep between non-terminal poll attempts.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = interval
	}
}

// WithCancelBucket sets the half-open simulated-amount bucket [low, high)
// that arms the cancellation task.
func WithCancelBucket(low, high int64) Option {
	return func(c *Config) {
		c.CancelBucketLow = low
		c.CancelBucketHigh = high
	}
}

// WithLockTTL sets the sandbox account lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.LockTTL = ttl
	}
}

// ApplyOptions applies the given options to a default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// InCancelBucket reports whether the amount falls in the half-open
// delayed-approval bucket. Amounts outside never spawn the cancellation
// task regardless of the cancel flag.
func (c *Config) InCancelBucket(amountMinor int64) bool {
	return amountMinor >= c.CancelBucketLow && amountMinor < c.CancelBucketHigh
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.PollAttempts <= 0 {
		return ErrInvalidConfig
	}
	if c.PollInterval < 0 {
		return ErrInvalidConfig
	}
	if c.CancelBucketLow < 0 || c.CancelBucketHigh <= c.CancelBucketLow {
		return ErrInvalidConfig
	}
	if c.LockTTL <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
