package coordinator

import (
	"time"

	"github.com/spf13/viper"

	"github.com/talkline/roomsession/internal/retry"
)

type BackoffConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Jitter          float64       `mapstructure:"jitter"`
}

type CompensationConfig struct {
	// Rate is the number of orphan exits started per second, Burst the bucket size.
	Rate            float64       `mapstructure:"rate"`
	Burst           int           `mapstructure:"burst"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsed      time.Duration `mapstructure:"max_elapsed"`
}

type Config struct {
	MaxAttempts  int                `mapstructure:"max_attempts"`
	Backoff      BackoffConfig      `mapstructure:"backoff"`
	Compensation CompensationConfig `mapstructure:"compensation"`
	// HelloTokenLeeway treats federation hello tokens this close to expiry as expired.
	HelloTokenLeeway time.Duration `mapstructure:"hello_token_leeway"`
	EventBuffer      int           `mapstructure:"event_buffer"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("max_attempts"), 3)
	v.SetDefault(p("backoff.enabled"), false)
	v.SetDefault(p("backoff.initial_interval"), "250ms")
	v.SetDefault(p("backoff.max_interval"), "2s")
	v.SetDefault(p("backoff.jitter"), 0.5)
	v.SetDefault(p("compensation.rate"), 5.0)
	v.SetDefault(p("compensation.burst"), 5)
	v.SetDefault(p("compensation.initial_interval"), "500ms")
	v.SetDefault(p("compensation.max_interval"), "10s")
	v.SetDefault(p("compensation.max_elapsed"), "2m")
	v.SetDefault(p("hello_token_leeway"), "10s")
	v.SetDefault(p("event_buffer"), 64)
}

// DefaultConfig mirrors the Setup defaults for callers that do not use viper.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff: BackoffConfig{
			InitialInterval: 250 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Jitter:          0.5,
		},
		Compensation: CompensationConfig{
			Rate:            5,
			Burst:           5,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
			MaxElapsed:      2 * time.Minute,
		},
		HelloTokenLeeway: 10 * time.Second,
		EventBuffer:      64,
	}
}

func (c *Config) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:         c.MaxAttempts,
		Backoff:             c.Backoff.Enabled,
		InitialInterval:     c.Backoff.InitialInterval,
		MaxInterval:         c.Backoff.MaxInterval,
		RandomizationFactor: c.Backoff.Jitter,
	}
}
