package ocs

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// BaseURL is the Nextcloud server root, e.g. https://cloud.example.com.
	BaseURL     string        `mapstructure:"base_url"`
	User        string        `mapstructure:"user"`
	AppPassword string        `mapstructure:"app_password"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheSize   int           `mapstructure:"cache_size"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("base_url"), "")
	v.SetDefault(p("user"), "")
	v.SetDefault(p("app_password"), "")
	v.SetDefault(p("timeout"), "30s")
	v.SetDefault(p("cache_size"), 256)
}

// ForAccount returns a copy whose User defaults to the daemon's account.
func (c Config) ForAccount(account string) *Config {
	if c.User == "" {
		c.User = account
	}
	return &c
}
