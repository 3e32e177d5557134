package signaling

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// URL overrides the server announced in the signaling settings.
	URL string `mapstructure:"url"`
	// BackendURL is the Nextcloud root the signaling server validates hellos against.
	BackendURL       string        `mapstructure:"backend_url"`
	HelloTimeout     time.Duration `mapstructure:"hello_timeout"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	Buffer           int           `mapstructure:"buffer"`
	HelloTokenLeeway time.Duration `mapstructure:"hello_token_leeway"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("enabled"), false)
	v.SetDefault(p("url"), "")
	v.SetDefault(p("backend_url"), "")
	v.SetDefault(p("hello_timeout"), "10s")
	v.SetDefault(p("ping_interval"), "10s")
	v.SetDefault(p("write_timeout"), "3s")
	v.SetDefault(p("buffer"), 16)
	v.SetDefault(p("hello_token_leeway"), "10s")
}
