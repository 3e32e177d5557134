package config

import (
	"time"

	"github.com/spf13/viper"
)

type App struct {
	LogConfigFile   string        `mapstructure:"log_config_file"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// Account is the Nextcloud user the daemon acts for; one coordinator serves
	// one account. It is the OCS login unless ocs.user overrides it.
	Account string `mapstructure:"account"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("log_config_file"), "") // empty means use default config
	v.SetDefault(p("shutdown_timeout"), "10s")
	v.SetDefault(p("account"), "")
}
