package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfigFile names an optional YAML/JSON/TOML file read on top of defaults.
// Environment variables still win over values from the file.
const EnvConfigFile = "ROOMSESSION_CONFIG"

func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	return v
}

func Load[T any](c *T, configure func(v *viper.Viper)) (*T, error) {
	v := NewViper()

	configure(v)

	if file := os.Getenv(EnvConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return c, v.Unmarshal(c)
}
