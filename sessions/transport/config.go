package transport

import "github.com/spf13/viper"

type Config struct {
	// AllowedOrigins feeds both CORS and the websocket origin check.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Setup(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+".allowed_origins", []string{"*"})
}
