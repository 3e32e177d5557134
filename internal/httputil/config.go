package httputil

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type Config struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	TLS               TLSConfig     `mapstructure:"tls"`
}

type Server struct {
	*http.Server
	cfg *Config
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	// control API is local by default
	v.SetDefault(p("addr"), "127.0.0.1:8380")
	v.SetDefault(p("read_header_timeout"), "5s")
	v.SetDefault(p("tls.enabled"), false)
	v.SetDefault(p("tls.cert_file"), "")
	v.SetDefault(p("tls.key_file"), "")
}

func NewServer(cfg *Config, handler http.Handler) *Server {
	return &Server{
		Server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		cfg: cfg,
	}
}

// Listen blocks serving until Shutdown; http.ErrServerClosed is returned as nil.
func (s *Server) Listen() error {
	cfg := s.cfg

	var err error
	switch {
	case !cfg.TLS.Enabled:
		err = s.ListenAndServe()
	case cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "":
		return errors.New("TLS is enabled but cert_file or key_file is not set")
	default:
		err = s.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
