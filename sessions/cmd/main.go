package main

import (
	"context"
	"net/http"

	"github.com/spf13/viper"

	"github.com/talkline/roomsession/internal/config"
	"github.com/talkline/roomsession/internal/httputil"
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/internal/otel"
	"github.com/talkline/roomsession/internal/workflow"
	"github.com/talkline/roomsession/sessions"
	"github.com/talkline/roomsession/sessions/coordinator"
	"github.com/talkline/roomsession/sessions/ocs"
	"github.com/talkline/roomsession/sessions/signaling"
	"github.com/talkline/roomsession/sessions/transport"
)

type Config struct {
	App         config.App         `mapstructure:"app"`
	HTTP        httputil.Config    `mapstructure:"http"`
	Otel        otel.Config        `mapstructure:"otel"`
	OCS         ocs.Config         `mapstructure:"ocs"`
	Signaling   signaling.Config   `mapstructure:"signaling"`
	Coordinator coordinator.Config `mapstructure:"coordinator"`
	Transport   transport.Config   `mapstructure:"transport"`
}

func loadConfig() (*Config, error) {
	return config.Load(&Config{}, func(v *viper.Viper) {
		config.Setup(v, "app")
		otel.Setup(v, "otel")
		httputil.Setup(v, "http")
		ocs.Setup(v, "ocs")
		signaling.Setup(v, "signaling")
		coordinator.Setup(v, "coordinator")
		transport.Setup(v, "transport")
	})
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}

	logger, err := log.NewLogger(config.App.LogConfigFile)
	if err != nil {
		log.Fatal("Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	// global background context
	ctx := context.Background()

	otelShutdown, err := otel.Init(ctx, &config.Otel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OTEL provider", log.Error(err))
	}

	if config.OCS.BaseURL == "" {
		logger.Fatal("ocs.base_url is required")
	}

	logger.Info("Starting room session service",
		log.String("addr", config.HTTP.Addr),
		log.String("account", config.App.Account),
		log.String("server", config.OCS.BaseURL),
		log.Bool("signaling", config.Signaling.Enabled))

	ocsClient := ocs.NewClient(config.OCS.ForAccount(config.App.Account), logger.Module("OcsClient"))
	directory, err := ocs.NewCachedDirectory(ocsClient, config.OCS.CacheSize)
	if err != nil {
		logger.Fatal("Failed to create room directory", log.Error(err))
	}

	// keep the interface nil without a signaling server
	var gateway sessions.SignalingGateway
	var signalingClient *signaling.Client
	if config.Signaling.Enabled {
		if config.Signaling.BackendURL == "" {
			config.Signaling.BackendURL = config.OCS.BaseURL
		}
		signalingClient = signaling.NewClient(
			&config.Signaling,
			func(ctx context.Context) (*sessions.SignalingSettings, error) {
				return ocsClient.GetSignalingSettings(ctx, "")
			},
			logger.Module("Signaling"),
		)
		gateway = signalingClient
	}

	coord := coordinator.New(&config.Coordinator, directory, gateway, logger)
	if err := coord.Start(ctx); err != nil {
		logger.Fatal("Failed to start coordinator", log.Error(err))
	}

	router := transport.NewRouter(coord, &config.Transport, logger.Module("Router"))
	server := httputil.NewServer(&config.HTTP, router.Handler())

	go func() {
		logger.Info("Starting HTTP server", log.String("addr", config.HTTP.Addr))
		if err := server.Listen(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", log.Error(err))
		}
	}()

	logger.Info("Room session service started")

	cleanup := func(ctx context.Context) {
		_ = server.Shutdown(ctx)

		if err := coord.Stop(ctx); err != nil {
			logger.Error("Error stopping coordinator", log.Error(err))
		}
		if signalingClient != nil {
			signalingClient.Close()
		}
		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shutdown OTEL", log.Error(err))
		}
	}
	workflow.WaitGracefulShutdown(ctx, logger.Module("CleanUp"), cleanup, config.App.ShutdownTimeout)
}
