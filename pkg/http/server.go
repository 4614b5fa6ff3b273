package http

import (
	"context"

	http_router "github.com/lintang-b-s/evacroute/pkg/http/router"
	"github.com/lintang-b-s/evacroute/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/evacroute/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the api in the background. Wait blocks until it stops.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	routingService controllers.RoutingService,
	conditionService controllers.ConditionService,
) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_CLIENTS", http_router.DEFAULT_RATE_LIMIT_CLIENTS)
	viper.SetDefault("TRUSTED_PROXIES", []string{})

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}
	rateLimit := http_router.RateLimit{
		Enabled:    useRateLimit,
		RPS:        viper.GetFloat64("RATE_LIMIT_RPS"),
		Burst:      viper.GetInt("RATE_LIMIT_BURST"),
		MaxClients: viper.GetInt("RATE_LIMIT_CLIENTS"),
	}

	trustedProxies, err := http_router.ParseTrustedProxies(viper.GetStringSlice("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}
	server := http_router.NewAPI(log, trustedProxies...)

	s.g = &errgroup.Group{}
	s.g.Go(func() error {
		return server.Run(ctx, config, rateLimit, routingService, conditionService)
	})

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
