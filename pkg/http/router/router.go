package router

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"

	"github.com/lintang-b-s/evacroute/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/evacroute/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/evacroute/pkg/http/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "net/http/pprof"

	httpSwagger "github.com/swaggo/http-swagger"
)

type API struct {
	log            *zap.Logger
	trustedProxies []netip.Prefix
}

// NewAPI. forwarded client addresses are only honoured from trustedProxies.
func NewAPI(log *zap.Logger, trustedProxies ...netip.Prefix) *API {
	return &API{log: log, trustedProxies: trustedProxies}
}

// RateLimit. requests per second and burst allowed per client ip, disabled when Enabled is false.
// MaxClients bounds the number of tracked clients.
type RateLimit struct {
	Enabled    bool
	RPS        float64
	Burst      int
	MaxClients int
}

// Handler builds the full middleware chain around the api routes.
func (api *API) Handler(
	rateLimit RateLimit,
	routingService controllers.RoutingService,
	conditionService controllers.ConditionService,
) (http.Handler, error) {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", REQUEST_ID_HEADER},
		ExposedHeaders:   []string{"Link", REQUEST_ID_HEADER},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	group := router_helper.NewRouteGroup(router, "/api")

	controllers.New(routingService, api.log).Routes(group)
	controllers.NewConditionsAPI(conditionService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP(api.trustedProxies), RequestID, Heartbeat("healthz"), Logger(api.log)}
	if rateLimit.Enabled {
		limit, err := Limit(rateLimit.RPS, rateLimit.Burst, rateLimit.MaxClients)
		if err != nil {
			return nil, err
		}
		mwChain = append(mwChain, limit)
	}
	return alice.New(mwChain...).Then(router), nil
}

//	@title			Evacroute API
//	@version		1.0
//	@description	Disaster aware evacuation routing between hospitals.

//	@contact.name	Lintang Birda Saputra
//	@contact.url	_
//	@contact.email	lintang.birda.saputra@mail.ugm.ac.id

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	rateLimit RateLimit,
	routingService controllers.RoutingService,
	conditionService controllers.ConditionService,
) error {
	api.log.Info("Run httprouter API")

	handler, err := api.Handler(rateLimit, routingService, conditionService)
	if err != nil {
		return err
	}
	srv := http_server.New(ctx, handler, config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
