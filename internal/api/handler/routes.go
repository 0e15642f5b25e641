package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/keitaro-sync/infrastructure/repository"
	"github.com/vfg2006/keitaro-sync/internal/api/handler/router"
	"github.com/vfg2006/keitaro-sync/internal/usecases/authenticating"
	"github.com/vfg2006/keitaro-sync/pkg/middleware"
)

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

// Sync expõe status e disparo manual; a autenticação roda só depois do roteamento
func Sync(service SyncController, auth authenticating.Authenticator) []router.Route {
	authenticate := middleware.AuthMiddleware(auth)

	return []router.Route{
		{
			Path:        "/v1/sync/status",
			Method:      http.MethodGet,
			Handler:     GetSyncStatus(service),
			Middlewares: []func(http.Handler) http.Handler{authenticate, middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/sync/run",
			Method:      http.MethodPost,
			Handler:     RunSync(service),
			Middlewares: []func(http.Handler) http.Handler{authenticate, middleware.AdminOnly()},
		},
	}
}

func CampaignMetrics(repo repository.MetricsRepository, lookbackDays int, auth authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/campaigns/:id/metrics",
			Method:      http.MethodGet,
			Handler:     GetCampaignMetrics(repo, lookbackDays),
			Middlewares: []func(http.Handler) http.Handler{middleware.AuthMiddleware(auth), middleware.AnyRole()},
		},
	}
}
