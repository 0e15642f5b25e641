package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/infrastructure/repository"
	"github.com/vfg2006/keitaro-sync/internal/api/handler"
	"github.com/vfg2006/keitaro-sync/internal/api/handler/router"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/usecases/authenticating"
	"github.com/vfg2006/keitaro-sync/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func New(
	cfg *config.Config,
	db handler.Pinger,
	metricsRepo repository.MetricsRepository,
	syncService handler.SyncController,
	authenticator authenticating.Authenticator,
) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
			Handler:           NewHandler(cfg, db, metricsRepo, syncService, authenticator),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}
}

// NewHandler monta o router com a cadeia de middlewares globais.
// Autenticação é declarada por rota, então caminhos inexistentes respondem 404.
func NewHandler(
	cfg *config.Config,
	db handler.Pinger,
	metricsRepo repository.MetricsRepository,
	syncService handler.SyncController,
	authenticator authenticating.Authenticator,
) http.Handler {
	rt := router.New(
		router.WithRoutes(handler.Healthcheck(db)...),
		router.WithRoutes(handler.Metrics()...),
		router.WithRoutes(handler.Sync(syncService, authenticator)...),
		router.WithRoutes(handler.CampaignMetrics(metricsRepo, cfg.KeitaroSync.LookbackDays, authenticator)...),
	)

	middlewares := []alice.Constructor{
		middleware.LoggingMiddleware(),
		middleware.LogPanicMiddleware(),
	}

	return alice.New(middlewares...).Then(rt)
}

// Run atende requisições até o contexto ser cancelado
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("address", s.httpServer.Addr).Info("Servidor de administração iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
			return err
		}
		return nil
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor de administração desligado")
	return nil
}
