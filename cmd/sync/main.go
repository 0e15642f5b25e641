package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/infrastructure/database/postgres"
	"github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro"
	"github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/keitaroclient"
	"github.com/vfg2006/keitaro-sync/infrastructure/repository"
	"github.com/vfg2006/keitaro-sync/internal/api"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/scheduler"
	"github.com/vfg2006/keitaro-sync/internal/usecases/authenticating"
	"github.com/vfg2006/keitaro-sync/pkg/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Configure("info")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Error("Erro ao carregar configuração")
		return 1
	}

	log.Configure(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Error("Configuração obrigatória ausente, encerrando")
		return 1
	}

	// O loop de sincronização nunca é cancelado; o processo roda até ser finalizado
	ctx := context.Background()

	pgConn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Error("Erro ao conectar ao PostgreSQL")
		return 1
	}
	defer pgConn.Close()
	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")

	keitaroClient := keitaroclient.NewClient(cfg)
	reportClient := keitaro.New(cfg, keitaroClient)
	metricsRepo := repository.NewMetricsRepository(pgConn, cfg.KeitaroSync.Mode)

	syncService := scheduler.NewKeitaroSyncService(reportClient, metricsRepo, cfg)

	if cfg.Server.Enabled {
		authenticator := authenticating.NewService(cfg)
		if cfg.Auth.Secret == "" {
			logrus.Warn("AUTH_SECRET não configurado, rotas protegidas responderão 503")
		}

		server := api.New(cfg, pgConn, metricsRepo, syncService, authenticator)
		go func() {
			if err := server.Run(ctx); err != nil {
				logrus.WithError(err).Error("Servidor de administração encerrado com erro")
			}
		}()
	}

	daemon := scheduler.NewDaemon(cfg, metricsRepo, syncService)
	if err := daemon.Run(ctx); err != nil {
		logrus.WithError(err).Error("Sincronização encerrada")
		return 1
	}

	return 0
}
