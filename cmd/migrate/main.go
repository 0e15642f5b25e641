package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/infrastructure/database/postgres"
	"github.com/vfg2006/keitaro-sync/infrastructure/repository"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/domain"
	"github.com/vfg2006/keitaro-sync/pkg/log"
)

// Cria as tabelas de métricas sem iniciar a sincronização
func main() {
	mode := flag.String("mode", "", "daily, events ou all (padrão: SYNC_MODE)")
	timeout := flag.Duration("timeout", time.Minute, "tempo máximo da migração")
	flag.Parse()

	log.Configure("info")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Error("Erro ao carregar configuração")
		os.Exit(1)
	}

	if cfg.Database.DSN == "" {
		logrus.Error("DATABASE_URL não configurado")
		os.Exit(1)
	}

	modes, err := modesToMigrate(*mode, cfg.KeitaroSync.Mode)
	if err != nil {
		logrus.WithError(err).Error("Modo inválido")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Error("Erro ao conectar ao PostgreSQL")
		os.Exit(1)
	}
	defer conn.Close()

	startTime := time.Now()
	for _, m := range modes {
		if err := repository.NewMetricsRepository(conn, m).EnsureSchema(ctx); err != nil {
			logrus.WithError(err).WithField("mode", m).Error("Erro na migração")
			conn.Close()
			os.Exit(1)
		}
	}

	logrus.WithFields(logrus.Fields{
		"modes":    modes,
		"duration": time.Since(startTime).String(),
	}).Info("Migração concluída")
}

func modesToMigrate(raw string, fallback domain.SyncMode) ([]domain.SyncMode, error) {
	switch raw {
	case "":
		return []domain.SyncMode{fallback}, nil
	case "all":
		return []domain.SyncMode{domain.SyncModeDaily, domain.SyncModeEvents}, nil
	}

	mode, err := domain.ParseSyncMode(raw)
	if err != nil {
		return nil, err
	}
	return []domain.SyncMode{mode}, nil
}
