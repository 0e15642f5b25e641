package scheduler

//go:generate mockgen -source=daemon.go -destination=mocks/mock_daemon.go -package=mocks

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/observability"
	"github.com/vfg2006/keitaro-sync/pkg/log"
)

// Syncer executa um ciclo completo sobre as campanhas informadas
type Syncer interface {
	SyncAll(ctx context.Context, campaignIDs []int64) (int, error)
}

// SchemaInitializer garante que a tabela de destino exista antes do primeiro ciclo
type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) error
}

// Daemon roda os ciclos de sincronização até o contexto ser cancelado
type Daemon struct {
	config *config.Config
	schema SchemaInitializer
	syncer Syncer
	sleep  func(ctx context.Context, d time.Duration) bool
}

func NewDaemon(appConfig *config.Config, schema SchemaInitializer, syncer Syncer) *Daemon {
	return &Daemon{
		config: appConfig,
		schema: schema,
		syncer: syncer,
		sleep:  sleepContext,
	}
}

// Run valida a configuração, inicializa o schema uma única vez e entra no loop.
// Só retorna por configuração ausente, falha no schema ou cancelamento do contexto.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.config.Validate(); err != nil {
		logrus.WithError(err).Error("Configuração obrigatória ausente, sincronização não será iniciada")
		return err
	}

	if err := d.schema.EnsureSchema(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao preparar a tabela de métricas")
		return fmt.Errorf("erro ao preparar schema: %w", err)
	}

	if d.config.KeitaroSync.CronSchedule != "" {
		return d.runCron(ctx)
	}

	return d.runLoop(ctx)
}

func (d *Daemon) runLoop(ctx context.Context) error {
	interval := d.config.SyncInterval()

	logrus.WithFields(logrus.Fields{
		"interval":     interval.String(),
		"campaign_ids": d.config.KeitaroSync.CampaignIDs,
	}).Info("Iniciando loop de sincronização da Keitaro")

	for {
		d.RunCycle(ctx)

		logrus.Infof("Aguardando %s até o próximo ciclo", interval)
		if !d.sleep(ctx, interval) {
			logrus.Info("Loop de sincronização encerrado")
			return ctx.Err()
		}
	}
}

func (d *Daemon) runCron(ctx context.Context) error {
	scheduler := gocron.NewScheduler(d.config.Location())
	scheduler.SingletonModeAll()

	expression := d.config.KeitaroSync.CronSchedule
	if len(strings.Fields(expression)) == 6 {
		// Expressões com seis campos começam pelos segundos
		scheduler.CronWithSeconds(expression)
	} else {
		scheduler.Cron(expression)
	}

	_, err := scheduler.Do(func() {
		d.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização da Keitaro: %w", err)
	}

	logrus.WithField("cron", d.config.KeitaroSync.CronSchedule).Info("Iniciando agendador de sincronização da Keitaro")
	scheduler.StartAsync()

	<-ctx.Done()
	logrus.Info("Parando agendador de sincronização da Keitaro")
	scheduler.Stop()

	return ctx.Err()
}

// RunCycle executa um ciclo isolado; erros e panics são registrados e nunca encerram o loop
func (d *Daemon) RunCycle(ctx context.Context) (total int, err error) {
	ctx, _ = log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx)
	startTime := time.Now()

	defer func() {
		observability.CycleDuration.Observe(time.Since(startTime).Seconds())

		if r := recover(); r != nil {
			observability.SyncCycles.WithLabelValues("panic").Inc()
			logger.WithFields(log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Panic durante o ciclo de sincronização")
			err = fmt.Errorf("panic no ciclo de sincronização: %v", r)
		}
	}()

	total, err = d.syncer.SyncAll(ctx, d.config.KeitaroSync.CampaignIDs)
	if err != nil {
		observability.SyncCycles.WithLabelValues("error").Inc()
		logger.WithError(err).WithField("total", total).Error("Erro no ciclo de sincronização")
		return total, err
	}

	observability.SyncCycles.WithLabelValues("success").Inc()
	observability.LastSuccessfulCycle.SetToCurrentTime()
	logger.WithFields(log.Fields{
		"total":    total,
		"duration": time.Since(startTime).String(),
	}).Info("Sincronização concluída")

	return total, nil
}

// sleepContext espera d ou o cancelamento do contexto; retorna false se cancelado
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
