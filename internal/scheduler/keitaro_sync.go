package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro"
	"github.com/vfg2006/keitaro-sync/infrastructure/repository"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/domain"
	"github.com/vfg2006/keitaro-sync/internal/observability"
	"github.com/vfg2006/keitaro-sync/pkg/log"
	"github.com/vfg2006/keitaro-sync/pkg/utils"
	"go.uber.org/multierr"
)

// KeitaroSyncConfig representa a configuração da sincronização de métricas da Keitaro
type KeitaroSyncConfig struct {
	CampaignIDs   []int64
	LookbackDays  int
	Mode          domain.SyncMode
	FailurePolicy domain.FailurePolicy
	Location      *time.Location
}

// EntitySyncError indica que uma campanha específica falhou durante o ciclo
type EntitySyncError struct {
	CampaignID int64
	Err        error
}

func (e *EntitySyncError) Error() string {
	return fmt.Sprintf("erro ao sincronizar campanha %d: %s", e.CampaignID, e.Err.Error())
}

func (e *EntitySyncError) Unwrap() error {
	return e.Err
}

// RunSummary descreve a última execução completa
type RunSummary struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Written     int       `json:"records_written"`
	Error       string    `json:"error,omitempty"`
	Manual      bool      `json:"manual"`
}

// KeitaroSyncService busca a janela recente de cada campanha e grava as métricas
type KeitaroSyncService struct {
	config       KeitaroSyncConfig
	reportClient keitaro.ReportClient
	normalizer   *keitaro.Normalizer
	metricsRepo  repository.MetricsRepository
	now          func() time.Time

	runMutex    sync.Mutex
	stateMutex  sync.Mutex
	syncRunning bool
	lastRun     RunSummary
}

func NewKeitaroSyncService(
	reportClient keitaro.ReportClient,
	metricsRepo repository.MetricsRepository,
	appConfig *config.Config,
) *KeitaroSyncService {
	syncConfig := KeitaroSyncConfig{
		CampaignIDs:   appConfig.KeitaroSync.CampaignIDs,
		LookbackDays:  appConfig.KeitaroSync.LookbackDays,
		Mode:          appConfig.KeitaroSync.Mode,
		FailurePolicy: appConfig.KeitaroSync.FailurePolicy,
		Location:      appConfig.Location(),
	}

	logrus.WithFields(logrus.Fields{
		"campaign_ids":   syncConfig.CampaignIDs,
		"lookback_days":  syncConfig.LookbackDays,
		"mode":           syncConfig.Mode,
		"failure_policy": syncConfig.FailurePolicy,
		"timezone":       syncConfig.Location.String(),
	}).Info("Configuração da sincronização da Keitaro carregada")

	return &KeitaroSyncService{
		config:       syncConfig,
		reportClient: reportClient,
		normalizer:   keitaro.NewNormalizer(syncConfig.Mode, syncConfig.Location),
		metricsRepo:  metricsRepo,
		now:          time.Now,
	}
}

// CampaignIDs retorna as campanhas configuradas, na ordem de processamento
func (s *KeitaroSyncService) CampaignIDs() []int64 {
	return s.config.CampaignIDs
}

// SyncAll processa as campanhas em sequência e retorna o total de registros gravados.
// Com a política abort o primeiro erro interrompe o ciclo; com continue todas as
// campanhas são processadas e os erros são agregados.
func (s *KeitaroSyncService) SyncAll(ctx context.Context, campaignIDs []int64) (int, error) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return s.syncAllLocked(ctx, campaignIDs, false)
}

// syncAllLocked exige que runMutex já esteja com o chamador
func (s *KeitaroSyncService) syncAllLocked(ctx context.Context, campaignIDs []int64, manual bool) (int, error) {
	runID, err := utils.GenerateID()
	if err != nil {
		runID = strconv.FormatInt(s.now().UnixNano(), 36)
	}

	summary := RunSummary{RunID: runID, StartedAt: s.now(), Manual: manual}
	s.setRunning(true)
	defer s.setRunning(false)

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"run_id":    runID,
		"campaigns": len(campaignIDs),
	})
	logger.Info("Iniciando sincronização das campanhas da Keitaro")

	names := newNameCache(s.reportClient)
	total := 0
	var combined error

	for _, campaignID := range campaignIDs {
		written, err := s.syncEntity(ctx, campaignID, names)
		total += written
		if err == nil {
			continue
		}

		if s.config.FailurePolicy != domain.FailurePolicyContinue {
			summary.Written = total
			s.finishRun(summary, err)
			return total, err
		}

		logger.WithError(err).WithField("campaign_id", campaignID).Error("Campanha falhou, seguindo para a próxima")
		combined = multierr.Append(combined, err)
	}

	summary.Written = total
	s.finishRun(summary, combined)
	return total, combined
}

// SyncEntity sincroniza uma única campanha com um cache de nomes próprio
func (s *KeitaroSyncService) SyncEntity(ctx context.Context, campaignID int64) (int, error) {
	return s.syncEntity(ctx, campaignID, newNameCache(s.reportClient))
}

func (s *KeitaroSyncService) syncEntity(ctx context.Context, campaignID int64, names *nameCache) (int, error) {
	window := domain.NewLookbackWindow(s.now(), s.config.LookbackDays, s.config.Location)
	campaignLabel := strconv.FormatInt(campaignID, 10)

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"campaign_id": campaignID,
		"from":        window.FromDate(),
		"to":          window.ToDate(),
	})
	logger.Info("Sincronizando campanha")

	result := s.reportClient.FetchWindow(ctx, campaignID, window)
	observability.FetchResults.WithLabelValues(campaignLabel, result.Status.String()).Inc()

	switch result.Status {
	case keitaro.FetchFailed:
		logger.WithError(result.Err).Error("Falha ao buscar dados da Keitaro, campanha ignorada neste ciclo")
		return 0, nil
	case keitaro.FetchEmpty:
		logger.Info("Nenhum dado para a campanha")
		return 0, nil
	}

	name := names.resolve(ctx, campaignID)
	records := s.normalizer.NormalizeAll(result.Rows, campaignID, name)
	if len(records) == 0 {
		logger.WithField("rows", len(result.Rows)).Warn("Nenhuma linha aproveitável no relatório")
		return 0, nil
	}

	written, err := s.metricsRepo.UpsertBatch(ctx, records)
	if err != nil {
		observability.EntityErrors.WithLabelValues(campaignLabel).Inc()
		return 0, &EntitySyncError{CampaignID: campaignID, Err: err}
	}

	observability.RecordsWritten.WithLabelValues(campaignLabel).Add(float64(written))
	logger.WithFields(log.Fields{
		"campaign_name": name,
		"records":       written,
	}).Info("Campanha sincronizada")

	return written, nil
}

// TriggerManualSync inicia manualmente uma sincronização de todas as campanhas.
// O lock de execução é tomado antes de retornar, então chamadas concorrentes
// recebem false enquanto a primeira não terminar.
func (s *KeitaroSyncService) TriggerManualSync() bool {
	if !s.runMutex.TryLock() {
		logrus.Info("Sincronização da Keitaro já em andamento, ignorando solicitação manual")
		return false
	}
	s.setRunning(true)

	logrus.Info("Iniciando sincronização manual da Keitaro")
	go func() {
		defer s.runMutex.Unlock()

		ctx, _ := log.WithCorrelationID(context.Background())
		total, err := s.syncAllLocked(ctx, s.config.CampaignIDs, true)
		if err != nil {
			log.ForContext(ctx).WithError(err).Error("Erro na sincronização manual da Keitaro")
			return
		}
		log.ForContext(ctx).Infof("Sincronização manual concluída. Total de registros: %d", total)
	}()

	return true
}

// GetStatus retorna o status atual da sincronização
func (s *KeitaroSyncService) GetStatus() map[string]any {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	return map[string]any{
		"sync_running":   s.syncRunning,
		"campaign_ids":   s.config.CampaignIDs,
		"lookback_days":  s.config.LookbackDays,
		"mode":           s.config.Mode,
		"failure_policy": s.config.FailurePolicy,
		"timezone":       s.config.Location.String(),
		"last_run":       s.lastRun,
	}
}

func (s *KeitaroSyncService) setRunning(running bool) {
	s.stateMutex.Lock()
	s.syncRunning = running
	s.stateMutex.Unlock()
}

func (s *KeitaroSyncService) finishRun(summary RunSummary, err error) {
	summary.CompletedAt = s.now()
	if err != nil {
		summary.Error = err.Error()
	}

	s.stateMutex.Lock()
	s.lastRun = summary
	s.stateMutex.Unlock()
}

// nameCache guarda os nomes de campanha resolvidos durante um único ciclo
type nameCache struct {
	client keitaro.ReportClient
	names  map[int64]string
}

func newNameCache(client keitaro.ReportClient) *nameCache {
	return &nameCache{client: client, names: make(map[int64]string)}
}

func (c *nameCache) resolve(ctx context.Context, campaignID int64) string {
	if name, ok := c.names[campaignID]; ok {
		return name
	}
	name := c.client.ResolveName(ctx, campaignID)
	c.names[campaignID] = name
	return name
}
