package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/keitaro-sync/infrastructure/repository"
	"github.com/vfg2006/keitaro-sync/internal/domain"
	"github.com/vfg2006/keitaro-sync/pkg/apiErrors"
	"github.com/vfg2006/keitaro-sync/pkg/log"
	"github.com/vfg2006/keitaro-sync/pkg/utils"
)

type CampaignMetricsResponse struct {
	CampaignID int64                  `json:"campaign_id"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Records    []*domain.MetricRecord `json:"records"`
}

// GetCampaignMetrics lista as métricas gravadas de uma campanha.
// Sem start_date/end_date usa a mesma janela da sincronização.
func GetCampaignMetrics(repo repository.MetricsRepository, lookbackDays int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		rawID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		campaignID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || campaignID <= 0 {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "ID da campanha inválido", map[string]any{"id": rawID})
			return
		}

		filters, err := parseMetricFilters(r, lookbackDays)
		if err != nil {
			logger.WithFields(log.Fields{
				"campaign_id": campaignID,
				"query":       r.URL.RawQuery,
				"error":       err.Error(),
			}).Warn("metrics: parâmetros de data inválidos")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		records, err := repo.GetByDateRange(r.Context(), campaignID, *filters.StartDate, *filters.EndDate)
		if err != nil {
			err = errors.Wrapf(err, "erro ao buscar métricas da campanha %d", campaignID)
			logger.WithError(err).Error("metrics: falha na consulta")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar métricas", nil)
			return
		}

		if records == nil {
			records = []*domain.MetricRecord{}
		}

		logger.WithFields(log.Fields{
			"campaign_id": campaignID,
			"records":     len(records),
		}).Debug("metrics: consulta concluída")

		writeJSON(w, http.StatusOK, CampaignMetricsResponse{
			CampaignID: campaignID,
			StartDate:  filters.StartDate.Format(time.DateOnly),
			EndDate:    filters.EndDate.Format(time.DateOnly),
			Records:    records,
		})
	})
}

func parseMetricFilters(r *http.Request, lookbackDays int) (*domain.MetricFilters, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	endDate, err := utils.ParseDateOr(r.URL.Query().Get("end_date"), today)
	if err != nil {
		return nil, errors.Wrap(err, "end_date inválido")
	}

	startDate, err := utils.ParseDateOr(r.URL.Query().Get("start_date"), endDate.AddDate(0, 0, -lookbackDays))
	if err != nil {
		return nil, errors.Wrap(err, "start_date inválido")
	}

	if startDate.After(endDate) {
		return nil, errors.New("start_date deve ser anterior a end_date")
	}

	return &domain.MetricFilters{StartDate: &startDate, EndDate: &endDate}, nil
}
