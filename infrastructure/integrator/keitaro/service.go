package keitaro

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
	"github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/keitaroclient"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/domain"
)

// ReportClient lê relatórios e nomes de campanhas da Keitaro sem nunca propagar erro:
// falhas voltam como FetchResult com status FetchFailed ou como nome substituto.
type ReportClient interface {
	FetchWindow(ctx context.Context, campaignID int64, window domain.ReportWindow) FetchResult
	ResolveName(ctx context.Context, campaignID int64) string
}

// reportQuery define colunas, métricas e agrupamento de cada modo
type reportQuery struct {
	columns  []string
	metrics  []string
	grouping []string
}

var reportQueries = map[domain.SyncMode]reportQuery{
	domain.SyncModeDaily: {
		columns:  []string{},
		metrics:  []string{"clicks", "conversions", "leads", "sales", "revenue", "cost"},
		grouping: []string{"day"},
	},
	domain.SyncModeEvents: {
		columns:  []string{},
		metrics:  []string{"clicks", "conversions", "revenue", "cost"},
		grouping: []string{"datetime", "sub_id", "country"},
	},
}

type KeitaroService struct {
	Client        keitaroclient.Client
	query         reportQuery
	pageLimit     int
	maxPages      int
	reportTimeout time.Duration
	lookupTimeout time.Duration
}

func New(cfg *config.Config, client keitaroclient.Client) ReportClient {
	pageLimit := cfg.Keitaro.PageLimit
	if pageLimit <= 0 {
		pageLimit = 1000
	}

	maxPages := cfg.Keitaro.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	return &KeitaroService{
		Client:        client,
		query:         reportQueries[cfg.KeitaroSync.Mode],
		pageLimit:     pageLimit,
		maxPages:      maxPages,
		reportTimeout: secondsOr(cfg.Keitaro.ReportTimeoutSeconds, 60),
		lookupTimeout: secondsOr(cfg.Keitaro.LookupTimeoutSeconds, 30),
	}
}

func (s *KeitaroService) FetchWindow(ctx context.Context, campaignID int64, window domain.ReportWindow) FetchResult {
	rows := make([]keitarodomain.Row, 0)
	total := 0
	pages := 0

	for offset := 0; pages < s.maxPages; offset += s.pageLimit {
		response, err := s.fetchPage(ctx, campaignID, window, offset)
		pages++
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"campaign_id": campaignID,
				"from":        window.FromDate(),
				"to":          window.ToDate(),
				"offset":      offset,
				"error":       err.Error(),
			}).Error("Erro ao buscar relatório da Keitaro")
			return failedFetch(err, pages)
		}

		rows = append(rows, response.Rows...)
		total = response.Total

		if len(response.Rows) < s.pageLimit || (total > 0 && len(rows) >= total) {
			break
		}

		if pages == s.maxPages {
			logrus.WithFields(logrus.Fields{
				"campaign_id": campaignID,
				"rows":        len(rows),
				"total":       total,
				"max_pages":   s.maxPages,
			}).Warn("Limite de páginas atingido, relatório truncado")
		}
	}

	if len(rows) == 0 {
		return FetchResult{Status: FetchEmpty, Rows: rows, Total: total, Pages: pages}
	}

	return FetchResult{Status: FetchOK, Rows: rows, Total: total, Pages: pages}
}

func (s *KeitaroService) fetchPage(ctx context.Context, campaignID int64, window domain.ReportWindow, offset int) (*keitarodomain.ReportResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.reportTimeout)
	defer cancel()

	return s.Client.BuildReport(ctx, s.buildRequest(campaignID, window, offset))
}

func (s *KeitaroService) buildRequest(campaignID int64, window domain.ReportWindow, offset int) keitarodomain.ReportRequest {
	return keitarodomain.ReportRequest{
		Range: keitarodomain.Range{
			From:     window.FromDate(),
			To:       window.ToDate(),
			Timezone: window.Timezone,
		},
		Columns:  s.query.columns,
		Metrics:  s.query.metrics,
		Grouping: s.query.grouping,
		Filters: []keitarodomain.Filter{
			{
				Name:       keitarodomain.FilterCampaign,
				Operator:   keitarodomain.OperatorEquals,
				Expression: strconv.FormatInt(campaignID, 10),
			},
		},
		Limit:  s.pageLimit,
		Offset: offset,
	}
}

// ResolveName busca o nome da campanha; qualquer falha resulta em "Campaign <id>"
func (s *KeitaroService) ResolveName(ctx context.Context, campaignID int64) string {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	campaign, err := s.Client.GetCampaign(ctx, campaignID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Warn("Não foi possível obter o nome da campanha, usando nome padrão")
		return PlaceholderName(campaignID)
	}

	name := strings.TrimSpace(campaign.Name)
	if name == "" {
		return PlaceholderName(campaignID)
	}

	return name
}

func PlaceholderName(campaignID int64) string {
	return "Campaign " + strconv.FormatInt(campaignID, 10)
}

func secondsOr(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}
