package keitaro

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
	"github.com/vfg2006/keitaro-sync/internal/domain"
	"github.com/vfg2006/keitaro-sync/pkg/utils"
)

// ErrMissingTimeBucket indica uma linha sem nenhuma coluna de data reconhecível
var ErrMissingTimeBucket = errors.New("linha sem data reconhecível")

// Layouts aceitos para as colunas de data da Keitaro, do mais específico ao mais genérico
var timeLayouts = []string{
	domain.EventTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Normalizer converte as linhas soltas do relatório em registros tipados.
// Toda a política de valores ausentes fica concentrada aqui.
type Normalizer struct {
	mode       domain.SyncMode
	location   *time.Location
	bucketKeys []string
}

func NewNormalizer(mode domain.SyncMode, location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}

	bucketKeys := []string{"day", "date", "datetime"}
	if mode == domain.SyncModeEvents {
		bucketKeys = []string{"datetime", "hour", "day", "date"}
	}

	return &Normalizer{
		mode:       mode,
		location:   location,
		bucketKeys: bucketKeys,
	}
}

func (n *Normalizer) Normalize(row keitarodomain.Row, campaignID int64, campaignName string) (domain.MetricRecord, error) {
	bucket, err := n.timeBucket(row)
	if err != nil {
		return domain.MetricRecord{}, err
	}

	record := domain.MetricRecord{
		EntityID:    campaignID,
		EntityName:  campaignName,
		TimeBucket:  bucket,
		Clicks:      intCounter(row, "clicks"),
		Conversions: intCounter(row, "conversions"),
		Leads:       intCounter(row, "leads"),
		Sales:       intCounter(row, "sales"),
		Revenue:     decimalCounter(row, "revenue"),
		Cost:        decimalCounter(row, "cost"),
	}

	if n.mode == domain.SyncModeEvents {
		record.SubID = firstString(row, "sub_id", "sub_id_2")
		record.Country = firstString(row, "country", "country_code")
	}

	return record, nil
}

// NormalizeAll normaliza todas as linhas, descartando (e registrando) as que não têm data
func (n *Normalizer) NormalizeAll(rows []keitarodomain.Row, campaignID int64, campaignName string) []domain.MetricRecord {
	records := make([]domain.MetricRecord, 0, len(rows))
	for i, row := range rows {
		record, err := n.Normalize(row, campaignID, campaignName)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"campaign_id": campaignID,
				"row_index":   i,
				"error":       err.Error(),
			}).Warn("Linha do relatório descartada")
			continue
		}
		records = append(records, record)
	}
	return records
}

func (n *Normalizer) timeBucket(row keitarodomain.Row) (time.Time, error) {
	for _, key := range n.bucketKeys {
		raw, ok := row[key]
		if !ok || raw == nil {
			continue
		}

		value := strings.TrimSpace(cast.ToString(raw))
		if value == "" {
			continue
		}

		parsed, err := parseTime(value, n.location)
		if err != nil {
			return time.Time{}, fmt.Errorf("coluna %q com data inválida %q: %w", key, value, err)
		}

		if n.mode == domain.SyncModeDaily {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
		return parsed.Truncate(time.Second), nil
	}

	return time.Time{}, ErrMissingTimeBucket
}

func parseTime(value string, location *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.ParseInLocation(layout, value, location)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// numeric aceita números e strings numéricas; qualquer outra coisa vira zero
func numeric(row keitarodomain.Row, key string) float64 {
	raw, ok := row[key]
	if !ok || raw == nil {
		return 0
	}

	if _, isBool := raw.(bool); isBool {
		return 0
	}

	if s, isString := raw.(string); isString {
		raw = strings.TrimSpace(s)
	}

	value, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func intCounter(row keitarodomain.Row, key string) int64 {
	return int64(numeric(row, key))
}

func decimalCounter(row keitarodomain.Row, key string) float64 {
	return utils.RoundCents(numeric(row, key))
}

func firstString(row keitarodomain.Row, keys ...string) string {
	for _, key := range keys {
		if raw, ok := row[key]; ok && raw != nil {
			if value := strings.TrimSpace(cast.ToString(raw)); value != "" {
				return value
			}
		}
	}
	return ""
}
