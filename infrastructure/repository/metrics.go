package repository

//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/infrastructure/database/postgres"
	"github.com/vfg2006/keitaro-sync/internal/domain"
)

// upsertChunkSize mantém cada INSERT bem abaixo do limite de 65535 parâmetros do Postgres
const upsertChunkSize = 1000

type MetricsRepository interface {
	EnsureSchema(ctx context.Context) error
	UpsertBatch(ctx context.Context, records []domain.MetricRecord) (int, error)
	GetByDateRange(ctx context.Context, campaignID int64, startDate, endDate time.Time) ([]*domain.MetricRecord, error)
}

type metricsRepository struct {
	conn  postgres.Conn
	mode  domain.SyncMode
	table metricsTable
}

func NewMetricsRepository(conn postgres.Conn, mode domain.SyncMode) MetricsRepository {
	return &metricsRepository{
		conn:  conn,
		mode:  mode,
		table: tableForMode(mode),
	}
}

// EnsureSchema cria a tabela e os índices caso ainda não existam
func (r *metricsRepository) EnsureSchema(ctx context.Context) error {
	for _, statement := range r.table.schema {
		if _, err := r.conn.Exec(ctx, statement); err != nil {
			return wrapDatabaseError("erro ao criar schema", err)
		}
	}

	logrus.WithField("table", r.table.name).Info("Schema de métricas inicializado")
	return nil
}

// UpsertBatch grava todos os registros em uma única transação.
// Em conflito de chave os contadores são sobrescritos, nunca somados.
func (r *metricsRepository) UpsertBatch(ctx context.Context, records []domain.MetricRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	unique := dedupeByKey(records, r.mode)

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(unique); start += upsertChunkSize {
			end := min(start+upsertChunkSize, len(unique))

			query, args, err := r.buildUpsert(unique[start:end])
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return wrapDatabaseError("erro ao executar upsert", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

func (r *metricsRepository) GetByDateRange(ctx context.Context, campaignID int64, startDate, endDate time.Time) ([]*domain.MetricRecord, error) {
	bucket := r.table.bucketColumn

	query, args, err := squirrel.
		Select(r.table.selectColumns...).
		From(r.table.name).
		Where(squirrel.Eq{"campaign_id": campaignID}).
		Where(squirrel.GtOrEq{bucket: startDate.Format(time.DateOnly)}).
		Where(squirrel.Lt{bucket: endDate.AddDate(0, 0, 1).Format(time.DateOnly)}).
		OrderBy(bucket + " ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDatabaseError("erro ao executar a query", err)
	}
	defer rows.Close()

	records := make([]*domain.MetricRecord, 0)
	for rows.Next() {
		record, err := r.table.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear métricas: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

func (r *metricsRepository) buildUpsert(records []domain.MetricRecord) (string, []interface{}, error) {
	builder := squirrel.StatementBuilder.
		Insert(r.table.name).
		Columns(r.table.insertColumns...)

	for _, record := range records {
		builder = builder.Values(r.table.values(record)...)
	}

	return builder.
		Suffix(r.table.conflictClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// dedupeByKey mantém apenas a última ocorrência de cada chave: o Postgres rejeita
// um INSERT ... ON CONFLICT que atualiza a mesma linha duas vezes
func dedupeByKey(records []domain.MetricRecord, mode domain.SyncMode) []domain.MetricRecord {
	positions := make(map[domain.RecordKey]int, len(records))
	unique := make([]domain.MetricRecord, 0, len(records))

	for _, record := range records {
		key := record.Key(mode)
		if idx, ok := positions[key]; ok {
			unique[idx] = record
			continue
		}
		positions[key] = len(unique)
		unique = append(unique, record)
	}

	return unique
}

func wrapDatabaseError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: erro no banco de dados: %w (código: %s)", message, pqErr, pqErr.Code)
	}
	return fmt.Errorf("%s: %w", message, err)
}
