package repository

import (
	"database/sql"

	"github.com/vfg2006/keitaro-sync/internal/domain"
)

const (
	dailyMetricsTable = "keitaro_daily_metrics"
	eventMetricsTable = "keitaro_conversion_events"
)

// metricsTable descreve o formato físico de cada modo de sincronização
type metricsTable struct {
	name           string
	bucketColumn   string
	schema         []string
	insertColumns  []string
	selectColumns  []string
	conflictClause string
	values         func(domain.MetricRecord) []interface{}
	scan           func(*sql.Rows) (*domain.MetricRecord, error)
}

func tableForMode(mode domain.SyncMode) metricsTable {
	if mode == domain.SyncModeEvents {
		return eventTable
	}
	return dailyTable
}

var dailyTable = metricsTable{
	name:         dailyMetricsTable,
	bucketColumn: "date",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS keitaro_daily_metrics (
			id SERIAL PRIMARY KEY,
			campaign_id INTEGER NOT NULL,
			campaign_name VARCHAR(255),
			date DATE NOT NULL,
			clicks INTEGER DEFAULT 0,
			conversions INTEGER DEFAULT 0,
			leads INTEGER DEFAULT 0,
			sales INTEGER DEFAULT 0,
			revenue DECIMAL(18,2) DEFAULT 0,
			cost DECIMAL(18,2) DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(campaign_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_keitaro_daily_campaign_id ON keitaro_daily_metrics(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_keitaro_daily_date ON keitaro_daily_metrics(date)`,
	},
	insertColumns: []string{
		"campaign_id", "campaign_name", "date",
		"clicks", "conversions", "leads", "sales", "revenue", "cost",
	},
	selectColumns: []string{
		"id", "campaign_id", "campaign_name", "date",
		"clicks", "conversions", "leads", "sales", "revenue", "cost",
		"created_at", "updated_at",
	},
	conflictClause: `
		ON CONFLICT (campaign_id, date) DO UPDATE SET
			campaign_name = EXCLUDED.campaign_name,
			clicks = EXCLUDED.clicks,
			conversions = EXCLUDED.conversions,
			leads = EXCLUDED.leads,
			sales = EXCLUDED.sales,
			revenue = EXCLUDED.revenue,
			cost = EXCLUDED.cost,
			updated_at = CURRENT_TIMESTAMP
	`,
	values: func(r domain.MetricRecord) []interface{} {
		return []interface{}{
			r.EntityID,
			r.EntityName,
			domain.SyncModeDaily.FormatBucket(r.TimeBucket),
			r.Clicks,
			r.Conversions,
			r.Leads,
			r.Sales,
			r.Revenue,
			r.Cost,
		}
	},
	scan: func(rows *sql.Rows) (*domain.MetricRecord, error) {
		record := &domain.MetricRecord{}
		var name sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.EntityID,
			&name,
			&record.TimeBucket,
			&record.Clicks,
			&record.Conversions,
			&record.Leads,
			&record.Sales,
			&record.Revenue,
			&record.Cost,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		record.EntityName = name.String
		return record, nil
	},
}

var eventTable = metricsTable{
	name:         eventMetricsTable,
	bucketColumn: "event_time",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS keitaro_conversion_events (
			id SERIAL PRIMARY KEY,
			campaign_id INTEGER NOT NULL,
			campaign_name VARCHAR(255),
			event_time TIMESTAMP NOT NULL,
			sub_id VARCHAR(255) NOT NULL DEFAULT '',
			country VARCHAR(64) NOT NULL DEFAULT '',
			clicks INTEGER DEFAULT 0,
			conversions INTEGER DEFAULT 0,
			revenue DECIMAL(18,2) DEFAULT 0,
			cost DECIMAL(18,2) DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(campaign_id, event_time, sub_id, country)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_keitaro_events_campaign_id ON keitaro_conversion_events(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_keitaro_events_event_time ON keitaro_conversion_events(event_time)`,
	},
	insertColumns: []string{
		"campaign_id", "campaign_name", "event_time", "sub_id", "country",
		"clicks", "conversions", "revenue", "cost",
	},
	selectColumns: []string{
		"id", "campaign_id", "campaign_name", "event_time", "sub_id", "country",
		"clicks", "conversions", "revenue", "cost",
		"created_at", "updated_at",
	},
	conflictClause: `
		ON CONFLICT (campaign_id, event_time, sub_id, country) DO UPDATE SET
			campaign_name = EXCLUDED.campaign_name,
			clicks = EXCLUDED.clicks,
			conversions = EXCLUDED.conversions,
			revenue = EXCLUDED.revenue,
			cost = EXCLUDED.cost,
			updated_at = CURRENT_TIMESTAMP
	`,
	values: func(r domain.MetricRecord) []interface{} {
		return []interface{}{
			r.EntityID,
			r.EntityName,
			domain.SyncModeEvents.FormatBucket(r.TimeBucket),
			r.SubID,
			r.Country,
			r.Clicks,
			r.Conversions,
			r.Revenue,
			r.Cost,
		}
	},
	scan: func(rows *sql.Rows) (*domain.MetricRecord, error) {
		record := &domain.MetricRecord{}
		var name, subID, country sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.EntityID,
			&name,
			&record.TimeBucket,
			&subID,
			&country,
			&record.Clicks,
			&record.Conversions,
			&record.Revenue,
			&record.Cost,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		record.EntityName = name.String
		record.SubID = subID.String
		record.Country = country.String
		return record, nil
	},
}
