package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/keitaro-sync/internal/domain"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestDedupeByKey_KeepsLastObservation(t *testing.T) {
	records := []domain.MetricRecord{
		{EntityID: 7, TimeBucket: day("2026-01-01"), Clicks: 1},
		{EntityID: 7, TimeBucket: day("2026-01-02"), Clicks: 5},
		{EntityID: 7, TimeBucket: day("2026-01-01"), Clicks: 10},
		{EntityID: 8, TimeBucket: day("2026-01-01"), Clicks: 3},
	}

	unique := dedupeByKey(records, domain.SyncModeDaily)

	require.Len(t, unique, 3)
	assert.Equal(t, int64(10), unique[0].Clicks)
	assert.Equal(t, day("2026-01-01"), unique[0].TimeBucket)
	assert.Equal(t, int64(5), unique[1].Clicks)
	assert.Equal(t, int64(8), unique[2].EntityID)
}

func TestDedupeByKey_EventsUseTimestamp(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []domain.MetricRecord{
		{EntityID: 7, TimeBucket: base, Conversions: 1},
		{EntityID: 7, TimeBucket: base.Add(time.Second), Conversions: 1},
	}

	assert.Len(t, dedupeByKey(records, domain.SyncModeEvents), 2)
	assert.Len(t, dedupeByKey(records, domain.SyncModeDaily), 1)
}

func TestDedupeByKey_EventsKeepSubIDAndCountryBreakdown(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	records := []domain.MetricRecord{
		{EntityID: 12, TimeBucket: at, SubID: "a", Country: "BR", Conversions: 3, Revenue: 30},
		{EntityID: 12, TimeBucket: at, SubID: "b", Country: "US", Conversions: 5, Revenue: 50},
		{EntityID: 12, TimeBucket: at, SubID: "a", Country: "US", Conversions: 1, Revenue: 10},
	}

	unique := dedupeByKey(records, domain.SyncModeEvents)

	require.Len(t, unique, 3)
	var conversions int64
	var revenue float64
	for _, record := range unique {
		conversions += record.Conversions
		revenue += record.Revenue
	}
	assert.Equal(t, int64(9), conversions)
	assert.Equal(t, 90.0, revenue)

	// Repetição exata da mesma combinação continua colapsando na última ocorrência
	repeated := append(records, domain.MetricRecord{EntityID: 12, TimeBucket: at, SubID: "b", Country: "US", Conversions: 6, Revenue: 60})
	unique = dedupeByKey(repeated, domain.SyncModeEvents)
	require.Len(t, unique, 3)
	assert.Equal(t, int64(6), unique[1].Conversions)
}

func TestBuildUpsert_Daily(t *testing.T) {
	repo := &metricsRepository{mode: domain.SyncModeDaily, table: tableForMode(domain.SyncModeDaily)}

	query, args, err := repo.buildUpsert([]domain.MetricRecord{
		{EntityID: 7, EntityName: "Topacio", TimeBucket: day("2026-01-01"), Clicks: 10, Conversions: 2},
		{EntityID: 7, EntityName: "Topacio", TimeBucket: day("2026-01-02"), Revenue: 12.5, Cost: 3.25},
	})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO keitaro_daily_metrics (campaign_id,campaign_name,date,clicks,conversions,leads,sales,revenue,cost)")
	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8,$9),($10,")
	assert.Contains(t, query, "ON CONFLICT (campaign_id, date) DO UPDATE SET")
	assert.Contains(t, query, "clicks = EXCLUDED.clicks")
	assert.Contains(t, query, "updated_at = CURRENT_TIMESTAMP")
	assert.NotContains(t, query, "created_at =")
	assert.NotContains(t, query, "clicks + ")

	require.Len(t, args, 18)
	assert.Equal(t, []interface{}{int64(7), "Topacio", "2026-01-01", int64(10), int64(2), int64(0), int64(0), 0.0, 0.0}, args[:9])
	assert.Equal(t, "2026-01-02", args[11])
	assert.Equal(t, 12.5, args[16])
}

func TestBuildUpsert_Events(t *testing.T) {
	repo := &metricsRepository{mode: domain.SyncModeEvents, table: tableForMode(domain.SyncModeEvents)}

	query, args, err := repo.buildUpsert([]domain.MetricRecord{
		{
			EntityID:    12,
			EntityName:  "Campaign 12",
			TimeBucket:  time.Date(2026, 1, 18, 14, 3, 9, 0, time.UTC),
			SubID:       "abc",
			Country:     "BR",
			Conversions: 1,
			Revenue:     40,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO keitaro_conversion_events")
	assert.Contains(t, query, "ON CONFLICT (campaign_id, event_time, sub_id, country) DO UPDATE SET")
	assert.Contains(t, query, "conversions = EXCLUDED.conversions")
	assert.NotContains(t, query, "country = EXCLUDED.country")
	assert.Equal(t, "2026-01-18 14:03:09", args[2])
	assert.Equal(t, "abc", args[3])
	assert.Equal(t, "BR", args[4])
}

func TestTableForMode_SchemaIsIdempotent(t *testing.T) {
	for _, mode := range []domain.SyncMode{domain.SyncModeDaily, domain.SyncModeEvents} {
		table := tableForMode(mode)
		require.Len(t, table.schema, 3)
		assert.Contains(t, table.schema[0], "CREATE TABLE IF NOT EXISTS")
		assert.Contains(t, table.schema[0], "UNIQUE(campaign_id, "+table.bucketColumn)
		assert.Contains(t, table.schema[1], "CREATE INDEX IF NOT EXISTS")
		assert.Contains(t, table.schema[2], "("+table.bucketColumn+")")
	}
}

func TestTableForMode_EventsUniqueKeyIncludesBreakdown(t *testing.T) {
	table := tableForMode(domain.SyncModeEvents)

	assert.Contains(t, table.schema[0], "UNIQUE(campaign_id, event_time, sub_id, country)")
	assert.Contains(t, table.schema[0], "sub_id VARCHAR(255) NOT NULL DEFAULT ''")
	assert.Contains(t, table.schema[0], "country VARCHAR(64) NOT NULL DEFAULT ''")
	assert.Contains(t, table.conflictClause, "ON CONFLICT (campaign_id, event_time, sub_id, country)")
}
