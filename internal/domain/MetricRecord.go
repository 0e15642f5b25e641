package domain

import (
	"time"
)

// MetricRecord representa uma linha de métricas da Keitaro pronta para ser persistida.
// A chave natural é (EntityID, TimeBucket); no modo events inclui também SubID e Country.
type MetricRecord struct {
	ID          int64     `json:"id,omitempty"`
	EntityID    int64     `json:"campaign_id"`
	EntityName  string    `json:"campaign_name"`
	TimeBucket  time.Time `json:"time_bucket"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Leads       int64     `json:"leads"`
	Sales       int64     `json:"sales"`
	Revenue     float64   `json:"revenue"`
	Cost        float64   `json:"cost"`
	SubID       string    `json:"sub_id,omitempty"`
	Country     string    `json:"country,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Key retorna a chave natural do registro no formato usado pelo armazenamento
func (r MetricRecord) Key(mode SyncMode) RecordKey {
	key := RecordKey{
		EntityID: r.EntityID,
		Bucket:   mode.FormatBucket(r.TimeBucket),
	}
	if mode == SyncModeEvents {
		key.SubID = r.SubID
		key.Country = r.Country
	}
	return key
}

// RecordKey identifica unicamente um registro persistido
type RecordKey struct {
	EntityID int64
	Bucket   string
	SubID    string
	Country  string
}
