package domain

import "time"

// ReportWindow é o intervalo de datas (inclusivo nas duas pontas) enviado à Keitaro
type ReportWindow struct {
	From     time.Time
	To       time.Time
	Timezone string
}

// NewLookbackWindow calcula a janela de lookbackDays dias terminando em now
func NewLookbackWindow(now time.Time, lookbackDays int, location *time.Location) ReportWindow {
	if location == nil {
		location = time.UTC
	}

	to := now.In(location)
	from := to.AddDate(0, 0, -lookbackDays)

	return ReportWindow{
		From:     from,
		To:       to,
		Timezone: location.String(),
	}
}

func (w ReportWindow) FromDate() string {
	return w.From.Format(time.DateOnly)
}

func (w ReportWindow) ToDate() string {
	return w.To.Format(time.DateOnly)
}

type MetricFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
}
