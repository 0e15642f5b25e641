package keitarodomain

// Operadores de filtro aceitos pelo report/build
const (
	OperatorEquals = "EQUALS"
	FilterCampaign = "campaign_id"
)

// ReportRequest é o corpo enviado para /admin_api/v1/report/build
type ReportRequest struct {
	Range    Range    `json:"range"`
	Columns  []string `json:"columns"`
	Metrics  []string `json:"metrics"`
	Grouping []string `json:"grouping"`
	Filters  []Filter `json:"filters"`
	Limit    int      `json:"limit"`
	Offset   int      `json:"offset,omitempty"`
}

type Range struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Timezone string `json:"timezone"`
}

type Filter struct {
	Name       string `json:"name"`
	Operator   string `json:"operator"`
	Expression string `json:"expression"`
}

// Row é uma linha do relatório: as chaves e os tipos variam conforme o agrupamento
type Row map[string]interface{}

type ReportResponse struct {
	Rows  []Row `json:"rows"`
	Total int   `json:"total"`
}
