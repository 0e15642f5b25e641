package domain

import (
	"fmt"
	"strings"
	"time"
)

// SyncMode define o formato das métricas sincronizadas
type SyncMode string

const (
	// SyncModeDaily agrega métricas por dia (formato padrão de produção)
	SyncModeDaily SyncMode = "daily"
	// SyncModeEvents guarda métricas por timestamp com sub_id e país
	SyncModeEvents SyncMode = "events"
)

const EventTimeLayout = "2006-01-02 15:04:05"

func ParseSyncMode(value string) (SyncMode, error) {
	switch SyncMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", SyncModeDaily:
		return SyncModeDaily, nil
	case SyncModeEvents:
		return SyncModeEvents, nil
	default:
		return "", fmt.Errorf("modo de sincronização inválido: %q (use daily ou events)", value)
	}
}

// DefaultLookbackDays retorna a janela padrão de cada modo
func (m SyncMode) DefaultLookbackDays() int {
	if m == SyncModeEvents {
		return 7
	}
	return 30
}

// FormatBucket formata o time bucket na granularidade do modo
func (m SyncMode) FormatBucket(t time.Time) string {
	if m == SyncModeEvents {
		return t.Format(EventTimeLayout)
	}
	return t.Format(time.DateOnly)
}

// FailurePolicy define o que acontece com as demais campanhas quando uma falha
type FailurePolicy string

const (
	// FailurePolicyAbort interrompe o ciclo na primeira campanha com erro
	FailurePolicyAbort FailurePolicy = "abort"
	// FailurePolicyContinue processa todas as campanhas e agrega os erros
	FailurePolicyContinue FailurePolicy = "continue"
)

func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", FailurePolicyAbort:
		return FailurePolicyAbort, nil
	case FailurePolicyContinue:
		return FailurePolicyContinue, nil
	default:
		return "", fmt.Errorf("política de falha inválida: %q (use abort ou continue)", value)
	}
}
