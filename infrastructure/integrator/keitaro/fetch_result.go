package keitaro

import (
	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
)

type FetchStatus int

const (
	// FetchOK indica que o relatório trouxe linhas
	FetchOK FetchStatus = iota
	// FetchEmpty indica que a chamada funcionou mas não há dados na janela
	FetchEmpty
	// FetchFailed indica erro de rede, timeout, status não-2xx ou payload inválido
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchEmpty:
		return "empty"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult distingue "sem dados" de "falha na chamada"
type FetchResult struct {
	Status FetchStatus
	Rows   []keitarodomain.Row
	Total  int
	Pages  int
	Err    error
}

func failedFetch(err error, pages int) FetchResult {
	return FetchResult{
		Status: FetchFailed,
		Rows:   []keitarodomain.Row{},
		Pages:  pages,
		Err:    err,
	}
}
