package handler

//go:generate mockgen -source=sync.go -destination=mocks/mock_sync.go -package=mocks

import (
	"net/http"

	"github.com/vfg2006/keitaro-sync/pkg/apiErrors"
	"github.com/vfg2006/keitaro-sync/pkg/log"
	"github.com/vfg2006/keitaro-sync/pkg/middleware"
)

// SyncController expõe o controle manual da sincronização
type SyncController interface {
	TriggerManualSync() bool
	GetStatus() map[string]any
}

// RunSync dispara manualmente um ciclo completo
func RunSync(service SyncController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		fields := log.Fields{}
		if claims, ok := middleware.ClaimsFromContext(r); ok {
			fields["user_id"] = claims.UserID
		}
		logger.WithFields(fields).Info("Sincronização manual solicitada")

		if !service.TriggerManualSync() {
			apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Já existe uma sincronização em andamento", nil)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Sincronização iniciada com sucesso",
		})
	}
}

// GetSyncStatus retorna o status da sincronização e o resumo da última execução
func GetSyncStatus(service SyncController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.GetStatus())
	}
}
