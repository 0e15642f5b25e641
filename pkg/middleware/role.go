package middleware

import (
	"net/http"
	"slices"

	"github.com/vfg2006/keitaro-sync/internal/domain"
	"github.com/vfg2006/keitaro-sync/pkg/apiErrors"
	"github.com/vfg2006/keitaro-sync/pkg/log"
)

// Papéis aceitos no claim user_role_id
const (
	RoleAdmin      = 1
	RoleSupervisor = 2
	RoleViewer     = 3
)

// RequireRoles restringe a rota aos papéis informados. Precisa rodar depois do AuthMiddleware.
func RequireRoles(allowedRoles ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.ForContext(r.Context())

			userClaims, ok := ClaimsFromContext(r)
			if !ok {
				logger.Warn("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
				return
			}

			if !slices.Contains(allowedRoles, userClaims.UserRoleID) {
				logger.WithFields(log.Fields{
					"user_id": userClaims.UserID,
					"role_id": userClaims.UserRoleID,
					"path":    r.URL.Path,
				}).Warn("Acesso negado")
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(r *http.Request) (*domain.Claims, bool) {
	claims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims)
	return claims, ok && claims != nil
}

func AdminOnly() func(http.Handler) http.Handler {
	return RequireRoles(RoleAdmin)
}

func AdminOrSupervisor() func(http.Handler) http.Handler {
	return RequireRoles(RoleAdmin, RoleSupervisor)
}

func AnyRole() func(http.Handler) http.Handler {
	return RequireRoles(RoleAdmin, RoleSupervisor, RoleViewer)
}
