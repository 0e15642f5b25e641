package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vfg2006/keitaro-sync/internal/usecases/authenticating"
	"github.com/vfg2006/keitaro-sync/pkg/apiErrors"
	"github.com/vfg2006/keitaro-sync/pkg/log"
)

type contextKey string

const (
	ContextKeyUser contextKey = "user"
)

// Rotas que dispensam token
var publicPaths = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

func AuthMiddleware(authService authenticating.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Header Authorization é obrigatório", nil)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token Bearer é obrigatório", nil)
				return
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				log.ForContext(r.Context()).WithError(err).Warn("Token rejeitado")

				var authErr *authenticating.AuthError
				switch {
				case errors.Is(err, authenticating.ErrAuthDisabled):
					apiErrors.WriteError(w, apiErrors.ErrAuthDisabled, "Rotas protegidas desabilitadas", nil)
				case errors.As(err, &authErr):
					apiErrors.WriteError(w, authErr.Code, authErr.Err.Error(), nil)
				default:
					apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token inválido", nil)
				}
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
