package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims são as informações carregadas pelo token de administração
type Claims struct {
	UserID     int    `json:"user_id"`
	UserEmail  string `json:"user_email"`
	UserRoleID int    `json:"user_role_id"`
	jwt.RegisteredClaims
}
