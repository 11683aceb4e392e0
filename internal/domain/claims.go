package domain

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Claims são as informações carregadas no token das rotas de operação
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
