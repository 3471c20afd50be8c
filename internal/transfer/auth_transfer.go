package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	Operator string `json:"operator,omitempty"`
	Platform string `json:"platform,omitempty"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Operator string `json:"operator"`
	APIKey   string `json:"api_key"`
}
