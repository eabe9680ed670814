package jwt

import (
	gojwt "github.com/golang-jwt/jwt/v5"
)

const Issuer = "engaja"

// Claims carries the session identity. Subject is the user id.
type Claims struct {
	Role string `json:"role"`
	gojwt.RegisteredClaims
}
