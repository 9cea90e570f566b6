package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role accepted on the waitlist dashboard routes.
const RoleAdmin = "admin"

// AdminClaims represents the typed JWT presented by dashboard operators.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
