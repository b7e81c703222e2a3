package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating an admin.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SessionClaims is the JWT payload stored in the session cookie.
type SessionClaims struct {
	StudentID string `json:"_id"`
	jwt.RegisteredClaims
}
