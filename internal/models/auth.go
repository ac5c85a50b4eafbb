package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role issued by the passcode login.
const RoleAdmin = "ADMIN"

// LoginRequest holds the admin passcode.
type LoginRequest struct {
	Passcode string `json:"passcode" validate:"required"`
}

// LoginResponse returns the issued admin session token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// AdminClaims is the JWT payload of an admin session.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
