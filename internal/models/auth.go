package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds admin credentials.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and the admin it belongs to.
type LoginResponse struct {
	Admin     AdminInfo `json:"admin"`
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expiresIn"`
}

// JWTClaims is the payload of an admin bearer token.
type JWTClaims struct {
	AdminID  string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ProvisionAdminRequest creates an admin account from the CLI.
type ProvisionAdminRequest struct {
	Username string `validate:"required,max=254"`
	Password string `validate:"required,min=8,max=72"`
}
