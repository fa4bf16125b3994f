package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and account info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	Account     AccountInfo `json:"account"`
}

// RegisterRequest creates an account together with its role profile.
type RegisterRequest struct {
	Username       string   `json:"username" validate:"required,min=3,max=100"`
	Password       string   `json:"password" validate:"required,min=6,max=72"`
	Role           UserRole `json:"role" validate:"required,oneof=Admin Mahasiswa Konselor"`
	Name           string   `json:"name" validate:"required,max=150"`
	NRP            string   `json:"nrp" validate:"required_if=Role Mahasiswa,omitempty,max=20"`
	Department     string   `json:"department" validate:"required_if=Role Mahasiswa,omitempty,max=150"`
	NIK            string   `json:"nik" validate:"required_if=Role Konselor,omitempty,max=20"`
	Specialization string   `json:"specialization" validate:"required_if=Role Konselor,omitempty,max=150"`
	Contact        *string  `json:"contact" validate:"omitempty,max=100"`
}

// AccountInfo describes the authenticated account in responses.
type AccountInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	EntityID string   `json:"entity_id"`
}

// JWTClaims represents the JWT payload for access tokens. EntityID is the
// caller's profile key: NRP for Mahasiswa, NIK for Konselor, admin id for Admin.
type JWTClaims struct {
	AccountID string   `json:"account_id"`
	Role      UserRole `json:"role"`
	EntityID  string   `json:"entity_id"`
	jwt.RegisteredClaims
}
