package models

import "github.com/golang-jwt/jwt/v5"

// UserRole identifies the caller's role for read-access gating.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleScheduler UserRole = "SCHEDULER"
	RoleTeacher   UserRole = "TEACHER"
)

// JWTClaims represents the JWT payload for access tokens issued by the
// external identity service.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
