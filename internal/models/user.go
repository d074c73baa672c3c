package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system. Roles
// outside the teaching domain (billing, payroll) live in other systems.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleRegistrar UserRole = "registrar"
	RoleOperator  UserRole = "operator"
	RoleTeacher   UserRole = "teacher"
	RoleParent    UserRole = "parent"
)

// User represents an application account. Phone is the login identity.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
	Phone  string   `json:"phone"`
	jwt.RegisteredClaims
}
