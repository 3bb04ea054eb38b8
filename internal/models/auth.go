package models

import "github.com/golang-jwt/jwt/v5"

// Role names understood by the widget endpoints. Admins are "privileged
// viewers": the countdown is hidden for them, never an error.
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// JWTClaims represents the JWT payload issued by the site's identity service.
type JWTClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// PrivilegedViewer reports whether the timer should be suppressed for this
// viewer.
func (c *JWTClaims) PrivilegedViewer() bool {
	return c != nil && c.Role == RoleAdmin
}
