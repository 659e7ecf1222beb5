package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload issued by the gym auth service.
type SessionClaims struct {
	UserID   int64    `json:"user_id"`
	GymID    int64    `json:"gym_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Session is the authenticated identity of a dashboard request.
type Session struct {
	UserID   int64    `json:"user_id"`
	GymID    int64    `json:"gym_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	// Token is forwarded to the backend on every gateway call.
	Token string `json:"-"`
}

// GymSettings is the subset of gym configuration the dashboard needs.
type GymSettings struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}
