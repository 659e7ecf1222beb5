package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// dashboardRoles may mount admin screens.
var dashboardRoles = map[models.UserRole]struct{}{
	models.RoleOwner: {},
	models.RoleAdmin: {},
	models.RoleStaff: {},
}

// SessionService validates access tokens issued by the gym's auth service.
// The dashboard never issues tokens itself.
type SessionService struct {
	secret []byte
	logger *zap.Logger
}

// NewSessionService constructs the session provider.
func NewSessionService(secret string, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{secret: []byte(secret), logger: logger}
}

// Validate parses an HS256 token and returns the authenticated session.
func (s *SessionService) Validate(tokenString string) (*models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrAuthExpired.Code, appErrors.ErrAuthExpired.Kind, appErrors.ErrAuthExpired.Status, appErrors.ErrAuthExpired.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Kind, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return &models.Session{
		UserID:   claims.UserID,
		GymID:    claims.GymID,
		Role:     claims.Role,
		Email:    claims.Email,
		FullName: claims.FullName,
		Token:    tokenString,
	}, nil
}

// CanManage reports whether the role may use the admin dashboard.
func CanManage(role models.UserRole) bool {
	_, ok := dashboardRoles[role]
	return ok
}
