package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type TokenType string

const (
	TokenTypeTenantSession TokenType = "tenant_session"
	TokenTypeAdminSession  TokenType = "admin_session"
	TokenTypeImpersonation TokenType = "impersonation"
)

const RolePlatformAdmin = "PLATFORM_ADMIN"

// SessionClaims are the claims carried by every session token. Tenant
// sessions carry the tenant id; admin sessions carry the platform-admin role
// and no tenant; impersonation grants carry both plus who issued them.
type SessionClaims struct {
	TenantID       int32     `json:"tenant_id,omitempty"`
	ActorID        int32     `json:"actor_id"`
	Roles          []string  `json:"roles,omitempty"`
	Type           TokenType `json:"type"`
	ImpersonatedBy int32     `json:"impersonated_by,omitempty"`
	jwt.RegisteredClaims
}

// IsPlatformAdmin reports whether the claims carry the platform-admin role.
func (c *SessionClaims) IsPlatformAdmin() bool {
	for _, r := range c.Roles {
		if r == RolePlatformAdmin {
			return true
		}
	}
	return false
}

type TokenManager interface {
	GenerateTenantToken(tenantID, actorID int32) (string, error)
	GenerateAdminToken(adminID int32) (string, error)
	GenerateImpersonationToken(adminID, tenantID int32) (string, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
}

type tokenManager struct {
	secret         []byte
	sessionTTL     time.Duration
	impersonateTTL time.Duration
}

func NewTokenManager(secret string, sessionMinutes, impersonationMinutes int) TokenManager {
	return &tokenManager{
		secret:         []byte(secret),
		sessionTTL:     time.Duration(sessionMinutes) * time.Minute,
		impersonateTTL: time.Duration(impersonationMinutes) * time.Minute,
	}
}

func (m *tokenManager) GenerateTenantToken(tenantID, actorID int32) (string, error) {
	claims := SessionClaims{
		TenantID: tenantID,
		ActorID:  actorID,
		Type:     TokenTypeTenantSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(actorID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "atelier-backend",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) GenerateAdminToken(adminID int32) (string, error) {
	claims := SessionClaims{
		ActorID: adminID,
		Roles:   []string{RolePlatformAdmin},
		Type:    TokenTypeAdminSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(adminID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "atelier-backend",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GenerateImpersonationToken issues a short-lived tenant session on behalf of
// a platform admin. The grant records who impersonated which tenant.
func (m *tokenManager) GenerateImpersonationToken(adminID, tenantID int32) (string, error) {
	claims := SessionClaims{
		TenantID:       tenantID,
		ActorID:        adminID,
		Roles:          []string{RolePlatformAdmin},
		Type:           TokenTypeImpersonation,
		ImpersonatedBy: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(adminID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.impersonateTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "atelier-backend",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
