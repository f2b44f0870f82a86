package http

import (
	"context"
	"net/http"
	"strings"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/logger"
	"atelier-backend/internal/security"
	"atelier-backend/internal/service"
)

type contextKey string

const (
	tenantHandleKey  contextKey = "tenant_handle"
	sessionClaimsKey contextKey = "session_claims"
)

// Middleware bundles the token manager and tenant resolver used by the
// request filters.
type Middleware struct {
	tokens  security.TokenManager
	tenants service.TenantService
}

func NewMiddleware(tokens security.TokenManager, tenants service.TenantService) *Middleware {
	return &Middleware{tokens: tokens, tenants: tenants}
}

// Recover turns a handler panic into a JSON internal error instead of the
// default plain-text 500 page.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Handler panicked", "panic", p, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, envelope{Status: "error", Message: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// TenantSession authenticates the bearer token, resolves the tenant handle,
// and stores it on the request context. There is no fallback tenant: requests
// without a resolvable tenant never reach a handler.
func (m *Middleware) TenantSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		handle, err := m.tenants.Resolve(r.Context(), claims)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), tenantHandleKey, handle)
		ctx = context.WithValue(ctx, sessionClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PlatformAdmin admits only sessions carrying the platform-admin role.
func (m *Middleware) PlatformAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if !claims.IsPlatformAdmin() {
			writeError(w, domain.ErrForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) claimsFromRequest(r *http.Request) (*security.SessionClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

// TenantFromContext returns the resolved tenant handle placed by the
// TenantSession middleware.
func TenantFromContext(ctx context.Context) (*domain.TenantHandle, error) {
	handle, ok := ctx.Value(tenantHandleKey).(*domain.TenantHandle)
	if !ok || handle == nil {
		return nil, domain.ErrUnauthenticated
	}
	return handle, nil
}

// ClaimsFromContext returns the validated session claims.
func ClaimsFromContext(ctx context.Context) (*security.SessionClaims, error) {
	claims, ok := ctx.Value(sessionClaimsKey).(*security.SessionClaims)
	if !ok || claims == nil {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
