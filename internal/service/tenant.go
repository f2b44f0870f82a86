package service

import (
	"context"
	"fmt"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/logger"
	"atelier-backend/internal/repository"
	"atelier-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

type tenantService struct {
	store  repository.Store
	tokens security.TokenManager
}

func NewTenantService(store repository.Store, tokens security.TokenManager) TenantService {
	return &tenantService{store: store, tokens: tokens}
}

// Resolve is the single entry point from session claims to a tenant handle.
// Everything tenant-scoped in the core receives the handle it returns.
func (s *tenantService) Resolve(ctx context.Context, claims *security.SessionClaims) (*domain.TenantHandle, error) {
	if claims == nil || claims.TenantID == 0 {
		return nil, domain.ErrUnauthenticated
	}

	tenant, err := s.store.Tenants().GetByID(ctx, claims.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status != domain.TenantStatusActive {
		return nil, domain.ErrTenantSuspended
	}

	return &domain.TenantHandle{
		TenantID:     tenant.ID,
		TenantName:   tenant.Name,
		ActorID:      claims.ActorID,
		Impersonated: claims.Type == security.TokenTypeImpersonation,
	}, nil
}

func (s *tenantService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	admin, err := s.store.Admins().GetByEmail(ctx, email)
	if err != nil {
		return "", domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthenticated
	}
	return s.tokens.GenerateAdminToken(admin.ID)
}

// ResolveForImpersonation issues a short-lived tenant session for a platform
// admin. Suspended tenants may be impersonated for support; deleted tenants
// may not.
func (s *tenantService) ResolveForImpersonation(ctx context.Context, claims *security.SessionClaims, tenantID int32) (string, *domain.TenantHandle, error) {
	if err := requireAdmin(claims); err != nil {
		return "", nil, err
	}

	tenant, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return "", nil, err
	}
	if tenant.Status == domain.TenantStatusDeleted {
		return "", nil, domain.ErrTenantSuspended
	}

	entry := &domain.PlatformAuditEntry{
		ActorID:  claims.ActorID,
		Action:   domain.AuditActionImpersonate,
		TenantID: tenantID,
	}
	if err := s.store.Audit().Append(ctx, entry); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.GenerateImpersonationToken(claims.ActorID, tenantID)
	if err != nil {
		return "", nil, err
	}

	logger.Info("Tenant impersonation granted", "admin_id", claims.ActorID, "tenant_id", tenantID)
	return token, &domain.TenantHandle{
		TenantID:     tenant.ID,
		TenantName:   tenant.Name,
		ActorID:      claims.ActorID,
		Impersonated: true,
	}, nil
}

func (s *tenantService) ProvisionTenant(ctx context.Context, claims *security.SessionClaims, name, code, activationCode string) (*domain.Tenant, error) {
	if err := requireAdmin(claims); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if code == "" {
		return nil, domain.NewValidationError("code", "must not be empty")
	}

	tenant := &domain.Tenant{Name: name, Code: code, Status: domain.TenantStatusActive}
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		act, err := tx.ActivationCodes().GetUnused(ctx, activationCode)
		if err != nil {
			return domain.NewValidationError("activation_code", "unknown or already used")
		}
		if err := tx.Tenants().Create(ctx, tenant); err != nil {
			return err
		}
		if err := tx.ActivationCodes().MarkUsed(ctx, act.ID, tenant.ID); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, &domain.PlatformAuditEntry{
			ActorID:  claims.ActorID,
			Action:   domain.AuditActionProvision,
			TenantID: tenant.ID,
			Details:  fmt.Sprintf("code=%s", code),
		})
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) SetTenantStatus(ctx context.Context, claims *security.SessionClaims, tenantID int32, status domain.TenantStatus) error {
	if err := requireAdmin(claims); err != nil {
		return err
	}
	switch status {
	case domain.TenantStatusActive, domain.TenantStatusSuspended:
	default:
		return domain.NewValidationError("status", "must be ACTIVE or SUSPENDED")
	}

	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Tenants().UpdateStatus(ctx, tenantID, status); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, &domain.PlatformAuditEntry{
			ActorID:  claims.ActorID,
			Action:   domain.AuditActionSetTenantStatus,
			TenantID: tenantID,
			Details:  string(status),
		})
	})
}

// SoftDeleteTenant marks the tenant deleted. The confirmation name must match
// the tenant's display name exactly.
func (s *tenantService) SoftDeleteTenant(ctx context.Context, claims *security.SessionClaims, tenantID int32, confirmationName string) error {
	if err := requireAdmin(claims); err != nil {
		return err
	}

	tenant, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if confirmationName != tenant.Name {
		return domain.NewValidationError("confirmation_name", "does not match the tenant name")
	}

	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Tenants().UpdateStatus(ctx, tenantID, domain.TenantStatusDeleted); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, &domain.PlatformAuditEntry{
			ActorID:  claims.ActorID,
			Action:   domain.AuditActionSoftDelete,
			TenantID: tenantID,
		})
	})
}

// HardDeleteTenant physically removes the tenant and all its data. Requires
// both a matching confirmation name and the explicit drop flag.
func (s *tenantService) HardDeleteTenant(ctx context.Context, claims *security.SessionClaims, tenantID int32, confirmationName string, explicitDrop bool) error {
	if err := requireAdmin(claims); err != nil {
		return err
	}
	if !explicitDrop {
		return domain.NewValidationError("drop_data", "hard delete requires the explicit drop flag")
	}

	tenant, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if confirmationName != tenant.Name {
		return domain.NewValidationError("confirmation_name", "does not match the tenant name")
	}

	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Tenants().HardDelete(ctx, tenantID); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, &domain.PlatformAuditEntry{
			ActorID:  claims.ActorID,
			Action:   domain.AuditActionHardDelete,
			TenantID: tenantID,
			Details:  fmt.Sprintf("name=%s", tenant.Name),
		})
	})
}

func (s *tenantService) ListTenants(ctx context.Context, claims *security.SessionClaims) ([]domain.Tenant, error) {
	if err := requireAdmin(claims); err != nil {
		return nil, err
	}
	return s.store.Tenants().List(ctx)
}

func (s *tenantService) ListAuditLog(ctx context.Context, claims *security.SessionClaims, page, pageSize int32) ([]domain.PlatformAuditEntry, int32, error) {
	if err := requireAdmin(claims); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	return s.store.Audit().List(ctx, page, pageSize)
}

func requireAdmin(claims *security.SessionClaims) error {
	if claims == nil {
		return domain.ErrUnauthenticated
	}
	if !claims.IsPlatformAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
