package domain

import "time"

type AuditAction string

const (
	AuditActionImpersonate     AuditAction = "IMPERSONATE_TENANT"
	AuditActionSetTenantStatus AuditAction = "SET_TENANT_STATUS"
	AuditActionSoftDelete      AuditAction = "SOFT_DELETE_TENANT"
	AuditActionHardDelete      AuditAction = "HARD_DELETE_TENANT"
	AuditActionProvision       AuditAction = "PROVISION_TENANT"
)

// PlatformAuditEntry records one privileged platform-admin action in the
// shared platform schema.
type PlatformAuditEntry struct {
	ID        int32       `json:"id"`
	ActorID   int32       `json:"actor_id"`
	Action    AuditAction `json:"action"`
	TenantID  int32       `json:"tenant_id"`
	Details   string      `json:"details,omitempty"`
	CreatedOn time.Time   `json:"created_on"`
}
