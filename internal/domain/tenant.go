package domain

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
	TenantStatusDeleted   TenantStatus = "DELETED"
)

// Tenant is one isolated store on the platform. Rows live in the shared
// platform schema; all store data is keyed by the tenant id.
type Tenant struct {
	ID        int32        `json:"id"`
	Name      string       `json:"name"`
	Code      string       `json:"code"`
	Status    TenantStatus `json:"status"`
	CreatedOn string       `json:"created_on"`
	UpdatedOn string       `json:"updated_on"`
}

// TenantHandle is the resolved, validated tenant context threaded through
// every core operation. Nothing in the core reads tenant identity from
// anywhere else.
type TenantHandle struct {
	TenantID     int32  `json:"tenant_id"`
	TenantName   string `json:"tenant_name"`
	ActorID      int32  `json:"actor_id"`
	Impersonated bool   `json:"impersonated,omitempty"`
}

// PlatformAdmin is an operator account in the shared platform schema,
// distinct from ordinary tenant sessions.
type PlatformAdmin struct {
	ID           int32  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	CreatedOn    string `json:"created_on"`
}

// ActivationCode is a one-use provisioning code consumed when a new tenant
// is created.
type ActivationCode struct {
	ID        int32   `json:"id"`
	Code      string  `json:"code"`
	UsedBy    *int32  `json:"used_by,omitempty"`
	CreatedOn string  `json:"created_on"`
	UsedOn    *string `json:"used_on,omitempty"`
}
