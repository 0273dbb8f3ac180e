package identity

// ActorRole is the closed set of privilege tiers for platform actors
type ActorRole string

const (
	// RoleMothership is the super-admin console tier. Only this role may
	// issue impersonation grants.
	RoleMothership ActorRole = "mothership"
	// RoleAdmin is a tenant administrator
	RoleAdmin ActorRole = "admin"
	// RoleStaff is a tenant staff member
	RoleStaff ActorRole = "staff"
	// RoleImpersonator marks a session running under an impersonation
	// grant, so downstream logging can flag it.
	RoleImpersonator ActorRole = "impersonator"
)

// IsValid returns true if the role is one of the known tiers
func (r ActorRole) IsValid() bool {
	switch r {
	case RoleMothership, RoleAdmin, RoleStaff, RoleImpersonator:
		return true
	}
	return false
}

// CanImpersonate returns true if the role may issue impersonation grants
func (r ActorRole) CanImpersonate() bool {
	return r == RoleMothership
}

// CanAdministerLicenses returns true if the role may mint, suspend or
// revoke licenses
func (r ActorRole) CanAdministerLicenses() bool {
	return r == RoleMothership
}

// CanReadAudit returns true if the role may read the audit trail
func (r ActorRole) CanReadAudit() bool {
	return r == RoleMothership
}
