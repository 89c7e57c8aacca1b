package domain

import (
	dErrors "lettings/pkg/domain-errors"
)

// Role is the capacity in which an authenticated caller acts on a property.
type Role string

const (
	RoleAgent    Role = "agent"
	RoleLandlord Role = "landlord"
	RoleTenant   Role = "tenant"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return r == RoleAgent || r == RoleLandlord || r == RoleTenant
}

// Actor is the authenticated role+id pair that accompanies every mutating call.
type Actor struct {
	ID   UserID
	Role Role
}

// NewActor validates the pair at the trust boundary.
func NewActor(userID UserID, role Role) (Actor, error) {
	if userID.IsNil() {
		return Actor{}, dErrors.New(dErrors.CodeUnauthorized, "actor ID required")
	}
	if !role.IsValid() {
		return Actor{}, dErrors.New(dErrors.CodeUnauthorized, "unknown actor role")
	}
	return Actor{ID: userID, Role: role}, nil
}

// Require fails with CodeUnauthorized unless the actor holds one of roles.
func (a Actor) Require(roles ...Role) error {
	if a.ID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing actor context")
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeUnauthorized, "role "+string(a.Role)+" is not permitted to perform this action")
}

// AsTenant returns the tenant identity of a tenant-role actor.
func (a Actor) AsTenant() TenantID {
	return TenantID(a.ID)
}

// ActsFor reports whether the actor may act on behalf of tenantID: tenants only
// for themselves, agents for anyone but themselves.
func (a Actor) ActsFor(tenantID TenantID) bool {
	switch a.Role {
	case RoleAgent:
		return tenantID != a.AsTenant()
	case RoleTenant:
		return a.AsTenant() == tenantID
	default:
		return false
	}
}

// ResolveTenant picks the tenant a call is about. Tenants default to
// themselves; agents and landlords must name one.
func (a Actor) ResolveTenant(raw string) (TenantID, error) {
	if raw == "" {
		if a.Role == RoleTenant {
			return a.AsTenant(), nil
		}
		return TenantID{}, dErrors.New(dErrors.CodeValidation, "tenant_id is required when acting as "+string(a.Role))
	}
	return ParseTenantID(raw)
}
