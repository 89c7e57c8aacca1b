package testutil

import (
	"slices"
	"time"

	"github.com/google/uuid"

	appmodels "lettings/internal/application/models"
	inspectionmodels "lettings/internal/inspection/models"
	id "lettings/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	PropertyID1 id.PropertyID
	PropertyID2 id.PropertyID
	AgentID     id.UserID
	LandlordID  id.UserID
	TenantID1   id.UserID
	TenantID2   id.UserID
}{
	PropertyID1: id.PropertyID(uuid.MustParse("bbbb0000-0000-0000-0000-000000000001")),
	PropertyID2: id.PropertyID(uuid.MustParse("bbbb0000-0000-0000-0000-000000000002")),
	AgentID:     id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	LandlordID:  id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	TenantID1:   id.UserID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	TenantID2:   id.UserID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
}

// FixedTime is the default clock for fixtures.
var FixedTime = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// NewActor returns an actor with a fresh user ID.
func NewActor(role id.Role) id.Actor {
	return id.Actor{ID: id.UserID(uuid.New()), Role: role}
}

func Agent() id.Actor    { return NewActor(id.RoleAgent) }
func Landlord() id.Actor { return NewActor(id.RoleLandlord) }
func Tenant() id.Actor   { return NewActor(id.RoleTenant) }

// Windows returns n back-to-back inspection windows of the given length.
func Windows(start time.Time, n int, length time.Duration) []inspectionmodels.Window {
	out := make([]inspectionmodels.Window, n)
	for i := range n {
		s := start.Add(time.Duration(i) * length)
		out[i] = inspectionmodels.Window{Start: s, End: s.Add(length)}
	}
	return out
}

// ApplicationBuilder provides a fluent interface for building test applications.
type ApplicationBuilder struct {
	app *appmodels.Application
}

// NewApplicationBuilder creates a SUBMITTED application for a fresh tenant.
func NewApplicationBuilder(propertyID id.PropertyID) *ApplicationBuilder {
	return &ApplicationBuilder{
		app: appmodels.NewApplication(propertyID, id.TenantID(uuid.New()), FixedTime),
	}
}

func (b *ApplicationBuilder) WithTenant(tenantID id.TenantID) *ApplicationBuilder {
	b.app.TenantID = tenantID
	return b
}

func (b *ApplicationBuilder) CreatedAt(t time.Time) *ApplicationBuilder {
	b.app.CreatedAt = t
	b.app.UpdatedAt = t
	return b
}

// At puts the application in status with the given statuses as its history.
// No transition rule is checked; callers own the consistency of the path.
func (b *ApplicationBuilder) At(status appmodels.Status, history ...appmodels.Status) *ApplicationBuilder {
	b.app.Status = status
	b.app.StatusHistory = slices.Clone(history)
	if b.app.StatusHistory == nil {
		b.app.StatusHistory = []appmodels.Status{}
	}
	return b
}

func (b *ApplicationBuilder) Build() *appmodels.Application {
	return b.app.Clone()
}
