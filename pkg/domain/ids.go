// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "lettings/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a TenantID where a PropertyID is expected.
type (
	UserID        uuid.UUID
	PropertyID    uuid.UUID
	TenantID      uuid.UUID
	ApplicationID uuid.UUID
	InspectionID  uuid.UUID
	BookingID     uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParsePropertyID(s string) (PropertyID, error) {
	id, err := parseUUID(s, "property ID")
	return PropertyID(id), err
}

func ParseTenantID(s string) (TenantID, error) {
	id, err := parseUUID(s, "tenant ID")
	return TenantID(id), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	id, err := parseUUID(s, "application ID")
	return ApplicationID(id), err
}

func ParseInspectionID(s string) (InspectionID, error) {
	id, err := parseUUID(s, "inspection ID")
	return InspectionID(id), err
}

func ParseBookingID(s string) (BookingID, error) {
	id, err := parseUUID(s, "booking ID")
	return BookingID(id), err
}

// String methods - for logging and debugging.

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id PropertyID) String() string    { return uuid.UUID(id).String() }
func (id TenantID) String() string      { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id InspectionID) String() string  { return uuid.UUID(id).String() }
func (id BookingID) String() string     { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id InspectionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id BookingID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps IDs as canonical strings in JSON payloads.

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id PropertyID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id TenantID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id InspectionID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id BookingID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PropertyID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TenantID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ApplicationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *InspectionID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BookingID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }

// New* constructors mint random v4 identifiers.

func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewInspectionID() InspectionID   { return InspectionID(uuid.New()) }
func NewBookingID() BookingID         { return BookingID(uuid.New()) }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; services reject them with IsNil() so stores can
// still answer lookups with a proper "not found".
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
