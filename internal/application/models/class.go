package models

import (
	"slices"

	dErrors "lettings/pkg/domain-errors"
)

// Class is a named set of statuses used for filtered views and gating.
type Class struct {
	Name     string
	Statuses []Status
}

func (c Class) Contains(s Status) bool {
	return slices.Contains(c.Statuses, s)
}

var (
	ClassSubmitted = Class{"submitted", []Status{StatusSubmitted}}
	// ClassAccepted is what send-to-landlord picks up.
	ClassAccepted         = Class{"accepted", []Status{StatusAgentAccepted, StatusBackgroundPassed}}
	ClassSentToLandlord   = Class{"sent_to_landlord", []Status{StatusSentToLandlord}}
	ClassLandlordApproved = Class{"landlord_approved", []Status{StatusLandlordApproved}}
	ClassFinalApproved    = Class{"final_approved", []Status{StatusFinalApproved, StatusSentToAgentFinal}}
	ClassRejected         = Class{"rejected", []Status{StatusAgentRejected, StatusBackgroundFailed, StatusLandlordRejected}}
	ClassActive           = Class{"active", []Status{
		StatusSubmitted, StatusAgentAccepted, StatusBackgroundPassed, StatusSentToLandlord,
		StatusLandlordApproved, StatusFinalApproved, StatusSentToAgentFinal,
	}}
	ClassAll = Class{"all", AllStatuses}
)

// NamedClasses are the classes reported by a gating summary.
var NamedClasses = []Class{
	ClassSubmitted,
	ClassAccepted,
	ClassSentToLandlord,
	ClassLandlordApproved,
	ClassFinalApproved,
	ClassRejected,
	ClassActive,
	ClassAll,
}

// ParseClass accepts a class name or a single status name.
func ParseClass(name string) (Class, error) {
	if name == "" {
		return ClassAll, nil
	}
	for _, c := range NamedClasses {
		if c.Name == name {
			return c, nil
		}
	}
	if s := Status(name); s.IsValid() {
		return Class{Name: name, Statuses: []Status{s}}, nil
	}
	return Class{}, dErrors.New(dErrors.CodeInvalidInput, "unknown status class: "+name)
}
