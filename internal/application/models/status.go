package models

import (
	"slices"

	dErrors "lettings/pkg/domain-errors"
)

// Status is the application state machine alphabet.
type Status string

const (
	StatusSubmitted        Status = "SUBMITTED"
	StatusAgentAccepted    Status = "AGENT_ACCEPTED"
	StatusAgentRejected    Status = "AGENT_REJECTED"
	StatusBackgroundPassed Status = "BACKGROUND_PASSED"
	StatusBackgroundFailed Status = "BACKGROUND_FAILED"
	StatusSentToLandlord   Status = "SENT_TO_LANDLORD"
	StatusLandlordApproved Status = "LANDLORD_APPROVED"
	StatusLandlordRejected Status = "LANDLORD_REJECTED"
	StatusFinalApproved    Status = "FINAL_APPROVED"
	StatusSentToAgentFinal Status = "SENT_TO_AGENT_FINAL"
)

// AllStatuses lists every status in pipeline order.
var AllStatuses = []Status{
	StatusSubmitted,
	StatusAgentAccepted,
	StatusAgentRejected,
	StatusBackgroundPassed,
	StatusBackgroundFailed,
	StatusSentToLandlord,
	StatusLandlordApproved,
	StatusLandlordRejected,
	StatusFinalApproved,
	StatusSentToAgentFinal,
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown application status: "+s)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	return slices.Contains(AllStatuses, s)
}

// IsTerminalNegative reports the three rejection outcomes.
func (s Status) IsTerminalNegative() bool {
	return s == StatusAgentRejected || s == StatusBackgroundFailed || s == StatusLandlordRejected
}

func (s Status) IsTerminal() bool {
	return s.IsTerminalNegative() || s == StatusSentToAgentFinal
}

// IsActive is true for every status that blocks a second application by the
// same tenant on the same property.
func (s Status) IsActive() bool {
	return s.IsValid() && !s.IsTerminalNegative()
}

func (s Status) String() string {
	return string(s)
}
