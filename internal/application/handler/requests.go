package handler

import (
	"strings"

	"lettings/internal/application/models"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/validation"
)

// DecisionRequest is the body of accept and reject.
type DecisionRequest struct {
	ExpectedStatus string `json:"expected_status" validate:"required"`
}

func (r *DecisionRequest) Normalize() {
	r.ExpectedStatus = strings.ToUpper(strings.TrimSpace(r.ExpectedStatus))
}

func (r *DecisionRequest) Validate() error {
	return validation.Validate(r)
}

func (r *DecisionRequest) expected() (models.Status, error) {
	return models.ParseStatus(r.ExpectedStatus)
}

type BackgroundCheckRequest struct {
	Passed         *bool  `json:"passed" validate:"required"`
	ExpectedStatus string `json:"expected_status" validate:"required"`
}

func (r *BackgroundCheckRequest) Normalize() {
	r.ExpectedStatus = strings.ToUpper(strings.TrimSpace(r.ExpectedStatus))
}

func (r *BackgroundCheckRequest) Validate() error {
	return validation.Validate(r)
}

type ResetRequest struct {
	ApplicationIDs []string `json:"application_ids" validate:"required,min=1,max=100,dive,uuid"`
	ExpectedStatus string   `json:"expected_status" validate:"required"`
}

func (r *ResetRequest) Normalize() {
	r.ExpectedStatus = strings.ToUpper(strings.TrimSpace(r.ExpectedStatus))
}

func (r *ResetRequest) Validate() error {
	return validation.Validate(r)
}

func (r *ResetRequest) ids() ([]id.ApplicationID, error) {
	out := make([]id.ApplicationID, 0, len(r.ApplicationIDs))
	seen := make(map[id.ApplicationID]struct{}, len(r.ApplicationIDs))
	for _, raw := range r.ApplicationIDs {
		appID, err := id.ParseApplicationID(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[appID]; dup {
			return nil, dErrors.New(dErrors.CodeValidation, "application_ids must not repeat")
		}
		seen[appID] = struct{}{}
		out = append(out, appID)
	}
	return out, nil
}
