package handler

import (
	"time"

	"lettings/internal/application/models"
	dErrors "lettings/pkg/domain-errors"
)

type ApplicationResponse struct {
	ApplicationID string    `json:"application_id"`
	PropertyID    string    `json:"property_id"`
	TenantID      string    `json:"tenant_id"`
	Status        string    `json:"status"`
	StatusHistory []string  `json:"status_history"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ApplicationsResponse struct {
	Class        string                `json:"class"`
	Applications []ApplicationResponse `json:"applications"`
}

type HasAppliedResponse struct {
	Applied bool `json:"applied"`
}

// ItemResponse reports one application of a batch. Error and
// ErrorDescription are set only when the item failed.
type ItemResponse struct {
	ApplicationID    string `json:"application_id"`
	From             string `json:"from"`
	To               string `json:"to,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type BatchResponse struct {
	Results   []ItemResponse `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

func toApplicationResponse(a *models.Application) ApplicationResponse {
	history := make([]string, len(a.StatusHistory))
	for i, s := range a.StatusHistory {
		history[i] = string(s)
	}
	return ApplicationResponse{
		ApplicationID: a.ID.String(),
		PropertyID:    a.PropertyID.String(),
		TenantID:      a.TenantID.String(),
		Status:        string(a.Status),
		StatusHistory: history,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toBatchResponse(result *models.BatchResult) BatchResponse {
	resp := BatchResponse{
		Results:   make([]ItemResponse, len(result.Items)),
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
	}
	for i, item := range result.Items {
		r := ItemResponse{
			ApplicationID: item.ApplicationID.String(),
			From:          string(item.From),
			To:            string(item.To),
		}
		if item.Err != nil {
			code := dErrors.CodeOf(item.Err)
			r.Error = string(code)
			if code != dErrors.CodeInternal {
				r.ErrorDescription = item.Err.Error()
			}
		}
		resp.Results[i] = r
	}
	return resp
}
