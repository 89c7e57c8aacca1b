package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/platform/httputil"
)

type TrailResponse struct {
	PropertyID string  `json:"property_id"`
	Events     []Event `json:"events"`
}

// Handler serves a property's audit trail to its agent and landlord.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/properties/{propertyID}/audit", h.handleTrail)
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := actor.Require(id.RoleAgent, id.RoleLandlord); err != nil {
		httputil.WriteError(w, err)
		return
	}
	propertyID, err := httputil.PropertyIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.store.ListByProperty(ctx, propertyID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail"))
		return
	}
	if events == nil {
		events = []Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, TrailResponse{PropertyID: propertyID.String(), Events: events})
}
