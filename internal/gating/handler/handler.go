package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lettings/internal/application/models"
	"lettings/internal/gating/service"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/httputil"
)

type Service interface {
	Count(ctx context.Context, actor id.Actor, propertyID id.PropertyID, class models.Class) (int, error)
	Summary(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*service.Summary, error)
}

type SummaryResponse struct {
	PropertyID          string         `json:"property_id"`
	Counts              map[string]int `json:"counts"`
	CanSendToLandlord   bool           `json:"can_send_to_landlord"`
	CanSendToAgentFinal bool           `json:"can_send_to_agent_final"`
}

type CountResponse struct {
	Class  string `json:"class"`
	Count  int    `json:"count"`
	HasAny bool   `json:"has_any"`
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/properties/{propertyID}/gating", h.handleSummary)
	r.Get("/properties/{propertyID}/gating/{class}", h.handleCount)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	propertyID, err := httputil.PropertyIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sum, err := h.service.Summary(ctx, actor, propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SummaryResponse{
		PropertyID:          sum.PropertyID.String(),
		Counts:              sum.Counts,
		CanSendToLandlord:   sum.CanSendToLandlord,
		CanSendToAgentFinal: sum.CanSendToAgentFinal,
	})
}

// handleCount answers count and hasAny together so the pair comes from one read.
func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	propertyID, err := httputil.PropertyIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	class, err := models.ParseClass(chi.URLParam(r, "class"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	n, err := h.service.Count(ctx, actor, propertyID, class)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Class: class.Name, Count: n, HasAny: n > 0})
}
