package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lettings/internal/listing/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/httputil"
	"lettings/pkg/requestcontext"
)

type Service interface {
	Register(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.Listing, error)
	Publish(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.Listing, error)
	Get(ctx context.Context, propertyID id.PropertyID) (*models.Listing, error)
}

type ListingResponse struct {
	PropertyID string    `json:"property_id"`
	Status     string    `json:"status"`
	Open       bool      `json:"open"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toResponse(l *models.Listing) ListingResponse {
	return ListingResponse{
		PropertyID: l.PropertyID.String(),
		Status:     string(l.Status),
		Open:       l.Status.IsOpen(),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/properties/{propertyID}/listing", h.handleRegister)
	r.Post("/properties/{propertyID}/listing/publish", h.handlePublish)
	r.Get("/properties/{propertyID}/listing", h.handleGet)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, "register listing", h.service.Register)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusOK, "publish listing", h.service.Publish)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, status int, op string,
	call func(context.Context, id.Actor, id.PropertyID) (*models.Listing, error),
) {
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

	l, err := call(ctx, actor, propertyID)
	if err != nil {
		h.logger.WarnContext(ctx, op+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"property_id", propertyID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, status, toResponse(l))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	propertyID, err := httputil.PropertyIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	l, err := h.service.Get(r.Context(), propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(l))
}
