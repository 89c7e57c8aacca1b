package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lettings/internal/inspection/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/httputil"
	"lettings/pkg/requestcontext"
)

// Service defines the inspection registry operations the handler needs.
type Service interface {
	ConfigureSlots(ctx context.Context, actor id.Actor, propertyID id.PropertyID, windows []models.Window) ([]models.Slot, error)
	ListSlots(ctx context.Context, actor id.Actor, propertyID id.PropertyID) ([]models.SlotView, error)
	Reserve(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID, index int) (*models.ReserveResult, error)
	Cancel(ctx context.Context, actor id.Actor, bookingID id.BookingID, propertyID id.PropertyID, index int) error
	ReservationFor(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the inspection routes. The router applies auth.
func (h *Handler) Register(r chi.Router) {
	r.Put("/properties/{propertyID}/inspections", h.handleConfigureSlots)
	r.Get("/properties/{propertyID}/inspections", h.handleListSlots)
	r.Get("/properties/{propertyID}/inspections/mine", h.handleMyReservation)
	r.Post("/properties/{propertyID}/inspections/{index}/reservations", h.handleReserve)
	r.Delete("/properties/{propertyID}/inspections/{index}/reservations/{bookingID}", h.handleCancel)
}

func (h *Handler) handleConfigureSlots(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[ConfigureSlotsRequest](w, r, h.logger)
	if !ok {
		return
	}

	slots, err := h.service.ConfigureSlots(ctx, actor, propertyID, req.toWindows())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to configure inspection slots",
			"request_id", requestcontext.RequestID(ctx),
			"property_id", propertyID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SlotsResponse{Slots: toSlotViews(slots)})
}

func (h *Handler) handleListSlots(w http.ResponseWriter, r *http.Request) {
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

	views, err := h.service.ListSlots(ctx, actor, propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := SlotsResponse{Slots: make([]SlotResponse, len(views))}
	for i, v := range views {
		resp.Slots[i] = toSlotResponse(v)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMyReservation(w http.ResponseWriter, r *http.Request) {
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

	tenantID, err := actor.ResolveTenant(r.URL.Query().Get("tenant_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.ReservationFor(ctx, actor, propertyID, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if res == nil {
		httputil.WriteJSON(w, http.StatusOK, MyReservationResponse{})
		return
	}
	index := res.InspectionIndex
	httputil.WriteJSON(w, http.StatusOK, MyReservationResponse{
		Reserved:        true,
		InspectionIndex: &index,
		BookingID:       res.BookingID.String(),
	})
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
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
	index, err := httputil.IntParam(r, "index")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req *ReserveRequest
	if r.ContentLength != 0 {
		var ok bool
		if req, ok = httputil.DecodeAndPrepare[ReserveRequest](w, r, h.logger); !ok {
			return
		}
	}
	tenantID, err := req.tenantFor(actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Reserve(ctx, actor, propertyID, tenantID, index)
	if err != nil {
		h.logger.WarnContext(ctx, "reserve inspection failed",
			"request_id", requestcontext.RequestID(ctx),
			"property_id", propertyID.String(),
			"inspection_index", index,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, toReservationResponse(res.Reservation, res.Created))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
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
	index, err := httputil.IntParam(r, "index")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	bookingID, err := httputil.BookingIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Cancel(ctx, actor, bookingID, propertyID, index); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
