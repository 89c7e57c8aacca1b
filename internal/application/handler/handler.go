package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lettings/internal/application/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/httputil"
	"lettings/pkg/requestcontext"
)

// Service defines the tracker operations the handler needs.
type Service interface {
	Submit(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID) (*models.Application, error)
	Accept(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status) (*models.Application, error)
	Reject(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status) (*models.Application, error)
	RecordBackgroundCheck(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, passed bool, expected models.Status) (*models.Application, error)
	SendToLandlord(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.BatchResult, error)
	SendToAgentFinal(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.BatchResult, error)
	Reset(ctx context.Context, actor id.Actor, applicationIDs []id.ApplicationID, expected models.Status) (*models.BatchResult, error)
	Get(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) (*models.Application, error)
	Filtered(ctx context.Context, actor id.Actor, propertyID id.PropertyID, class models.Class) ([]*models.Application, error)
	HasApplied(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID) (bool, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the tracker routes. The router applies auth.
func (h *Handler) Register(r chi.Router) {
	r.Route("/properties/{propertyID}/applications", func(r chi.Router) {
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleFiltered)
		r.Get("/mine", h.handleHasApplied)
		r.Post("/send-to-landlord", h.handleSendToLandlord)
		r.Post("/send-to-agent-final", h.handleSendToAgentFinal)
	})
	r.Route("/applications", func(r chi.Router) {
		r.Post("/reset", h.handleReset)
		r.Get("/{applicationID}", h.handleGet)
		r.Post("/{applicationID}/accept", h.handleAccept)
		r.Post("/{applicationID}/reject", h.handleReject)
		r.Post("/{applicationID}/background-check", h.handleBackgroundCheck)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.service.Submit(ctx, actor, propertyID, actor.AsTenant())
	if err != nil {
		h.logger.WarnContext(ctx, "submit application failed",
			"request_id", requestcontext.RequestID(ctx),
			"property_id", propertyID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (h *Handler) handleFiltered(w http.ResponseWriter, r *http.Request) {
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
	class, err := models.ParseClass(r.URL.Query().Get("class"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	apps, err := h.service.Filtered(ctx, actor, propertyID, class)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ApplicationsResponse{Class: class.Name, Applications: make([]ApplicationResponse, len(apps))}
	for i, app := range apps {
		resp.Applications[i] = toApplicationResponse(app)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHasApplied(w http.ResponseWriter, r *http.Request) {
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

	applied, err := h.service.HasApplied(ctx, actor, propertyID, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HasAppliedResponse{Applied: applied})
}

func (h *Handler) handleSendToLandlord(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, "send_to_landlord", h.service.SendToLandlord)
}

func (h *Handler) handleSendToAgentFinal(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, "send_to_agent_final", h.service.SendToAgentFinal)
}

type batchFunc func(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.BatchResult, error)

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request, action string, run batchFunc) {
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

	result, err := run(ctx, actor, propertyID)
	if err != nil {
		h.logger.WarnContext(ctx, "batch transition failed",
			"request_id", requestcontext.RequestID(ctx),
			"property_id", propertyID.String(),
			"action", action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(result))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	applicationID, err := httputil.ApplicationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Get(ctx, actor, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, h.service.Accept)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, h.service.Reject)
}

type decisionFunc func(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status) (*models.Application, error)

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, decide decisionFunc) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	applicationID, err := httputil.ApplicationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger)
	if !ok {
		return
	}
	expected, err := req.expected()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := decide(ctx, actor, applicationID, expected)
	if err != nil {
		h.logger.WarnContext(ctx, "application decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"application_id", applicationID.String(),
			"expected_status", string(expected),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) handleBackgroundCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	applicationID, err := httputil.ApplicationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[BackgroundCheckRequest](w, r, h.logger)
	if !ok {
		return
	}
	expected, err := models.ParseStatus(req.ExpectedStatus)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.RecordBackgroundCheck(ctx, actor, applicationID, *req.Passed, expected)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResetRequest](w, r, h.logger)
	if !ok {
		return
	}
	ids, err := req.ids()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	expected, err := models.ParseStatus(req.ExpectedStatus)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Reset(ctx, actor, ids, expected)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(result))
}
