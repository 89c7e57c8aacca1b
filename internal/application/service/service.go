package service

import (
	"context"
	"errors"
	"log/slog"

	"lettings/internal/application/metrics"
	"lettings/internal/application/models"
	"lettings/internal/application/store"
	"lettings/internal/audit"
	"lettings/internal/events"
	"lettings/internal/platform/tracer"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/platform/sentinel"
	"lettings/pkg/requestcontext"
	"lettings/pkg/validation"
)

// ReservationChecker answers whether a tenant currently holds an inspection
// reservation on a property.
type ReservationChecker interface {
	HasReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (bool, error)
}

// ListingGate fails unless the listing is taking applications.
type ListingGate interface {
	RequireOpen(ctx context.Context, propertyID id.PropertyID) error
}

type Option func(*Service)

// Service is the tenant application tracker. Every status change goes
// through the transition table and a compare-and-set on the expected status.
type Service struct {
	store        store.Store
	reservations ReservationChecker
	listings     ListingGate
	bus          events.Bus
	auditor      *audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tracer       tracer.Tracer
}

func New(st store.Store, opts ...Option) *Service {
	svc := &Service{store: st}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func WithReservationChecker(r ReservationChecker) Option {
	return func(s *Service) { s.reservations = r }
}

func WithListingGate(g ListingGate) Option {
	return func(s *Service) { s.listings = g }
}

// WithEventBus wires the bus. Tracker events are published synchronously so
// the listing controller runs before the call returns.
func WithEventBus(bus events.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

func WithAuditor(a *audit.Publisher) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// Submit creates a SUBMITTED application. The tenant must hold an inspection
// reservation and have no other active application on the property.
func (s *Service) Submit(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID) (_ *models.Application, err error) {
	defer func() { s.metrics.IncSubmission(err) }()

	if err := actor.Require(id.RoleTenant); err != nil {
		return nil, err
	}
	if actor.AsTenant() != tenantID {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "tenants can only apply for themselves")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanApplicationSubmit,
		tracer.String(tracer.AttrPropertyID, propertyID.String()))
	defer func() { span.End(err) }()

	if s.listings != nil {
		if err := s.listings.RequireOpen(ctx, propertyID); err != nil {
			return nil, err
		}
	}
	if err := s.requireReservation(ctx, propertyID, tenantID); err != nil {
		return nil, err
	}

	if _, err := s.store.FindActive(ctx, propertyID, tenantID); err == nil {
		return nil, duplicateApplication()
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing applications")
	}

	app := models.NewApplication(propertyID, tenantID, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, app); err != nil {
		return nil, translate(err, "failed to create application")
	}
	span.SetAttributes(tracer.String(tracer.AttrApplicationID, app.ID.String()))

	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionApplicationSubmitted,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: propertyID,
		Subject:    app.ID.String(),
		To:         string(app.Status),
	})
	s.publishSync(ctx, models.ApplicationSubmitted{
		BaseEvent:     events.NewBaseEvent(app.CreatedAt),
		ApplicationID: app.ID,
		PropertyID:    propertyID,
		TenantID:      tenantID,
		Status:        app.Status,
	})
	return app, nil
}

// Accept takes the accept edge out of expected: agent screening on
// SUBMITTED, landlord approval on SENT_TO_LANDLORD.
func (s *Service) Accept(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status) (*models.Application, error) {
	return s.decide(ctx, actor, applicationID, expected, models.ActionAccept)
}

// Reject is the matching negative edge for Accept.
func (s *Service) Reject(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status) (*models.Application, error) {
	return s.decide(ctx, actor, applicationID, expected, models.ActionReject)
}

// RecordBackgroundCheck records the agent's background verification outcome.
func (s *Service) RecordBackgroundCheck(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, passed bool, expected models.Status) (*models.Application, error) {
	action := models.ActionBackgroundFail
	if passed {
		action = models.ActionBackgroundPass
	}
	return s.decide(ctx, actor, applicationID, expected, action)
}

func (s *Service) decide(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status, action models.Action) (_ *models.Application, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanApplicationDecide,
		tracer.String(tracer.AttrApplicationID, applicationID.String()),
		tracer.String(tracer.AttrAction, string(action)),
		tracer.String(tracer.AttrFrom, string(expected)))
	defer func() { span.End(err) }()

	if !expected.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expected_status is not a known application status")
	}
	if err := actor.Require(id.RoleAgent, id.RoleLandlord); err != nil {
		return nil, err
	}
	snapshot, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		return nil, translate(err, "failed to load application")
	}
	updated, edge, err := s.apply(ctx, actor, snapshot, expected, action)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrTo, string(edge.To)))
	return updated, nil
}

// apply resolves the edge out of expected, checks the applicant still holds
// a reservation for forward moves, and commits with a compare-and-set.
func (s *Service) apply(ctx context.Context, actor id.Actor, snapshot *models.Application, expected models.Status, action models.Action) (_ *models.Application, _ models.Edge, err error) {
	defer func() { s.metrics.IncTransition(string(action), err) }()

	edge, err := models.Resolve(expected, action, actor.Role)
	if err != nil {
		return nil, models.Edge{}, err
	}
	if !edge.To.IsTerminalNegative() {
		if err := s.requireReservation(ctx, snapshot.PropertyID, snapshot.TenantID); err != nil {
			return nil, models.Edge{}, err
		}
	}

	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, snapshot.ID,
		func(a *models.Application) error { return checkExpected(a, expected) },
		func(a *models.Application) { a.Apply(edge, now) },
	)
	if err != nil {
		return nil, models.Edge{}, translate(err, "failed to update application")
	}

	s.recordTransition(ctx, actor, updated, edge.From, edge.To, action, audit.ActionApplicationTransitioned)
	return updated, edge, nil
}

// SendToLandlord moves every accepted or background-passed application on
// the property to SENT_TO_LANDLORD.
func (s *Service) SendToLandlord(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.BatchResult, error) {
	return s.batch(ctx, actor, propertyID, models.ActionSendToLandlord, models.ClassAccepted, id.RoleAgent)
}

// SendToAgentFinal returns every landlord-approved application to the agent.
func (s *Service) SendToAgentFinal(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.BatchResult, error) {
	finalClass := models.Class{
		Name:     "landlord_final",
		Statuses: []models.Status{models.StatusLandlordApproved, models.StatusFinalApproved},
	}
	return s.batch(ctx, actor, propertyID, models.ActionSendToAgentFinal, finalClass, id.RoleLandlord)
}

// batch snapshots the matching applications, then applies the edge to each
// one independently. Items that moved since the snapshot fail with
// stale_status without affecting the rest.
func (s *Service) batch(ctx context.Context, actor id.Actor, propertyID id.PropertyID, action models.Action, class models.Class, role id.Role) (_ *models.BatchResult, err error) {
	if err := actor.Require(role); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanApplicationBatch,
		tracer.String(tracer.AttrPropertyID, propertyID.String()),
		tracer.String(tracer.AttrAction, string(action)))
	defer func() { span.End(err) }()

	apps, err := s.store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to snapshot applications")
	}

	result := &models.BatchResult{Items: []models.ItemResult{}}
	for _, app := range apps {
		if !class.Contains(app.Status) {
			continue
		}
		item := models.ItemResult{ApplicationID: app.ID, From: app.Status}
		if _, edge, err := s.apply(ctx, actor, app, app.Status, action); err != nil {
			item.Err = err
		} else {
			item.To = edge.To
		}
		result.Items = append(result.Items, item)
	}

	s.metrics.ObserveBatch(string(action), len(result.Items))
	span.SetAttributes(
		tracer.Int(tracer.AttrBatchSize, len(result.Items)),
		tracer.Int(tracer.AttrBatchFailed, result.Failed()),
	)
	if result.Failed() > 0 {
		s.logger.WarnContext(ctx, "batch transition partially failed",
			"property_id", propertyID.String(),
			"action", string(action),
			"failed", result.Failed(),
			"total", len(result.Items),
		)
	}
	return result, nil
}

// Reset undoes the last decision on each application. Each item must still be
// in expected and the actor must hold the role that made the decision. A
// rejected application cannot be revived while the tenant has another
// active one or no longer holds an inspection reservation.
func (s *Service) Reset(ctx context.Context, actor id.Actor, applicationIDs []id.ApplicationID, expected models.Status) (_ *models.BatchResult, err error) {
	if !expected.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expected_status is not a known application status")
	}
	if len(applicationIDs) == 0 || len(applicationIDs) > validation.MaxBatchSize {
		return nil, dErrors.New(dErrors.CodeValidation, "application_ids must hold between 1 and 100 ids")
	}
	if err := actor.Require(id.RoleAgent, id.RoleLandlord); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanApplicationReset,
		tracer.String(tracer.AttrFrom, string(expected)),
		tracer.Int(tracer.AttrBatchSize, len(applicationIDs)))
	defer func() { span.End(err) }()

	result := &models.BatchResult{Items: make([]models.ItemResult, 0, len(applicationIDs))}
	for _, appID := range applicationIDs {
		item := models.ItemResult{ApplicationID: appID, From: expected}
		updated, err := s.resetOne(ctx, actor, appID, expected)
		if err != nil {
			item.Err = err
		} else {
			item.To = updated.Status
		}
		result.Items = append(result.Items, item)
	}
	span.SetAttributes(tracer.Int(tracer.AttrBatchFailed, result.Failed()))
	return result, nil
}

func (s *Service) resetOne(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expected models.Status) (_ *models.Application, err error) {
	defer func() { s.metrics.IncTransition(string(models.ActionReset), err) }()

	// Reviving a rejection makes the application active again, which needs
	// the same booking every forward edge needs.
	if expected.IsTerminalNegative() {
		current, err := s.store.FindByID(ctx, applicationID)
		if err != nil {
			return nil, translate(err, "failed to load application")
		}
		if err := checkExpected(current, expected); err != nil {
			return nil, err
		}
		if err := s.requireReservation(ctx, current.PropertyID, current.TenantID); err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, applicationID,
		func(a *models.Application) error {
			if err := checkExpected(a, expected); err != nil {
				return err
			}
			undo, err := a.ResetEdge()
			if err != nil {
				return err
			}
			if undo.Role != actor.Role {
				return dErrors.New(dErrors.CodeUnauthorized,
					"only the "+string(undo.Role)+" may reset a "+string(a.Status)+" decision")
			}
			return nil
		},
		func(a *models.Application) { a.Reset(now) },
	)
	if err != nil {
		return nil, translate(err, "failed to reset application")
	}

	s.recordTransition(ctx, actor, updated, expected, updated.Status, models.ActionReset, audit.ActionApplicationReset)
	return updated, nil
}

// Get returns one application. Tenants only see their own.
func (s *Service) Get(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		return nil, translate(err, "failed to load application")
	}
	if actor.Role == id.RoleTenant && actor.AsTenant() != app.TenantID {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return app, nil
}

// Filtered returns the property's applications in class, oldest first.
func (s *Service) Filtered(ctx context.Context, actor id.Actor, propertyID id.PropertyID, class models.Class) ([]*models.Application, error) {
	if err := actor.Require(id.RoleAgent, id.RoleLandlord); err != nil {
		return nil, err
	}
	apps, err := s.store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	out := make([]*models.Application, 0, len(apps))
	for _, app := range apps {
		if class.Contains(app.Status) {
			out = append(out, app)
		}
	}
	return out, nil
}

// HasApplied reports whether tenantID has an active application on the property.
func (s *Service) HasApplied(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID) (bool, error) {
	if !actor.ActsFor(tenantID) {
		return false, dErrors.New(dErrors.CodeUnauthorized, "cannot look up another tenant's application")
	}
	_, err := s.store.FindActive(ctx, propertyID, tenantID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check application")
	}
	return true, nil
}

func (s *Service) requireReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) error {
	if s.reservations == nil {
		return nil
	}
	ok, err := s.reservations.HasReservation(ctx, propertyID, tenantID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check inspection reservation")
	}
	if !ok {
		return dErrors.New(dErrors.CodeNoReservation, "tenant holds no inspection reservation for this property")
	}
	return nil
}

func (s *Service) recordTransition(ctx context.Context, actor id.Actor, app *models.Application, from, to models.Status, action models.Action, auditAction audit.Action) {
	s.auditor.Emit(ctx, audit.Event{
		Action:     auditAction,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: app.PropertyID,
		Subject:    app.ID.String(),
		From:       string(from),
		To:         string(to),
	})
	s.publishSync(ctx, models.ApplicationTransitioned{
		BaseEvent:     events.NewBaseEvent(app.UpdatedAt),
		ApplicationID: app.ID,
		PropertyID:    app.PropertyID,
		TenantID:      app.TenantID,
		Action:        action,
		From:          from,
		To:            to,
	})
}

// publishSync runs the listing controller. The transition is already
// committed, so a failure here is logged and counted; the next tracker event
// reconciles the listing again.
func (s *Service) publishSync(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.metrics.IncReconcileFailure()
		s.logger.ErrorContext(ctx, "listing reconcile failed after application change",
			"event", event.EventName(),
			"error", err,
		)
	}
}

func checkExpected(a *models.Application, expected models.Status) error {
	if a.Status != expected {
		return dErrors.New(dErrors.CodeStaleStatus,
			"application is "+string(a.Status)+", not "+string(expected))
	}
	return nil
}

func duplicateApplication() error {
	return dErrors.New(dErrors.CodeDuplicateApplication, "tenant already has an active application for this property")
}

// translate maps store sentinels to domain errors once. Domain errors raised
// inside Execute's validate callback pass through unchanged.
func translate(err error, msg string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return duplicateApplication()
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
