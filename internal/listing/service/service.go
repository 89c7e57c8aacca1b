package service

import (
	"context"
	"errors"
	"log/slog"

	appmodels "lettings/internal/application/models"
	"lettings/internal/audit"
	"lettings/internal/events"
	gating "lettings/internal/gating/service"
	"lettings/internal/listing/metrics"
	"lettings/internal/listing/models"
	"lettings/internal/listing/store"
	"lettings/internal/platform/tracer"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/platform/sentinel"
	"lettings/pkg/requestcontext"
)

// Snapshotter reads a property's application counts in one go.
type Snapshotter interface {
	Snapshot(ctx context.Context, propertyID id.PropertyID) (gating.Snapshot, error)
}

// reachedLandlord holds every status an application can only have after
// being sent to the landlord.
var reachedLandlord = appmodels.Class{
	Name: "reached_landlord",
	Statuses: []appmodels.Status{
		appmodels.StatusSentToLandlord,
		appmodels.StatusLandlordApproved,
		appmodels.StatusLandlordRejected,
	},
}

// errMoved aborts an Execute whose listing changed since it was read.
var errMoved = errors.New("listing moved")

type Option func(*Service)

// Service is the listing lifecycle controller. Agents register and publish
// listings; after that the listing only moves in response to tracker events.
type Service struct {
	store   store.Store
	counts  Snapshotter
	bus     events.Bus
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  tracer.Tracer
}

func New(st store.Store, counts Snapshotter, opts ...Option) *Service {
	svc := &Service{store: st, counts: counts}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc
}

// WithEventBus publishes ListingAdvanced to asynchronous observers.
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

// Register creates a DRAFT listing for the property.
func (s *Service) Register(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.Listing, error) {
	if err := actor.Require(id.RoleAgent); err != nil {
		return nil, err
	}
	l := models.NewListing(propertyID, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, l); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "listing already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register listing")
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionListingRegistered,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: propertyID,
		To:         string(l.Status),
	})
	return l, nil
}

// Publish is the one externally driven edge, DRAFT to LISTED.
func (s *Service) Publish(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*models.Listing, error) {
	if err := actor.Require(id.RoleAgent); err != nil {
		return nil, err
	}
	updated, err := s.store.Execute(ctx, propertyID, func(l *models.Listing) error {
		return l.Advance(models.StatusListed, requestcontext.Now(ctx))
	})
	if err != nil {
		return nil, translate(err)
	}
	s.recordAdvance(ctx, updated, models.StatusDraft)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, propertyID id.PropertyID) (*models.Listing, error) {
	l, err := s.store.Find(ctx, propertyID)
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// RequireOpen fails unless the listing is taking bookings and applications.
func (s *Service) RequireOpen(ctx context.Context, propertyID id.PropertyID) error {
	l, err := s.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	if !l.Status.IsOpen() {
		return dErrors.New(dErrors.CodeConflict, "listing is "+string(l.Status)+" and not open to tenants")
	}
	return nil
}

// Handle reconciles the listing named by a tracker event. Other events are
// ignored so the controller can be subscribed broadly.
func (s *Service) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case appmodels.ApplicationSubmitted:
		return s.Reconcile(ctx, e.PropertyID)
	case appmodels.ApplicationTransitioned:
		return s.Reconcile(ctx, e.PropertyID)
	default:
		return nil
	}
}

// Reconcile derives the status implied by the most advanced application on
// the property and walks the listing toward it one edge at a time. It never
// moves a listing backward and never leaves DRAFT on its own.
func (s *Service) Reconcile(ctx context.Context, propertyID id.PropertyID) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanListingReconcile,
		tracer.String(tracer.AttrPropertyID, propertyID.String()))
	outcome := metrics.OutcomeUnchanged
	defer func() {
		if err != nil {
			outcome = metrics.OutcomeFailed
		}
		s.metrics.IncReconcile(outcome)
		span.End(err)
	}()

	snap, err := s.counts.Snapshot(ctx, propertyID)
	if err != nil {
		return err
	}
	target := implied(snap)
	span.SetAttributes(tracer.String(tracer.AttrTo, string(target)))

	// Each pass commits at most one edge; the chain has four.
	for range 8 {
		current, err := s.store.Find(ctx, propertyID)
		if errors.Is(err, sentinel.ErrNotFound) {
			outcome = metrics.OutcomeUnmanaged
			s.logger.DebugContext(ctx, "no listing registered for property",
				"property_id", propertyID.String(),
			)
			return nil
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
		}
		if current.Status == models.StatusDraft || !current.Status.Before(target) {
			return nil
		}
		next, _ := current.Status.Next()

		from := current.Status
		updated, err := s.store.Execute(ctx, propertyID, func(l *models.Listing) error {
			if l.Status != from {
				return errMoved
			}
			return l.Advance(next, requestcontext.Now(ctx))
		})
		if errors.Is(err, errMoved) {
			continue
		}
		if err != nil {
			return translate(err)
		}
		outcome = metrics.OutcomeAdvanced
		s.recordAdvance(ctx, updated, from)
	}
	return dErrors.New(dErrors.CodeConflict, "listing kept moving during reconcile")
}

func implied(snap gating.Snapshot) models.Status {
	switch {
	case snap.HasAny(appmodels.ClassFinalApproved):
		return models.StatusClosed
	case snap.HasAny(reachedLandlord):
		return models.StatusTenantApproval
	case snap.HasAny(appmodels.ClassAll):
		return models.StatusTenantSelection
	default:
		return models.StatusListed
	}
}

func (s *Service) recordAdvance(ctx context.Context, l *models.Listing, from models.Status) {
	s.metrics.IncTransition(string(from), string(l.Status))
	s.logger.InfoContext(ctx, "listing advanced",
		"property_id", l.PropertyID.String(),
		"from", string(from),
		"to", string(l.Status),
	)

	actor, _ := requestcontext.Actor(ctx)
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionListingAdvanced,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: l.PropertyID,
		From:       string(from),
		To:         string(l.Status),
	})
	if s.bus != nil {
		s.bus.Publish(ctx, models.ListingAdvanced{
			BaseEvent:  events.NewBaseEvent(l.UpdatedAt),
			PropertyID: l.PropertyID,
			From:       from,
			To:         l.Status,
		})
	}
}

func translate(err error) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "listing not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update listing")
	}
}
