package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lettings/internal/audit"
	"lettings/internal/events"
	"lettings/internal/inspection/metrics"
	"lettings/internal/inspection/models"
	"lettings/internal/inspection/store"
	"lettings/internal/platform/tracer"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/platform/sentinel"
	"lettings/pkg/requestcontext"
	"lettings/pkg/validation"
)

// ListingGate reports whether a property is currently taking inspection
// bookings. It returns a not_found or conflict domain error when it is not.
type ListingGate interface {
	RequireOpen(ctx context.Context, propertyID id.PropertyID) error
}

type Option func(*Service)

// Service is the inspection slot registry. The store enforces one
// reservation per tenant per property; the service adds role checks,
// listing gating and side effects.
type Service struct {
	store    store.Store
	listings ListingGate
	bus      events.Bus
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   tracer.Tracer
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

// WithListingGate makes reserve require an open listing.
func WithListingGate(g ListingGate) Option {
	return func(s *Service) { s.listings = g }
}

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

// ConfigureSlots replaces the property's inspection schedule.
func (s *Service) ConfigureSlots(ctx context.Context, actor id.Actor, propertyID id.PropertyID, windows []models.Window) (_ []models.Slot, err error) {
	if err := actor.Require(id.RoleAgent); err != nil {
		return nil, err
	}
	if err := validateWindows(windows); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanInspectionConfigure,
		tracer.String(tracer.AttrPropertyID, propertyID.String()))
	defer func() { span.End(err) }()

	start := time.Now()
	slots, err := s.store.ConfigureSlots(ctx, propertyID, windows)
	s.metrics.ObserveStore("configure", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "cannot remove an inspection slot that has reservations")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to configure inspection slots")
	}

	s.metrics.IncSlotsConfigured()
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionSlotsConfigured,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: propertyID,
		Subject:    propertyID.String(),
	})
	s.publish(ctx, models.SlotsConfigured{
		BaseEvent:  events.NewBaseEvent(requestcontext.Now(ctx)),
		PropertyID: propertyID,
		SlotCount:  len(slots),
	})
	return slots, nil
}

func validateWindows(windows []models.Window) error {
	if len(windows) > validation.MaxSlotsPerProperty {
		return dErrors.New(dErrors.CodeValidation, "too many inspection slots")
	}
	for _, w := range windows {
		if w.Start.IsZero() || w.End.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "inspection window needs a start and an end")
		}
		if !w.Start.Before(w.End) {
			return dErrors.New(dErrors.CodeValidation, "inspection window must start before it ends")
		}
	}
	return nil
}

// ListSlots returns the schedule as seen by actor.
func (s *Service) ListSlots(ctx context.Context, actor id.Actor, propertyID id.PropertyID) ([]models.SlotView, error) {
	if err := actor.Require(id.RoleAgent, id.RoleLandlord, id.RoleTenant); err != nil {
		return nil, err
	}
	slots, err := s.store.ListSlots(ctx, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list inspection slots")
	}
	views := make([]models.SlotView, len(slots))
	for i, slot := range slots {
		views[i] = slot.ViewFor(actor)
	}
	return views, nil
}

// Reserve books tenantID onto slot index. Re-reserving the same slot returns
// the existing booking; any other slot fails with already_booked.
func (s *Service) Reserve(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID, index int) (_ *models.ReserveResult, err error) {
	if !actor.ActsFor(tenantID) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "cannot reserve an inspection for another tenant")
	}
	if index < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "inspection index must not be negative")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanInspectionReserve,
		tracer.String(tracer.AttrPropertyID, propertyID.String()),
		tracer.Int(tracer.AttrInspectionIndex, index))
	defer func() { span.End(err) }()

	if s.listings != nil {
		if err := s.listings.RequireOpen(ctx, propertyID); err != nil {
			s.metrics.IncReservation(metrics.OutcomeRejected)
			return nil, err
		}
	}

	start := time.Now()
	res, err := s.store.Reserve(ctx, models.Reservation{
		BookingID:       id.NewBookingID(),
		PropertyID:      propertyID,
		TenantID:        tenantID,
		InspectionIndex: index,
		ReservedAt:      requestcontext.Now(ctx),
	})
	s.metrics.ObserveStore("reserve", time.Since(start).Seconds())
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.metrics.IncReservation(metrics.OutcomeAlreadyTaken)
		return nil, dErrors.New(dErrors.CodeAlreadyBooked, "tenant already holds a reservation for another inspection slot")
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncReservation(metrics.OutcomeRejected)
		return nil, dErrors.New(dErrors.CodeNotFound, "inspection slot not found")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve inspection")
	}

	span.SetAttributes(tracer.Bool(tracer.AttrIdempotent, !res.Created))
	if !res.Created {
		s.metrics.IncReservation(metrics.OutcomeIdempotent)
		return &res, nil
	}

	s.metrics.IncReservation(metrics.OutcomeCreated)
	r := res.Reservation
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionReservationCreated,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: propertyID,
		Subject:    r.BookingID.String(),
		To:         tenantID.String(),
	})
	s.publish(ctx, models.ReservationCreated{
		BaseEvent:       events.NewBaseEvent(r.ReservedAt),
		BookingID:       r.BookingID,
		PropertyID:      propertyID,
		TenantID:        tenantID,
		InspectionIndex: r.InspectionIndex,
	})
	return &res, nil
}

// Cancel releases a booking. The booking must be on the given slot and the
// actor must be its tenant or an agent. The slot itself stays bookable.
func (s *Service) Cancel(ctx context.Context, actor id.Actor, bookingID id.BookingID, propertyID id.PropertyID, index int) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanInspectionCancel,
		tracer.String(tracer.AttrPropertyID, propertyID.String()),
		tracer.Int(tracer.AttrInspectionIndex, index))
	defer func() { span.End(err) }()

	notFound := dErrors.New(dErrors.CodeNotFound, "tenant is not registered for this inspection slot")

	r, err := s.store.FindBooking(ctx, propertyID, bookingID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return notFound
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load booking")
	}
	if r.InspectionIndex != index {
		return notFound
	}
	if !actor.ActsFor(r.TenantID) {
		return dErrors.New(dErrors.CodeUnauthorized, "cannot cancel another tenant's inspection")
	}

	if err := s.store.Cancel(ctx, *r); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return notFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel inspection")
	}

	s.metrics.IncCancellation()
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionReservationCancelled,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		PropertyID: propertyID,
		Subject:    bookingID.String(),
		From:       r.TenantID.String(),
	})
	s.publish(ctx, models.ReservationCancelled{
		BaseEvent:       events.NewBaseEvent(requestcontext.Now(ctx)),
		BookingID:       bookingID,
		PropertyID:      propertyID,
		TenantID:        r.TenantID,
		InspectionIndex: index,
	})
	return nil
}

// ReservationFor returns tenantID's booking on the property, or nil.
func (s *Service) ReservationFor(ctx context.Context, actor id.Actor, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error) {
	landlordView := actor.Role == id.RoleLandlord && tenantID != actor.AsTenant()
	if !actor.ActsFor(tenantID) && !landlordView {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "cannot view another tenant's inspection")
	}
	return s.FindReservation(ctx, propertyID, tenantID)
}

// FindReservation is the unguarded lookup used by other modules.
func (s *Service) FindReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error) {
	r, err := s.store.FindReservation(ctx, propertyID, tenantID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reservation")
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}
