// Package service derives per-property counts and has-any flags from the
// application tracker. Nothing here is stored: every answer is computed from
// one CountByStatus snapshot, so a count and its flag can never disagree.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"lettings/internal/application/models"
	"lettings/internal/platform/tracer"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
)

// StatusCounter is the tracker's raw per-status tally.
type StatusCounter interface {
	CountByStatus(ctx context.Context, propertyID id.PropertyID) (map[models.Status]int, error)
}

// Snapshot is one consistent read of a property's application counts.
type Snapshot struct {
	PropertyID id.PropertyID
	byStatus   map[models.Status]int
}

// Count returns how many applications have a status in class.
func (s Snapshot) Count(class models.Class) int {
	n := 0
	for _, st := range class.Statuses {
		n += s.byStatus[st]
	}
	return n
}

func (s Snapshot) HasAny(class models.Class) bool {
	return s.Count(class) > 0
}

// Status returns the count for a single status.
func (s Snapshot) Status(st models.Status) int {
	return s.byStatus[st]
}

// Summary backs the agent and landlord dashboards.
type Summary struct {
	PropertyID          id.PropertyID
	Counts              map[string]int
	CanSendToLandlord   bool
	CanSendToAgentFinal bool
}

// summaryReadTimeout bounds a shared tracker read once it is detached from
// the caller that started it.
const summaryReadTimeout = 5 * time.Second

type Option func(*Service)

type Service struct {
	counter StatusCounter
	group   singleflight.Group
	logger  *slog.Logger
	tracer  tracer.Tracer
}

func New(counter StatusCounter, opts ...Option) *Service {
	svc := &Service{counter: counter}
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

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// Snapshot reads the property's counts fresh from the tracker.
func (s *Service) Snapshot(ctx context.Context, propertyID id.PropertyID) (_ Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGatingSnapshot,
		tracer.String(tracer.AttrPropertyID, propertyID.String()))
	defer func() { span.End(err) }()

	counts, err := s.counter.CountByStatus(ctx, propertyID)
	if err != nil {
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
	}
	return Snapshot{PropertyID: propertyID, byStatus: counts}, nil
}

// Count returns the true number of applications on the property in class.
func (s *Service) Count(ctx context.Context, actor id.Actor, propertyID id.PropertyID, class models.Class) (int, error) {
	if err := actor.Require(id.RoleAgent, id.RoleLandlord); err != nil {
		return 0, err
	}
	snap, err := s.Snapshot(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	return snap.Count(class), nil
}

// HasAny is Count > 0 over the same read.
func (s *Service) HasAny(ctx context.Context, actor id.Actor, propertyID id.PropertyID, class models.Class) (bool, error) {
	n, err := s.Count(ctx, actor, propertyID, class)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Summary reports every named class plus the two batch-button flags.
// Concurrent dashboard polls for one property share a single tracker read.
func (s *Service) Summary(ctx context.Context, actor id.Actor, propertyID id.PropertyID) (*Summary, error) {
	if err := actor.Require(id.RoleAgent, id.RoleLandlord); err != nil {
		return nil, err
	}

	// The read is shared, so it must not inherit one caller's cancellation.
	ch := s.group.DoChan(propertyID.String(), func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryReadTimeout)
		defer cancel()
		return s.Snapshot(readCtx, propertyID)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "gating summary cancelled")
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		s.logger.DebugContext(ctx, "gating summary joined in-flight snapshot",
			"property_id", propertyID.String(),
		)
	}
	snap := res.Val.(Snapshot)

	out := &Summary{
		PropertyID:          propertyID,
		Counts:              make(map[string]int, len(models.NamedClasses)),
		CanSendToLandlord:   snap.HasAny(models.ClassAccepted),
		CanSendToAgentFinal: snap.HasAny(models.ClassLandlordApproved),
	}
	for _, c := range models.NamedClasses {
		out.Counts[c.Name] = snap.Count(c)
	}
	return out, nil
}
