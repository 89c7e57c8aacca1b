// Package requestcontext carries request-scoped values (request ID, clock,
// client metadata, authenticated actor) through context.Context so that
// services never need to import net/http.
package requestcontext

import (
	"context"
	"time"

	id "lettings/pkg/domain"
)

type (
	requestIDKey struct{}
	timeKey      struct{}
	clientKey    struct{}
	actorKey     struct{}
)

// ClientMetadata describes the calling client as seen by the metadata middleware.
type ClientMetadata struct {
	IP        string
	UserAgent string
	Device    string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request ID, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime pins the request-scoped "now". Tests and batch operations use it
// to get one consistent timestamp across every record they touch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

// Now returns the request-scoped time, falling back to time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithClientMetadata(ctx context.Context, ip, userAgent, device string) context.Context {
	return context.WithValue(ctx, clientKey{}, ClientMetadata{IP: ip, UserAgent: userAgent, Device: device})
}

func Client(ctx context.Context) ClientMetadata {
	v, _ := ctx.Value(clientKey{}).(ClientMetadata)
	return v
}

func ClientIP(ctx context.Context) string  { return Client(ctx).IP }
func UserAgent(ctx context.Context) string { return Client(ctx).UserAgent }
func Device(ctx context.Context) string    { return Client(ctx).Device }

func WithActor(ctx context.Context, actor id.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the authenticated actor and whether one was set.
func Actor(ctx context.Context) (id.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(id.Actor)
	return a, ok
}
