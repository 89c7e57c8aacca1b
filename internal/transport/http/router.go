package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lettings/pkg/platform/middleware/auth"
	"lettings/pkg/platform/middleware/metadata"
	"lettings/pkg/platform/middleware/request"
	"lettings/pkg/validation"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// Handlers groups the module handlers mounted behind authentication.
type Handlers struct {
	Listing     Registrar
	Inspection  Registrar
	Application Registrar
	Gating      Registrar
	Audit       Registrar
}

// Config carries the transport-level settings for NewRouter.
type Config struct {
	Validator      auth.JWTValidator
	TrustedProxies []netip.Prefix
	Gatherer       prometheus.Gatherer
	Metrics        *request.Metrics
	Timeout        time.Duration
}

// NewRouter wires all public endpoints with middleware. Health and metrics
// stay outside the auth group so probes and scrapers need no token.
func NewRouter(cfg Config, health Registrar, h Handlers, logger *slog.Logger) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(cfg.Metrics))

	if health != nil {
		health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(api chi.Router) {
		api.Use(request.BodyLimit(validation.MaxBodySize))
		api.Use(request.ContentTypeJSON)
		api.Use(timeout(cfg.Timeout))
		api.Use(auth.RequireAuth(cfg.Validator, logger))

		for _, m := range []Registrar{h.Listing, h.Inspection, h.Application, h.Gating, h.Audit} {
			if m != nil {
				m.Register(api)
			}
		}
	})

	return r
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"timeout","error_description":"request timed out"}`)
	}
}
