package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	appadapters "lettings/internal/application/adapters"
	apphandler "lettings/internal/application/handler"
	appmetrics "lettings/internal/application/metrics"
	appmodels "lettings/internal/application/models"
	appservice "lettings/internal/application/service"
	appstore "lettings/internal/application/store"
	"lettings/internal/audit"
	"lettings/internal/events"
	gatinghandler "lettings/internal/gating/handler"
	gatingservice "lettings/internal/gating/service"
	inspectionhandler "lettings/internal/inspection/handler"
	inspectionmetrics "lettings/internal/inspection/metrics"
	inspectionservice "lettings/internal/inspection/service"
	inspectionstore "lettings/internal/inspection/store"
	jwttoken "lettings/internal/jwt_token"
	listinghandler "lettings/internal/listing/handler"
	listingmetrics "lettings/internal/listing/metrics"
	listingservice "lettings/internal/listing/service"
	listingstore "lettings/internal/listing/store"
	"lettings/internal/notify"
	"lettings/internal/platform/config"
	"lettings/internal/platform/database"
	"lettings/internal/platform/health"
	"lettings/internal/platform/kafka/producer"
	"lettings/internal/platform/redis"
	"lettings/internal/platform/tracer"
	httptransport "lettings/internal/transport/http"
	"lettings/pkg/platform/middleware/auth"
)

const (
	busWorkers = 4
	busBuffer  = 1024
)

// infra holds the optional backends. Each one is nil when not configured.
type infra struct {
	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, checks *health.Handler) (*infra, error) {
	in := &infra{}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		in.db = pool
		checks.RegisterCheck("database", pool.Health)
		if err := database.Migrate(ctx, pool.DB(), log); err != nil {
			in.Close(log)
			return nil, err
		}
		log.Info("postgres connected")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close(log)
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		rc.RegisterPoolMetrics(reg)
		checks.RegisterCheck("redis", rc.Health)
		log.Info("redis connected")
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(cfg.Kafka, log)
		if err != nil {
			in.Close(log)
			return nil, err
		}
		in.producer = p
		checks.RegisterCheck("kafka", p.Health)
		log.Info("kafka producer ready", "topic", cfg.Kafka.NotifyTopic)
	} else {
		log.Info("KAFKA_BROKERS not set, event relay disabled")
	}

	return in, nil
}

func (in *infra) Close(log *slog.Logger) {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			log.Warn("kafka producer close failed", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
}

type storeSet struct {
	listings     listingstore.Store
	inspections  inspectionstore.Store
	applications appstore.Store
	audit        audit.Store
}

// buildStores picks Postgres for listings, applications and audit whenever a
// database is configured. The inspection registry follows INSPECTION_STORE.
func buildStores(cfg config.Server, in *infra) storeSet {
	s := storeSet{
		listings:     listingstore.NewInMemory(),
		inspections:  inspectionstore.NewInMemory(),
		applications: appstore.NewInMemory(),
		audit:        audit.NewInMemoryStore(),
	}
	if in.db != nil {
		db := in.db.DB()
		s.listings = listingstore.NewPostgres(db, listingstore.WithTxTimeout(cfg.TxTimeout))
		s.applications = appstore.NewPostgres(db, appstore.WithTxTimeout(cfg.TxTimeout))
		s.audit = audit.NewPostgresStore(db)
	}
	switch cfg.InspectionStore {
	case config.StorePostgres:
		s.inspections = inspectionstore.NewPostgres(in.db.DB(), inspectionstore.WithTxTimeout(cfg.TxTimeout))
	case config.StoreRedis:
		s.inspections = inspectionstore.NewRedis(in.redis.Client)
	}
	return s
}

type application struct {
	bus       *events.InMemoryBus
	auditor   *audit.Publisher
	validator auth.JWTValidator
	handlers  httptransport.Handlers
}

func buildApp(cfg config.Server, stores storeSet, in *infra, log *slog.Logger, reg prometheus.Registerer) application {
	bus := events.NewInMemoryBus(busWorkers, busBuffer,
		events.WithLogger(log),
		events.WithMetrics(events.NewMetrics(reg)),
	)
	auditor := audit.NewPublisher(stores.audit,
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	tr := tracer.NewOTel()

	// Gating reads the application store directly; the listing controller
	// depends on gating and the tracker depends on the listing gate.
	gating := gatingservice.New(stores.applications,
		gatingservice.WithLogger(log),
		gatingservice.WithTracer(tr),
	)
	listings := listingservice.New(stores.listings, gating,
		listingservice.WithEventBus(bus),
		listingservice.WithAuditor(auditor),
		listingservice.WithMetrics(listingmetrics.New(reg)),
		listingservice.WithLogger(log),
		listingservice.WithTracer(tr),
	)
	inspections := inspectionservice.New(stores.inspections,
		inspectionservice.WithListingGate(listings),
		inspectionservice.WithEventBus(bus),
		inspectionservice.WithAuditor(auditor),
		inspectionservice.WithMetrics(inspectionmetrics.New(reg)),
		inspectionservice.WithLogger(log),
		inspectionservice.WithTracer(tr),
	)
	applications := appservice.New(stores.applications,
		appservice.WithReservationChecker(appadapters.NewReservationAdapter(inspections)),
		appservice.WithListingGate(listings),
		appservice.WithEventBus(bus),
		appservice.WithAuditor(auditor),
		appservice.WithMetrics(appmetrics.New(reg)),
		appservice.WithLogger(log),
		appservice.WithTracer(tr),
	)

	bus.Subscribe(appmodels.EventApplicationSubmitted, listings)
	bus.Subscribe(appmodels.EventApplicationTransitioned, listings)
	if in.producer != nil {
		bus.Observe("", notify.NewRelay(in.producer, cfg.Kafka.NotifyTopic,
			notify.WithMetrics(notify.NewMetrics(reg)),
			notify.WithLogger(log),
		))
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	jwtService.SetEnv(cfg.Environment)

	return application{
		bus:       bus,
		auditor:   auditor,
		validator: jwttoken.NewMiddlewareAdapter(jwtService),
		handlers: httptransport.Handlers{
			Listing:     listinghandler.New(listings, log),
			Inspection:  inspectionhandler.New(inspections, log),
			Application: apphandler.New(applications, log),
			Gating:      gatinghandler.New(gating, log),
			Audit:       audit.NewHandler(stores.audit, log),
		},
	}
}
