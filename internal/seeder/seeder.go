package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"lettings/internal/audit"
	inspectionmodels "lettings/internal/inspection/models"
	listingmodels "lettings/internal/listing/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

// ListingStore defines methods for seeding listings
type ListingStore interface {
	Create(ctx context.Context, listing *listingmodels.Listing) error
}

// SlotStore defines methods for seeding inspection windows
type SlotStore interface {
	ConfigureSlots(ctx context.Context, propertyID id.PropertyID, windows []inspectionmodels.Window) ([]inspectionmodels.Slot, error)
}

// AuditStore defines methods for recording what was seeded
type AuditStore interface {
	Append(ctx context.Context, event audit.Event) error
}

// Fixture is the YAML document loaded by the seeder.
type Fixture struct {
	Listings []ListingFixture `yaml:"listings"`
}

type ListingFixture struct {
	PropertyID  string          `yaml:"property_id"`
	Status      string          `yaml:"status"`
	Inspections []WindowFixture `yaml:"inspections"`
}

type WindowFixture struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

// Seeder populates stores from a fixture at startup
type Seeder struct {
	listings ListingStore
	slots    SlotStore
	audit    AuditStore
	logger   *slog.Logger
	now      func() time.Time
}

func New(listings ListingStore, slots SlotStore, auditStore AuditStore, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		listings: listings,
		slots:    slots,
		audit:    auditStore,
		logger:   logger,
		now:      time.Now,
	}
}

// LoadFile reads a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a fixture. Unknown keys are rejected so typos surface early.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &fx, nil
}

// SeedAll writes every listing in fx. Listings that already exist are left
// untouched so restarting against a persistent store is harmless.
func (s *Seeder) SeedAll(ctx context.Context, fx *Fixture) error {
	s.logger.Info("seeding fixture data...", "listings", len(fx.Listings))

	seeded := 0
	for i, lf := range fx.Listings {
		created, err := s.seedListing(ctx, lf)
		if err != nil {
			return fmt.Errorf("listing %d: %w", i, err)
		}
		if created {
			seeded++
		}
	}

	s.logger.Info("fixture data seeded", "created", seeded, "skipped", len(fx.Listings)-seeded)
	return nil
}

func (s *Seeder) seedListing(ctx context.Context, lf ListingFixture) (bool, error) {
	propertyID, err := id.ParsePropertyID(lf.PropertyID)
	if err != nil {
		return false, err
	}

	status := listingmodels.StatusDraft
	if lf.Status != "" {
		status, err = listingmodels.ParseStatus(lf.Status)
		if err != nil {
			return false, err
		}
	}
	// Later statuses are derived from applications, never seeded.
	if status != listingmodels.StatusDraft && status != listingmodels.StatusListed {
		return false, fmt.Errorf("property %s: status %s cannot be seeded", propertyID, status)
	}

	windows := make([]inspectionmodels.Window, 0, len(lf.Inspections))
	for j, w := range lf.Inspections {
		if !w.End.After(w.Start) {
			return false, fmt.Errorf("property %s: inspection %d ends before it starts", propertyID, j)
		}
		windows = append(windows, inspectionmodels.Window{Start: w.Start.UTC(), End: w.End.UTC()})
	}

	now := s.now()
	listing := listingmodels.NewListing(propertyID, now)
	listing.Status = status
	if err := s.listings.Create(ctx, listing); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.Debug("listing already present, skipping", "property_id", propertyID)
			return false, nil
		}
		return false, err
	}

	if len(windows) > 0 {
		if _, err := s.slots.ConfigureSlots(ctx, propertyID, windows); err != nil {
			return false, fmt.Errorf("configure inspections: %w", err)
		}
	}

	if s.audit != nil {
		if err := s.audit.Append(ctx, audit.Event{
			Timestamp:  now,
			Action:     audit.ActionListingRegistered,
			ActorRole:  id.RoleAgent,
			PropertyID: propertyID,
			To:         string(status),
			Reason:     "seeded",
		}); err != nil {
			return false, err
		}
	}
	return true, nil
}
