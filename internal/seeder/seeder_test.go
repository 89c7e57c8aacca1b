package seeder

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettings/internal/audit"
	inspectionstore "lettings/internal/inspection/store"
	listingmodels "lettings/internal/listing/models"
	listingstore "lettings/internal/listing/store"
	id "lettings/pkg/domain"
)

func TestSeedAllFromFile(t *testing.T) {
	ctx := context.Background()
	listings := listingstore.NewInMemory()
	slots := inspectionstore.NewInMemory()
	trail := audit.NewInMemoryStore()

	fx, err := LoadFile("testdata/demo.yaml")
	require.NoError(t, err)
	require.Len(t, fx.Listings, 2)

	s := New(listings, slots, trail, nil)
	require.NoError(t, s.SeedAll(ctx, fx))

	listed, _ := id.ParsePropertyID("6f1c2b8e-4d1a-4c3e-9b7a-1e2f3a4b5c6d")
	l, err := listings.Find(ctx, listed)
	require.NoError(t, err)
	assert.Equal(t, listingmodels.StatusListed, l.Status)

	got, err := slots.ListSlots(ctx, listed)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 17, got[1].Start.Hour())

	draft, _ := id.ParsePropertyID("0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d")
	l, err = listings.Find(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, listingmodels.StatusDraft, l.Status)

	events, err := trail.ListByProperty(ctx, listed)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "seeded", events[0].Reason)

	t.Run("second run skips existing listings", func(t *testing.T) {
		require.NoError(t, s.SeedAll(ctx, fx))
		events, err := trail.ListByProperty(ctx, listed)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestSeedAllRejectsBadFixtures(t *testing.T) {
	cases := map[string]string{
		"derived status": `
listings:
  - property_id: 6f1c2b8e-4d1a-4c3e-9b7a-1e2f3a4b5c6d
    status: CLOSED
`,
		"unknown status": `
listings:
  - property_id: 6f1c2b8e-4d1a-4c3e-9b7a-1e2f3a4b5c6d
    status: ARCHIVED
`,
		"bad property id": `
listings:
  - property_id: nope
`,
		"inverted window": `
listings:
  - property_id: 6f1c2b8e-4d1a-4c3e-9b7a-1e2f3a4b5c6d
    inspections:
      - start: 2026-06-01T11:00:00Z
        end: 2026-06-01T10:00:00Z
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			fx, err := Load(strings.NewReader(doc))
			require.NoError(t, err)
			s := New(listingstore.NewInMemory(), inspectionstore.NewInMemory(), nil, nil)
			assert.Error(t, s.SeedAll(context.Background(), fx))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		fx, err := Load(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, fx.Listings)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := Load(strings.NewReader("listing:\n  - property_id: x\n"))
		assert.Error(t, err)
	})
}
