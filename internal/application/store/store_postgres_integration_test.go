//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"lettings/internal/application/store"
	"lettings/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &StoreContractSuite{newStore: func() store.Store {
		if err := pg.TruncateAll(context.Background()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return store.NewPostgres(pg.DB)
	}})
}
