package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lettings/internal/listing/models"
	"lettings/internal/platform/database"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

type PostgresStore struct {
	db        *sql.DB
	txTimeout time.Duration
}

type PostgresOption func(*PostgresStore)

// WithTxTimeout bounds Execute when the caller's context has no deadline.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) { s.txTimeout = d }
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStore) Create(ctx context.Context, l *models.Listing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (property_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(l.PropertyID), string(l.Status), l.CreatedAt, l.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, propertyID id.PropertyID) (*models.Listing, error) {
	return scanListing(s.db.QueryRowContext(ctx, `
		SELECT property_id, status, created_at, updated_at FROM listings WHERE property_id = $1
	`, uuid.UUID(propertyID)))
}

func (s *PostgresStore) Execute(ctx context.Context, propertyID id.PropertyID, mutate func(*models.Listing) error) (*models.Listing, error) {
	var l *models.Listing
	err := database.RunInTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		l, err = scanListing(tx.QueryRowContext(ctx, `
			SELECT property_id, status, created_at, updated_at FROM listings
			WHERE property_id = $1
			FOR UPDATE
		`, uuid.UUID(propertyID)))
		if err != nil {
			return err
		}
		if err := mutate(l); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE listings SET status = $2, updated_at = $3 WHERE property_id = $1
		`, uuid.UUID(propertyID), string(l.Status), l.UpdatedAt); err != nil {
			return fmt.Errorf("update listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func scanListing(row *sql.Row) (*models.Listing, error) {
	var (
		propertyID uuid.UUID
		status     string
		l          models.Listing
	)
	if err := row.Scan(&propertyID, &status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	l.PropertyID = id.PropertyID(propertyID)
	l.Status = models.Status(status)
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}
