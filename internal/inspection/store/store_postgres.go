package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lettings/internal/inspection/models"
	"lettings/internal/platform/database"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

const pgForeignKeyViolation = "23503"

// reserveAttempts bounds the insert/read-back loop in Reserve. A retry is only
// needed when the conflicting row is cancelled between the two statements.
const reserveAttempts = 3

// PostgresStore persists slots and reservations. The (property_id, tenant_id)
// unique constraint enforces one reservation per tenant per property.
type PostgresStore struct {
	db        *sql.DB
	txTimeout time.Duration
}

type PostgresOption func(*PostgresStore)

// WithTxTimeout bounds ConfigureSlots when the caller's context has no deadline.
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

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) ConfigureSlots(ctx context.Context, propertyID id.PropertyID, windows []models.Window) ([]models.Slot, error) {
	pid := uuid.UUID(propertyID)
	var slots []models.Slot
	err := database.RunInTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		// Lock existing slot rows so a concurrent reserve cannot slip into a
		// slot that is about to be removed.
		rows, err := tx.QueryContext(ctx, `
			SELECT inspection_index FROM inspection_slots
			WHERE property_id = $1
			FOR UPDATE
		`, pid)
		if err != nil {
			return fmt.Errorf("lock slots: %w", err)
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("lock slots: %w", err)
		}

		var held int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM inspection_reservations
			WHERE property_id = $1 AND inspection_index >= $2
		`, pid, len(windows)).Scan(&held)
		if err != nil {
			return fmt.Errorf("count reservations beyond range: %w", err)
		}
		if held > 0 {
			return sentinel.ErrConflict
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM inspection_slots WHERE property_id = $1 AND inspection_index >= $2
		`, pid, len(windows)); err != nil {
			return fmt.Errorf("delete trailing slots: %w", err)
		}

		for i, w := range windows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO inspection_slots (inspection_id, property_id, inspection_index, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (property_id, inspection_index)
				DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time
			`, uuid.UUID(id.NewInspectionID()), pid, i, w.Start, w.End)
			if err != nil {
				return fmt.Errorf("upsert slot %d: %w", i, err)
			}
		}

		slots, err = listSlots(ctx, tx, propertyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *PostgresStore) ListSlots(ctx context.Context, propertyID id.PropertyID) ([]models.Slot, error) {
	return listSlots(ctx, s.db, propertyID)
}

func listSlots(ctx context.Context, exec dbExecutor, propertyID id.PropertyID) ([]models.Slot, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT s.inspection_id, s.inspection_index, s.start_time, s.end_time, r.tenant_id
		FROM inspection_slots s
		LEFT JOIN inspection_reservations r
			ON r.property_id = s.property_id AND r.inspection_index = s.inspection_index
		WHERE s.property_id = $1
		ORDER BY s.inspection_index, r.tenant_id
	`, uuid.UUID(propertyID))
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := []models.Slot{}
	for rows.Next() {
		var (
			inspectionID uuid.UUID
			index        int
			start, end   time.Time
			tenantID     uuid.NullUUID
		)
		if err := rows.Scan(&inspectionID, &index, &start, &end, &tenantID); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if n := len(slots); n == 0 || slots[n-1].Index != index {
			slots = append(slots, models.Slot{
				InspectionID: id.InspectionID(inspectionID),
				PropertyID:   propertyID,
				Index:        index,
				Start:        start.UTC(),
				End:          end.UTC(),
			})
		}
		if tenantID.Valid {
			last := &slots[len(slots)-1]
			last.ReservedTenantIDs = append(last.ReservedTenantIDs, id.TenantID(tenantID.UUID))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	for i := range slots {
		slots[i].SortTenants()
	}
	return slots, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, r models.Reservation) (models.ReserveResult, error) {
	for range reserveAttempts {
		var (
			bookingID  uuid.UUID
			reservedAt time.Time
		)
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO inspection_reservations (booking_id, property_id, tenant_id, inspection_index, reserved_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (property_id, tenant_id) DO NOTHING
			RETURNING booking_id, reserved_at
		`, uuid.UUID(r.BookingID), uuid.UUID(r.PropertyID), uuid.UUID(r.TenantID), r.InspectionIndex, r.ReservedAt,
		).Scan(&bookingID, &reservedAt)
		if err == nil {
			return models.ReserveResult{Reservation: r, Created: true}, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return models.ReserveResult{}, sentinel.ErrNotFound
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.ReserveResult{}, fmt.Errorf("insert reservation: %w", err)
		}

		existing, err := s.FindReservation(ctx, r.PropertyID, r.TenantID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return models.ReserveResult{}, err
		}
		if existing.InspectionIndex != r.InspectionIndex {
			return models.ReserveResult{Reservation: *existing}, sentinel.ErrAlreadyUsed
		}
		return models.ReserveResult{Reservation: *existing}, nil
	}
	return models.ReserveResult{}, fmt.Errorf("reserve: gave up after %d attempts: %w", reserveAttempts, sentinel.ErrUnavailable)
}

func (s *PostgresStore) FindReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error) {
	return scanReservation(s.db.QueryRowContext(ctx, `
		SELECT booking_id, property_id, tenant_id, inspection_index, reserved_at
		FROM inspection_reservations
		WHERE property_id = $1 AND tenant_id = $2
	`, uuid.UUID(propertyID), uuid.UUID(tenantID)))
}

func (s *PostgresStore) FindBooking(ctx context.Context, propertyID id.PropertyID, bookingID id.BookingID) (*models.Reservation, error) {
	return scanReservation(s.db.QueryRowContext(ctx, `
		SELECT booking_id, property_id, tenant_id, inspection_index, reserved_at
		FROM inspection_reservations
		WHERE property_id = $1 AND booking_id = $2
	`, uuid.UUID(propertyID), uuid.UUID(bookingID)))
}

func (s *PostgresStore) Cancel(ctx context.Context, r models.Reservation) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM inspection_reservations
		WHERE booking_id = $1 AND property_id = $2 AND tenant_id = $3 AND inspection_index = $4
	`, uuid.UUID(r.BookingID), uuid.UUID(r.PropertyID), uuid.UUID(r.TenantID), r.InspectionIndex)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reservation rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanReservation(row *sql.Row) (*models.Reservation, error) {
	var (
		bookingID, propertyID, tenantID uuid.UUID
		r                               models.Reservation
	)
	err := row.Scan(&bookingID, &propertyID, &tenantID, &r.InspectionIndex, &r.ReservedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	r.BookingID = id.BookingID(bookingID)
	r.PropertyID = id.PropertyID(propertyID)
	r.TenantID = id.TenantID(tenantID)
	r.ReservedAt = r.ReservedAt.UTC()
	return &r, nil
}
