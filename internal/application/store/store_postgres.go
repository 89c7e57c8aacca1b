package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lettings/internal/application/models"
	"lettings/internal/platform/database"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists applications. The uq_applications_active partial
// index enforces one active application per tenant per property.
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

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const selectColumns = `
	SELECT application_id, property_id, tenant_id, status, status_history, created_at, updated_at
	FROM applications
`

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (application_id, property_id, tenant_id, status, status_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(app.ID), uuid.UUID(app.PropertyID), uuid.UUID(app.TenantID), string(app.Status), history, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	return findOne(s.db.QueryRowContext(ctx, selectColumns+` WHERE application_id = $1`, uuid.UUID(applicationID)))
}

func (s *PostgresStore) FindActive(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Application, error) {
	return findOne(s.db.QueryRowContext(ctx, selectColumns+`
		WHERE property_id = $1 AND tenant_id = $2
		  AND status NOT IN ('AGENT_REJECTED', 'BACKGROUND_FAILED', 'LANDLORD_REJECTED')
	`, uuid.UUID(propertyID), uuid.UUID(tenantID)))
}

func (s *PostgresStore) ListByProperty(ctx context.Context, propertyID id.PropertyID) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE property_id = $1
		ORDER BY created_at, application_id
	`, uuid.UUID(propertyID))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, propertyID id.PropertyID) (map[models.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM applications
		WHERE property_id = $1
		GROUP BY status
	`, uuid.UUID(propertyID))
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan application count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application counts: %w", err)
	}
	return counts, nil
}

// Execute atomically validates and mutates an application under a row lock.
func (s *PostgresStore) Execute(ctx context.Context, applicationID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	var app *models.Application
	err := database.RunInTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		app, err = findOne(tx.QueryRowContext(ctx, selectColumns+`
			WHERE application_id = $1
			FOR UPDATE
		`, uuid.UUID(applicationID)))
		if err != nil {
			return err
		}
		if err := validate(app); err != nil {
			return err
		}
		mutate(app)
		return updateApplication(ctx, tx, app)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func updateApplication(ctx context.Context, exec dbExecutor, app *models.Application) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	res, err := exec.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, status_history = $3, updated_at = $4
		WHERE application_id = $1
	`, uuid.UUID(app.ID), string(app.Status), history, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update application: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func findOne(row *sql.Row) (*models.Application, error) {
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return app, err
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		appID, propertyID, tenantID uuid.UUID
		status                      string
		history                     []byte
		app                         models.Application
	)
	if err := row.Scan(&appID, &propertyID, &tenantID, &status, &history, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
		return nil, fmt.Errorf("unmarshal status history: %w", err)
	}
	if app.StatusHistory == nil {
		app.StatusHistory = []models.Status{}
	}
	app.ID = id.ApplicationID(appID)
	app.PropertyID = id.PropertyID(propertyID)
	app.TenantID = id.TenantID(tenantID)
	app.Status = models.Status(status)
	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()
	return &app, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
