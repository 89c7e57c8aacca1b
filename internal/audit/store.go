package audit

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	id "lettings/pkg/domain"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProperty(ctx context.Context, propertyID id.PropertyID) ([]Event, error)
}

// InMemoryStore keeps events per property in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.PropertyID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.PropertyID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.PropertyID] = append(s.events[event.PropertyID], event)
	return nil
}

func (s *InMemoryStore) ListByProperty(_ context.Context, propertyID id.PropertyID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[propertyID]), nil
}

// PostgresStore appends into audit_events.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(occurred_at, action, actor_id, actor_role, property_id, subject_id, from_status, to_status, reason, request_id, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		e.Timestamp,
		string(e.Action),
		nullUUID(uuid.UUID(e.ActorID)),
		nullString(string(e.ActorRole)),
		nullUUID(uuid.UUID(e.PropertyID)),
		nullString(e.Subject),
		nullString(e.From),
		nullString(e.To),
		nullString(e.Reason),
		nullString(e.RequestID),
		nullString(e.Device),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProperty(ctx context.Context, propertyID id.PropertyID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, action, actor_id, actor_role, property_id, subject_id, from_status, to_status, reason, request_id, device
		FROM audit_events
		WHERE property_id = $1
		ORDER BY id
	`, uuid.UUID(propertyID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e                                                  Event
			action                                             string
			actorID, property                                  uuid.NullUUID
			role, subject, from, to, reason, requestID, device sql.NullString
		)
		if err := rows.Scan(&e.Timestamp, &action, &actorID, &role, &property, &subject, &from, &to, &reason, &requestID, &device); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.ActorID = id.UserID(actorID.UUID)
		e.ActorRole = id.Role(role.String)
		e.PropertyID = id.PropertyID(property.UUID)
		e.Subject, e.From, e.To = subject.String, from.String, to.String
		e.Reason, e.RequestID, e.Device = reason.String, requestID.String, device.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
