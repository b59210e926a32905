package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldtechnologies/plgdemo/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			tool_name TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS contact_messages (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			email TEXT,
			company TEXT,
			phone TEXT,
			budget TEXT,
			message TEXT,
			product TEXT,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
		CREATE INDEX IF NOT EXISTS idx_contact_messages_timestamp ON contact_messages(timestamp);
	`)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordEvent appends an interaction event.
func (s *PostgresStore) RecordEvent(ctx context.Context, eventType, toolName string) (*models.Event, error) {
	defer observe("record_event", time.Now())

	event := &models.Event{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO events (type, tool_name)
		VALUES ($1, $2)
		RETURNING id, type, tool_name, timestamp
	`, eventType, toolName).Scan(
		&event.ID,
		&event.Type,
		&event.ToolName,
		&event.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents returns all events, newest first.
func (s *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	defer observe("list_events", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT id, type, tool_name, timestamp
		FROM events
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Event, error) {
		var e models.Event
		err := row.Scan(&e.ID, &e.Type, &e.ToolName, &e.Timestamp)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// RecordContactMessage appends a contact form submission.
func (s *PostgresStore) RecordContactMessage(ctx context.Context, msg models.ContactMessage) (*models.ContactMessage, error) {
	defer observe("record_contact_message", time.Now())

	err := s.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, company, phone, budget, message, product)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, timestamp
	`, msg.Name, msg.Email, msg.Company, msg.Phone, msg.Budget, msg.Message, msg.Product).Scan(
		&msg.ID,
		&msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListContactMessages returns all contact messages, newest first.
func (s *PostgresStore) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	defer observe("list_contact_messages", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(company, ''),
			COALESCE(phone, ''), COALESCE(budget, ''), COALESCE(message, ''),
			COALESCE(product, ''), timestamp
		FROM contact_messages
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ContactMessage, error) {
		var m models.ContactMessage
		err := row.Scan(
			&m.ID,
			&m.Name,
			&m.Email,
			&m.Company,
			&m.Phone,
			&m.Budget,
			&m.Message,
			&m.Product,
			&m.Timestamp,
		)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.ContactMessage{}
	}
	return messages, nil
}
