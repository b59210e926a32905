package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eldtechnologies/plgdemo/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/plg.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/plg.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		tool_name TEXT NOT NULL DEFAULT '',
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS contact_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		email TEXT,
		company TEXT,
		phone TEXT,
		budget TEXT,
		message TEXT,
		product TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_contact_messages_timestamp ON contact_messages(timestamp);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordEvent appends an interaction event.
func (s *SQLiteStore) RecordEvent(ctx context.Context, eventType, toolName string) (*models.Event, error) {
	defer observe("record_event", time.Now())

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (type, tool_name, timestamp)
		VALUES (?, ?, ?)
	`, eventType, toolName, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Event{ID: id, Type: eventType, ToolName: toolName, Timestamp: now}, nil
}

// ListEvents returns all events, newest first.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	defer observe("list_events", time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, tool_name, timestamp
		FROM events
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Type, &e.ToolName, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// RecordContactMessage appends a contact form submission.
func (s *SQLiteStore) RecordContactMessage(ctx context.Context, msg models.ContactMessage) (*models.ContactMessage, error) {
	defer observe("record_contact_message", time.Now())

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (name, email, company, phone, budget, message, product, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.Name, msg.Email, msg.Company, msg.Phone, msg.Budget, msg.Message, msg.Product, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	msg.ID = id
	msg.Timestamp = now
	return &msg, nil
}

// ListContactMessages returns all contact messages, newest first.
func (s *SQLiteStore) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	defer observe("list_contact_messages", time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(company, ''),
			COALESCE(phone, ''), COALESCE(budget, ''), COALESCE(message, ''),
			COALESCE(product, ''), timestamp
		FROM contact_messages
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		err := rows.Scan(
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
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
