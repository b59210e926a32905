package store

import (
	"context"
	"time"

	"github.com/eldtechnologies/plgdemo/internal/metrics"
	"github.com/eldtechnologies/plgdemo/internal/models"
)

// DataStore defines the interface for the two append-only tables.
// Both SQLiteStore and PostgresStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Event operations
	RecordEvent(ctx context.Context, eventType, toolName string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)

	// Contact message operations
	RecordContactMessage(ctx context.Context, msg models.ContactMessage) (*models.ContactMessage, error)
	ListContactMessages(ctx context.Context) ([]models.ContactMessage, error)
}

// observe records the latency of a database operation.
func observe(op string, start time.Time) {
	metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
