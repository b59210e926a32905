package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/plgdemo/internal/models"
)

// newTestPostgresStore connects to DATABASE_URL and empties both tables.
// The tests are skipped when no database is configured.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.pool.Exec(ctx, `TRUNCATE events, contact_messages RESTART IDENTITY`)
	require.NoError(t, err)
	return s
}

func TestPostgresStore_ListEmpty(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	messages, err := s.ListContactMessages(ctx)
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestPostgresStore_EventsNewestFirst(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	first, err := s.RecordEvent(ctx, models.PageView, "Product One")
	require.NoError(t, err)
	second, err := s.RecordEvent(ctx, models.NavClick, "")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, second.ID, events[0].ID)
	assert.Equal(t, "", events[0].ToolName)
	assert.Equal(t, first.ID, events[1].ID)
	assert.Equal(t, "Product One", events[1].ToolName)
	assert.False(t, events[0].Timestamp.Before(events[1].Timestamp))
}

func TestPostgresStore_ContactMessagesNewestFirst(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	_, err := s.RecordContactMessage(ctx, models.ContactMessage{
		Name: "Ada", Email: "ada@example.com", Message: "First", Product: "Product One",
	})
	require.NoError(t, err)
	saved, err := s.RecordContactMessage(ctx, models.ContactMessage{
		Name: "Grace", Email: "grace@example.com", Message: "Second",
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.Timestamp.IsZero())

	messages, err := s.ListContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Grace", messages[0].Name)
	assert.Equal(t, "", messages[0].Company)
	assert.Equal(t, "Ada", messages[1].Name)
	assert.Equal(t, "Product One", messages[1].Product)
}
