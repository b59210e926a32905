package plg

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingServer accepts events, rejecting those without a type.
type recordingServer struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/event":
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["type"] == nil || body["type"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Missing required fields"}`))
			return
		}
		s.mu.Lock()
		s.events = append(s.events, body)
		s.mu.Unlock()
		w.Write([]byte(`{"status":"ok"}`))
	case "/api/events":
		w.Write([]byte(`[{"id":2,"type":"nav_click","toolName":"company","timestamp":"2026-10-15T10:00:01Z"},{"id":1,"type":"page_view","toolName":"","timestamp":"2026-10-15T10:00:00Z"}]`))
	case "/api/contact-message":
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to save or send contact message"}`))
	default:
		http.NotFound(w, r)
	}
}

func (s *recordingServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *recordingServer) event(i int) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[i]
}

func newTestClient(t *testing.T) (*Client, *recordingServer) {
	t.Helper()
	rec := &recordingServer{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/"), rec
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL)
}

func TestSendEvent(t *testing.T) {
	c, rec := newTestClient(t)

	require.NoError(t, c.SendEvent(context.Background(), Event{Type: "page_view", Details: map[string]string{"k": "v"}}))
	assert.Equal(t, 1, rec.count())
	first := rec.event(0)
	assert.Equal(t, map[string]interface{}{"k": "v"}, first["details"])
	_, hasTool := first["toolName"]
	assert.False(t, hasTool)
}

func TestSendEvent_ServerError(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.SendEvent(context.Background(), Event{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Missing required fields", apiErr.Message)
}

func TestSendEvents_ContinuesPastFailures(t *testing.T) {
	c, rec := newTestClient(t)

	res := c.SendEvents(context.Background(), []Event{
		{Type: "page_view"},
		{Type: ""},
		{Type: "nav_click", ToolName: "company"},
	}, 0)

	assert.Equal(t, 2, res.Sent)
	assert.Len(t, res.Failed, 1)
	assert.Equal(t, 2, rec.count())
}

func TestEvents(t *testing.T) {
	c, _ := newTestClient(t)

	events, err := c.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.True(t, events[0].Timestamp.After(events[1].Timestamp))
}

func TestSendContactMessage_Error(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.SendContactMessage(context.Background(), ContactMessage{Name: "a", Email: "a@example.com", Message: "hi"})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestHealth_DegradedKeepsChecks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","version":"0.1.0","checks":{"database":{"status":"fail","message":"connection failed"},"redis":{"status":"skip"}},"timestamp":"2026-10-15T10:00:00Z"}`))
	}))
	t.Cleanup(srv.Close)

	resp, err := NewClient(srv.URL).Health(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "degraded", apiErr.Message)

	require.NotNil(t, resp)
	assert.Equal(t, "degraded", resp.Status)
	db, ok := resp.Checks["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fail", db["status"])
}

func TestHealth_ErrorWithoutHealthBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream down"}`))
	}))
	t.Cleanup(srv.Close)

	resp, err := NewClient(srv.URL).Health(context.Background())

	assert.Nil(t, resp)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestSession(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		events := Session(r)
		require.GreaterOrEqual(t, len(events), 3)
		assert.Equal(t, "page_view", events[0].Type)
		assert.NotEmpty(t, events[0].Details.(SessionDetails).Session)
		assert.Contains(t, []string{"Product One", "Product Two"}, events[2].ToolName)
		for _, ev := range events {
			assert.Contains(t, EventTypes, ev.Type)
		}
	}
}

func TestLead(t *testing.T) {
	lead := Lead(rand.New(rand.NewSource(1)))

	assert.NotEmpty(t, lead.Name)
	assert.Contains(t, lead.Email, "@example.com")
	assert.NotEmpty(t, lead.Message)
	assert.Contains(t, BudgetRanges, lead.Budget)
}
