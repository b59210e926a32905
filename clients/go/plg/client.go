// Package plg provides a client for the PLG demo backend API.
package plg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the backend address used when none is given.
const DefaultBaseURL = "http://localhost:3001"

// Client is a PLG demo API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("plg error %d: %s", e.StatusCode, e.Message)
}

// doRequest performs an HTTP request and decodes the JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, in, out interface{}) error {
	status, respBody, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	if status >= 400 {
		return newError(status, respBody)
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// send performs an HTTP request and returns the status and raw body.
func (c *Client) send(ctx context.Context, method, path string, in interface{}) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func newError(status int, body []byte) *Error {
	var errResp struct {
		Error string `json:"error"`
	}
	json.Unmarshal(body, &errResp)
	return &Error{StatusCode: status, Message: errResp.Error}
}

// Event is a request to log a user interaction.
type Event struct {
	Type     string      `json:"type"`
	ToolName string      `json:"toolName,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

// StoredEvent is an event as returned by the backend.
type StoredEvent struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	ToolName  string    `json:"toolName"`
	Timestamp time.Time `json:"timestamp"`
}

// SendEvent logs one interaction event.
func (c *Client) SendEvent(ctx context.Context, event Event) error {
	return c.doRequest(ctx, http.MethodPost, "/api/event", event, nil)
}

// BatchResult reports how a batch of events was handled.
type BatchResult struct {
	Sent   int
	Failed []error
}

// SendEvents logs each event in order, optionally pausing between them.
// It stops early only when ctx is done.
func (c *Client) SendEvents(ctx context.Context, events []Event, delay time.Duration) BatchResult {
	var res BatchResult
	for i, ev := range events {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				res.Failed = append(res.Failed, ctx.Err())
				return res
			case <-time.After(delay):
			}
		}
		if err := c.SendEvent(ctx, ev); err != nil {
			res.Failed = append(res.Failed, fmt.Errorf("event %d (%s): %w", i, ev.Type, err))
			continue
		}
		res.Sent++
	}
	return res
}

// Events lists all logged events, newest first.
func (c *Client) Events(ctx context.Context) ([]StoredEvent, error) {
	var events []StoredEvent
	err := c.doRequest(ctx, http.MethodGet, "/api/events", nil, &events)
	return events, err
}

// ContactMessage is a contact form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Budget  string `json:"budget,omitempty"`
	Message string `json:"message"`
	Product string `json:"product,omitempty"`
}

// StoredContactMessage is a contact message as returned by the backend.
type StoredContactMessage struct {
	ContactMessage
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// SendContactMessage submits the contact form.
func (c *Client) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	return c.doRequest(ctx, http.MethodPost, "/api/contact-message", msg, nil)
}

// ContactMessages lists all contact messages, newest first.
func (c *Client) ContactMessages(ctx context.Context) ([]StoredContactMessage, error) {
	var messages []StoredContactMessage
	err := c.doRequest(ctx, http.MethodGet, "/api/contact-messages", nil, &messages)
	return messages, err
}

// Product is a demo product.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// Products lists the demo products.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	err := c.doRequest(ctx, http.MethodGet, "/api/products", nil, &products)
	return products, err
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health. A degraded server answers 503 with the same
// body, so the response is returned alongside the *Error in that case.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if decodeErr := json.Unmarshal(body, &resp); decodeErr != nil || resp.Status == "" {
		if status >= 400 {
			return nil, newError(status, body)
		}
		if decodeErr != nil {
			return nil, decodeErr
		}
	}
	if status >= 400 {
		e := newError(status, body)
		if e.Message == "" {
			e.Message = resp.Status
		}
		return &resp, e
	}
	return &resp, nil
}
