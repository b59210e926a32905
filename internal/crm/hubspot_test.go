package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/plgdemo/internal/metrics"
)

const testToken = "pat-eu1-secret-token"

// fakeHubSpot records calls and serves canned responses for each endpoint.
type fakeHubSpot struct {
	mu          sync.Mutex
	calls       []string
	bodies      map[string]map[string]interface{}
	auth        map[string]string
	definitions []Definition
	failStatus  map[string]int
}

func newFakeHubSpot() *fakeHubSpot {
	return &fakeHubSpot{
		bodies: map[string]map[string]interface{}{},
		auth:   map[string]string{},
		definitions: []Definition{
			{ID: "100", Name: "Product Updates"},
			{ID: "200", Name: MarketingSubscription},
		},
		failStatus: map[string]int{},
	}
}

func (f *fakeHubSpot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	f.calls = append(f.calls, path)
	f.auth[path] = r.Header.Get("Authorization")
	if r.Body != nil {
		var body map[string]interface{}
		if json.NewDecoder(r.Body).Decode(&body) == nil {
			f.bodies[path] = body
		}
	}

	if status, ok := f.failStatus[path]; ok {
		w.WriteHeader(status)
		w.Write([]byte(`{"status":"error","message":"upstream failure"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch path {
	case definitionsPath:
		json.NewEncoder(w).Encode(definitionsResponse{SubscriptionDefinitions: f.definitions})
	default:
		w.Write([]byte(`{}`))
	}
}

func (f *fakeHubSpot) callPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeHubSpot) body(path string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

func (f *fakeHubSpot) authFor(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[path]
}

func newTestConnector(t *testing.T, fake *fakeHubSpot) *HubSpot {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewHubSpot(Options{
		APIKey:             testToken,
		FormURL:            srv.URL + "/submissions/v3/integration/submit/1/form-guid",
		APIBaseURL:         srv.URL,
		PreferencesBaseURL: srv.URL + "/",
		PageURI:            "http://localhost:3000/contact",
		PageName:           "Contact Us",
		HTTPClient:         srv.Client(),
	}, zerolog.Nop())
}

var testSubmission = Submission{
	Name:    "Ada Lovelace",
	Email:   "ada@example.com",
	Company: "Analytical Engines",
	Budget:  "$1,000 - $5,000",
	Message: "Hello",
	Product: "Product One",
}

func TestForward_CallOrder(t *testing.T) {
	fake := newFakeHubSpot()
	h := newTestConnector(t, fake)

	require.NoError(t, h.Forward(context.Background(), testSubmission))

	assert.Equal(t, []string{
		convertPath,
		definitionsPath,
		"/submissions/v3/integration/submit/1/form-guid",
		subscribePath,
	}, fake.callPaths())
}

func TestForward_Payloads(t *testing.T) {
	fake := newFakeHubSpot()
	h := newTestConnector(t, fake)

	require.NoError(t, h.Forward(context.Background(), testSubmission))

	convert := fake.body(convertPath)
	assert.Equal(t, []interface{}{"ada@example.com"}, convert["emailAddresses"])

	form := fake.body("/submissions/v3/integration/submit/1/form-guid")
	fields := form["fields"].([]interface{})
	require.Len(t, fields, 7)
	assert.Equal(t, map[string]interface{}{"name": "firstname", "value": "Ada Lovelace"}, fields[1])
	assert.Equal(t, map[string]interface{}{"pageUri": "http://localhost:3000/contact", "pageName": "Contact Us"}, form["context"])

	subscribe := fake.body(subscribePath)
	assert.Equal(t, "ada@example.com", subscribe["emailAddress"])
	assert.Equal(t, "200", subscribe["subscriptionId"])
	assert.Equal(t, "LEGITIMATE_INTEREST_PQL", subscribe["legalBasis"])
	assert.Equal(t, "User submitted contact form", subscribe["legalBasisExplanation"])
}

func TestForward_Authorization(t *testing.T) {
	fake := newFakeHubSpot()
	h := newTestConnector(t, fake)

	require.NoError(t, h.Forward(context.Background(), testSubmission))

	assert.Equal(t, "Bearer "+testToken, fake.authFor(convertPath))
	assert.Equal(t, "Bearer "+testToken, fake.authFor(definitionsPath))
	assert.Equal(t, "Bearer "+testToken, fake.authFor(subscribePath))
	assert.Empty(t, fake.authFor("/submissions/v3/integration/submit/1/form-guid"))
}

func TestForward_ConversionFailureIsTolerated(t *testing.T) {
	fake := newFakeHubSpot()
	fake.failStatus[convertPath] = http.StatusForbidden
	h := newTestConnector(t, fake)

	require.NoError(t, h.Forward(context.Background(), testSubmission))
	assert.Len(t, fake.callPaths(), 4)
}

func TestForward_MissingMarketingSubscription(t *testing.T) {
	fake := newFakeHubSpot()
	fake.definitions = []Definition{
		{ID: "1", Name: "Product Updates"},
		{ID: "2", Name: "Newsletter"},
	}
	h := newTestConnector(t, fake)

	err := h.Forward(context.Background(), testSubmission)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubscriptionNotFound))
	assert.Contains(t, err.Error(), "Available types: Product Updates, Newsletter")

	// Nothing is submitted once the lookup fails.
	assert.Equal(t, []string{convertPath, definitionsPath}, fake.callPaths())
}

func TestForward_FormFailureAborts(t *testing.T) {
	fake := newFakeHubSpot()
	fake.failStatus["/submissions/v3/integration/submit/1/form-guid"] = http.StatusBadRequest
	h := newTestConnector(t, fake)

	err := h.Forward(context.Background(), testSubmission)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StepSubmitForm, apiErr.Step)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.NotContains(t, fake.callPaths(), subscribePath)
}

func TestForward_SubscribeFailure(t *testing.T) {
	fake := newFakeHubSpot()
	fake.failStatus[subscribePath] = http.StatusUnauthorized
	h := newTestConnector(t, fake)

	err := h.Forward(context.Background(), testSubmission)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StepSubscribe, apiErr.Step)
	assert.NotContains(t, err.Error(), testToken)
}

func TestForward_MissingFormURL(t *testing.T) {
	fake := newFakeHubSpot()
	h := newTestConnector(t, fake)
	h.opts.FormURL = ""

	notConfigured := metrics.CRMCalls.WithLabelValues(StepSubmitForm, "not_configured")
	before := testutil.ToFloat64(notConfigured)

	err := h.Forward(context.Background(), testSubmission)
	assert.Equal(t, before+1, testutil.ToFloat64(notConfigured))
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.NotContains(t, fake.callPaths(), subscribePath)
}

func TestForward_MissingAPIKey(t *testing.T) {
	fake := newFakeHubSpot()
	h := newTestConnector(t, fake)
	h.opts.APIKey = ""

	notConfigured := metrics.CRMCalls.WithLabelValues(StepDefinitions, "not_configured")
	failed := metrics.CRMCalls.WithLabelValues(StepDefinitions, "error")
	beforeNotConfigured, beforeFailed := testutil.ToFloat64(notConfigured), testutil.ToFloat64(failed)

	err := h.Forward(context.Background(), testSubmission)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	// Conversion and definitions both need the token, so nothing is sent.
	assert.Empty(t, fake.callPaths())

	assert.Equal(t, beforeNotConfigured+1, testutil.ToFloat64(notConfigured))
	assert.Equal(t, beforeFailed, testutil.ToFloat64(failed))
}

func TestForward_CancelledContext(t *testing.T) {
	fake := newFakeHubSpot()
	h := newTestConnector(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, h.Forward(ctx, testSubmission))
}

func TestFindDefinition(t *testing.T) {
	defs := []Definition{{ID: "a", Name: "One"}, {ID: "b", Name: "Two"}}

	d, err := findDefinition(defs, "Two")
	require.NoError(t, err)
	assert.Equal(t, "b", d.ID)

	_, err = findDefinition(nil, "Two")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	assert.Contains(t, err.Error(), "Available types: ")
}
