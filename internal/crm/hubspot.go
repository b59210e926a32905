// Package crm forwards contact-form submissions to HubSpot.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/plgdemo/internal/metrics"
)

// MarketingSubscription is the subscription definition every lead is subscribed to.
const MarketingSubscription = "Marketing Information"

const (
	legalBasis            = "LEGITIMATE_INTEREST_PQL"
	legalBasisExplanation = "User submitted contact form"

	convertPath     = "/crm/v3/marketing-contacts/convert"
	definitionsPath = "/communication-preferences/v3/definitions"
	subscribePath   = "/communication-preferences/v3/subscribe"

	// maxErrorBody caps how much of an upstream error body is kept.
	maxErrorBody = 2048
)

var (
	// ErrSubscriptionNotFound is returned when HubSpot has no MarketingSubscription definition.
	ErrSubscriptionNotFound = errors.New("subscription definition not found")
	// ErrNotConfigured is returned when a step needs a setting that is missing.
	ErrNotConfigured = errors.New("hubspot connector not configured")
)

// Step names, used in errors, logs and metrics.
const (
	StepConvert     = "convert_marketing_contact"
	StepDefinitions = "list_definitions"
	StepSubmitForm  = "submit_form"
	StepSubscribe   = "subscribe"
)

// APIError is a non-2xx response from HubSpot.
type APIError struct {
	Step       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot %s: status %d: %s", e.Step, e.StatusCode, e.Body)
}

// Submission is the contact-form data forwarded to HubSpot.
type Submission struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Budget  string
	Message string
	Product string
}

// Forwarder sends a submission to the CRM.
type Forwarder interface {
	Forward(ctx context.Context, sub Submission) error
}

// Options configures a HubSpot connector.
type Options struct {
	APIKey             string
	FormURL            string
	APIBaseURL         string
	PreferencesBaseURL string
	PageURI            string
	PageName           string
	SettleDelay        time.Duration
	HTTPClient         *http.Client
}

// HubSpot runs the lead-capture call sequence against the HubSpot APIs.
type HubSpot struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

// NewHubSpot creates a connector. A nil HTTPClient gets a 30s timeout client.
func NewHubSpot(opts Options, logger zerolog.Logger) *HubSpot {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	opts.APIBaseURL = strings.TrimRight(opts.APIBaseURL, "/")
	opts.PreferencesBaseURL = strings.TrimRight(opts.PreferencesBaseURL, "/")

	return &HubSpot{
		opts:   opts,
		client: client,
		logger: logger.With().Str("component", "hubspot").Logger(),
	}
}

// Forward marks the email as a marketing contact, submits the form and
// subscribes the email to MarketingSubscription, in that order.
// A failed marketing-contact conversion is logged and skipped; any later
// failure aborts and is returned.
func (h *HubSpot) Forward(ctx context.Context, sub Submission) error {
	log := h.logger.With().Str("submission_id", uuid.Must(uuid.NewV7()).String()).Logger()

	if err := h.convertToMarketingContact(ctx, sub.Email); err != nil {
		log.Warn().Err(err).Msg("marketing contact conversion failed, continuing")
	} else {
		log.Debug().Msg("converted to marketing contact")
		if err := sleep(ctx, h.opts.SettleDelay); err != nil {
			return err
		}
	}

	definitions, err := h.listDefinitions(ctx)
	if err != nil {
		return err
	}
	log.Debug().Strs("definitions", definitionNames(definitions)).Msg("fetched subscription definitions")

	subscription, err := findDefinition(definitions, MarketingSubscription)
	if err != nil {
		return err
	}

	if err := h.submitForm(ctx, sub); err != nil {
		return err
	}
	log.Debug().Msg("form submitted")

	if err := h.subscribe(ctx, sub.Email, subscription.ID); err != nil {
		return err
	}

	log.Info().Str("subscription_id", subscription.ID).Msg("lead forwarded to hubspot")
	return nil
}

type convertRequest struct {
	EmailAddresses []string `json:"emailAddresses"`
}

func (h *HubSpot) convertToMarketingContact(ctx context.Context, email string) error {
	return h.call(ctx, StepConvert, http.MethodPost, h.opts.APIBaseURL+convertPath, true,
		convertRequest{EmailAddresses: []string{email}}, nil)
}

// Definition is a HubSpot subscription definition.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type definitionsResponse struct {
	SubscriptionDefinitions []Definition `json:"subscriptionDefinitions"`
}

func (h *HubSpot) listDefinitions(ctx context.Context) ([]Definition, error) {
	var resp definitionsResponse
	err := h.call(ctx, StepDefinitions, http.MethodGet, h.opts.PreferencesBaseURL+definitionsPath, true, nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.SubscriptionDefinitions, nil
}

// findDefinition returns the definition with the given name. The error lists
// every available definition name.
func findDefinition(definitions []Definition, name string) (*Definition, error) {
	for i := range definitions {
		if definitions[i].Name == name {
			return &definitions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: could not find %s subscription type. Available types: %s",
		ErrSubscriptionNotFound, name, strings.Join(definitionNames(definitions), ", "))
}

func definitionNames(definitions []Definition) []string {
	names := make([]string, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.Name)
	}
	return names
}

type formField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type formContext struct {
	PageURI  string `json:"pageUri"`
	PageName string `json:"pageName"`
}

type formRequest struct {
	Fields  []formField `json:"fields"`
	Context formContext `json:"context"`
}

func (h *HubSpot) submitForm(ctx context.Context, sub Submission) error {
	if h.opts.FormURL == "" {
		metrics.CRMCalls.WithLabelValues(StepSubmitForm, "not_configured").Inc()
		return fmt.Errorf("%s: %w: form URL is not set", StepSubmitForm, ErrNotConfigured)
	}

	req := formRequest{
		Fields: []formField{
			{Name: "email", Value: sub.Email},
			{Name: "firstname", Value: sub.Name},
			{Name: "company", Value: sub.Company},
			{Name: "phone", Value: sub.Phone},
			{Name: "budget", Value: sub.Budget},
			{Name: "message", Value: sub.Message},
			{Name: "product", Value: sub.Product},
		},
		Context: formContext{PageURI: h.opts.PageURI, PageName: h.opts.PageName},
	}
	// The forms endpoint is public; it must not receive the private app token.
	return h.call(ctx, StepSubmitForm, http.MethodPost, h.opts.FormURL, false, req, nil)
}

type subscribeRequest struct {
	EmailAddress          string `json:"emailAddress"`
	SubscriptionID        string `json:"subscriptionId"`
	LegalBasis            string `json:"legalBasis"`
	LegalBasisExplanation string `json:"legalBasisExplanation"`
}

func (h *HubSpot) subscribe(ctx context.Context, email, subscriptionID string) error {
	return h.call(ctx, StepSubscribe, http.MethodPost, h.opts.PreferencesBaseURL+subscribePath, true,
		subscribeRequest{
			EmailAddress:          email,
			SubscriptionID:        subscriptionID,
			LegalBasis:            legalBasis,
			LegalBasisExplanation: legalBasisExplanation,
		}, nil)
}

// call performs one HubSpot request and decodes a JSON response into out
// when out is non-nil.
func (h *HubSpot) call(ctx context.Context, step, method, url string, authorized bool, in, out interface{}) (err error) {
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNotConfigured):
			outcome = "not_configured"
		case err != nil:
			outcome = "error"
		}
		metrics.CRMCalls.WithLabelValues(step, outcome).Inc()
	}()

	if authorized && h.opts.APIKey == "" {
		return fmt.Errorf("%s: %w: api key is not set", step, ErrNotConfigured)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", step, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", step, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+h.opts.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", step, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return &APIError{Step: step, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", step, err)
		}
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
