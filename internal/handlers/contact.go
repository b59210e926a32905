package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/eldtechnologies/plgdemo/internal/crm"
	"github.com/eldtechnologies/plgdemo/internal/metrics"
	"github.com/eldtechnologies/plgdemo/internal/models"
)

// defaultToolName is logged with contact_form_submit when no product was chosen.
const defaultToolName = "general"

// ContactRequest represents the contact form request body.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Budget  string `json:"budget"`
	Message string `json:"message"`
	Product string `json:"product"`
}

func (req ContactRequest) valid() bool {
	return strings.TrimSpace(req.Name) != "" &&
		strings.TrimSpace(req.Email) != "" &&
		strings.TrimSpace(req.Message) != ""
}

// contactOutcome records how far a submission got.
//
// A submission is handled in two steps: store, then forward. The store step
// writes the contact row and a contact_form_submit event as two independent
// writes. The forward step runs the CRM sequence. Rows written by the store
// step are never rolled back, so a forward failure leaves Stored true and
// Forwarded false.
type contactOutcome struct {
	Stored    bool
	Forwarded bool
}

func (o contactOutcome) String() string {
	switch {
	case o.Forwarded:
		return "forwarded"
	case o.Stored:
		return "stored_only"
	default:
		return "store_failed"
	}
}

// SubmitContactMessage handles POST /api/contact-message.
func (h *Handler) SubmitContactMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !req.valid() {
		metrics.ContactMessages.WithLabelValues("rejected").Inc()
		h.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	log := h.requestLogger(r)

	outcome, err := h.submitContact(r.Context(), req)
	metrics.ContactMessages.WithLabelValues(outcome.String()).Inc()
	if err != nil {
		log.Error().
			Err(err).
			Bool("stored", outcome.Stored).
			Str("product", req.Product).
			Msg("error saving or sending contact message")
		h.Error(w, http.StatusInternalServerError, "Failed to save or send contact message")
		return
	}

	log.Info().Str("product", req.Product).Msg("contact message forwarded")
	h.JSON(w, http.StatusOK, statusOK)
}

// submitContact runs the store step and then the forward step.
func (h *Handler) submitContact(ctx context.Context, req ContactRequest) (contactOutcome, error) {
	var outcome contactOutcome

	if err := h.storeContact(ctx, req); err != nil {
		return outcome, err
	}
	outcome.Stored = true

	err := h.crm.Forward(ctx, crm.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Budget:  req.Budget,
		Message: req.Message,
		Product: req.Product,
	})
	if err != nil {
		return outcome, fmt.Errorf("forward to crm: %w", err)
	}
	outcome.Forwarded = true

	return outcome, nil
}

func (h *Handler) storeContact(ctx context.Context, req ContactRequest) error {
	_, err := h.db.RecordContactMessage(ctx, models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Budget:  req.Budget,
		Message: req.Message,
		Product: req.Product,
	})
	if err != nil {
		return fmt.Errorf("store contact message: %w", err)
	}

	toolName := req.Product
	if toolName == "" {
		toolName = defaultToolName
	}
	if _, err := h.db.RecordEvent(ctx, models.ContactFormSubmit, toolName); err != nil {
		return fmt.Errorf("store contact event: %w", err)
	}
	metrics.EventsRecorded.WithLabelValues(models.ContactFormSubmit).Inc()

	return nil
}

// ListContactMessages handles GET /api/contact-messages.
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.db.ListContactMessages(r.Context())
	if err != nil {
		log := h.requestLogger(r)
		log.Error().Err(err).Msg("failed to list contact messages")
		h.Error(w, http.StatusInternalServerError, "Failed to fetch contact messages")
		return
	}

	h.JSON(w, http.StatusOK, messages)
}
