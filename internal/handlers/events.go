package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/eldtechnologies/plgdemo/internal/metrics"
	"github.com/eldtechnologies/plgdemo/internal/models"
)

// EventRequest represents the event logging request body.
type EventRequest struct {
	Type     string          `json:"type"`
	ToolName string          `json:"toolName"`
	Details  json.RawMessage `json:"details"`
}

// toolName returns the value stored in the tool_name column: the tool name
// when given, else the compacted details JSON, else "". Empty details
// (null, false, 0 and "") store "".
func (req EventRequest) toolName() string {
	if req.ToolName != "" {
		return req.ToolName
	}
	details := bytes.TrimSpace(req.Details)
	if isEmptyJSON(details) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, details); err != nil {
		return string(details)
	}
	return buf.String()
}

func isEmptyJSON(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	}
	return false
}

// RecordEvent handles POST /api/event.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Type == "" {
		h.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if _, err := h.db.RecordEvent(r.Context(), req.Type, req.toolName()); err != nil {
		log := h.requestLogger(r)
		log.Error().Err(err).Str("type", req.Type).Msg("failed to record event")
		h.Error(w, http.StatusInternalServerError, "Failed to record event")
		return
	}
	metrics.EventsRecorded.WithLabelValues(models.EventTypeLabel(req.Type)).Inc()

	h.JSON(w, http.StatusOK, statusOK)
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.db.ListEvents(r.Context())
	if err != nil {
		log := h.requestLogger(r)
		log.Error().Err(err).Msg("failed to list events")
		h.Error(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	h.JSON(w, http.StatusOK, events)
}
