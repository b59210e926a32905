package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/plgdemo/internal/crm"
	"github.com/eldtechnologies/plgdemo/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db     store.DataStore
	redis  *store.RedisStore
	crm    crm.Forwarder
	logger zerolog.Logger
}

// NewHandler creates a new Handler. redis may be nil.
func NewHandler(db store.DataStore, redis *store.RedisStore, forwarder crm.Forwarder, logger zerolog.Logger) *Handler {
	return &Handler{db: db, redis: redis, crm: forwarder, logger: logger}
}

// StatusResponse is the body returned by successful write endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

var statusOK = StatusResponse{Status: "ok"}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// requestLogger returns the handler logger tagged with the request id.
func (h *Handler) requestLogger(r *http.Request) zerolog.Logger {
	return h.logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
}
