// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rostrumhq/rostrum/internal/domain/model"
)

// eventRequest mirrors the wire schema for POST /events.
type eventRequest struct {
	EventID string `json:"event_id"`
	Name    string `json:"name"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

// eventResponse mirrors the wire schema for event reads.
type eventResponse struct {
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func toEventResponse(e model.Event) eventResponse {
	return eventResponse{
		EventID:   e.EventID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// EventsHandler handles event registry requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEvents handles POST /events and GET /events.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.events"
	switch r.Method {
	case http.MethodPost:
		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		err := h.deps.CreateEvent(r.Context(), model.Event{EventID: req.EventID, Name: req.Name})
		if err != nil {
			if isConflict(err) {
				writeError(w, http.StatusConflict, "duplicate_id", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, ackResponse{Status: "created", ID: req.EventID})
	case http.MethodGet:
		events, err := h.deps.ListEvents(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		out := make([]eventResponse, len(events))
		for i, e := range events {
			out[i] = toEventResponse(e)
		}
		writeJSON(w, http.StatusOK, out)
	default:
		http.NotFound(w, r)
	}
}

// HandleGetEvent handles GET /events/{event_id}.
func (h *EventsHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	const op = "api.get_event"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	event, err := h.deps.GetEvent(r.Context(), eventID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}
