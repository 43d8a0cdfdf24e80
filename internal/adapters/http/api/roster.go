package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rostrumhq/rostrum/internal/domain/model"
)

// memberRequest mirrors the wire schema shared by roster and panel
// registration.
type memberRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (m memberRequest) validate() error {
	switch {
	case strings.TrimSpace(m.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(m.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

// RosterHandler handles participant registration and listing for an event.
type RosterHandler struct {
	deps Dependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps Dependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// HandleRoster handles POST and GET /events/{event_id}/participants.
func (h *RosterHandler) HandleRoster(w http.ResponseWriter, r *http.Request, eventID string) {
	const op = "api.roster"
	switch r.Method {
	case http.MethodPost:
		var req memberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		err := h.deps.AddParticipant(r.Context(), eventID, model.Participant{ID: req.ID, Name: req.Name})
		if err != nil {
			writeRegistrationError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, ackResponse{Status: "created", ID: req.ID})
	case http.MethodGet:
		roster, err := h.deps.ListParticipants(r.Context(), eventID)
		if err != nil {
			writeRegistrationError(w, op, err)
			return
		}
		out := make([]memberRequest, len(roster))
		for i, p := range roster {
			out[i] = memberRequest{ID: p.ID, Name: p.Name}
		}
		writeJSON(w, http.StatusOK, out)
	default:
		http.NotFound(w, r)
	}
}

// writeRegistrationError maps store errors shared by roster and panel
// writes onto HTTP statuses.
func writeRegistrationError(w http.ResponseWriter, op string, err error) {
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
	case isConflict(err):
		writeError(w, http.StatusConflict, "duplicate_id", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
