package api

import (
	"encoding/json"
	"net/http"

	"github.com/rostrumhq/rostrum/internal/domain/model"
)

// PanelHandler handles judge registration and listing for an event.
type PanelHandler struct {
	deps Dependencies
}

// NewPanelHandler creates a new panel handler.
func NewPanelHandler(deps Dependencies) *PanelHandler {
	return &PanelHandler{deps: deps}
}

// HandlePanel handles POST and GET /events/{event_id}/judges.
func (h *PanelHandler) HandlePanel(w http.ResponseWriter, r *http.Request, eventID string) {
	const op = "api.panel"
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
		err := h.deps.AddJudge(r.Context(), eventID, model.Judge{ID: req.ID, Name: req.Name})
		if err != nil {
			writeRegistrationError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, ackResponse{Status: "created", ID: req.ID})
	case http.MethodGet:
		panel, err := h.deps.ListJudges(r.Context(), eventID)
		if err != nil {
			writeRegistrationError(w, op, err)
			return
		}
		out := make([]memberRequest, len(panel))
		for i, j := range panel {
			out[i] = memberRequest{ID: j.ID, Name: j.Name}
		}
		writeJSON(w, http.StatusOK, out)
	default:
		http.NotFound(w, r)
	}
}
