package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rostrumhq/rostrum/internal/domain/model"
)

// scoreRequest mirrors the wire schema for score submissions. SubmissionID
// is optional; the server assigns one when it is absent, at the cost of
// losing idempotency for that submission.
type scoreRequest struct {
	SubmissionID string  `json:"submission_id"`
	EventID      string  `json:"event_id"`
	StudentID    string  `json:"student_id"`
	JudgeID      string  `json:"judge_id"`
	Value        float64 `json:"value"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(s.StudentID) == "":
		return errors.New("missing student_id")
	case strings.TrimSpace(s.JudgeID) == "":
		return errors.New("missing judge_id")
	case math.IsNaN(s.Value) || math.IsInf(s.Value, 0):
		return errors.New("value must be finite")
	}
	return nil
}

// ScoresHandler accepts score submissions for async processing.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /scores.
//
// Accepted submissions are acknowledged with 202 before they reach the
// store; duplicates (by submission_id) short-circuit with 200.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.scores"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.NewString()
	}

	// Idempotency check - mark as seen before enqueueing so a concurrent
	// retry of the same submission cannot slip in between.
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: req.SubmissionID, Duplicate: true})
		return
	}

	sub := model.Submission{
		SubmissionID: req.SubmissionID,
		EventID:      req.EventID,
		StudentID:    req.StudentID,
		JudgeID:      req.JudgeID,
		Value:        req.Value,
	}
	if !h.deps.Enqueue(r.Context(), sub) {
		// Roll back the seen mark so the client can retry the same
		// submission once the queue drains.
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: req.SubmissionID})
}
