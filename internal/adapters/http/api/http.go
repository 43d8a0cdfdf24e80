// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rostrumhq/rostrum/internal/domain/dedupe"
	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Event registry operations.
	CreateEvent(ctx context.Context, event model.Event) error
	GetEvent(ctx context.Context, eventID string) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	AddParticipant(ctx context.Context, eventID string, p model.Participant) error
	ListParticipants(ctx context.Context, eventID string) ([]model.Participant, error)
	AddJudge(ctx context.Context, eventID string, j model.Judge) error
	ListJudges(ctx context.Context, eventID string) ([]model.Judge, error)

	// Ranking computes an event's standing with the named method
	// ("" selects the service default).
	Ranking(ctx context.Context, eventID, method string) ([]types.Row, error)
}

// Row mirrors the read shape returned by ranking queries.
type Row = types.Row

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	rosterHandler  *RosterHandler
	panelHandler   *PanelHandler
	scoresHandler  *ScoresHandler
	rankingHandler *RankingHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRankingLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		rosterHandler:  NewRosterHandler(deps),
		panelHandler:   NewPanelHandler(deps),
		scoresHandler:  NewScoresHandler(deps),
		rankingHandler: NewRankingHandler(deps, maxRankingLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.routeEventScoped, "events"))
}

// routeEventScoped dispatches /events/{id} and its subresources.
func (s *Server) routeEventScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/events/")
	parts := strings.SplitN(rest, "/", 2)
	eventID := parts[0]
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if len(parts) == 1 {
		s.eventsHandler.HandleGetEvent(w, r, eventID)
		return
	}
	switch parts[1] {
	case "participants":
		s.rosterHandler.HandleRoster(w, r, eventID)
	case "judges":
		s.panelHandler.HandlePanel(w, r, eventID)
	case "ranking":
		s.rankingHandler.HandleGetRanking(w, r, eventID)
	case "ranking.csv":
		s.rankingHandler.HandleGetRankingCSV(w, r, eventID)
	default:
		http.NotFound(w, r)
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
