package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/rostrumhq/rostrum/internal/domain/ranking"
	"github.com/rostrumhq/rostrum/internal/domain/types"
)

// RankingHandler serves computed standings for an event.
type RankingHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRankingHandler creates a new ranking handler. maxLimit caps the number
// of rows a single request may ask for.
func NewRankingHandler(deps Dependencies, maxLimit int) *RankingHandler {
	return &RankingHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRanking handles GET /events/{event_id}/ranking.
//
// Query parameters:
//   - method: "spearman" or "general" (defaults to the service setting)
//   - limit: maximum number of rows to return
func (h *RankingHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request, eventID string) {
	rows, ok := h.computeRows(w, r, eventID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetRankingCSV handles GET /events/{event_id}/ranking.csv, rendering
// the same table as HandleGetRanking with per-judge ranks flattened into one
// column per judge.
func (h *RankingHandler) HandleGetRankingCSV(w http.ResponseWriter, r *http.Request, eventID string) {
	rows, ok := h.computeRows(w, r, eventID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", eventID+"-ranking.csv"))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	// A row carries ranks only for the judges that scored that participant,
	// so the judge columns are the union across all rows.
	judgeIDs := judgeColumns(rows)
	header := []string{"final_rank", "participant_id", "name", "total_score", "average_score", "rank_sum"}
	for _, judgeID := range judgeIDs {
		header = append(header, "rank:"+judgeID)
	}
	_ = cw.Write(header)
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.FinalRank),
			row.ParticipantID,
			row.Name,
			strconv.FormatFloat(row.TotalScore, 'f', -1, 64),
			strconv.FormatFloat(row.AverageScore, 'f', -1, 64),
			strconv.FormatFloat(row.RankSum, 'f', -1, 64),
		}
		ranks := make(map[string]float64, len(row.PerJudgeRanks))
		for _, jr := range row.PerJudgeRanks {
			ranks[jr.JudgeID] = jr.Rank
		}
		for _, judgeID := range judgeIDs {
			if rank, found := ranks[judgeID]; found {
				record = append(record, strconv.FormatFloat(rank, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		_ = cw.Write(record)
	}
	cw.Flush()
}

// judgeColumns returns the sorted union of judge ids seen across rows.
func judgeColumns(rows []types.Row) []string {
	seen := make(map[string]struct{})
	var judgeIDs []string
	for _, row := range rows {
		for _, jr := range row.PerJudgeRanks {
			if _, ok := seen[jr.JudgeID]; ok {
				continue
			}
			seen[jr.JudgeID] = struct{}{}
			judgeIDs = append(judgeIDs, jr.JudgeID)
		}
	}
	sort.Strings(judgeIDs)
	return judgeIDs
}

// computeRows parses the shared query parameters, computes the ranking and
// writes any error response itself. ok is false when a response was already
// written.
func (h *RankingHandler) computeRows(w http.ResponseWriter, r *http.Request, eventID string) (rows []types.Row, ok bool) {
	const op = "api.ranking"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return nil, false
	}

	limit := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return nil, false
		}
		if n < limit {
			limit = n
		}
	}

	rows, err := h.deps.Ranking(r.Context(), eventID, r.URL.Query().Get("method"))
	if err != nil {
		switch {
		case errors.Is(err, ranking.ErrUnknownMethod):
			writeError(w, http.StatusBadRequest, "unknown_method", err)
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return nil, false
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, true
}
