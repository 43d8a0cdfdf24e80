package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rostrumhq/rostrum/internal/adapters/http/api"
	"github.com/rostrumhq/rostrum/internal/adapters/repository"
	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/internal/domain/ranking"
	"github.com/rostrumhq/rostrum/internal/domain/types"
)

// Mock implementations for testing
type mockDependencies struct {
	seen map[string]bool

	enqueueSuccess bool
	enqueued       []model.Submission

	events       map[string]model.Event
	eventOrder   []string
	participants map[string][]model.Participant
	judges       map[string][]model.Judge

	rankingRows   []types.Row
	rankingMethod string
	rankingErr    error
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		seen:           make(map[string]bool),
		enqueueSuccess: true,
		events:         make(map[string]model.Event),
		participants:   make(map[string][]model.Participant),
		judges:         make(map[string][]model.Judge),
	}
}

func (m *mockDependencies) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDependencies) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDependencies) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDependencies) Enqueue(ctx context.Context, sub model.Submission) bool {
	if !m.enqueueSuccess {
		return false
	}
	m.enqueued = append(m.enqueued, sub)
	return true
}

func (m *mockDependencies) CreateEvent(ctx context.Context, event model.Event) error {
	if _, ok := m.events[event.EventID]; ok {
		return repository.ErrDuplicateID
	}
	m.events[event.EventID] = event
	m.eventOrder = append(m.eventOrder, event.EventID)
	return nil
}

func (m *mockDependencies) GetEvent(ctx context.Context, eventID string) (model.Event, error) {
	e, ok := m.events[eventID]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (m *mockDependencies) ListEvents(ctx context.Context) ([]model.Event, error) {
	out := make([]model.Event, 0, len(m.eventOrder))
	for _, id := range m.eventOrder {
		out = append(out, m.events[id])
	}
	return out, nil
}

func (m *mockDependencies) AddParticipant(ctx context.Context, eventID string, p model.Participant) error {
	if _, ok := m.events[eventID]; !ok {
		return repository.ErrNotFound
	}
	m.participants[eventID] = append(m.participants[eventID], p)
	return nil
}

func (m *mockDependencies) ListParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	if _, ok := m.events[eventID]; !ok {
		return nil, repository.ErrNotFound
	}
	return m.participants[eventID], nil
}

func (m *mockDependencies) AddJudge(ctx context.Context, eventID string, j model.Judge) error {
	if _, ok := m.events[eventID]; !ok {
		return repository.ErrNotFound
	}
	m.judges[eventID] = append(m.judges[eventID], j)
	return nil
}

func (m *mockDependencies) ListJudges(ctx context.Context, eventID string) ([]model.Judge, error) {
	if _, ok := m.events[eventID]; !ok {
		return nil, repository.ErrNotFound
	}
	return m.judges[eventID], nil
}

func (m *mockDependencies) Ranking(ctx context.Context, eventID, method string) ([]types.Row, error) {
	if m.rankingErr != nil {
		return nil, m.rankingErr
	}
	if _, err := ranking.ParseMethod(method); err != nil {
		return nil, err
	}
	if _, ok := m.events[eventID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.rankingMethod = method
	return m.rankingRows, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestServer(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"queueLength": 0}}, 100)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestEvents(t *testing.T) {
	Convey("Given a server with no events", t, func() {
		deps := newMockDependencies()
		mux := newTestServer(deps)

		Convey("Creating an event returns 201", func() {
			rec := doJSON(mux, http.MethodPost, "/events", `{"event_id":"talent-2026","name":"Talent Show"}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			Convey("And the event is retrievable", func() {
				rec := doJSON(mux, http.MethodGet, "/events/talent-2026", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "Talent Show")
			})

			Convey("And creating it again returns 409", func() {
				rec := doJSON(mux, http.MethodPost, "/events", `{"event_id":"talent-2026","name":"Talent Show"}`)
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("Creating an event without an id returns 400", func() {
			rec := doJSON(mux, http.MethodPost, "/events", `{"name":"Talent Show"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Fetching a missing event returns 404", func() {
			rec := doJSON(mux, http.MethodGet, "/events/nope", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Listing events returns them in creation order", func() {
			for i := 0; i < 3; i++ {
				doJSON(mux, http.MethodPost, "/events", fmt.Sprintf(`{"event_id":"ev-%d","name":"Event %d"}`, i, i))
			}
			rec := doJSON(mux, http.MethodGet, "/events", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var got []map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(len(got), ShouldEqual, 3)
			So(got[0]["event_id"], ShouldEqual, "ev-0")
			So(got[2]["event_id"], ShouldEqual, "ev-2")
		})
	})
}

func TestRosterAndPanel(t *testing.T) {
	Convey("Given a server with one event", t, func() {
		deps := newMockDependencies()
		mux := newTestServer(deps)
		doJSON(mux, http.MethodPost, "/events", `{"event_id":"ev","name":"Event"}`)

		Convey("Registering a participant returns 201", func() {
			rec := doJSON(mux, http.MethodPost, "/events/ev/participants", `{"id":"s1","name":"Alice"}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			rec = doJSON(mux, http.MethodGet, "/events/ev/participants", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Alice")
		})

		Convey("Registering a judge returns 201", func() {
			rec := doJSON(mux, http.MethodPost, "/events/ev/judges", `{"id":"j1","name":"Judge Judy"}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			rec = doJSON(mux, http.MethodGet, "/events/ev/judges", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Judge Judy")
		})

		Convey("Registering against a missing event returns 404", func() {
			rec := doJSON(mux, http.MethodPost, "/events/nope/participants", `{"id":"s1","name":"Alice"}`)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A member without a name returns 400", func() {
			rec := doJSON(mux, http.MethodPost, "/events/ev/judges", `{"id":"j1"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPostScore(t *testing.T) {
	Convey("Given a server accepting submissions", t, func() {
		deps := newMockDependencies()
		mux := newTestServer(deps)

		Convey("A valid submission is accepted with 202", func() {
			rec := doJSON(mux, http.MethodPost, "/scores", `{"submission_id":"sub-1","event_id":"ev","student_id":"s1","judge_id":"j1","value":87.5}`)
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(len(deps.enqueued), ShouldEqual, 1)
			So(deps.enqueued[0].Value, ShouldEqual, 87.5)

			Convey("And resubmitting the same id is a duplicate", func() {
				rec := doJSON(mux, http.MethodPost, "/scores", `{"submission_id":"sub-1","event_id":"ev","student_id":"s1","judge_id":"j1","value":87.5}`)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(len(deps.enqueued), ShouldEqual, 1)
			})
		})

		Convey("A submission without an id gets one assigned", func() {
			rec := doJSON(mux, http.MethodPost, "/scores", `{"event_id":"ev","student_id":"s1","judge_id":"j1","value":50}`)
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(len(deps.enqueued), ShouldEqual, 1)
			So(deps.enqueued[0].SubmissionID, ShouldNotBeEmpty)
		})

		Convey("A submission missing a judge id returns 400", func() {
			rec := doJSON(mux, http.MethodPost, "/scores", `{"event_id":"ev","student_id":"s1","value":50}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A non-finite value returns 400", func() {
			rec := doJSON(mux, http.MethodPost, "/scores", `{"event_id":"ev","student_id":"s1","judge_id":"j1","value":1e999}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Backpressure returns 429 and unrecords the submission", func() {
			deps.enqueueSuccess = false
			rec := doJSON(mux, http.MethodPost, "/scores", `{"submission_id":"sub-2","event_id":"ev","student_id":"s1","judge_id":"j1","value":50}`)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(deps.Size(), ShouldEqual, 0)

			Convey("And the same submission succeeds once the queue drains", func() {
				deps.enqueueSuccess = true
				rec := doJSON(mux, http.MethodPost, "/scores", `{"submission_id":"sub-2","event_id":"ev","student_id":"s1","judge_id":"j1","value":50}`)
				So(rec.Code, ShouldEqual, http.StatusAccepted)
			})
		})
	})
}

func TestRanking(t *testing.T) {
	Convey("Given a server with a computed ranking", t, func() {
		deps := newMockDependencies()
		deps.events["ev"] = model.Event{EventID: "ev", Name: "Event"}
		deps.rankingRows = []types.Row{
			{FinalRank: 1, ParticipantID: "s1", Name: "Alice", TotalScore: 160, AverageScore: 80, RankSum: 2.5,
				PerJudgeRanks: []types.JudgeRank{{JudgeID: "j1", JudgeName: "Judy", Rank: 1.5}, {JudgeID: "j2", JudgeName: "Jules", Rank: 1}}},
			{FinalRank: 2, ParticipantID: "s2", Name: "Bob", TotalScore: 150, AverageScore: 75, RankSum: 4,
				PerJudgeRanks: []types.JudgeRank{{JudgeID: "j1", Rank: 1.5}, {JudgeID: "j2", Rank: 2.5}}},
		}
		mux := newTestServer(deps)

		Convey("GET ranking returns the rows as JSON", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var got []types.Row
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].ParticipantID, ShouldEqual, "s1")
			So(got[0].RankSum, ShouldEqual, 2.5)
		})

		Convey("The method query parameter is forwarded", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking?method=general", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.rankingMethod, ShouldEqual, "general")
		})

		Convey("An unknown method returns 400", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking?method=borda", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(rec.Body.String(), ShouldContainSubstring, "unknown_method")
		})

		Convey("A missing event returns 404", func() {
			rec := doJSON(mux, http.MethodGet, "/events/nope/ranking", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("The limit parameter truncates the table", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking?limit=1", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var got []types.Row
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(len(got), ShouldEqual, 1)
		})

		Convey("A non-numeric limit returns 400", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking?limit=lots", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET ranking.csv renders one column per judge", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking.csv", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/csv")

			lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
			So(len(lines), ShouldEqual, 3)
			So(lines[0], ShouldEqual, "final_rank,participant_id,name,total_score,average_score,rank_sum,rank:j1,rank:j2")
			So(lines[1], ShouldEqual, "1,s1,Alice,160,80,2.5,1.5,1")
			So(lines[2], ShouldEqual, "2,s2,Bob,150,75,4,1.5,2.5")
		})

		Convey("GET ranking.csv stays rectangular when a participant has no scores", func() {
			// The unscored participant leads (rank sum 0) and carries no
			// per-judge ranks, so the judge columns must come from every row.
			deps.rankingRows = []types.Row{
				{FinalRank: 1, ParticipantID: "u1", Name: "Unscored", TotalScore: 0, AverageScore: 0, RankSum: 0},
				{FinalRank: 2, ParticipantID: "s1", Name: "Alice", TotalScore: 160, AverageScore: 80, RankSum: 2,
					PerJudgeRanks: []types.JudgeRank{{JudgeID: "j1", Rank: 1}, {JudgeID: "j2", Rank: 1}}},
			}

			rec := doJSON(mux, http.MethodGet, "/events/ev/ranking.csv", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
			So(len(lines), ShouldEqual, 3)
			So(lines[0], ShouldEqual, "final_rank,participant_id,name,total_score,average_score,rank_sum,rank:j1,rank:j2")
			So(lines[1], ShouldEqual, "1,u1,Unscored,0,0,0,,")
			So(lines[2], ShouldEqual, "2,s1,Alice,160,80,2,1,1")
			for _, line := range lines {
				So(len(strings.Split(line, ",")), ShouldEqual, len(strings.Split(lines[0], ",")))
			}
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given a registered server", t, func() {
		deps := newMockDependencies()
		mux := newTestServer(deps)

		Convey("GET /stats returns the provider's snapshot", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "queueLength")
		})

		Convey("GET /healthz serves the metrics registry", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Unknown routes return 404", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev/unknown", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
