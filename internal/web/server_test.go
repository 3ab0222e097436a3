package web

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/filtering"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeController struct {
	mu      sync.Mutex
	snap    dashboard.Snapshot
	calls   []string
	filter  [2]string
	err     error
	applied chan int64
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) Fetch(context.Context) error { return f.record("fetch") }
func (f *fakeController) Match(context.Context) error { return f.record("match") }

func (f *fakeController) SetFilterInput(_ context.Context, source, minScore string) error {
	f.mu.Lock()
	f.filter = [2]string{source, minScore}
	f.mu.Unlock()
	return f.record("filter")
}

func (f *fakeController) Apply(_ context.Context, jobID int64) (*matchapi.ApplyResult, error) {
	err := f.record("apply")
	if f.applied != nil {
		f.applied <- jobID
	}
	return &matchapi.ApplyResult{JobID: jobID}, err
}

func (f *fakeController) Snapshot() dashboard.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func score(v float64) *float64 { return &v }

func testSnapshot() dashboard.Snapshot {
	jobs := matchapi.Jobs{
		{ID: 1, Source: "remoteok", Title: "Go Engineer", MatchScore: score(0.9)},
		{ID: 2, Source: "greenhouse", Title: "SRE"},
		{ID: 3, Source: "lever", Title: "Hidden"},
	}

	return dashboard.Snapshot{
		Jobs: jobs,
		Cards: []dashboard.CardView{
			{Job: jobs[0], State: card.State{Status: card.StatusSucceeded, Result: &matchapi.ApplyResult{JobID: 1, ResumePath: "/tmp/r.pdf"}}},
			{Job: jobs[1], State: card.State{Status: card.StatusInFlight}},
		},
		Criteria: filtering.Criteria{SourceSubstring: "e", MinScore: math.NaN()},
		Events:   []dashboard.Event{{ID: "e1", Level: dashboard.LevelInfo, Text: "Loaded 3 matches"}},
		Message:  &dashboard.Message{Kind: dashboard.MessageSuccess, Text: "Prepared application for Go Engineer. Resume: /tmp/r.pdf", JobID: 1},
		Loaded:   true,
	}
}

func newTestServer(t *testing.T, ctrl *fakeController, cfg Config) *Server {
	t.Helper()
	return New(context.Background(), ctrl, zaptest.NewLogger(t), cfg)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, &fakeController{}, Config{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestSnapshot(t *testing.T) {
	rec := do(t, newTestServer(t, &fakeController{snap: testSnapshot()}, Config{}), http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Jobs []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
			Card  struct {
				Status     string `json:"status"`
				ResumePath string `json:"resume_path"`
			} `json:"card"`
		} `json:"jobs"`
		Total    int `json:"total"`
		Criteria struct {
			Source   string   `json:"source"`
			MinScore *float64 `json:"min_score"`
		} `json:"criteria"`
		Events  []map[string]any `json:"events"`
		Message struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"message"`
		Loaded bool `json:"loaded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.Jobs) != 2 || resp.Total != 3 {
		t.Fatalf("expected 2 visible of 3 jobs, got %d of %d", len(resp.Jobs), resp.Total)
	}
	if resp.Jobs[0].Card.Status != "Succeeded" || resp.Jobs[0].Card.ResumePath != "/tmp/r.pdf" {
		t.Fatalf("unexpected card %+v", resp.Jobs[0])
	}
	if resp.Jobs[1].Card.Status != "InFlight" {
		t.Fatalf("unexpected card %+v", resp.Jobs[1])
	}
	if resp.Criteria.Source != "e" || resp.Criteria.MinScore != nil {
		t.Fatalf("unexpected criteria %+v", resp.Criteria)
	}
	if len(resp.Events) != 1 || resp.Message.Kind != "success" || !resp.Loaded {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestActions(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		err     error
		call    string
		filter  [2]string
		wantErr string
	}{
		{name: "fetch", path: "/api/dashboard/fetch", call: "fetch"},
		{name: "match", path: "/api/dashboard/match", call: "match"},
		{
			name:    "match failure is reported",
			path:    "/api/dashboard/match",
			call:    "match",
			err:     &matchapi.HTTPError{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"},
			wantErr: "502",
		},
		{
			name:   "filter with strings",
			path:   "/api/dashboard/filter",
			body:   `{"source":"remote","min_score":"0.5"}`,
			call:   "filter",
			filter: [2]string{"remote", "0.5"},
		},
		{
			name:   "filter with a number",
			path:   "/api/dashboard/filter",
			body:   `{"min_score":0.25}`,
			call:   "filter",
			filter: [2]string{"", "0.25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{snap: testSnapshot(), err: tt.err}
			rec := do(t, newTestServer(t, ctrl, Config{}), http.MethodPost, tt.path, tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
			if len(ctrl.calls) != 1 || ctrl.calls[0] != tt.call {
				t.Fatalf("unexpected calls %v", ctrl.calls)
			}
			if tt.call == "filter" && ctrl.filter != tt.filter {
				t.Fatalf("unexpected filter input %v", ctrl.filter)
			}

			got, _ := decode(t, rec)["error"].(string)
			if got != tt.wantErr {
				t.Fatalf("expected error %q, got %q", tt.wantErr, got)
			}
		})
	}
}

func TestFilterRejectsMalformedJSON(t *testing.T) {
	ctrl := &fakeController{snap: testSnapshot()}
	rec := do(t, newTestServer(t, ctrl, Config{}), http.MethodPost, "/api/dashboard/filter", `{"source":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(ctrl.calls) != 0 {
		t.Fatalf("unexpected calls %v", ctrl.calls)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		starts bool
	}{
		{name: "accepted", path: "/api/dashboard/jobs/1/apply", status: http.StatusAccepted, starts: true},
		{name: "in flight", path: "/api/dashboard/jobs/2/apply", status: http.StatusConflict},
		{name: "not visible", path: "/api/dashboard/jobs/3/apply", status: http.StatusNotFound},
		{name: "bad id", path: "/api/dashboard/jobs/abc/apply", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{snap: testSnapshot(), applied: make(chan int64, 1)}
			rec := do(t, newTestServer(t, ctrl, Config{}), http.MethodPost, tt.path, "")

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}

			if !tt.starts {
				select {
				case id := <-ctrl.applied:
					t.Fatalf("unexpected apply for job %d", id)
				case <-time.After(50 * time.Millisecond):
				}
				return
			}

			if got := decode(t, rec)["status"]; got != "InFlight" {
				t.Fatalf("unexpected status %v", got)
			}

			select {
			case id := <-ctrl.applied:
				if id != 1 {
					t.Fatalf("expected job 1, got %d", id)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("apply was not started")
			}
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		origin string
		want   string
	}{
		{name: "all origins", cfg: Config{}, origin: "http://localhost:3000", want: "*"},
		{name: "listed origin", cfg: Config{AllowOrigins: []string{"http://localhost:3000"}}, origin: "http://localhost:3000", want: "http://localhost:3000"},
		{name: "other origin", cfg: Config{AllowOrigins: []string{"http://localhost:3000"}}, origin: "http://evil.example", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeController{snap: testSnapshot()}, tt.cfg)

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("expected allow origin %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRunStopsWithContext(t *testing.T) {
	// Each cycle gets its own test logger: a log line from a goroutine that
	// outlives Run fails the subtest.
	for i := 0; i < 20; i++ {
		t.Run(fmt.Sprintf("cycle %d", i), func(t *testing.T) {
			s := New(context.Background(), &fakeController{}, zaptest.NewLogger(t), Config{Addr: "127.0.0.1:0"})

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- s.Run(ctx) }()

			cancel()

			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("server did not stop")
			}
		})
	}
}
