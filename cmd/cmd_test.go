package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/filtering"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

type fakeAPI struct {
	jobs    matchapi.Jobs
	matches int
}

func (f *fakeAPI) TriggerFetch(context.Context) (*matchapi.FetchResult, error) {
	return &matchapi.FetchResult{Counts: map[string]int{"remoteok": len(f.jobs)}}, nil
}

func (f *fakeAPI) LoadMatches(context.Context, int) (*matchapi.MatchResult, error) {
	f.matches++
	return &matchapi.MatchResult{Jobs: f.jobs, Total: len(f.jobs)}, nil
}

func (f *fakeAPI) ApplyToJob(_ context.Context, jobID int64, _ bool) (*matchapi.ApplyResult, error) {
	return &matchapi.ApplyResult{JobID: jobID, ResumePath: "/tmp/r.pdf"}, nil
}

func score(v float64) *float64 { return &v }

func testJobs() matchapi.Jobs {
	return matchapi.Jobs{
		{ID: 1, Source: "remoteok", Title: "Go Engineer", Company: "Acme", MatchScore: score(0.873)},
		{ID: 2, Source: "greenhouse", Title: "SRE", Company: "Globex", Location: "Berlin"},
	}
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("JOBAPPLY_API_BASE", "http://matcher:8000")
	t.Setenv("DASHBOARD_REFRESH_SECONDS", "5")

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.API.BaseURL != "http://matcher:8000" {
		t.Fatalf("unexpected base url %q", config.API.BaseURL)
	}
	if config.Dashboard.RefreshSeconds != 5 {
		t.Fatalf("unexpected refresh seconds %v", config.Dashboard.RefreshSeconds)
	}
	if config.Dashboard.Limit != matchapi.DefaultLimit {
		t.Fatalf("unexpected limit %d", config.Dashboard.Limit)
	}
	if config.API.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", config.API.Timeout)
	}
}

func TestNewDashboard(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("secret\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "no token", config: Config{}},
		{name: "token file", config: Config{API: APIConfig{TokenFile: tokenFile}}},
		{name: "missing token file", config: Config{API: APIConfig{TokenFile: filepath.Join(dir, "missing")}}, wantErr: true},
		{name: "invalid score is ignored", config: Config{Filter: FilterConfig{Source: "remote", MinScore: "high"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := newDashboard(&tt.config, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || d == nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	config := &Config{API: APIConfig{Token: "secret"}}
	if got := redacted(config); got.API.Token == "secret" {
		t.Fatalf("token was not redacted")
	}
	if config.API.Token != "secret" {
		t.Fatalf("original config was modified")
	}
}

func TestRenderTable(t *testing.T) {
	jobs := testJobs()
	snap := dashboard.Snapshot{
		Jobs: jobs,
		Cards: []dashboard.CardView{
			{Job: jobs[0], State: card.State{Status: card.StatusSucceeded, Result: &matchapi.ApplyResult{ResumePath: "/tmp/r.pdf"}}},
			{Job: jobs[1], State: card.State{Status: card.StatusFailed, Err: "missing resume"}},
		},
		Criteria: filtering.Criteria{SourceSubstring: "o"},
		Events: []dashboard.Event{
			{At: time.Date(2026, 10, 18, 9, 30, 15, 0, time.UTC), Text: "Apply failed: missing resume"},
		},
		Message: &dashboard.Message{Kind: dashboard.MessageError, Text: "missing resume"},
		Loaded:  true,
	}

	out := renderTable(snap)
	for _, want := range []string{
		"2 shown of 2, filter: source=o min_score=0",
		"Go Engineer",
		"0.87",
		"Remote/Global",
		"resume: /tmp/r.pdf",
		"error: missing resume",
		"Apply failed: missing resume",
		"[09:30:15] Apply failed: missing resume",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q:\n%s", want, out)
		}
	}

	if out := renderTable(dashboard.Snapshot{}); !strings.Contains(out, "not loaded") {
		t.Fatalf("unexpected output for an empty snapshot:\n%s", out)
	}
	if out := renderTable(dashboard.Snapshot{Loaded: true}); !strings.Contains(out, "No jobs match") {
		t.Fatalf("unexpected output for an empty list:\n%s", out)
	}
}

func TestHandleAction(t *testing.T) {
	api := &fakeAPI{jobs: testJobs()}
	d := dashboard.New(api, zap.NewNop())

	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := context.Background()

	if err := handleAction(ctx, PromptMatch, d, logger); err != nil {
		t.Fatalf("match: %v", err)
	}
	if err := handleAction(ctx, PromptFetch, d, logger); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if api.matches != 2 {
		t.Fatalf("expected 2 match loads, got %d", api.matches)
	}

	if err := handleAction(ctx, PromptJobsToFile, d, logger); err != nil {
		t.Fatalf("dump: %v", err)
	}

	dumped := logs.FilterMessage("dumping jobs to file").All()
	if len(dumped) != 1 {
		t.Fatalf("expected a dump log entry, got %d", len(dumped))
	}
	filename := dumped[0].ContextMap()["filename"].(string)
	t.Cleanup(func() { os.Remove(filename) })
	if _, err := os.Stat(filename); err != nil {
		t.Fatalf("dump file: %v", err)
	}

	if err := handleAction(ctx, PromptReportBySource, d, logger); err != nil {
		t.Fatalf("report: %v", err)
	}
	if logs.FilterField(zap.Int("jobs count", 2)).Len() != 1 {
		t.Fatalf("expected a report log entry")
	}

	if err := handleAction(ctx, PromptExit, d, logger); !errors.Is(err, errExit) {
		t.Fatalf("expected errExit, got %v", err)
	}
	if err := handleAction(ctx, "unknown", d, logger); err == nil {
		t.Fatalf("expected error for an unknown action")
	}
}

func TestJobLabel(t *testing.T) {
	view := dashboard.CardView{Job: testJobs()[0], State: card.State{Status: card.StatusIdle}}
	want := "1 Go Engineer / Acme / remoteok / 0.87 [Idle]"
	if got := jobLabel(view); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
