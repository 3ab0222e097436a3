package web

import (
	"strconv"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/filtering"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

// filterRequest accepts the inputs as strings, numbers are tolerated for min_score.
type filterRequest struct {
	Source   any `json:"source"`
	MinScore any `json:"min_score"`
}

type snapshotResponse struct {
	Jobs     []jobResponse      `json:"jobs"`
	Total    int                `json:"total"`
	Criteria criteriaResponse   `json:"criteria"`
	Filters  []filterResponse   `json:"filters"`
	Events   []dashboard.Event  `json:"events"`
	Message  *dashboard.Message `json:"message"`
	Loaded   bool               `json:"loaded"`
	Loading  bool               `json:"loading"`
	Error    string             `json:"error,omitempty"`
}

type jobResponse struct {
	matchapi.Job
	Card cardResponse `json:"card"`
}

type cardResponse struct {
	Status          card.Status `json:"status"`
	Error           string      `json:"error,omitempty"`
	ResumePath      string      `json:"resume_path,omitempty"`
	CoverLetterPath string      `json:"cover_letter_path,omitempty"`
}

type filterResponse struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type criteriaResponse struct {
	Source string `json:"source"`
	// MinScore is null when the score rule is disabled.
	MinScore *float64 `json:"min_score"`
}

func newSnapshotResponse(s dashboard.Snapshot, err error) snapshotResponse {
	jobs := make([]jobResponse, 0, len(s.Cards))
	for _, view := range s.Cards {
		jobs = append(jobs, jobResponse{
			Job: view.Job,
			Card: cardResponse{
				Status:          view.State.Status,
				Error:           view.State.Err,
				ResumePath:      view.State.ResumePath(),
				CoverLetterPath: view.State.CoverLetterPath(),
			},
		})
	}

	filters := make([]filterResponse, 0, len(s.Filters))
	for _, f := range s.Filters {
		filters = append(filters, filterResponse(f))
	}

	events := s.Events
	if events == nil {
		events = []dashboard.Event{}
	}

	resp := snapshotResponse{
		Jobs:     jobs,
		Total:    len(s.Jobs),
		Criteria: newCriteriaResponse(s.Criteria),
		Filters:  filters,
		Events:   events,
		Message:  s.Message,
		Loaded:   s.Loaded,
		Loading:  s.Loading,
	}

	if err != nil {
		resp.Error = matchapi.UserMessage(err)
	}

	return resp
}

func newCriteriaResponse(c filtering.Criteria) criteriaResponse {
	resp := criteriaResponse{Source: c.SourceSubstring}
	if c.HasMinScore() {
		score := c.MinScore
		resp.MinScore = &score
	}
	return resp
}

func inputString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		// anything else fails to parse as a score, which is reported like bad text input
		return "invalid"
	}
}
