package matchapi

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	remoteLocation = "Remote/Global"
	noScore        = "—"
)

type Jobs []Job

type Job struct {
	ID         int64    `json:"id"`
	Source     string   `json:"source"`
	ExternalID string   `json:"external_id,omitempty"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Salary     string   `json:"salary,omitempty"`
	PostedAt   string   `json:"posted_at,omitempty"`
	URL        string   `json:"url,omitempty"`
	ApplyURL   string   `json:"apply_url,omitempty"`
	MatchScore *float64 `json:"match_score,omitempty"`
	Tags       []string `json:"tags"`
}

type MatchResult struct {
	Jobs  Jobs `json:"jobs"`
	Total int  `json:"total"`
}

type Item interface{}

// Score returns the match score, treating an unscored job as 0.
func (j Job) Score() float64 {
	if j.MatchScore == nil {
		return 0
	}
	return *j.MatchScore
}

// Scored reports whether the service ranked the job.
func (j Job) Scored() bool {
	return j.MatchScore != nil
}

// ScoreString renders the score with two decimals, unscored jobs as 0.00.
func (j Job) ScoreString() string {
	return fmt.Sprintf("%.2f", j.Score())
}

// ScorePercent renders the score as a whole percentage. A missing or zero
// score renders as a dash.
func (j Job) ScorePercent() string {
	if j.Score() == 0 {
		return noScore
	}
	return fmt.Sprintf("%.0f%%", j.Score()*100)
}

// Link returns the external link of the posting, preferring the apply URL.
func (j Job) Link() string {
	if j.ApplyURL != "" {
		return j.ApplyURL
	}
	return j.URL
}

func (j Job) DisplayLocation() string {
	if strings.TrimSpace(j.Location) == "" {
		return remoteLocation
	}
	return j.Location
}

func (j Job) TagList() string {
	return strings.Join(j.Tags, ", ")
}

func (v Jobs) Len() int {
	return len(v)
}

func (v Jobs) FindByID(id int64) *Job {
	for i := range v {
		if v[i].ID == id {
			return &v[i]
		}
	}
	return nil
}

func (v Jobs) IDs() []int64 {
	ids := make([]int64, 0, len(v))
	for _, job := range v {
		ids = append(ids, job.ID)
	}
	return ids
}

// ReportBySource groups the jobs by their source provider.
func (v Jobs) ReportBySource() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range v {
		key := job.Source
		if key == "" {
			key = "unknown"
		}

		entry := map[string]string{
			"title":    job.Title,
			"company":  job.Company,
			"url":      job.Link(),
			"location": job.DisplayLocation(),
		}
		if job.Scored() {
			entry["match_score"] = fmt.Sprintf("%.2f", job.Score())
		}
		if len(job.Tags) > 0 {
			entry["tags"] = job.TagList()
		}
		if job.Summary != "" {
			entry["summary"] = job.Summary
		}

		report[key] = append(report[key], entry)
	}
	return report
}

func (v Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func decodeMatches(data []byte) (*MatchResult, error) {
	var response struct {
		Jobs  []Item `json:"jobs"`
		Total *int   `json:"total"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}

	jobs, err := decodeJobs(response.Jobs)
	if err != nil {
		return nil, err
	}

	total := len(jobs)
	if response.Total != nil {
		total = *response.Total
	}

	return &MatchResult{Jobs: jobs, Total: total}, nil
}

// decodeJobs converts loosely typed items into jobs. Numeric strings are
// accepted for numbers and nulls keep the zero value.
func decodeJobs(items []Item) (Jobs, error) {
	jobs := make(Jobs, 0, len(items))
	if len(items) == 0 {
		return jobs, nil
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &jobs,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	return jobs, nil
}
