package filtering

import (
	"math"
	"strconv"

	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

const scoreNotANumber = "minimum score is not a number"

type minScoreFilter struct {
	min      float64
	disabled bool
	reason   string
}

// NewMinScore creates a filter that drops jobs scored below min. Unscored jobs count as 0.
func NewMinScore(min float64) Filter {
	f := &minScoreFilter{min: min}
	if math.IsNaN(min) {
		f.Disable(scoreNotANumber)
	}
	return f
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Apply(jobs matchapi.Jobs) (matchapi.Jobs, Step) {
	return keep(jobs, func(job matchapi.Job) bool {
		return job.Score() >= f.min
	})
}

func (f *minScoreFilter) Status() Status {
	details := map[string]string{}
	if !f.disabled {
		details["min_score"] = strconv.FormatFloat(f.min, 'f', -1, 64)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
