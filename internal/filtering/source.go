package filtering

import (
	"strings"

	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

const noSourceFilter = "no source filter"

type sourceFilter struct {
	substring string
	disabled  bool
	reason    string
}

// NewSource creates a case-insensitive filter on the job source. An empty substring keeps every job.
func NewSource(substring string) Filter {
	f := &sourceFilter{substring: strings.ToLower(strings.TrimSpace(substring))}
	if f.substring == "" {
		f.Disable(noSourceFilter)
	}
	return f
}

func (f *sourceFilter) Name() string { return "source" }

func (f *sourceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *sourceFilter) IsEnabled() bool { return !f.disabled }

func (f *sourceFilter) Apply(jobs matchapi.Jobs) (matchapi.Jobs, Step) {
	return keep(jobs, func(job matchapi.Job) bool {
		return strings.Contains(strings.ToLower(job.Source), f.substring)
	})
}

func (f *sourceFilter) Status() Status {
	details := map[string]string{}
	if f.substring != "" {
		details["source"] = f.substring
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
