package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

// Filter represents a single filtering step applied to jobs.
// Apply must not modify its input and must keep the input order.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(jobs matchapi.Jobs) (matchapi.Jobs, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Steps returns the filter pipeline for the given criteria.
func Steps(c Criteria) []Filter {
	return []Filter{
		NewMinScore(c.MinScore),
		NewSource(c.SourceSubstring),
	}
}

// Apply returns the jobs that satisfy every rule of the criteria.
func Apply(jobs matchapi.Jobs, c Criteria) matchapi.Jobs {
	kept, _ := Run(nil, Steps(c), jobs)
	return kept
}

// Run executes the supplied filters sequentially, returning the kept jobs and per step accounting.
func Run(logger *zap.Logger, steps []Filter, jobs matchapi.Jobs) (matchapi.Jobs, []Step) {
	if jobs == nil {
		jobs = matchapi.Jobs{}
	}

	results := make([]Step, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			if logger != nil {
				logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info := step.Apply(jobs)
		info.Name = step.Name()

		if logger != nil {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		results = append(results, info)
		jobs = next
	}

	return jobs, results
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns a new slice with the jobs accepted by fn.
func keep(jobs matchapi.Jobs, fn func(matchapi.Job) bool) (matchapi.Jobs, Step) {
	kept := make(matchapi.Jobs, 0, len(jobs))
	for _, job := range jobs {
		if fn(job) {
			kept = append(kept, job)
		}
	}

	return kept, Step{Initial: len(jobs), Dropped: len(jobs) - len(kept), Left: len(kept)}
}
