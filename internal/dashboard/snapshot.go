package dashboard

import (
	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/filtering"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

// CardView is a visible job together with its apply state.
type CardView struct {
	Job   matchapi.Job
	State card.State
}

// Snapshot is a copy of the dashboard state for renderers.
type Snapshot struct {
	// Jobs is the canonical, unfiltered list.
	Jobs     matchapi.Jobs
	Cards    []CardView
	Criteria filtering.Criteria
	// Filters describes which rules of Criteria are active.
	Filters []filtering.Status
	// Events are ordered newest first.
	Events  []Event
	Message *Message
	Loaded  bool
	Loading bool
}

// Visible returns the jobs of the visible cards.
func (s Snapshot) Visible() matchapi.Jobs {
	jobs := make(matchapi.Jobs, 0, len(s.Cards))
	for _, c := range s.Cards {
		jobs = append(jobs, c.Job)
	}
	return jobs
}

// FindCard returns the view of a visible job.
func (s Snapshot) FindCard(jobID int64) (CardView, bool) {
	for _, c := range s.Cards {
		if c.Job.ID == jobID {
			return c, true
		}
	}
	return CardView{}, false
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	jobs := make(matchapi.Jobs, len(d.jobs))
	copy(jobs, d.jobs)

	cards := make([]CardView, 0, len(d.visible))
	for _, job := range d.visible {
		view := CardView{Job: job, State: card.State{Status: card.StatusIdle}}
		if c, ok := d.cards[job.ID]; ok {
			view.State = c.State()
		}
		cards = append(cards, view)
	}

	var message *Message
	if d.message != nil {
		m := *d.message
		message = &m
	}

	return Snapshot{
		Jobs:     jobs,
		Cards:    cards,
		Criteria: d.criteria,
		Filters:  filtering.Describe(filtering.Steps(d.criteria)),
		Events:   d.events.newestFirst(),
		Message:  message,
		Loaded:   d.loaded,
		Loading:  d.matching > 0,
	}
}
