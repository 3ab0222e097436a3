package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/filtering"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

// ErrUnknownJob is returned when an apply targets a job that is not visible.
var ErrUnknownJob = errors.New("job is not visible")

// API is the remote matching service.
type API interface {
	card.Applier
	TriggerFetch(ctx context.Context) (*matchapi.FetchResult, error)
	LoadMatches(ctx context.Context, limit int) (*matchapi.MatchResult, error)
}

// Dashboard owns the canonical job list, the active filter, the cards of the
// visible jobs, the status log and the latest apply message.
// It is safe for concurrent use; remote calls are made without holding the lock.
type Dashboard struct {
	api        API
	logger     *zap.Logger
	limit      int
	autoSubmit bool
	now        func() time.Time
	onChange   func()

	mu       sync.Mutex
	jobs     matchapi.Jobs
	visible  matchapi.Jobs
	criteria filtering.Criteria
	cards    map[int64]*card.Card
	events   eventLog
	message  *Message
	loaded   bool
	matching int
}

type Option func(*Dashboard)

// WithLimit sets the number of matches requested per Match.
func WithLimit(limit int) Option {
	return func(d *Dashboard) { d.limit = limit }
}

func WithAutoSubmit(v bool) Option {
	return func(d *Dashboard) { d.autoSubmit = v }
}

// WithCriteria sets the initial filter criteria.
func WithCriteria(c filtering.Criteria) Option {
	return func(d *Dashboard) { d.criteria = c }
}

// WithOnChange registers a hook called after every state change.
// The hook must not block; it may call Snapshot.
func WithOnChange(fn func()) Option {
	return func(d *Dashboard) { d.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

func New(api API, logger *zap.Logger, opts ...Option) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dashboard{
		api:     api,
		logger:  logger,
		limit:   matchapi.DefaultLimit,
		now:     time.Now,
		jobs:    matchapi.Jobs{},
		visible: matchapi.Jobs{},
		cards:   make(map[int64]*card.Card),
	}

	for _, o := range opts {
		o(d)
	}

	if d.limit <= 0 {
		d.limit = matchapi.DefaultLimit
	}

	return d
}

// SetOnChange replaces the change hook. Presentations that are created after
// the dashboard use it to subscribe.
func (d *Dashboard) SetOnChange(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// Fetch asks the service to ingest new postings and then always reloads the matches.
func (d *Dashboard) Fetch(ctx context.Context) error {
	d.record(LevelInfo, "Fetching jobs from providers...")

	result, fetchErr := d.api.TriggerFetch(ctx)
	if fetchErr != nil {
		d.logger.Warn("fetching jobs failed", zap.Error(fetchErr))
		d.record(LevelError, fmt.Sprintf("Fetch failed: %s", fetchErr))
	} else {
		d.logger.Info("fetched jobs", zap.Any("counts", result.Counts))
		d.record(LevelInfo, fmt.Sprintf("Fetched jobs: %s", result.Summary()))
	}

	matchErr := d.Match(ctx)

	return errors.Join(fetchErr, matchErr)
}

// Match reloads the ranked jobs. A successful result replaces the canonical
// list entirely; a failure keeps the previous one.
// Overlapping calls are not ordered: the last one to complete wins.
func (d *Dashboard) Match(ctx context.Context) error {
	d.mu.Lock()
	d.matching++
	d.mu.Unlock()
	d.changed()

	result, err := d.api.LoadMatches(ctx, d.limit)

	d.mu.Lock()
	d.matching--
	if err != nil {
		d.mu.Unlock()
		d.logger.Warn("loading matches failed", zap.Error(err))
		d.record(LevelError, fmt.Sprintf("Match failed: %s", err))
		return err
	}

	d.jobs = result.Jobs
	if d.jobs == nil {
		d.jobs = matchapi.Jobs{}
	}
	d.loaded = true
	d.refilter()
	total, shown := len(d.jobs), len(d.visible)
	d.mu.Unlock()

	d.logger.Debug("loaded matches", zap.Int("jobs", total), zap.Int("visible", shown))

	text := fmt.Sprintf("Loaded %d matches", total)
	if shown != total {
		text = fmt.Sprintf("%s (%d shown)", text, shown)
	}
	d.record(LevelInfo, text)

	return nil
}

// ApplyFilter activates the criteria and reloads the matches, so the filter
// always runs over freshly loaded data.
func (d *Dashboard) ApplyFilter(ctx context.Context, c filtering.Criteria) error {
	d.mu.Lock()
	d.criteria = c
	d.mu.Unlock()

	d.record(LevelInfo, fmt.Sprintf("Filter applied: %s", c))

	return d.Match(ctx)
}

// SetFilterInput parses raw filter input and applies it. Invalid input is
// reported in the status log and the offending rule is ignored.
func (d *Dashboard) SetFilterInput(ctx context.Context, source, minScore string) error {
	c, err := filtering.ParseCriteria(source, minScore)
	if err != nil {
		d.logger.Warn("invalid filter input", zap.Error(err))
		d.record(LevelWarn, fmt.Sprintf("Ignoring filter input: %s", err))
	}

	return d.ApplyFilter(ctx, c)
}

// Apply prepares an application for a visible job through its card. The
// outcome is stored as the dashboard message; a success also reloads the matches.
func (d *Dashboard) Apply(ctx context.Context, jobID int64) (*matchapi.ApplyResult, error) {
	d.mu.Lock()
	c, ok := d.cards[jobID]
	d.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("job %d: %w", jobID, ErrUnknownJob)
	}

	var job matchapi.Job
	result, err := c.ApplyNotify(ctx, func(j matchapi.Job) {
		job = j
		d.setMessage(nil)
		d.record(LevelInfo, fmt.Sprintf("Preparing application for job %d...", jobID))
	})
	if errors.Is(err, card.ErrInFlight) {
		return nil, err
	}

	if err != nil {
		text := matchapi.UserMessage(err)
		d.setMessage(&Message{Kind: MessageError, Text: text, JobID: jobID})
		d.record(LevelError, fmt.Sprintf("Apply failed: %s", text))
		return nil, err
	}

	d.setMessage(&Message{
		Kind:  MessageSuccess,
		Text:  fmt.Sprintf("Prepared application for %s. Resume: %s", job.Title, result.ResumePath),
		JobID: jobID,
	})
	d.record(LevelInfo, fmt.Sprintf("Application ready. Resume: %s", result.ResumePath))

	// the outcome above stands even when the reload fails
	_ = d.Match(ctx)

	return result, nil
}

// Card returns the card of a visible job.
func (d *Dashboard) Card(jobID int64) (*card.Card, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cards[jobID]
	return c, ok
}

// refilter recomputes the visible list and reconciles the cards with it.
// Cards of jobs that stay visible keep their state. Must be called with d.mu held.
func (d *Dashboard) refilter() {
	visible, _ := filtering.Run(d.logger, filtering.Steps(d.criteria), d.jobs)

	cards := make(map[int64]*card.Card, len(visible))
	for _, job := range visible {
		if c, ok := d.cards[job.ID]; ok {
			c.SetJob(job)
			cards[job.ID] = c
			continue
		}

		cards[job.ID] = card.New(job, d.api,
			card.WithAutoSubmit(d.autoSubmit),
			card.WithLogger(d.logger),
			card.WithOnChange(func(int64, card.State) { d.changed() }),
		)
	}

	d.visible = visible
	d.cards = cards
}

func (d *Dashboard) setMessage(m *Message) {
	d.mu.Lock()
	if m != nil {
		m.At = d.now()
	}
	d.message = m
	d.mu.Unlock()

	d.changed()
}

func (d *Dashboard) record(level Level, text string) {
	d.mu.Lock()
	d.events.add(Event{
		ID:    uuid.NewString(),
		At:    d.now(),
		Level: level,
		Text:  text,
	})
	d.mu.Unlock()

	d.changed()
}

func (d *Dashboard) changed() {
	d.mu.Lock()
	fn := d.onChange
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
