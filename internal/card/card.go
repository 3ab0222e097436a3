package card

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/logger"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

// ErrInFlight is returned by Apply when a request for the same card is still pending.
var ErrInFlight = errors.New("apply is already in flight")

// Applier sends an apply request for a job.
type Applier interface {
	ApplyToJob(ctx context.Context, jobID int64, autoSubmit bool) (*matchapi.ApplyResult, error)
}

// State is a snapshot of a card's apply state.
type State struct {
	Status Status
	Result *matchapi.ApplyResult
	Err    string
}

// ResumePath returns the produced resume path of a succeeded attempt.
func (s State) ResumePath() string {
	if s.Status != StatusSucceeded || s.Result == nil {
		return ""
	}
	return s.Result.ResumePath
}

// CoverLetterPath returns the produced cover letter path of a succeeded attempt.
func (s State) CoverLetterPath() string {
	if s.Status != StatusSucceeded || s.Result == nil {
		return ""
	}
	return s.Result.CoverLetterPath
}

// Card owns the apply state of one visible job.
type Card struct {
	applier    Applier
	logger     *zap.Logger
	autoSubmit bool
	onChange   func(jobID int64, state State)

	mu    sync.Mutex
	job   matchapi.Job
	state State
}

type Option func(*Card)

// WithAutoSubmit asks the service to submit the application right away.
func WithAutoSubmit(v bool) Option {
	return func(c *Card) { c.autoSubmit = v }
}

// WithLogger sets the card logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Card) { c.logger = l }
}

// WithOnChange registers a hook called after every state transition.
// It runs on the goroutine that caused the transition.
func WithOnChange(fn func(jobID int64, state State)) Option {
	return func(c *Card) { c.onChange = fn }
}

func New(job matchapi.Job, applier Applier, opts ...Option) *Card {
	c := &Card{
		applier: applier,
		job:     job,
		state:   State{Status: StatusIdle},
	}

	for _, o := range opts {
		o(c)
	}

	c.logger = logger.WithJob(c.logger, job.ID, job.Source, job.Title)

	return c
}

func (c *Card) Job() matchapi.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

// SetJob refreshes the job data shown by the card without touching its state.
func (c *Card) SetJob(job matchapi.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.job = job
}

func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply sends an apply request for the card's job. The card switches to
// InFlight before the request and to Succeeded or Failed once it completes.
// Calling Apply while a request is pending returns ErrInFlight and sends nothing.
func (c *Card) Apply(ctx context.Context) (*matchapi.ApplyResult, error) {
	return c.ApplyNotify(ctx, nil)
}

// ApplyNotify works like Apply and calls started with the job once the card
// has switched to InFlight, before the request is sent. started is not called
// when the attempt is rejected with ErrInFlight.
func (c *Card) ApplyNotify(ctx context.Context, started func(job matchapi.Job)) (*matchapi.ApplyResult, error) {
	c.mu.Lock()
	if c.state.Status.IsActive() {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	job := c.job
	jobID := job.ID
	c.state = State{Status: StatusInFlight}
	c.mu.Unlock()

	c.notify(jobID, State{Status: StatusInFlight})
	if started != nil {
		started(job)
	}
	c.logger.Info("applying to job", zap.Bool("auto_submit", c.autoSubmit))

	result, err := c.applier.ApplyToJob(ctx, jobID, c.autoSubmit)

	var next State
	if err != nil {
		next = State{Status: StatusFailed, Err: matchapi.UserMessage(err)}
		c.logger.Warn("apply failed", zap.Error(err))
	} else {
		if result == nil {
			result = &matchapi.ApplyResult{JobID: jobID}
		}
		next = State{Status: StatusSucceeded, Result: result}
		c.logger.Info("application prepared",
			zap.String("status", result.Status),
			zap.String("resume_path", result.ResumePath),
			zap.Bool("auto_submitted", result.AutoSubmitted),
		)
	}

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	c.notify(jobID, next)

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Card) notify(jobID int64, state State) {
	if c.onChange != nil {
		c.onChange(jobID, state)
	}
}
