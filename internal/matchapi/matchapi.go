package matchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "http://localhost:8000"
	userAgent = "spigell/jobapply-dashboard"
	timeout   = 10 * time.Second

	// DefaultLimit is the number of matches requested when no limit is given.
	DefaultLimit = 50

	fetchPath = "/jobs/fetch"
	matchPath = "/jobs/match"
	applyPath = "/jobs/apply"

	opFetch = "fetch jobs"
	opMatch = "load matches"
	opApply = "apply to job"
)

// Config describes how to reach the matching service.
type Config struct {
	// APIURL is the service base URL, e.g. http://localhost:8000.
	APIURL string
	// Prefix is prepended to every job path. The service is exposed both
	// under "/jobs" and "/api/jobs" depending on the deployment.
	Prefix    string
	Timeout   time.Duration
	UserAgent string
	Token     string
}

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Prefix     string
}

func New(logger *zap.Logger, cfg Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimSpace(cfg.APIURL)
	if base == "" {
		base = apiURL
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = userAgent
	}

	t := cfg.Timeout
	if t <= 0 {
		t = timeout
	}

	return &Client{
		token:  strings.TrimSpace(cfg.Token),
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: t,
		},
		UserAgent: ua,
		APIURL:    base,
		Prefix:    cfg.Prefix,
	}
}

// TriggerFetch asks the service to ingest new postings from its providers.
// The response counts are decoded leniently: an unexpected payload shape is not an error.
func (c *Client) TriggerFetch(ctx context.Context) (*FetchResult, error) {
	data, err := c.do(ctx, opFetch, http.MethodPost, c.endpoint(fetchPath), nil, nil)
	if err != nil {
		return nil, err
	}

	return decodeFetch(data, c.logger), nil
}

// LoadMatches returns the ranked jobs. A non-positive limit falls back to DefaultLimit.
func (c *Client) LoadMatches(ctx context.Context, limit int) (*MatchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	data, err := c.do(ctx, opMatch, http.MethodGet, c.endpoint(matchPath), q, nil)
	if err != nil {
		return nil, err
	}

	result, err := decodeMatches(data)
	if err != nil {
		return nil, &TransportError{Op: opMatch, Err: err}
	}

	c.logger.Debug("got matches from the service", zap.Int("jobs", len(result.Jobs)), zap.Int("total", result.Total))

	return result, nil
}

// ApplyToJob asks the service to prepare (and optionally submit) an application.
// Failed requests are never retried.
func (c *Client) ApplyToJob(ctx context.Context, jobID int64, autoSubmit bool) (*ApplyResult, error) {
	body := applyRequest{
		JobID:      jobID,
		AutoSubmit: autoSubmit,
	}

	data, err := c.do(ctx, opApply, http.MethodPost, c.endpoint(applyPath), nil, body)
	if err != nil {
		return nil, err
	}

	var result ApplyResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{Op: opApply, Err: fmt.Errorf("decode apply result: %w", err)}
	}

	if result.JobID == 0 {
		result.JobID = jobID
	}

	return &result, nil
}
