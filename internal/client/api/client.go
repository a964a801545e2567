// Package api is the typed HTTP gateway to the job board API. Every request
// carries the bearer credential currently held by the session, if any.
// Requests are never retried and responses never cached.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/jobboard/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource yields the bearer credential to attach to outgoing requests.
// An empty string means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Error is returned for every failed call. Status is zero when no response
// was received.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("server error %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// MessageOr returns the server-supplied message carried by err, or fallback
// when there is none.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client calls the job board API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

// NewClient returns a gateway for the API at baseURL. tokens may be nil.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		return &Error{
			Status:  resp.StatusCode,
			Message: payload.Error,
			Err:     fmt.Errorf("%s %s: %s", method, path, resp.Status),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}

func listQuery(p models.ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	return q
}

func jobPath(id int64, suffix string) string {
	return "/jobs/" + strconv.FormatInt(id, 10) + suffix
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, in models.RegisterInput) error {
	return c.do(ctx, http.MethodPost, "/register", nil, in, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, in models.LoginInput) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", nil, in, &out)
	return out, err
}

// ListJobs returns a page of all job postings.
func (c *Client) ListJobs(ctx context.Context, p models.ListParams) (models.Page[models.Job], error) {
	var out models.Page[models.Job]
	err := c.do(ctx, http.MethodGet, "/jobs", listQuery(p), nil, &out)
	return out, err
}

// ListMyJobs returns a page of the postings owned by the current recruiter.
func (c *Client) ListMyJobs(ctx context.Context, p models.ListParams) (models.Page[models.Job], error) {
	var out models.Page[models.Job]
	err := c.do(ctx, http.MethodGet, "/jobs/mine", listQuery(p), nil, &out)
	return out, err
}

func (c *Client) GetJob(ctx context.Context, id int64) (models.Job, error) {
	var out models.Job
	err := c.do(ctx, http.MethodGet, jobPath(id, ""), nil, nil, &out)
	return out, err
}

func (c *Client) CreateJob(ctx context.Context, in models.CreateJobInput) (models.Job, error) {
	var out models.Job
	err := c.do(ctx, http.MethodPost, "/jobs", nil, in, &out)
	return out, err
}

func (c *Client) UpdateJob(ctx context.Context, id int64, in models.UpdateJobInput) (models.Job, error) {
	var out models.Job
	err := c.do(ctx, http.MethodPatch, jobPath(id, ""), nil, in, &out)
	return out, err
}

// Apply submits the current candidate's application to a job. A duplicate
// application is rejected by the server with a 409 and an error message.
func (c *Client) Apply(ctx context.Context, jobID int64) (models.Application, error) {
	var out models.Application
	err := c.do(ctx, http.MethodPost, jobPath(jobID, "/apply"), nil, nil, &out)
	return out, err
}

// Finalize hires candidateID and closes the job.
func (c *Client) Finalize(ctx context.Context, jobID, candidateID int64) error {
	return c.do(ctx, http.MethodPost, jobPath(jobID, "/finalize"), nil, models.FinalizeInput{CandidateID: candidateID}, nil)
}

// ListJobApplications returns a page of the applications to a job.
func (c *Client) ListJobApplications(ctx context.Context, jobID int64, page, limit int) (models.Page[models.Application], error) {
	var out models.Page[models.Application]
	err := c.do(ctx, http.MethodGet, jobPath(jobID, "/applications"), listQuery(models.ListParams{Page: page, Limit: limit}), nil, &out)
	return out, err
}

// ListMyApplications returns a page of the current candidate's applications.
func (c *Client) ListMyApplications(ctx context.Context, page, limit int) (models.Page[models.Application], error) {
	var out models.Page[models.Application]
	err := c.do(ctx, http.MethodGet, "/applications", listQuery(models.ListParams{Page: page, Limit: limit}), nil, &out)
	return out, err
}

func (c *Client) CancelApplication(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, "/applications/"+strconv.FormatInt(id, 10)+"/cancel", nil, nil, nil)
}

// DashboardSummary returns the candidate's application counters.
func (c *Client) DashboardSummary(ctx context.Context) (models.DashboardStats, error) {
	var out models.DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, nil, &out)
	return out, err
}
