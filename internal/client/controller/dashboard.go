package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

// DashboardState is a snapshot of the job list view.
type DashboardState struct {
	Jobs []models.Job
	Meta models.PaginationMeta

	Page int
	// Draft is the search text being typed; Query is the committed search.
	Draft  string
	Query  string
	Status models.JobStatus

	Loading bool
	Error   string

	// Candidate only.
	Summary models.DashboardStats
	Applied map[int64]bool

	// Recruiter only.
	Stats  models.RecruiterStats
	Counts map[int64]int
}

// Dashboard drives the /jobs view. Recruiters see their own jobs with
// application counts and aggregate stats; candidates see every job with their
// summary and the set of jobs they already applied to.
type Dashboard struct {
	deps Deps

	mu         sync.Mutex
	state      DashboardState
	generation uint64
}

func NewDashboard(deps Deps) *Dashboard {
	return &Dashboard{
		deps: deps,
		state: DashboardState{
			Page:    1,
			Applied: map[int64]bool{},
			Counts:  map[int64]int{},
		},
	}
}

// State returns a copy of the current view state.
func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.state
	st.Jobs = append([]models.Job(nil), d.state.Jobs...)
	st.Applied = copySet(d.state.Applied)
	st.Counts = make(map[int64]int, len(d.state.Counts))
	for k, v := range d.state.Counts {
		st.Counts[k] = v
	}
	return st
}

// Mount loads the first page and the role's side data.
func (d *Dashboard) Mount(ctx context.Context) {
	role, ok := d.deps.role()
	if !ok {
		return
	}
	d.fetch(ctx)
	switch role {
	case models.RoleRecruiter:
		d.RefreshStats(ctx)
	case models.RoleCandidate:
		d.refreshSummary(ctx)
		d.refreshApplied(ctx)
	}
}

// SetSearch edits the search draft without fetching.
func (d *Dashboard) SetSearch(text string) {
	d.mu.Lock()
	d.state.Draft = text
	d.mu.Unlock()
}

// Search commits the draft, resets to page 1 and refetches.
func (d *Dashboard) Search(ctx context.Context) {
	d.mu.Lock()
	d.state.Query = strings.TrimSpace(d.state.Draft)
	d.state.Page = 1
	d.mu.Unlock()
	d.fetch(ctx)
}

// SetStatus changes the status filter, resets to page 1 and refetches. An
// empty status lists every job.
func (d *Dashboard) SetStatus(ctx context.Context, status models.JobStatus) {
	d.mu.Lock()
	d.state.Status = status
	d.state.Page = 1
	d.mu.Unlock()
	d.fetch(ctx)
}

// SetPage moves to page n and refetches.
func (d *Dashboard) SetPage(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	d.mu.Lock()
	d.state.Page = n
	d.mu.Unlock()
	d.fetch(ctx)
}

func (d *Dashboard) fetch(ctx context.Context) {
	role, ok := d.deps.role()
	if !ok {
		return
	}
	log := d.deps.logger()

	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.state.Loading = true
	d.state.Error = ""
	params := models.ListParams{
		Page:   d.state.Page,
		Limit:  DashboardPageSize,
		Query:  d.state.Query,
		Status: d.state.Status,
	}
	d.mu.Unlock()

	var (
		page   models.Page[models.Job]
		counts map[int64]int
		err    error
	)
	switch role {
	case models.RoleRecruiter:
		page, err = d.deps.Gateway.ListMyJobs(ctx, params)
		if err == nil {
			ids := make([]int64, 0, len(page.Data))
			for _, j := range page.Data {
				ids = append(ids, j.ID)
			}
			counts = ApplicationCounts(ctx, d.deps.Gateway, ids, log)
		}
	case models.RoleCandidate:
		page, err = d.deps.Gateway.ListJobs(ctx, params)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		log.Debug("discarding stale job list", zap.Uint64("generation", gen))
		return
	}
	d.state.Loading = false
	if err != nil {
		log.Warn("list jobs", zap.Error(err))
		d.state.Error = api.MessageOr(err, msgLoadJobsFailed)
		d.state.Jobs = nil
		d.state.Meta = models.PaginationMeta{}
		return
	}
	d.state.Jobs = page.Data
	d.state.Meta = page.Meta
	if counts != nil {
		d.state.Counts = counts
	}
}

// RefreshStats recomputes the recruiter aggregates. On failure the previous
// stats are kept.
func (d *Dashboard) RefreshStats(ctx context.Context) {
	stats, err := RecruiterStats(ctx, d.deps.Gateway, d.deps.logger())
	if err != nil {
		d.deps.logger().Warn("recruiter stats", zap.Error(err))
		return
	}
	d.mu.Lock()
	d.state.Stats = stats
	d.mu.Unlock()
}

func (d *Dashboard) refreshSummary(ctx context.Context) {
	summary, err := d.deps.Gateway.DashboardSummary(ctx)
	if err != nil {
		d.deps.logger().Debug("dashboard summary", zap.Error(err))
		summary = models.DashboardStats{}
	}
	d.mu.Lock()
	d.state.Summary = summary
	d.mu.Unlock()
}

func (d *Dashboard) refreshApplied(ctx context.Context) {
	set, err := AppliedJobs(ctx, d.deps.Gateway)
	if err != nil {
		d.deps.logger().Debug("applied jobs", zap.Error(err))
		return
	}
	d.mu.Lock()
	for id := range set {
		d.state.Applied[id] = true
	}
	d.mu.Unlock()
}

// CanApply reports whether the apply action is offered for job.
func (d *Dashboard) CanApply(job models.Job) bool {
	role, ok := d.deps.role()
	if !ok || role != models.RoleCandidate {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return job.Status == models.JobOpen && !d.state.Applied[job.ID]
}

// Apply submits an application to jobID. On success the job joins the
// applied set and the summary is refreshed.
func (d *Dashboard) Apply(ctx context.Context, jobID int64) error {
	if role, ok := d.deps.role(); !ok || role != models.RoleCandidate {
		return ErrWrongRole
	}
	if _, err := d.deps.Gateway.Apply(ctx, jobID); err != nil {
		d.deps.toast(notify.Error, api.MessageOr(err, msgApplyFailed))
		return err
	}
	d.mu.Lock()
	d.state.Applied[jobID] = true
	d.mu.Unlock()
	d.deps.toast(notify.Success, msgAppliedDashboard)
	d.refreshSummary(ctx)
	return nil
}
