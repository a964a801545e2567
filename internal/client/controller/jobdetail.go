package controller

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

// ApplicationFilter narrows a list of applications on the client.
type ApplicationFilter struct {
	Status models.ApplicationStatus
	Term   string
}

// Apply returns the applications matching f. The term, trimmed and lower
// cased, matches a candidate name substring or the exact candidate ID.
func (f ApplicationFilter) Apply(apps []models.Application) []models.Application {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]models.Application, 0, len(apps))
	for _, a := range apps {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.CandidateName), term) &&
			strconv.FormatInt(a.CandidateID, 10) != term {
			continue
		}
		out = append(out, a)
	}
	return out
}

// JobDetailState is a snapshot of the job detail view.
type JobDetailState struct {
	Job     models.Job
	Loaded  bool
	Loading bool
	Error   string

	// Recruiter only.
	Applications []models.Application
	Filter       ApplicationFilter
	Visible      []models.Application

	// Candidate only.
	HasApplied bool
}

// JobDetail drives the /jobs/:id view.
type JobDetail struct {
	deps Deps

	mu         sync.Mutex
	state      JobDetailState
	generation uint64
}

func NewJobDetail(deps Deps) *JobDetail {
	return &JobDetail{deps: deps}
}

// State returns a copy of the current view state.
func (c *JobDetail) State() JobDetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Applications = append([]models.Application(nil), c.state.Applications...)
	st.Visible = c.state.Filter.Apply(c.state.Applications)
	return st
}

// Mount loads job id. Recruiters also get its first applications, candidates
// learn whether they already applied.
func (c *JobDetail) Mount(ctx context.Context, id int64) {
	role, ok := c.deps.role()
	if !ok {
		return
	}
	log := c.deps.logger()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = JobDetailState{Loading: true, Filter: c.state.Filter}
	c.mu.Unlock()

	job, err := c.deps.Gateway.GetJob(ctx, id)
	var (
		apps       []models.Application
		hasApplied bool
	)
	if err == nil {
		switch role {
		case models.RoleRecruiter:
			page, aerr := c.deps.Gateway.ListJobApplications(ctx, id, 1, DetailAppsLimit)
			if aerr != nil {
				log.Debug("job applications", zap.Int64("job_id", id), zap.Error(aerr))
			} else {
				apps = page.Data
			}
		case models.RoleCandidate:
			set, aerr := AppliedJobs(ctx, c.deps.Gateway)
			if aerr != nil {
				log.Debug("applied jobs", zap.Error(aerr))
			}
			hasApplied = set[id]
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		log.Debug("discarding stale job", zap.Int64("job_id", id))
		return
	}
	c.state.Loading = false
	if err != nil {
		log.Warn("get job", zap.Int64("job_id", id), zap.Error(err))
		c.state.Error = api.MessageOr(err, msgLoadJobFailed)
		return
	}
	c.state.Job = job
	c.state.Loaded = true
	c.state.Applications = apps
	c.state.HasApplied = hasApplied
}

// SetFilter changes the client-side application filter.
func (c *JobDetail) SetFilter(f ApplicationFilter) {
	c.mu.Lock()
	c.state.Filter = f
	c.mu.Unlock()
}

// CanApply reports whether the apply action is offered.
func (c *JobDetail) CanApply() bool {
	role, ok := c.deps.role()
	if !ok || role != models.RoleCandidate {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loaded && c.state.Job.Status == models.JobOpen && !c.state.HasApplied
}

// Apply submits an application to the loaded job.
func (c *JobDetail) Apply(ctx context.Context) error {
	if role, ok := c.deps.role(); !ok || role != models.RoleCandidate {
		return ErrWrongRole
	}
	c.mu.Lock()
	loaded, id := c.state.Loaded, c.state.Job.ID
	c.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}

	if _, err := c.deps.Gateway.Apply(ctx, id); err != nil {
		c.deps.toast(notify.Error, api.MessageOr(err, msgApplyFailed))
		return err
	}
	c.mu.Lock()
	c.state.HasApplied = true
	c.mu.Unlock()
	c.deps.toast(notify.Success, msgApplied)
	return nil
}
