package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

// Confirm identifies an open confirmation prompt.
type Confirm int

const (
	ConfirmNone Confirm = iota
	ConfirmSave
	ConfirmDiscard
	ConfirmCancelApplication
)

// ManageJobState is a snapshot of the job management view.
type ManageJobState struct {
	Job          models.Job
	Loaded       bool
	Applications []models.Application
	Form         models.UpdateJobInput
	Editing      bool
	Selected     int64
	Confirm      Confirm

	Loading  bool
	Error    string
	Success  string
	Feedback string
}

// ManageJob drives the /jobs/:id/manage view: editing a job and closing it
// by hiring one of its candidates.
type ManageJob struct {
	deps Deps
	id   int64

	mu         sync.Mutex
	state      ManageJobState
	generation uint64
}

func NewManageJob(deps Deps) *ManageJob {
	return &ManageJob{deps: deps}
}

func formFrom(j models.Job) models.UpdateJobInput {
	return models.UpdateJobInput{
		Title:        j.Title,
		Description:  j.Description,
		Company:      j.Company,
		Location:     j.Location,
		Requirements: j.Requirements,
		Salary:       j.Salary,
		Status:       j.Status,
	}
}

// State returns a copy of the current view state.
func (m *ManageJob) State() ManageJobState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	st.Applications = append([]models.Application(nil), m.state.Applications...)
	return st
}

// Mount loads job id and its applications.
func (m *ManageJob) Mount(ctx context.Context, id int64) error {
	if role, ok := m.deps.role(); !ok || role != models.RoleRecruiter {
		return ErrWrongRole
	}
	m.mu.Lock()
	m.id = id
	m.state = ManageJobState{}
	m.mu.Unlock()
	m.load(ctx)
	return nil
}

func (m *ManageJob) load(ctx context.Context) {
	log := m.deps.logger()

	m.mu.Lock()
	m.generation++
	gen, id := m.generation, m.id
	m.state.Loading = true
	m.mu.Unlock()

	job, err := m.deps.Gateway.GetJob(ctx, id)
	var apps models.Page[models.Application]
	if err == nil {
		apps, err = m.deps.Gateway.ListJobApplications(ctx, id, 1, ManageAppsLimit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		log.Debug("discarding stale job data", zap.Int64("job_id", id))
		return
	}
	m.state.Loading = false
	if err != nil {
		log.Warn("load job", zap.Int64("job_id", id), zap.Error(err))
		m.state.Error = api.MessageOr(err, msgLoadManageFailed)
		return
	}
	m.state.Job = job
	m.state.Loaded = true
	m.state.Form = formFrom(job)
	m.state.Applications = apps.Data
	for _, a := range apps.Data {
		if a.Status == models.ApplicationHired {
			m.state.Selected = a.CandidateID
			break
		}
	}
}

// StartEdit enables editing of the form.
func (m *ManageJob) StartEdit() {
	m.mu.Lock()
	m.state.Editing = true
	m.state.Success = ""
	m.mu.Unlock()
}

// SetField sets a form field by name. Status values are validated.
func (m *ManageJob) SetField(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := &m.state.Form
	switch strings.ToLower(name) {
	case "title":
		f.Title = value
	case "description":
		f.Description = value
	case "company":
		f.Company = value
	case "location":
		f.Location = value
	case "requirements":
		f.Requirements = value
	case "salary":
		f.Salary = value
	case "status":
		st, err := models.ParseJobStatus(strings.ToUpper(value))
		if err != nil {
			return err
		}
		f.Status = st
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// Select picks the candidate to hire.
func (m *ManageJob) Select(candidateID int64) {
	m.mu.Lock()
	m.state.Selected = candidateID
	m.mu.Unlock()
}

func (m *ManageJob) setConfirm(c Confirm) {
	m.mu.Lock()
	m.state.Confirm = c
	m.mu.Unlock()
}

// RequestSave opens the save confirmation.
func (m *ManageJob) RequestSave() { m.setConfirm(ConfirmSave) }

// RequestCancelEdit opens the discard confirmation.
func (m *ManageJob) RequestCancelEdit() { m.setConfirm(ConfirmDiscard) }

// DismissConfirm closes any open confirmation without acting.
func (m *ManageJob) DismissConfirm() { m.setConfirm(ConfirmNone) }

// DismissFeedback closes the feedback dialog.
func (m *ManageJob) DismissFeedback() {
	m.mu.Lock()
	m.state.Feedback = ""
	m.mu.Unlock()
}

// ConfirmCancelEdit restores the form from the last fetched job.
func (m *ManageJob) ConfirmCancelEdit() {
	m.mu.Lock()
	m.state.Form = formFrom(m.state.Job)
	m.state.Editing = false
	m.state.Confirm = ConfirmNone
	m.mu.Unlock()
}

// ConfirmSave sends the form. Saving a CLOSED status clears the selected
// candidate.
func (m *ManageJob) ConfirmSave(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Confirm != ConfirmSave {
		m.mu.Unlock()
		return ErrNothingPending
	}
	m.state.Confirm = ConfirmNone
	m.state.Error = ""
	id, form := m.id, m.state.Form
	m.mu.Unlock()

	job, err := m.deps.Gateway.UpdateJob(ctx, id, form)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state.Error = api.MessageOr(err, msgUpdateFailed)
		return err
	}
	m.state.Job = job
	m.state.Form = formFrom(job)
	m.state.Editing = false
	m.state.Success = msgUpdated
	m.state.Feedback = msgChangesSaved
	if form.Status == models.JobClosed {
		m.state.Selected = 0
	}
	return nil
}

// Finalize closes the job hiring the selected candidate, then reloads.
func (m *ManageJob) Finalize(ctx context.Context) error {
	m.mu.Lock()
	id, selected := m.id, m.state.Selected
	var vErr error
	switch {
	case !m.state.Loaded:
		vErr = ErrNotLoaded
	case m.state.Job.Status != models.JobOpen:
		vErr = ErrJobNotOpen
		m.state.Error = msgJobNotOpen
	case selected == 0:
		vErr = ErrNoCandidate
		m.state.Error = msgSelectCandidate
	default:
		m.state.Error = ""
	}
	m.mu.Unlock()
	if vErr != nil {
		return vErr
	}

	if err := m.deps.Gateway.Finalize(ctx, id, selected); err != nil {
		m.mu.Lock()
		m.state.Error = api.MessageOr(err, msgFinalizeFailed)
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.state.Feedback = msgFinalized
	m.state.Success = msgFinalizedHired
	m.mu.Unlock()
	m.deps.toast(notify.Success, msgFinalized)
	m.load(ctx)
	return nil
}
