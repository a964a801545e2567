package controller

import (
	"context"
	"testing"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyApplications_Pagination(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	cand := h.as(t, "Ana", models.RoleCandidate)
	for i := 0; i < 12; i++ {
		job := h.srv.AddJob(models.Job{Title: "Job"})
		h.srv.AddApplication(models.Application{JobID: job.ID, CandidateID: cand.ID})
	}

	c := NewMyApplications(h.deps)
	require.NoError(t, c.Mount(ctx))
	st := c.State()
	assert.Len(t, st.Applications, 10)
	assert.Equal(t, models.PaginationMeta{Total: 12, Page: 1, Limit: 10, TotalPages: 2}, st.Meta)
	assert.True(t, st.Meta.Consistent())

	c.SetPage(ctx, 2)
	st = c.State()
	assert.Equal(t, 2, st.Page)
	assert.Len(t, st.Applications, 2)
	assert.Equal(t, []string{"GET /applications?limit=10&page=1", "GET /applications?limit=10&page=2"}, h.srv.Requests())
}

func TestMyApplications_RecruiterRejected(t *testing.T) {
	h := newHarness(t)
	h.as(t, "Rui", models.RoleRecruiter)
	assert.ErrorIs(t, NewMyApplications(h.deps).Mount(context.Background()), ErrWrongRole)
}

func TestMyApplications_Cancel(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	cand := h.as(t, "Ana", models.RoleCandidate)
	j1 := h.srv.AddJob(models.Job{Title: "Go dev"})
	j2 := h.srv.AddJob(models.Job{Title: "SRE"})
	pending := h.srv.AddApplication(models.Application{JobID: j1.ID, CandidateID: cand.ID})
	rejected := h.srv.AddApplication(models.Application{JobID: j2.ID, CandidateID: cand.ID, Status: models.ApplicationRejected})

	c := NewMyApplications(h.deps)
	require.NoError(t, c.Mount(ctx))

	assert.True(t, CanCancel(pending))
	assert.False(t, CanCancel(rejected))
	assert.ErrorIs(t, c.RequestCancel(rejected.ID), ErrNotCancelable)
	assert.ErrorIs(t, c.RequestCancel(9999), ErrNotCancelable)
	assert.ErrorIs(t, c.ConfirmCancel(ctx), ErrNothingPending)

	require.NoError(t, c.RequestCancel(pending.ID))
	st := c.State()
	assert.Equal(t, ConfirmCancelApplication, st.Confirm)
	assert.Equal(t, pending.ID, st.Pending)

	h.srv.ResetRequests()
	require.NoError(t, c.ConfirmCancel(ctx))
	assert.Equal(t, []string{
		"PATCH /applications/" + itoa(pending.ID) + "/cancel",
		"GET /applications?limit=10&page=1",
	}, h.srv.Requests())

	st = c.State()
	assert.Equal(t, ConfirmNone, st.Confirm)
	assert.Equal(t, "Candidatura cancelada com sucesso", st.Feedback)
	assert.Equal(t, notify.Notification{Message: "Candidatura cancelada", Severity: notify.Success}, h.notes.last())
	for _, a := range st.Applications {
		if a.ID == pending.ID {
			assert.Equal(t, models.ApplicationCanceled, a.Status)
		}
	}
}

func TestMyApplications_DismissConfirm(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	cand := h.as(t, "Ana", models.RoleCandidate)
	job := h.srv.AddJob(models.Job{Title: "Go dev"})
	app := h.srv.AddApplication(models.Application{JobID: job.ID, CandidateID: cand.ID})

	c := NewMyApplications(h.deps)
	require.NoError(t, c.Mount(ctx))
	require.NoError(t, c.RequestCancel(app.ID))
	c.DismissConfirm()
	assert.ErrorIs(t, c.ConfirmCancel(ctx), ErrNothingPending)
	assert.Zero(t, h.srv.Count("PATCH"))
}

func TestMyApplications_CancelFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.Error{Status: 400, Message: "only pending applications can be canceled"}, "only pending applications can be canceled"},
		{"transport", &api.Error{}, "Falha ao cancelar candidatura"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := &recorder{}
			gw := &stubGateway{CancelApplicationFunc: func(context.Context, int64) error { return tt.err }}
			c := NewMyApplications(Deps{
				Gateway:  gw,
				Session:  &fakeSession{user: models.User{ID: 1, Role: models.RoleCandidate}},
				Notifier: notes,
			})
			c.state.Applications = []models.Application{{ID: 5, Status: models.ApplicationPending}}

			require.NoError(t, c.RequestCancel(5))
			assert.Equal(t, tt.err, c.ConfirmCancel(context.Background()))
			assert.Equal(t, tt.want, c.State().Error)
			assert.Equal(t, notify.Notification{Message: tt.want, Severity: notify.Error}, notes.last())
		})
	}
}
