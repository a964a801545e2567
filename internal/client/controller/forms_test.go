package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob_Validation(t *testing.T) {
	h := newHarness(t)
	h.as(t, "Rui", models.RoleRecruiter)

	c := NewCreateJob(h.deps)
	require.NoError(t, c.SetField("title", "Go dev"))
	require.NoError(t, c.SetField("location", "  "))
	assert.ErrorIs(t, c.SetField("owner", "x"), ErrUnknownField)
	assert.Error(t, c.SetField("anonymous", "maybe"))

	to, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Empty(t, to)
	_, banner := c.Form()
	assert.Equal(t, "Preencha os campos obrigatórios: description, company, location", banner)
	assert.Empty(t, h.srv.Requests())
}

func TestCreateJob_Submit(t *testing.T) {
	h := newHarness(t)
	rec := h.as(t, "Rui", models.RoleRecruiter)

	c := NewCreateJob(h.deps)
	for k, v := range map[string]string{
		"title":       "Go dev",
		"description": "Build things",
		"company":     "Acme",
		"location":    "Remote",
		"anonymous":   "true",
	} {
		require.NoError(t, c.SetField(k, v))
	}

	to, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/jobs", to)
	assert.Equal(t, notify.Notification{Message: "Vaga criada com sucesso", Severity: notify.Success}, h.notes.last())

	form, banner := c.Form()
	assert.Empty(t, banner)
	assert.Equal(t, models.CreateJobInput{}, form)

	page, err := h.deps.Gateway.ListMyJobs(context.Background(), models.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, rec.ID, page.Data[0].RecruiterID)
	assert.True(t, page.Data[0].Anonymous)
}

func TestCreateJob_CandidateRejected(t *testing.T) {
	h := newHarness(t)
	h.as(t, "Ana", models.RoleCandidate)
	_, err := NewCreateJob(h.deps).Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestLogin_Submit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.srv.AddUser("Ana", "ana@x.com", "pw", models.RoleCandidate)
	c := NewLogin(h.deps)

	to, err := c.Submit(ctx, "ana@x.com", "wrong")
	require.Error(t, err)
	assert.Empty(t, to)
	assert.Equal(t, "invalid credentials", c.Error())
	assert.Equal(t, notify.Notification{Message: "invalid credentials", Severity: notify.Error}, h.notes.last())
	assert.False(t, h.session.IsAuthenticated())

	to, err = c.Submit(ctx, " ana@x.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "/jobs", to)
	assert.Empty(t, c.Error())
	u, ok := h.session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ana", u.Name)
}

func TestLogin_DefaultMessage(t *testing.T) {
	notes := &recorder{}
	c := NewLogin(Deps{Session: &fakeSession{err: errors.New("dial tcp: refused")}, Notifier: notes})
	_, err := c.Submit(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "Falha no login. Verifique suas credenciais.", c.Error())
}

func TestRegister_Submit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := NewRegister(h.deps)

	in := models.RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "pw", Role: models.RoleCandidate}
	to, err := c.Submit(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "/login", to)
	assert.Equal(t, notify.Notification{Message: "Cadastro realizado! Faça login.", Severity: notify.Success}, h.notes.last())
	assert.False(t, h.session.IsAuthenticated())

	_, err = c.Submit(ctx, in)
	require.Error(t, err)
	assert.Equal(t, "email already registered", c.Error())

	fallback := NewRegister(Deps{Session: &fakeSession{err: errors.New("boom")}})
	_, err = fallback.Submit(ctx, in)
	require.Error(t, err)
	assert.Equal(t, "Falha no cadastro.", fallback.Error())
}
