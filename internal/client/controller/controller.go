// Package controller holds the per-view data controllers. Each controller
// issues the API calls its view needs, keeps the resulting view state and
// reports outcomes through the page error banner and the notification slot.
//
// Controllers are safe for concurrent use. Every list fetch is tagged with a
// generation number and a response is applied only if no newer fetch has been
// started since.
package controller

import (
	"context"
	"errors"

	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	msgLoadJobsFailed      = "Falha ao carregar vagas."
	msgApplyFailed         = "Falha ao aplicar."
	msgApplied             = "Candidatura enviada com sucesso"
	msgAppliedDashboard    = "Candidatura enviada com sucesso!"
	msgLoadJobFailed       = "Falha ao carregar a vaga."
	msgLoadManageFailed    = "Falha ao carregar dados da vaga"
	msgSelectCandidate     = "Selecione um candidato para encerrar a vaga"
	msgJobNotOpen          = "Apenas vagas abertas podem ser encerradas"
	msgFinalizeFailed      = "Falha ao encerrar a vaga"
	msgFinalized           = "Vaga encerrada com sucesso"
	msgFinalizedHired      = "Vaga encerrada e candidato contratado"
	msgUpdateFailed        = "Falha ao atualizar a vaga"
	msgUpdated             = "Vaga atualizada com sucesso"
	msgChangesSaved        = "Alterações salvas com sucesso"
	msgLoadAppsFailed      = "Falha ao carregar candidaturas."
	msgCancelFailed        = "Falha ao cancelar candidatura"
	msgCanceled            = "Candidatura cancelada"
	msgCanceledFeedback    = "Candidatura cancelada com sucesso"
	msgCreateFailed        = "Falha ao criar vaga."
	msgCreated             = "Vaga criada com sucesso"
	msgRequiredFields      = "Preencha os campos obrigatórios"
	msgLoginFailed         = "Falha no login. Verifique suas credenciais."
	msgRegisterFailed      = "Falha no cadastro."
	msgRegistered          = "Cadastro realizado! Faça login."
	msgNotCancelable       = "Apenas candidaturas pendentes podem ser canceladas"
	msgApplicationNotFound = "Candidatura não encontrada"
)

// Page sizes.
const (
	DashboardPageSize    = 5
	ApplicationsPageSize = 10
	DetailAppsLimit      = 20
	ManageAppsLimit      = 50
	appliedFallbackLimit = 10
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrWrongRole        = errors.New("not allowed for this role")
	ErrNoCandidate      = errors.New("no candidate selected")
	ErrJobNotOpen       = errors.New("job is not open")
	ErrNotLoaded        = errors.New("job not loaded")
	ErrNotCancelable    = errors.New("application cannot be canceled")
	ErrNothingPending   = errors.New("no pending confirmation")
	ErrUnknownField     = errors.New("unknown field")
	ErrMissingFields    = errors.New("required fields missing")
)

// Gateway is the subset of the API client used by controllers.
type Gateway interface {
	ListJobs(ctx context.Context, p models.ListParams) (models.Page[models.Job], error)
	ListMyJobs(ctx context.Context, p models.ListParams) (models.Page[models.Job], error)
	GetJob(ctx context.Context, id int64) (models.Job, error)
	CreateJob(ctx context.Context, in models.CreateJobInput) (models.Job, error)
	UpdateJob(ctx context.Context, id int64, in models.UpdateJobInput) (models.Job, error)
	Apply(ctx context.Context, jobID int64) (models.Application, error)
	Finalize(ctx context.Context, jobID, candidateID int64) error
	ListJobApplications(ctx context.Context, jobID int64, page, limit int) (models.Page[models.Application], error)
	ListMyApplications(ctx context.Context, page, limit int) (models.Page[models.Application], error)
	CancelApplication(ctx context.Context, id int64) error
	DashboardSummary(ctx context.Context) (models.DashboardStats, error)
}

// Session is the subset of the session store used by controllers.
type Session interface {
	CurrentUser() (models.User, bool)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string, role models.Role) error
}

// Deps are shared by every controller.
type Deps struct {
	Gateway  Gateway
	Session  Session
	Notifier notify.Notifier
	Log      *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d Deps) role() (models.Role, bool) {
	u, ok := d.Session.CurrentUser()
	if !ok {
		return "", false
	}
	return u.Role, true
}

func (d Deps) toast(sev notify.Severity, msg string) {
	if d.Notifier != nil {
		d.Notifier.Notify(notify.Notification{Message: msg, Severity: sev})
	}
}

func copySet(m map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
