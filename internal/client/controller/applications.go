package controller

import (
	"context"
	"sync"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

// MyApplicationsState is a snapshot of the candidate's application list.
type MyApplicationsState struct {
	Applications []models.Application
	Meta         models.PaginationMeta
	Page         int
	Loading      bool
	Error        string

	Confirm  Confirm
	Pending  int64
	Feedback string
}

// MyApplications drives the /applications view.
type MyApplications struct {
	deps Deps

	mu         sync.Mutex
	state      MyApplicationsState
	generation uint64
}

func NewMyApplications(deps Deps) *MyApplications {
	return &MyApplications{deps: deps, state: MyApplicationsState{Page: 1}}
}

// State returns a copy of the current view state.
func (c *MyApplications) State() MyApplicationsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Applications = append([]models.Application(nil), c.state.Applications...)
	return st
}

// Mount loads the first page.
func (c *MyApplications) Mount(ctx context.Context) error {
	if role, ok := c.deps.role(); !ok || role != models.RoleCandidate {
		return ErrWrongRole
	}
	c.SetPage(ctx, 1)
	return nil
}

// SetPage moves to page n and refetches.
func (c *MyApplications) SetPage(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	c.state.Page = n
	c.mu.Unlock()
	c.fetch(ctx)
}

func (c *MyApplications) fetch(ctx context.Context) {
	log := c.deps.logger()

	c.mu.Lock()
	c.generation++
	gen, page := c.generation, c.state.Page
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	res, err := c.deps.Gateway.ListMyApplications(ctx, page, ApplicationsPageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		log.Debug("discarding stale applications", zap.Int("page", page))
		return
	}
	c.state.Loading = false
	if err != nil {
		log.Warn("list applications", zap.Error(err))
		c.state.Error = api.MessageOr(err, msgLoadAppsFailed)
		return
	}
	c.state.Applications = res.Data
	c.state.Meta = res.Meta
}

// CanCancel reports whether a can still be canceled.
func CanCancel(a models.Application) bool {
	return a.Status == models.ApplicationPending
}

// RequestCancel opens the cancel confirmation for application id, which must
// be on the current page and pending.
func (c *MyApplications) RequestCancel(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.state.Applications {
		if a.ID != id {
			continue
		}
		if !CanCancel(a) {
			c.state.Error = msgNotCancelable
			return ErrNotCancelable
		}
		c.state.Confirm = ConfirmCancelApplication
		c.state.Pending = id
		return nil
	}
	c.state.Error = msgApplicationNotFound
	return ErrNotCancelable
}

// DismissConfirm closes the confirmation without acting.
func (c *MyApplications) DismissConfirm() {
	c.mu.Lock()
	c.state.Confirm = ConfirmNone
	c.state.Pending = 0
	c.mu.Unlock()
}

// DismissFeedback closes the feedback dialog.
func (c *MyApplications) DismissFeedback() {
	c.mu.Lock()
	c.state.Feedback = ""
	c.mu.Unlock()
}

// ConfirmCancel cancels the pending application and refetches the page.
func (c *MyApplications) ConfirmCancel(ctx context.Context) error {
	c.mu.Lock()
	id := c.state.Pending
	if c.state.Confirm != ConfirmCancelApplication || id == 0 {
		c.mu.Unlock()
		return ErrNothingPending
	}
	c.state.Confirm = ConfirmNone
	c.state.Pending = 0
	c.mu.Unlock()

	if err := c.deps.Gateway.CancelApplication(ctx, id); err != nil {
		msg := api.MessageOr(err, msgCancelFailed)
		c.mu.Lock()
		c.state.Error = msg
		c.mu.Unlock()
		c.deps.toast(notify.Error, msg)
		return err
	}
	c.deps.toast(notify.Success, msgCanceled)
	c.mu.Lock()
	c.state.Feedback = msgCanceledFeedback
	c.mu.Unlock()
	c.fetch(ctx)
	return nil
}
