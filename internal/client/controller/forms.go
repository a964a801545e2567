package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/navigation"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/models"
)

// CreateJob drives the /create-job form.
type CreateJob struct {
	deps Deps

	mu    sync.Mutex
	form  models.CreateJobInput
	error string
}

func NewCreateJob(deps Deps) *CreateJob {
	return &CreateJob{deps: deps}
}

// Form returns the current form values and error banner.
func (c *CreateJob) Form() (models.CreateJobInput, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form, c.error
}

// SetField sets a form field by name.
func (c *CreateJob) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &c.form
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
	case "anonymous":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("anonymous: %w", err)
		}
		f.Anonymous = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

func missingFields(in models.CreateJobInput) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"company", in.Company},
		{"location", in.Location},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Submit creates the job and returns the path to navigate to.
func (c *CreateJob) Submit(ctx context.Context) (string, error) {
	if role, ok := c.deps.role(); !ok || role != models.RoleRecruiter {
		return "", ErrWrongRole
	}
	c.mu.Lock()
	in := c.form
	if missing := missingFields(in); len(missing) > 0 {
		c.error = msgRequiredFields + ": " + strings.Join(missing, ", ")
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	c.error = ""
	c.mu.Unlock()

	if _, err := c.deps.Gateway.CreateJob(ctx, in); err != nil {
		msg := api.MessageOr(err, msgCreateFailed)
		c.mu.Lock()
		c.error = msg
		c.mu.Unlock()
		c.deps.toast(notify.Error, msg)
		return "", err
	}
	c.mu.Lock()
	c.form = models.CreateJobInput{}
	c.mu.Unlock()
	c.deps.toast(notify.Success, msgCreated)
	return navigation.PathJobs, nil
}

// Login drives the /login form.
type Login struct {
	deps Deps

	mu    sync.Mutex
	error string
}

func NewLogin(deps Deps) *Login {
	return &Login{deps: deps}
}

// Error returns the current error banner.
func (c *Login) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.error
}

// Submit logs in and returns the path to navigate to.
func (c *Login) Submit(ctx context.Context, email, password string) (string, error) {
	err := c.deps.Session.Login(ctx, strings.TrimSpace(email), password)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.error = api.MessageOr(err, msgLoginFailed)
		c.deps.toast(notify.Error, c.error)
		return "", err
	}
	c.error = ""
	return navigation.PathJobs, nil
}

// Register drives the /register form.
type Register struct {
	deps Deps

	mu    sync.Mutex
	error string
}

func NewRegister(deps Deps) *Register {
	return &Register{deps: deps}
}

// Error returns the current error banner.
func (c *Register) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.error
}

// Submit creates the account and returns the path to navigate to. The user
// is not logged in.
func (c *Register) Submit(ctx context.Context, in models.RegisterInput) (string, error) {
	err := c.deps.Session.Register(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), in.Password, in.Role)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.error = api.MessageOr(err, msgRegisterFailed)
		c.deps.toast(notify.Error, c.error)
		return "", err
	}
	c.error = ""
	c.deps.toast(notify.Success, msgRegistered)
	return navigation.PathLogin, nil
}
