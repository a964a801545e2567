// Package shell is the interactive front end of the job board client. Every
// command maps to a route; the navigation guard decides whether the view
// opens or where the user is sent instead.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/jobboard/internal/client/controller"
	"github.com/atinyakov/jobboard/internal/client/navigation"
	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

const helpText = `Commands:
  home | login | register | logout | whoami
  jobs | search <text> | status <OPEN|CLOSED|PAUSED|-> | page <n>
  open <id> | apply [id] | filter <status|-> [term]
  manage <id> | edit | set <field> <value> | save | discard | select <candidate id> | finalize
  applications | cancel <id>
  create
  yes | no | help | exit`

// maxRedirects bounds guard redirect chains.
const maxRedirects = 4

// Session is what the shell needs from the session store.
type Session interface {
	controller.Session
	navigation.SessionState
	Logout(ctx context.Context)
}

// Shell reads commands from in and writes views to out.
type Shell struct {
	scanner *bufio.Scanner
	out     io.Writer
	deps    controller.Deps
	session Session
	guard   *navigation.Guard
	log     *zap.Logger

	route navigation.Route
	path  string

	dashboard *controller.Dashboard
	detail    *controller.JobDetail
	manage    *controller.ManageJob
	apps      *controller.MyApplications
	create    *controller.CreateJob
}

// New returns a shell driving the controllers built from deps. deps.Session
// is replaced by session.
func New(in io.Reader, out io.Writer, deps controller.Deps, session Session) *Shell {
	deps.Session = session
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		scanner: bufio.NewScanner(in),
		out:     out,
		deps:    deps,
		session: session,
		guard:   navigation.NewGuard(session),
		log:     log,
	}
}

// Path returns the route the shell currently shows.
func (s *Shell) Path() string { return s.path }

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Run starts at path and processes commands until exit or end of input.
func (s *Shell) Run(ctx context.Context, path string) error {
	s.Navigate(ctx, path)
	for {
		s.printf("jobboard> ")
		if !s.scanner.Scan() {
			return s.scanner.Err()
		}
		args := strings.Fields(s.scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			s.printf("Bye\n")
			return nil
		}
		if err := s.Exec(ctx, args); err != nil {
			s.printf("%v\n", err)
		}
	}
}

// Navigate resolves path through the guard and mounts the resulting view.
func (s *Shell) Navigate(ctx context.Context, path string) {
	for i := 0; i < maxRedirects; i++ {
		d := s.guard.Resolve(path)
		switch {
		case d.Pending:
			s.printf("loading session...\n")
			return
		case d.Redirect != "":
			s.log.Debug("redirect", zap.String("from", path), zap.String("to", d.Redirect))
			path = d.Redirect
			continue
		}
		s.path = path
		s.route = d.Route
		s.mount(ctx)
		return
	}
	s.log.Warn("too many redirects", zap.String("path", path))
}

func (s *Shell) mount(ctx context.Context) {
	switch s.route.View {
	case navigation.ViewHome:
		s.printf("Job board. Type 'login' or 'register'.\n")
	case navigation.ViewLogin:
		s.printf("[login]\n")
	case navigation.ViewRegister:
		s.printf("[register]\n")
	case navigation.ViewDashboard:
		s.dashboard = controller.NewDashboard(s.deps)
		s.dashboard.Mount(ctx)
		s.renderDashboard()
	case navigation.ViewJobDetail:
		s.detail = controller.NewJobDetail(s.deps)
		s.detail.Mount(ctx, s.route.JobID)
		s.renderDetail()
	case navigation.ViewManageJob:
		s.manage = controller.NewManageJob(s.deps)
		if err := s.manage.Mount(ctx, s.route.JobID); err != nil {
			s.printf("%v\n", err)
			return
		}
		s.renderManage()
	case navigation.ViewMyApplications:
		s.apps = controller.NewMyApplications(s.deps)
		if err := s.apps.Mount(ctx); err != nil {
			s.printf("%v\n", err)
			return
		}
		s.renderApplications()
	case navigation.ViewCreateJob:
		s.create = controller.NewCreateJob(s.deps)
		s.printf("[new job]\n")
	case navigation.ViewNone:
	}
}

var errUsage = errors.New("usage")

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

func parseID(args []string, i int, use string) (int64, error) {
	if len(args) <= i {
		return 0, usage(use)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[i])
	}
	return id, nil
}

// Exec runs one command.
func (s *Shell) Exec(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	view := s.route.View

	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
	case "home":
		s.Navigate(ctx, navigation.PathHome)
	case "login":
		return s.doLogin(ctx)
	case "register":
		return s.doRegister(ctx)
	case "logout":
		s.session.Logout(ctx)
		s.Navigate(ctx, navigation.PathHome)
	case "whoami":
		u, ok := s.session.CurrentUser()
		if !ok {
			s.printf("not logged in\n")
			return nil
		}
		s.printf("%s <%s> %s #%d\n", u.Name, u.Email, u.Role, u.ID)
	case "jobs":
		s.Navigate(ctx, navigation.PathJobs)
	case "search":
		if view != navigation.ViewDashboard {
			return errWrongView
		}
		s.dashboard.SetSearch(strings.Join(rest, " "))
		s.dashboard.Search(ctx)
		s.renderDashboard()
	case "status":
		if view != navigation.ViewDashboard {
			return errWrongView
		}
		if len(rest) == 0 {
			return usage("status <OPEN|CLOSED|PAUSED|->")
		}
		var status models.JobStatus
		if rest[0] != "-" {
			st, err := models.ParseJobStatus(strings.ToUpper(rest[0]))
			if err != nil {
				return err
			}
			status = st
		}
		s.dashboard.SetStatus(ctx, status)
		s.renderDashboard()
	case "page":
		n, err := parseID(args, 1, "page <n>")
		if err != nil {
			return err
		}
		switch view {
		case navigation.ViewDashboard:
			s.dashboard.SetPage(ctx, int(n))
			s.renderDashboard()
		case navigation.ViewMyApplications:
			s.apps.SetPage(ctx, int(n))
			s.renderApplications()
		default:
			return errWrongView
		}
	case "open":
		id, err := parseID(args, 1, "open <id>")
		if err != nil {
			return err
		}
		s.Navigate(ctx, navigation.JobPath(id))
	case "apply":
		return s.doApply(ctx, args)
	case "filter":
		if view != navigation.ViewJobDetail {
			return errWrongView
		}
		if len(rest) == 0 {
			return usage("filter <status|-> [term]")
		}
		var f controller.ApplicationFilter
		if rest[0] != "-" {
			st, err := models.ParseApplicationStatus(strings.ToUpper(rest[0]))
			if err != nil {
				return err
			}
			f.Status = st
		}
		f.Term = strings.Join(rest[1:], " ")
		s.detail.SetFilter(f)
		s.renderDetail()
	case "manage":
		id, err := parseID(args, 1, "manage <id>")
		if err != nil {
			return err
		}
		s.Navigate(ctx, navigation.ManagePath(id))
	case "applications":
		s.Navigate(ctx, navigation.PathApplications)
	case "create":
		s.Navigate(ctx, navigation.PathCreateJob)
		if s.route.View != navigation.ViewCreateJob {
			return nil
		}
		if err := s.promptJob(); err != nil {
			return err
		}
		return s.formCommand(ctx, "save", nil)
	case "edit", "set", "save", "discard", "select", "finalize":
		return s.formCommand(ctx, cmd, rest)
	case "cancel":
		if view != navigation.ViewMyApplications {
			return errWrongView
		}
		id, err := parseID(args, 1, "cancel <id>")
		if err != nil {
			return err
		}
		if err := s.apps.RequestCancel(id); err != nil {
			s.renderApplications()
			return nil
		}
		s.printf("Cancel application %d? (yes/no)\n", id)
	case "yes":
		return s.confirm(ctx)
	case "no":
		switch view {
		case navigation.ViewManageJob:
			s.manage.DismissConfirm()
		case navigation.ViewMyApplications:
			s.apps.DismissConfirm()
		}
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", cmd)
	}
	return nil
}

var errWrongView = errors.New("command not available here")

func (s *Shell) doApply(ctx context.Context, args []string) error {
	switch s.route.View {
	case navigation.ViewDashboard:
		id, err := parseID(args, 1, "apply <id>")
		if err != nil {
			return err
		}
		if err := s.dashboard.Apply(ctx, id); err != nil {
			s.log.Debug("apply", zap.Int64("job_id", id), zap.Error(err))
		}
		s.renderDashboard()
	case navigation.ViewJobDetail:
		if !s.detail.CanApply() {
			return errors.New("cannot apply to this job")
		}
		if err := s.detail.Apply(ctx); err != nil {
			s.log.Debug("apply", zap.Error(err))
		}
		s.renderDetail()
	default:
		return errWrongView
	}
	return nil
}

func (s *Shell) formCommand(ctx context.Context, cmd string, rest []string) error {
	switch s.route.View {
	case navigation.ViewManageJob:
		m := s.manage
		switch cmd {
		case "edit":
			m.StartEdit()
		case "set":
			if len(rest) < 2 {
				return usage("set <field> <value>")
			}
			if !m.State().Editing {
				return errors.New("type 'edit' first")
			}
			if err := m.SetField(rest[0], strings.Join(rest[1:], " ")); err != nil {
				return err
			}
		case "save":
			m.RequestSave()
			s.printf("Save changes? (yes/no)\n")
			return nil
		case "discard":
			m.RequestCancelEdit()
			s.printf("Discard changes? (yes/no)\n")
			return nil
		case "select":
			id, err := parseID(rest, 0, "select <candidate id>")
			if err != nil {
				return err
			}
			m.Select(id)
		case "finalize":
			if err := m.Finalize(ctx); err != nil {
				s.log.Debug("finalize", zap.Error(err))
			}
		}
		s.renderManage()
	case navigation.ViewCreateJob:
		switch cmd {
		case "set":
			if len(rest) < 2 {
				return usage("set <field> <value>")
			}
			return s.create.SetField(rest[0], strings.Join(rest[1:], " "))
		case "save":
			to, err := s.create.Submit(ctx)
			if err != nil {
				_, banner := s.create.Form()
				s.printf("%s\n", banner)
				return nil
			}
			s.Navigate(ctx, to)
		default:
			return errWrongView
		}
	default:
		return errWrongView
	}
	return nil
}

func (s *Shell) confirm(ctx context.Context) error {
	switch s.route.View {
	case navigation.ViewManageJob:
		switch s.manage.State().Confirm {
		case controller.ConfirmSave:
			if err := s.manage.ConfirmSave(ctx); err != nil {
				s.log.Debug("save job", zap.Error(err))
			}
		case controller.ConfirmDiscard:
			s.manage.ConfirmCancelEdit()
		default:
			return controller.ErrNothingPending
		}
		s.renderManage()
	case navigation.ViewMyApplications:
		if err := s.apps.ConfirmCancel(ctx); err != nil {
			if errors.Is(err, controller.ErrNothingPending) {
				return err
			}
			s.log.Debug("cancel application", zap.Error(err))
		}
		s.renderApplications()
	default:
		return controller.ErrNothingPending
	}
	return nil
}

func (s *Shell) doLogin(ctx context.Context) error {
	s.Navigate(ctx, navigation.PathLogin)
	if s.route.View != navigation.ViewLogin {
		return nil
	}
	email := s.prompt("Email: ")
	password := s.prompt("Password: ")
	to, err := controller.NewLogin(s.deps).Submit(ctx, email, password)
	if err != nil {
		return nil
	}
	s.Navigate(ctx, to)
	return nil
}

func (s *Shell) doRegister(ctx context.Context) error {
	s.Navigate(ctx, navigation.PathRegister)
	if s.route.View != navigation.ViewRegister {
		return nil
	}
	in := models.RegisterInput{
		Name:     s.prompt("Name: "),
		Email:    s.prompt("Email: "),
		Password: s.prompt("Password: "),
	}
	role, err := models.ParseRole(strings.ToUpper(s.prompt("Role (CANDIDATE/RECRUITER): ")))
	if err != nil {
		return err
	}
	in.Role = role
	to, err := controller.NewRegister(s.deps).Submit(ctx, in)
	if err != nil {
		return nil
	}
	s.Navigate(ctx, to)
	return nil
}
