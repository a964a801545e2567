// Package navigation decides which view a path opens and whether the current
// session may open it.
package navigation

import (
	"strconv"
	"strings"

	"github.com/atinyakov/jobboard/internal/models"
)

// Well-known paths.
const (
	PathHome         = "/"
	PathLogin        = "/login"
	PathRegister     = "/register"
	PathJobs         = "/jobs"
	PathCreateJob    = "/create-job"
	PathApplications = "/applications"
)

// JobPath is the detail page of a job.
func JobPath(id int64) string {
	return PathJobs + "/" + strconv.FormatInt(id, 10)
}

// ManagePath is the recruiter management page of a job.
func ManagePath(id int64) string {
	return JobPath(id) + "/manage"
}

// View identifies a page.
type View int

const (
	ViewNone View = iota
	ViewHome
	ViewLogin
	ViewRegister
	ViewDashboard
	ViewJobDetail
	ViewManageJob
	ViewMyApplications
	ViewCreateJob
)

// Public reports whether v is reachable without a session.
func (v View) Public() bool {
	switch v {
	case ViewHome, ViewLogin, ViewRegister:
		return true
	default:
		return false
	}
}

// Allowed reports whether role may open v.
func (v View) Allowed(role models.Role) bool {
	switch v {
	case ViewCreateJob, ViewManageJob:
		return role == models.RoleRecruiter
	case ViewMyApplications:
		return role == models.RoleCandidate
	default:
		return true
	}
}

// Route is a path resolved to a view.
type Route struct {
	View  View
	JobID int64
}

// Match resolves path to a route.
func Match(path string) (Route, bool) {
	path = strings.TrimSpace(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	switch path {
	case PathHome:
		return Route{View: ViewHome}, true
	case PathLogin:
		return Route{View: ViewLogin}, true
	case PathRegister:
		return Route{View: ViewRegister}, true
	case PathJobs:
		return Route{View: ViewDashboard}, true
	case PathCreateJob:
		return Route{View: ViewCreateJob}, true
	case PathApplications:
		return Route{View: ViewMyApplications}, true
	}

	rest, ok := strings.CutPrefix(path, PathJobs+"/")
	if !ok {
		return Route{}, false
	}
	idPart, manage := strings.CutSuffix(rest, "/manage")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return Route{}, false
	}
	if manage {
		return Route{View: ViewManageJob, JobID: id}, true
	}
	return Route{View: ViewJobDetail, JobID: id}, true
}

// SessionState is the read side of the session store.
type SessionState interface {
	Loading() bool
	IsAuthenticated() bool
	CurrentUser() (models.User, bool)
}

// Decision is the outcome of resolving a path. Exactly one of Pending,
// Redirect and Route is meaningful.
type Decision struct {
	// Pending is set while the session is still being restored.
	Pending bool
	// Redirect is the path to navigate to instead.
	Redirect string
	// Route is the view to mount.
	Route Route
}

// Guard gates public and authenticated views.
type Guard struct {
	session SessionState
}

func NewGuard(session SessionState) *Guard {
	return &Guard{session: session}
}

// Resolve decides what navigating to path does.
//
// Anonymous users are sent to /login from private views and to / from
// unknown paths. Authenticated users are sent to /jobs from public views,
// unknown paths and views their role may not open.
func (g *Guard) Resolve(path string) Decision {
	if g.session.Loading() {
		return Decision{Pending: true}
	}
	route, ok := Match(path)
	authenticated := g.session.IsAuthenticated()

	if !authenticated {
		switch {
		case !ok:
			return Decision{Redirect: PathHome}
		case route.View.Public():
			return Decision{Route: route}
		default:
			return Decision{Redirect: PathLogin}
		}
	}

	if !ok || route.View.Public() {
		return Decision{Redirect: PathJobs}
	}
	user, _ := g.session.CurrentUser()
	if !route.View.Allowed(user.Role) {
		return Decision{Redirect: PathJobs}
	}
	return Decision{Route: route}
}
