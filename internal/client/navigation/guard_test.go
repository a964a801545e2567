package navigation

import (
	"testing"

	"github.com/atinyakov/jobboard/internal/models"
)

// fakeSession is a placeholder session with fixed answers.
type fakeSession struct {
	loading bool
	user    *models.User
}

func (f *fakeSession) Loading() bool         { return f.loading }
func (f *fakeSession) IsAuthenticated() bool { return f.user != nil }
func (f *fakeSession) CurrentUser() (models.User, bool) {
	if f.user == nil {
		return models.User{}, false
	}
	return *f.user, true
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path string
		want Route
		ok   bool
	}{
		{"/", Route{View: ViewHome}, true},
		{"/login", Route{View: ViewLogin}, true},
		{"/register/", Route{View: ViewRegister}, true},
		{"/jobs", Route{View: ViewDashboard}, true},
		{"/jobs/12", Route{View: ViewJobDetail, JobID: 12}, true},
		{"/jobs/12/manage", Route{View: ViewManageJob, JobID: 12}, true},
		{"/create-job", Route{View: ViewCreateJob}, true},
		{"/applications", Route{View: ViewMyApplications}, true},
		{"/jobs/abc", Route{}, false},
		{"/jobs/0", Route{}, false},
		{"/jobs/1/edit", Route{}, false},
		{"/nowhere", Route{}, false},
	}
	for _, tt := range tests {
		got, ok := Match(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Match(%q) = %+v, %v; want %+v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
	if JobPath(3) != "/jobs/3" || ManagePath(3) != "/jobs/3/manage" {
		t.Errorf("unexpected paths %q %q", JobPath(3), ManagePath(3))
	}
}

func TestGuard_Loading(t *testing.T) {
	g := NewGuard(&fakeSession{loading: true})
	if d := g.Resolve("/jobs"); !d.Pending {
		t.Errorf("expected pending decision, got %+v", d)
	}
}

func TestGuard_Resolve(t *testing.T) {
	candidate := &models.User{ID: 1, Role: models.RoleCandidate}
	recruiter := &models.User{ID: 2, Role: models.RoleRecruiter}

	tests := []struct {
		name     string
		user     *models.User
		path     string
		redirect string
		view     View
	}{
		{"anonymous public", nil, "/login", "", ViewLogin},
		{"anonymous home", nil, "/", "", ViewHome},
		{"anonymous private", nil, "/jobs", "/login", ViewNone},
		{"anonymous detail", nil, "/jobs/4", "/login", ViewNone},
		{"anonymous unknown", nil, "/nope", "/", ViewNone},
		{"authenticated public", candidate, "/register", "/jobs", ViewNone},
		{"authenticated unknown", candidate, "/nope", "/jobs", ViewNone},
		{"candidate dashboard", candidate, "/jobs", "", ViewDashboard},
		{"candidate applications", candidate, "/applications", "", ViewMyApplications},
		{"candidate manage", candidate, "/jobs/4/manage", "/jobs", ViewNone},
		{"candidate create", candidate, "/create-job", "/jobs", ViewNone},
		{"recruiter manage", recruiter, "/jobs/4/manage", "", ViewManageJob},
		{"recruiter create", recruiter, "/create-job", "", ViewCreateJob},
		{"recruiter applications", recruiter, "/applications", "/jobs", ViewNone},
		{"recruiter detail", recruiter, "/jobs/4", "", ViewJobDetail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewGuard(&fakeSession{user: tt.user}).Resolve(tt.path)
			if d.Pending {
				t.Fatal("unexpected pending decision")
			}
			if d.Redirect != tt.redirect {
				t.Errorf("Redirect = %q; want %q", d.Redirect, tt.redirect)
			}
			if d.Route.View != tt.view {
				t.Errorf("View = %v; want %v", d.Route.View, tt.view)
			}
		})
	}
}
