package controller

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/apitest"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/client/session"
	"github.com/atinyakov/jobboard/internal/client/storage"
	"github.com/atinyakov/jobboard/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recorder collects raised notifications.
type recorder struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recorder) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.got...)
}

func (r *recorder) last() notify.Notification {
	all := r.all()
	if len(all) == 0 {
		return notify.Notification{}
	}
	return all[len(all)-1]
}

// harness wires controllers to the fake API through a real gateway and session.
type harness struct {
	srv     *apitest.Server
	session *session.Store
	notes   *recorder
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv, err := storage.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	h := &harness{srv: apitest.New(t), notes: &recorder{}}
	gw := api.NewClient(h.srv.URL, h.srv.Client(), api.TokenSourceFunc(func() string { return h.session.Token() }), zap.NewNop())
	h.session = session.New(gw, kv, zap.NewNop())
	h.session.Hydrate(context.Background())
	h.deps = Deps{Gateway: gw, Session: h.session, Notifier: h.notes, Log: zap.NewNop()}
	return h
}

// as registers a user with the fake, logs in as it and forgets the requests
// made so far.
func (h *harness) as(t *testing.T, name string, role models.Role) models.User {
	t.Helper()
	email := strings.ToLower(name) + "@x.com"
	u := h.srv.AddUser(name, email, "pw", role)
	require.NoError(t, h.session.Login(context.Background(), email, "pw"))
	h.srv.ResetRequests()
	return u
}

// requestsContaining returns the recorded requests that contain s.
func (h *harness) requestsContaining(s string) []string {
	var out []string
	for _, r := range h.srv.Requests() {
		if strings.Contains(r, s) {
			out = append(out, r)
		}
	}
	return out
}

// fakeSession is a fixed session for tests that do not need the fake API.
type fakeSession struct {
	user models.User
	err  error
}

func (f *fakeSession) CurrentUser() (models.User, bool) { return f.user, f.user.ID != 0 }
func (f *fakeSession) Login(context.Context, string, string) error {
	return f.err
}
func (f *fakeSession) Register(context.Context, string, string, string, models.Role) error {
	return f.err
}

// stubGateway overrides single gateway calls; the others panic.
type stubGateway struct {
	Gateway

	ListJobsFunc            func(ctx context.Context, p models.ListParams) (models.Page[models.Job], error)
	ListMyJobsFunc          func(ctx context.Context, p models.ListParams) (models.Page[models.Job], error)
	ListJobApplicationsFunc func(ctx context.Context, jobID int64, page, limit int) (models.Page[models.Application], error)
	CancelApplicationFunc   func(ctx context.Context, id int64) error
}

func (s *stubGateway) ListJobs(ctx context.Context, p models.ListParams) (models.Page[models.Job], error) {
	return s.ListJobsFunc(ctx, p)
}

func (s *stubGateway) ListMyJobs(ctx context.Context, p models.ListParams) (models.Page[models.Job], error) {
	return s.ListMyJobsFunc(ctx, p)
}

func (s *stubGateway) ListJobApplications(ctx context.Context, jobID int64, page, limit int) (models.Page[models.Application], error) {
	return s.ListJobApplicationsFunc(ctx, jobID, page, limit)
}

func (s *stubGateway) CancelApplication(ctx context.Context, id int64) error {
	return s.CancelApplicationFunc(ctx, id)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
