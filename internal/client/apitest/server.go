// Package apitest provides an in-memory fake of the job board API for tests.
//
// Routes mirror the real API:
//
//	POST  /register                 public
//	POST  /login                    public
//	GET   /jobs                     any user
//	GET   /jobs/mine                recruiter
//	GET   /jobs/{id}                any user
//	POST  /jobs                     recruiter
//	PATCH /jobs/{id}                owning recruiter
//	POST  /jobs/{id}/apply          candidate
//	POST  /jobs/{id}/finalize       owning recruiter
//	GET   /jobs/{id}/applications   owning recruiter
//	GET   /applications             candidate
//	PATCH /applications/{id}/cancel candidate
//	GET   /dashboard/summary        any user
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/jobboard/internal/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of tokens issued by the fake.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type account struct {
	user     models.User
	password string
}

type ctxKey struct{}

// Server is a running fake API. All exported fields may be modified by tests
// before requests are made; use Lock/Unlock when the server is in use.
type Server struct {
	*httptest.Server
	sync.Mutex

	// FailApplications makes GET /jobs/{id}/applications return 500 for these job IDs.
	FailApplications map[int64]bool
	// Hook, when set, runs before every request is handled.
	Hook func(r *http.Request)

	secret   []byte
	accounts []account
	jobs     []models.Job
	apps     []models.Application
	requests []string
	nextID   int64
}

// New starts a fake API and registers its shutdown with t.
func New(t testing.TB) *Server {
	s := &Server{
		FailApplications: map[int64]bool{},
		secret:           []byte("apitest-secret"),
		nextID:           1,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(s.record)
	r.Use(s.authenticate)

	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.Get("/dashboard/summary", s.summary)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.listJobs)
		r.Post("/", s.createJob)
		r.Get("/mine", s.listMyJobs)
		r.Get("/{id}", s.getJob)
		r.Patch("/{id}", s.updateJob)
		r.Post("/{id}/apply", s.apply)
		r.Post("/{id}/finalize", s.finalize)
		r.Get("/{id}/applications", s.jobApplications)
	})
	r.Get("/applications", s.myApplications)
	r.Patch("/applications/{id}/cancel", s.cancel)
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		entry := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}
		s.requests = append(s.requests, entry)
		hook := s.Hook
		s.Unlock()
		if hook != nil {
			hook(r)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		var claims Claims
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(h, "Bearer "), &claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		u := models.User{ID: claims.UserID, Role: models.Role(claims.Role), Email: claims.Email, Name: claims.Name}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

// Requests returns the "METHOD /path?query" lines received so far.
func (s *Server) Requests() []string {
	s.Lock()
	defer s.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many received requests start with prefix.
func (s *Server) Count(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.Lock()
	s.requests = nil
	s.Unlock()
}

// AddUser creates an account and returns it.
func (s *Server) AddUser(name, email, password string, role models.Role) models.User {
	s.Lock()
	defer s.Unlock()
	return s.addUserLocked(name, email, password, role)
}

func (s *Server) addUserLocked(name, email, password string, role models.Role) models.User {
	u := models.User{ID: s.nextID, Name: name, Email: email, Role: role}
	s.nextID++
	s.accounts = append(s.accounts, account{user: u, password: password})
	return u
}

// AddJob stores j, assigning an ID and defaults, and returns it.
func (s *Server) AddJob(j models.Job) models.Job {
	s.Lock()
	defer s.Unlock()
	j.ID = s.nextID
	s.nextID++
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	if j.CreatedAt == "" {
		j.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.jobs = append(s.jobs, j)
	return j
}

// AddApplication stores a, assigning an ID and copying job fields, and returns it.
func (s *Server) AddApplication(a models.Application) models.Application {
	s.Lock()
	defer s.Unlock()
	return s.addApplicationLocked(a)
}

func (s *Server) addApplicationLocked(a models.Application) models.Application {
	a.ID = s.nextID
	s.nextID++
	if a.Status == "" {
		a.Status = models.ApplicationPending
	}
	if j := s.findJob(a.JobID); j != nil {
		a.JobTitle, a.Company, a.Location = j.Title, j.Company, j.Location
	}
	if a.CandidateName == "" {
		for _, acc := range s.accounts {
			if acc.user.ID == a.CandidateID {
				a.CandidateName = acc.user.Name
			}
		}
	}
	if a.AppliedAt == "" {
		a.AppliedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.apps = append(s.apps, a)
	return a
}

// Job returns the stored job with the given ID.
func (s *Server) Job(id int64) (models.Job, bool) {
	s.Lock()
	defer s.Unlock()
	if j := s.findJob(id); j != nil {
		return *j, true
	}
	return models.Job{}, false
}

// Applications returns all stored applications.
func (s *Server) Applications() []models.Application {
	s.Lock()
	defer s.Unlock()
	return append([]models.Application(nil), s.apps...)
}

// Token signs a credential for u.
func (s *Server) Token(u models.User) string {
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		Email:  u.Email,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) findJob(id int64) *models.Job {
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return &s.jobs[i]
		}
	}
	return nil
}

func (s *Server) withEmail(j models.Job) models.Job {
	for _, acc := range s.accounts {
		if acc.user.ID == j.RecruiterID {
			j.RecruiterEmail = acc.user.Email
		}
	}
	return j
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func currentUser(r *http.Request) (models.User, bool) {
	u, ok := r.Context().Value(ctxKey{}).(models.User)
	return u, ok
}

// requireRole writes the error response and returns false when the caller is
// not authenticated with one of roles (any role when none given).
func requireRole(w http.ResponseWriter, r *http.Request, roles ...models.Role) (models.User, bool) {
	u, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return u, false
	}
	if len(roles) == 0 {
		return u, true
	}
	for _, role := range roles {
		if u.Role == role {
			return u, true
		}
	}
	writeError(w, http.StatusForbidden, "Forbidden")
	return u, false
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) models.Page[T] {
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	data := append([]T{}, items[start:end]...)
	return models.Page[T]{
		Data: data,
		Meta: models.PaginationMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	}
}
