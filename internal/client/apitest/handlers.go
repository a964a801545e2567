package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/jobboard/internal/models"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if _, err := models.ParseRole(string(in.Role)); err != nil {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	s.Lock()
	defer s.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == in.Email {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
	}
	u := s.addUserLocked(in.Name, in.Email, in.Password, in.Role)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	s.Lock()
	var found *models.User
	for _, acc := range s.accounts {
		if acc.user.Email == in.Email && acc.password == in.Password {
			u := acc.user
			found = &u
		}
	}
	s.Unlock()
	if found == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: s.Token(*found)})
}

func matches(j models.Job, q string, status models.JobStatus) bool {
	if status != "" && j.Status != status {
		return false
	}
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(j.Title), q) ||
		strings.Contains(strings.ToLower(j.Company), q) ||
		strings.Contains(strings.ToLower(j.Description), q)
}

func (s *Server) filterJobs(r *http.Request, owner int64) []models.Job {
	q := r.URL.Query().Get("q")
	status := models.JobStatus(r.URL.Query().Get("status"))
	out := []models.Job{}
	for _, j := range s.jobs {
		if owner != 0 && j.RecruiterID != owner {
			continue
		}
		if matches(j, q, status) {
			out = append(out, s.withEmail(j))
		}
	}
	return out
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r); !ok {
		return
	}
	page, limit := pageParams(r)
	s.Lock()
	defer s.Unlock()
	writeJSON(w, http.StatusOK, paginate(s.filterJobs(r, 0), page, limit))
}

func (s *Server) listMyJobs(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleRecruiter)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	s.Lock()
	defer s.Unlock()
	writeJSON(w, http.StatusOK, paginate(s.filterJobs(r, u.ID), page, limit))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s.Lock()
	defer s.Unlock()
	j := s.findJob(id)
	if j == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, s.withEmail(*j))
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleRecruiter)
	if !ok {
		return
	}
	var in models.CreateJobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	j := s.AddJob(models.Job{
		Title:        in.Title,
		Description:  in.Description,
		Company:      in.Company,
		Location:     in.Location,
		Requirements: in.Requirements,
		Salary:       in.Salary,
		Anonymous:    in.Anonymous,
		RecruiterID:  u.ID,
	})
	writeJSON(w, http.StatusCreated, j)
}

// ownedJob resolves the {id} job and checks the caller owns it; callers hold the lock.
func (s *Server) ownedJob(w http.ResponseWriter, r *http.Request, u models.User) *models.Job {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	j := s.findJob(id)
	if j == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return nil
	}
	if j.RecruiterID != u.ID {
		writeError(w, http.StatusForbidden, "not the owner of this job")
		return nil
	}
	return j
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleRecruiter)
	if !ok {
		return
	}
	var in models.UpdateJobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if _, err := models.ParseJobStatus(string(in.Status)); err != nil {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.Lock()
	defer s.Unlock()
	j := s.ownedJob(w, r, u)
	if j == nil {
		return
	}
	j.Title, j.Description, j.Company, j.Location = in.Title, in.Description, in.Company, in.Location
	j.Requirements, j.Salary, j.Status = in.Requirements, in.Salary, in.Status
	writeJSON(w, http.StatusOK, s.withEmail(*j))
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleCandidate)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s.Lock()
	defer s.Unlock()
	j := s.findJob(id)
	if j == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if j.Status != models.JobOpen {
		writeError(w, http.StatusBadRequest, "job is not open")
		return
	}
	for _, a := range s.apps {
		if a.JobID == id && a.CandidateID == u.ID && a.Status != models.ApplicationCanceled {
			writeError(w, http.StatusConflict, "you have already applied to this job")
			return
		}
	}
	a := s.addApplicationLocked(models.Application{JobID: id, CandidateID: u.ID, CandidateName: u.Name})
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) finalize(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleRecruiter)
	if !ok {
		return
	}
	var in models.FinalizeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.CandidateID == 0 {
		writeError(w, http.StatusBadRequest, "candidate_id is required")
		return
	}
	s.Lock()
	defer s.Unlock()
	j := s.ownedJob(w, r, u)
	if j == nil {
		return
	}
	if j.Status != models.JobOpen {
		writeError(w, http.StatusBadRequest, "job is not open")
		return
	}
	applied := false
	for _, a := range s.apps {
		if a.JobID == j.ID && a.CandidateID == in.CandidateID && a.Status != models.ApplicationCanceled {
			applied = true
		}
	}
	if !applied {
		writeError(w, http.StatusBadRequest, "candidate did not apply to this job")
		return
	}
	for i := range s.apps {
		a := &s.apps[i]
		if a.JobID != j.ID || a.Status == models.ApplicationCanceled {
			continue
		}
		if a.CandidateID == in.CandidateID {
			a.Status = models.ApplicationHired
		} else {
			a.Status = models.ApplicationRejected
		}
	}
	j.Status = models.JobClosed
	writeJSON(w, http.StatusOK, map[string]string{"message": "job finalized"})
}

func (s *Server) jobApplications(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleRecruiter)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	s.Lock()
	defer s.Unlock()
	j := s.ownedJob(w, r, u)
	if j == nil {
		return
	}
	if s.FailApplications[j.ID] {
		writeError(w, http.StatusInternalServerError, "applications unavailable")
		return
	}
	out := []models.Application{}
	for _, a := range s.apps {
		if a.JobID == j.ID {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, paginate(out, page, limit))
}

func (s *Server) myApplications(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleCandidate)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	s.Lock()
	defer s.Unlock()
	out := []models.Application{}
	for _, a := range s.apps {
		if a.CandidateID == u.ID {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, paginate(out, page, limit))
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r, models.RoleCandidate)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s.Lock()
	defer s.Unlock()
	for i := range s.apps {
		a := &s.apps[i]
		if a.ID != id || a.CandidateID != u.ID {
			continue
		}
		if a.Status != models.ApplicationPending {
			writeError(w, http.StatusBadRequest, "only pending applications can be canceled")
			return
		}
		a.Status = models.ApplicationCanceled
		writeJSON(w, http.StatusOK, *a)
		return
	}
	writeError(w, http.StatusNotFound, "application not found")
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	u, ok := requireRole(w, r)
	if !ok {
		return
	}
	var stats models.DashboardStats
	if u.Role == models.RoleCandidate {
		s.Lock()
		for _, a := range s.apps {
			if a.CandidateID != u.ID {
				continue
			}
			stats.Applied++
			if a.Status == models.ApplicationPending {
				stats.Pending++
			}
		}
		s.Unlock()
	}
	writeJSON(w, http.StatusOK, stats)
}
