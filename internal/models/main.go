// Package models defines the core data structures exchanged with the job board API.
package models

import "fmt"

// Role identifies what a user can do on the job board.
type Role string

const (
	// RoleCandidate browses jobs and applies to them.
	RoleCandidate Role = "CANDIDATE"
	// RoleRecruiter publishes jobs and manages their applications.
	RoleRecruiter Role = "RECRUITER"
)

// ParseRole validates a role name received from the user or the API.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCandidate, RoleRecruiter:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the identity decoded from the bearer credential.
type User struct {
	// ID is the numeric identifier of the user on the server.
	ID int64 `json:"id"`
	// Role is either CANDIDATE or RECRUITER.
	Role Role `json:"role"`
	// Email is the login email.
	Email string `json:"email"`
	// Name is the display name.
	Name string `json:"name"`
}

// JobStatus is the lifecycle state of a job posting.
type JobStatus string

const (
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
	JobPaused JobStatus = "PAUSED"
)

// ParseJobStatus validates a job status filter or form value.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobOpen, JobClosed, JobPaused:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// Job is a job posting.
type Job struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Requirements   string    `json:"requirements,omitempty"`
	Salary         string    `json:"salary,omitempty"`
	Status         JobStatus `json:"status"`
	CreatedAt      string    `json:"created_at,omitempty"`
	RecruiterID    int64     `json:"recruiter_id,omitempty"`
	RecruiterEmail string    `json:"recruiter_email,omitempty"`
	Anonymous      bool      `json:"anonymous,omitempty"`
}

// Contact returns the recruiter email that may be shown to viewers.
// Anonymous postings never expose it.
func (j Job) Contact() string {
	if j.Anonymous {
		return ""
	}
	return j.RecruiterEmail
}

// ApplicationStatus is the workflow state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationRejected ApplicationStatus = "REJECTED"
	ApplicationHired    ApplicationStatus = "HIRED"
	ApplicationCanceled ApplicationStatus = "CANCELED"
)

// ParseApplicationStatus validates an application status filter value.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case ApplicationPending, ApplicationRejected, ApplicationHired, ApplicationCanceled:
		return ApplicationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown application status %q", s)
	}
}

// Application is a candidate's application to a job.
type Application struct {
	ID            int64             `json:"id"`
	JobID         int64             `json:"job_id"`
	CandidateID   int64             `json:"candidate_id"`
	CandidateName string            `json:"candidate_name,omitempty"`
	Status        ApplicationStatus `json:"status"`
	JobTitle      string            `json:"job_title"`
	Company       string            `json:"company"`
	Location      string            `json:"location"`
	AppliedAt     string            `json:"applied_at"`
}

// PaginationMeta describes one page of a paginated listing.
type PaginationMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// Consistent reports whether TotalPages == ceil(Total/Limit).
// Metadata without a positive limit is considered consistent.
func (m PaginationMeta) Consistent() bool {
	if m.Limit <= 0 {
		return true
	}
	return m.TotalPages == (m.Total+m.Limit-1)/m.Limit
}

// Pages returns the number of pages a pager should offer, never less than one.
func (m PaginationMeta) Pages() int {
	if m.TotalPages < 1 {
		return 1
	}
	return m.TotalPages
}

// Page is a paginated API response.
type Page[T any] struct {
	Data []T           `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// ListParams are the query parameters accepted by paginated endpoints.
type ListParams struct {
	Page   int
	Limit  int
	Query  string
	Status JobStatus
}

// RegisterInput is the payload of POST /register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginInput is the payload of POST /login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer credential issued by the server.
type LoginResponse struct {
	Token string `json:"token"`
}

// CreateJobInput is the payload of POST /jobs.
type CreateJobInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Requirements string `json:"requirements,omitempty"`
	Salary       string `json:"salary,omitempty"`
	Anonymous    bool   `json:"anonymous,omitempty"`
}

// UpdateJobInput is the payload of PATCH /jobs/:id.
type UpdateJobInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Requirements string    `json:"requirements,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	Status       JobStatus `json:"status"`
}

// FinalizeInput is the payload of POST /jobs/:id/finalize.
type FinalizeInput struct {
	CandidateID int64 `json:"candidate_id"`
}

// DashboardStats is the candidate summary returned by GET /dashboard/summary.
type DashboardStats struct {
	Applied int `json:"applied"`
	Pending int `json:"pending"`
}

// RecruiterStats is computed on the client from the recruiter's jobs.
type RecruiterStats struct {
	TotalJobs         int `json:"total_jobs"`
	OpenJobs          int `json:"open_jobs"`
	ClosedJobs        int `json:"closed_jobs"`
	TotalApplications int `json:"total_applications"`
}
