package shell

import (
	"fmt"
	"text/tabwriter"

	"github.com/atinyakov/jobboard/internal/client/controller"
	"github.com/atinyakov/jobboard/internal/models"
)

func (s *Shell) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func (s *Shell) banner(msg string) {
	if msg != "" {
		s.printf("! %s\n", msg)
	}
}

func (s *Shell) pager(m models.PaginationMeta) {
	s.printf("page %d/%d (%d total)\n", m.Page, m.Pages(), m.Total)
}

func (s *Shell) renderDashboard() {
	st := s.dashboard.State()
	s.banner(st.Error)
	u, _ := s.session.CurrentUser()

	switch u.Role {
	case models.RoleRecruiter:
		s.printf("jobs: %d  open: %d  closed: %d  applications: %d\n",
			st.Stats.TotalJobs, st.Stats.OpenJobs, st.Stats.ClosedJobs, st.Stats.TotalApplications)
		s.table("ID\tTITLE\tSTATUS\tAPPLICATIONS", func(w *tabwriter.Writer) {
			for _, j := range st.Jobs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", j.ID, j.Title, j.Status, st.Counts[j.ID])
			}
		})
	case models.RoleCandidate:
		s.printf("applied: %d  pending: %d\n", st.Summary.Applied, st.Summary.Pending)
		s.table("ID\tTITLE\tCOMPANY\tLOCATION\tSTATUS\t", func(w *tabwriter.Writer) {
			for _, j := range st.Jobs {
				mark := ""
				switch {
				case st.Applied[j.ID]:
					mark = "applied"
				case s.dashboard.CanApply(j):
					mark = "apply " + fmt.Sprint(j.ID)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", j.ID, j.Title, j.Company, j.Location, j.Status, mark)
			}
		})
	}
	s.pager(st.Meta)
}

func (s *Shell) renderDetail() {
	st := s.detail.State()
	s.banner(st.Error)
	if !st.Loaded {
		return
	}
	j := st.Job
	s.printf("#%d %s [%s]\n%s, %s\n", j.ID, j.Title, j.Status, j.Company, j.Location)
	if j.Salary != "" {
		s.printf("salary: %s\n", j.Salary)
	}
	if c := j.Contact(); c != "" {
		s.printf("contact: %s\n", c)
	}
	s.printf("\n%s\n", j.Description)
	if j.Requirements != "" {
		s.printf("\nrequirements: %s\n", j.Requirements)
	}

	u, _ := s.session.CurrentUser()
	switch u.Role {
	case models.RoleRecruiter:
		s.applications(st.Visible)
	case models.RoleCandidate:
		switch {
		case st.HasApplied:
			s.printf("you applied to this job\n")
		case s.detail.CanApply():
			s.printf("type 'apply' to apply\n")
		}
	}
}

func (s *Shell) applications(apps []models.Application) {
	s.table("ID\tCANDIDATE\tNAME\tSTATUS\tAPPLIED", func(w *tabwriter.Writer) {
		for _, a := range apps {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", a.ID, a.CandidateID, a.CandidateName, a.Status, a.AppliedAt)
		}
	})
}

func (s *Shell) renderManage() {
	st := s.manage.State()
	s.banner(st.Error)
	if st.Success != "" {
		s.printf("%s\n", st.Success)
	}
	if st.Feedback != "" {
		s.printf("%s\n", st.Feedback)
		s.manage.DismissFeedback()
	}
	if !st.Loaded {
		return
	}
	f := st.Form
	mode := "view"
	if st.Editing {
		mode = "editing"
	}
	s.printf("#%d (%s)\n", st.Job.ID, mode)
	s.table("FIELD\tVALUE", func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "title\t%s\n", f.Title)
		fmt.Fprintf(w, "description\t%s\n", f.Description)
		fmt.Fprintf(w, "company\t%s\n", f.Company)
		fmt.Fprintf(w, "location\t%s\n", f.Location)
		fmt.Fprintf(w, "requirements\t%s\n", f.Requirements)
		fmt.Fprintf(w, "salary\t%s\n", f.Salary)
		fmt.Fprintf(w, "status\t%s\n", f.Status)
	})
	s.applications(st.Applications)
	if st.Selected != 0 {
		s.printf("selected candidate: %d\n", st.Selected)
	}
}

func (s *Shell) renderApplications() {
	st := s.apps.State()
	s.banner(st.Error)
	if st.Feedback != "" {
		s.printf("%s\n", st.Feedback)
		s.apps.DismissFeedback()
	}
	s.table("ID\tJOB\tCOMPANY\tSTATUS\tAPPLIED\t", func(w *tabwriter.Writer) {
		for _, a := range st.Applications {
			mark := ""
			if controller.CanCancel(a) {
				mark = "cancel " + fmt.Sprint(a.ID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.JobTitle, a.Company, a.Status, a.AppliedAt, mark)
		}
	})
	s.pager(st.Meta)
}
