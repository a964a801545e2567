package shell

import (
	"strings"
)

// prompt prints label and returns the next trimmed input line, or "" at end
// of input.
func (s *Shell) prompt(label string) string {
	s.printf("%s", label)
	if !s.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(s.scanner.Text())
}

// promptJob asks for every field of a new job. Empty answers leave the field
// unset.
func (s *Shell) promptJob() error {
	fields := []struct{ name, label string }{
		{"title", "Title: "},
		{"description", "Description: "},
		{"company", "Company: "},
		{"location", "Location: "},
		{"requirements", "Requirements (optional): "},
		{"salary", "Salary (optional): "},
		{"anonymous", "Hide contact (y/N): "},
	}
	for _, f := range fields {
		v := s.prompt(f.label)
		if f.name == "anonymous" {
			v = strings.ToLower(v)
			if v != "y" && v != "yes" {
				continue
			}
			v = "true"
		}
		if v == "" {
			continue
		}
		if err := s.create.SetField(f.name, v); err != nil {
			return err
		}
	}
	return nil
}
