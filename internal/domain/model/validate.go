package model

import (
	"math"
	"net/mail"
	"strings"
)

// Validate checks the required registration fields.
func (c Candidate) Validate() error {
	required := []struct {
		name, value string
	}{
		{"name", c.Name},
		{"email", c.Email},
		{"degree", c.Degree},
		{"specialization", c.Specialization},
		{"phone_number", c.PhoneNumber},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	return ValidateEmail(c.Email)
}

// ValidateEmail accepts a bare address, not a display-name form.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email %q is not a valid address", email)
	}
	return nil
}

// ValidateCompletion checks a course completion percentage.
func ValidateCompletion(pct float64) error {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return invalid("course_completion must be within [0,100], got %v", pct)
	}
	return nil
}

// Validate checks an MCQ result.
func (s McqScore) Validate() error {
	switch {
	case s.Total <= 0:
		return invalid("total must be positive, got %d", s.Total)
	case s.Score < 0:
		return invalid("score must not be negative, got %d", s.Score)
	case s.Score > s.Total:
		return invalid("score %d exceeds total %d", s.Score, s.Total)
	}
	return nil
}

// Validate checks a project evaluation.
func (p ProjectEvaluation) Validate() error {
	if p.Score < 0 || p.Score > 100 {
		return invalid("project score must be within [0,100], got %d", p.Score)
	}
	if strings.TrimSpace(p.Feedback) == "" {
		return invalid("feedback is required")
	}
	return nil
}
