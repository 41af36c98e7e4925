// Package model contains domain models passed between layers.
package model

import "strings"

// Batch names a training cohort. The set is fixed.
type Batch string

const (
	BatchJava            Batch = "Java"
	BatchDotNet          Batch = ".NET"
	BatchDataEngineering Batch = "Data Engineering"
)

// Batches returns every batch in display order.
func Batches() []Batch {
	return []Batch{BatchJava, BatchDotNet, BatchDataEngineering}
}

// Valid reports whether b is one of the known batches.
func (b Batch) Valid() bool {
	switch b {
	case BatchJava, BatchDotNet, BatchDataEngineering:
		return true
	}
	return false
}

func (b Batch) String() string { return string(b) }

// McqScore is one multiple-choice test result.
type McqScore struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// ProjectEvaluation is one reviewed project.
type ProjectEvaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// TrainingProgress tracks a candidate after enrollment. Both score
// sequences are append-only.
type TrainingProgress struct {
	CourseCompletion   float64             `json:"course_completion"`
	McqScores          []McqScore          `json:"mcq_scores"`
	ProjectEvaluations []ProjectEvaluation `json:"project_evaluations"`
}

// AttachmentKind groups uploaded files.
type AttachmentKind string

const (
	AttachmentCertification AttachmentKind = "certifications"
	AttachmentInternship    AttachmentKind = "internships"
	AttachmentCourse        AttachmentKind = "courses"
)

// Attachment records where an uploaded file was stored.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	Filename string         `json:"filename"`
	Location string         `json:"location"`
}

// Candidate is a registered trainee. Email is the identity.
type Candidate struct {
	Name                      string           `json:"name"`
	Email                     string           `json:"email"`
	Degree                    string           `json:"degree"`
	Specialization            string           `json:"specialization"`
	PhoneNumber               string           `json:"phone_number"`
	Certifications            []string         `json:"certifications"`
	InternshipDetails         string           `json:"internship_details"`
	CoursesCompleted          []string         `json:"courses_completed"`
	LinkedInProfile           string           `json:"linkedin_profile"`
	GitHubProfile             string           `json:"github_profile"`
	ProgrammingLanguagesKnown []string         `json:"programming_languages_known"`
	TrainingProgress          TrainingProgress `json:"training_progress"`
	BatchName                 *Batch           `json:"batch_name"`
	Attachments               []Attachment     `json:"attachments,omitempty"`
}

// Clone returns a deep copy of c.
func (c Candidate) Clone() Candidate {
	out := c
	out.Certifications = cloneSlice(c.Certifications)
	out.CoursesCompleted = cloneSlice(c.CoursesCompleted)
	out.ProgrammingLanguagesKnown = cloneSlice(c.ProgrammingLanguagesKnown)
	out.Attachments = cloneSlice(c.Attachments)
	out.TrainingProgress.McqScores = cloneSlice(c.TrainingProgress.McqScores)
	out.TrainingProgress.ProjectEvaluations = cloneSlice(c.TrainingProgress.ProjectEvaluations)
	if c.BatchName != nil {
		b := *c.BatchName
		out.BatchName = &b
	}
	return out
}

// Allocated reports whether a batch has been assigned.
func (c Candidate) Allocated() bool { return c.BatchName != nil }

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// NormalizeEmail trims and lower-cases an email so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitList parses a comma-separated form value, dropping blanks.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
