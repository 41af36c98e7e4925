// Package report models the AI performance report: its input, the
// generation prompt and the document handed to a renderer.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	model "github.com/okian/skillnav/internal/domain/model"
)

// Document titles and the text used when generation yields nothing.
const (
	Title                = "Student Performance Report"
	RecommendationsTitle = "Recommendations"
	ChartTitle           = "MCQ Scores"
	ChartXLabel          = "MCQ"
	ChartYLabel          = "Score"
	FallbackText         = "No recommendations available."
)

// Input is a candidate summary submitted for a report.
type Input struct {
	Batch                  string         `json:"batch"`
	McqScores              map[string]int `json:"mcq_scores"`
	ProjectScore           int            `json:"project_score"`
	CourseCompletionStatus int            `json:"course_completion_status"`
	Internships            []string       `json:"internships"`
	Certifications         []string       `json:"certifications"`
}

// Validate checks the input at the boundary.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Batch) == "" {
		return fmt.Errorf("%w: batch is required", model.ErrInvalidInput)
	}
	for name, score := range in.McqScores {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: mcq name must not be empty", model.ErrInvalidInput)
		}
		if score < 0 {
			return fmt.Errorf("%w: mcq score for %q must not be negative", model.ErrInvalidInput, name)
		}
	}
	if in.ProjectScore < 0 {
		return fmt.Errorf("%w: project_score must not be negative", model.ErrInvalidInput)
	}
	if err := model.ValidateCompletion(float64(in.CourseCompletionStatus)); err != nil {
		return err
	}
	return nil
}

// McqNames returns the MCQ names in sorted order.
func (in Input) McqNames() []string {
	names := make([]string, 0, len(in.McqScores))
	for name := range in.McqScores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPrompt renders the input as a single line for the model.
func BuildPrompt(in Input) string {
	return fmt.Sprintf(
		"Batch: %s, MCQ Scores: %s, Project Score: %d, Course Completion Status: %d, Internships: %s, Certifications: %s.",
		in.Batch, formatScores(in), in.ProjectScore, in.CourseCompletionStatus,
		formatList(in.Internships), formatList(in.Certifications),
	)
}

func formatScores(in Input) string {
	parts := make([]string, 0, len(in.McqScores))
	for _, name := range in.McqNames() {
		parts = append(parts, fmt.Sprintf("'%s': %d", name, in.McqScores[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatList(items []string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, "'"+it+"'")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Bar is one column of the score chart.
type Bar struct {
	Label string
	Value float64
}

// Field is a labelled detail line. Items, when set, are listed under it.
type Field struct {
	Label string
	Value string
	Items []Field
}

// Line is one recommendation paragraph.
type Line struct {
	Text   string
	Bullet bool
}

// Document is the renderer-neutral report.
type Document struct {
	Title           string
	ChartTitle      string
	ChartXLabel     string
	ChartYLabel     string
	Chart           []Bar
	Details         []Field
	Recommendations []Line
}

// ChartMax is the tallest bar, at least 1 so scales stay finite.
func (d Document) ChartMax() float64 {
	hi := 1.0
	for _, b := range d.Chart {
		hi = math.Max(hi, b.Value)
	}
	return hi
}

// NewDocument lays out the report for in and the generated text.
func NewDocument(in Input, recommendations string) Document {
	names := in.McqNames()
	chart := make([]Bar, 0, len(names))
	scores := make([]Field, 0, len(names))
	for _, name := range names {
		v := in.McqScores[name]
		chart = append(chart, Bar{Label: name, Value: float64(v)})
		scores = append(scores, Field{Label: name, Value: fmt.Sprint(v)})
	}

	return Document{
		Title:       Title,
		ChartTitle:  ChartTitle,
		ChartXLabel: ChartXLabel,
		ChartYLabel: ChartYLabel,
		Chart:       chart,
		Details: []Field{
			{Label: "Batch", Value: in.Batch},
			{Label: "MCQ Scores", Items: scores},
			{Label: "Project Score", Value: fmt.Sprint(in.ProjectScore)},
			{Label: "Course Completion Status", Value: fmt.Sprintf("%d%%", in.CourseCompletionStatus)},
			{Label: "Internships", Value: strings.Join(in.Internships, ", ")},
			{Label: "Certifications", Value: strings.Join(in.Certifications, ", ")},
		},
		Recommendations: RecommendationLines(recommendations),
	}
}

// RecommendationLines strips markdown bold markers and splits text into
// lines; a leading "- " marks a bullet.
func RecommendationLines(text string) []Line {
	if strings.TrimSpace(text) == "" {
		text = FallbackText
	}
	text = strings.ReplaceAll(text, "**", "")
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]Line, 0, len(raw))
	for _, l := range raw {
		if rest, ok := strings.CutPrefix(l, "- "); ok {
			out = append(out, Line{Text: rest, Bullet: true})
			continue
		}
		out = append(out, Line{Text: l})
	}
	return out
}
