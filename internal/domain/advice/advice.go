// Package advice derives study recommendations from training progress.
package advice

import model "github.com/okian/skillnav/internal/domain/model"

// Thresholds below which a rule fires.
const (
	CompletionThreshold = 70.0
	McqMeanThreshold    = 50.0
)

// Focus areas and their suggestions.
const (
	FocusCourseCompletion = "Course Completion"
	FocusMcqPerformance   = "MCQ Performance"

	SuggestCourseCompletion = "Increase course completion rate by dedicating more time."
	SuggestMcqPerformance   = "Review MCQ topics and practice more questions."
)

// Response keys of the single-focus recommendation.
const (
	KeyFocusArea  = "focus_area"
	KeySuggestion = "suggestion"
)

// Finding is one triggered rule.
type Finding struct {
	FocusArea  string `json:"focus_area"`
	Suggestion string `json:"suggestion"`
}

// MeanMcqScore is sum(score)/max(1,count); it is 0 with no scores.
func MeanMcqScore(scores []model.McqScore) float64 {
	sum := 0
	for _, s := range scores {
		sum += s.Score
	}
	return float64(sum) / float64(max(1, len(scores)))
}

// Findings returns every triggered rule in evaluation order.
func Findings(p model.TrainingProgress) []Finding {
	out := make([]Finding, 0, 2)
	if p.CourseCompletion < CompletionThreshold {
		out = append(out, Finding{FocusArea: FocusCourseCompletion, Suggestion: SuggestCourseCompletion})
	}
	if MeanMcqScore(p.McqScores) < McqMeanThreshold {
		out = append(out, Finding{FocusArea: FocusMcqPerformance, Suggestion: SuggestMcqPerformance})
	}
	return out
}

// Recommend returns the single focus area, where a later rule replaces an
// earlier one. The map is empty when nothing fires.
func Recommend(p model.TrainingProgress) map[string]string {
	out := make(map[string]string, 2)
	for _, f := range Findings(p) {
		out[KeyFocusArea] = f.FocusArea
		out[KeySuggestion] = f.Suggestion
	}
	return out
}
