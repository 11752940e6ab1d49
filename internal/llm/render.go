package llm

import "strings"

// Section labels as they appear in rendered feedback. The applicant
// review screen keys off these exact strings.
var sectionLabels = [...]struct {
	label string
	value func(FeedbackSections) string
}{
	{"Skills", func(s FeedbackSections) string { return s.Skills }},
	{"Experience", func(s FeedbackSections) string { return s.Experience }},
	{"Strengths", func(s FeedbackSections) string { return s.Strengths }},
	{"Areas for Growth", func(s FeedbackSections) string { return s.GrowthAreas }},
	{"Overall Fit", func(s FeedbackSections) string { return s.OverallFit }},
}

// RenderFeedback formats the structured sections into the five labeled
// blocks stored as feedback text.
func RenderFeedback(s FeedbackSections) string {
	var b strings.Builder
	for i, sec := range sectionLabels {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sec.label)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(sec.value(s)))
	}
	return b.String()
}
