package llm

import (
	"regexp"
	"strings"
)

// DefaultMaxResumeChars bounds the candidate text included in the prompt.
// Truncation happens before prompt assembly so the structural instructions
// are never cut off.
const DefaultMaxResumeChars = 2000

var wsRe = regexp.MustCompile(`\s+`)

// NormalizeResumeText collapses whitespace runs to single spaces, trims,
// and truncates to maxChars (rune-safe). maxChars <= 0 applies the default.
func NormalizeResumeText(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxResumeChars
	}
	text = strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) > maxChars {
		text = string(runes[:maxChars])
	}
	return text
}

// BuildSystemPrompt fixes the oracle's role and response discipline.
func BuildSystemPrompt() string {
	return strings.Join([]string{
		"You are an expert HR assistant screening a candidate's resume against a job posting.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"Be concise and concrete; cite evidence from the resume text.",
		"Never output null. Every key must contain a non-empty assessment.",
	}, " ")
}

// BuildUserPrompt assembles the deterministic four-section prompt: job
// description, job preferences, candidate text, output-format
// instructions. Sections are never reordered or omitted; the description
// and preferences are included verbatim.
func BuildUserPrompt(job JobContext, resumeText string) string {
	var b strings.Builder
	b.WriteString("Job Description:\n")
	b.WriteString(job.Description)
	b.WriteString("\n\nJob Preferences:\n")
	b.WriteString(job.Preferences)
	b.WriteString("\n\nResume Text:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\nProvide your assessment as JSON with exactly these keys:\n")
	b.WriteString(`"skills" - key skills identified in the resume` + "\n")
	b.WriteString(`"experience" - years of experience and relevance to the role` + "\n")
	b.WriteString(`"strengths" - top strengths and most relevant experience` + "\n")
	b.WriteString(`"growth_areas" - areas where the candidate may need improvement` + "\n")
	b.WriteString(`"overall_fit" - brief assessment of overall fit for the position`)
	return b.String()
}
