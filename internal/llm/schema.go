package llm

// BuildFeedbackJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass it to the oracle as a structured output constraint
// and also use it locally to validate the completion.
func BuildFeedbackJSONSchema() map[string]any {
	section := map[string]any{"type": "string", "minLength": 1}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"skills":       section,
			"experience":   section,
			"strengths":    section,
			"growth_areas": section,
			"overall_fit":  section,
		},
		"required": []string{"skills", "experience", "strengths", "growth_areas", "overall_fit"},
	}
}
