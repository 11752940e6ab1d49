package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// SanitizeFeedbackJSON is the lenient second pass applied when a
// completion fails strict validation:
//   - renames known key synonyms (areas_for_growth -> growth_areas)
//   - flattens string arrays into a single joined string
//   - coerces stray numbers to strings
//   - drops null/empty values and unknown keys
//
// Returns the cleaned JSON and the list of adjustments made.
func SanitizeFeedbackJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	adjusted := make([]string, 0, 8)
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			adjusted = append(adjusted, from+"->"+to)
		}
	}

	// 1) rename synonyms the model tends to invent
	rename("areas_for_growth", "growth_areas")
	rename("growth", "growth_areas")
	rename("areas_of_improvement", "growth_areas")
	rename("fit", "overall_fit")
	rename("overall", "overall_fit")
	rename("key_skills", "skills")

	// 2) coerce values to non-empty strings
	sectionKeys := []string{"skills", "experience", "strengths", "growth_areas", "overall_fit"}
	for _, k := range sectionKeys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				adjusted = append(adjusted, k+"(empty)")
			} else {
				m[k] = s
			}
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) == 0 {
				delete(m, k)
				adjusted = append(adjusted, k+"(empty list)")
			} else {
				m[k] = strings.Join(parts, "; ")
				adjusted = append(adjusted, k+"(list)")
			}
		case float64:
			m[k] = fmt.Sprintf("%v", t)
			adjusted = append(adjusted, k+"(number)")
		case nil:
			delete(m, k)
			adjusted = append(adjusted, k+"(null)")
		default:
			delete(m, k)
			adjusted = append(adjusted, k+"(type)")
		}
	}

	// 3) remove unknown keys (strict additionalProperties friendliness)
	allowed := map[string]struct{}{
		"skills": {}, "experience": {}, "strengths": {}, "growth_areas": {}, "overall_fit": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			adjusted = append(adjusted, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, adjusted, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(adjusted) > 0 {
		logger.Warn("llm.evaluate.sanitize_applied", "adjusted", adjusted)
	}
	return out, adjusted, nil
}
