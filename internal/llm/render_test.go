package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFeedback(t *testing.T) {
	s := FeedbackSections{
		Skills:      "Go, Postgres, Kubernetes",
		Experience:  "8 years, highly relevant",
		Strengths:   "distributed systems design",
		GrowthAreas: "frontend exposure",
		OverallFit:  "strong match",
	}
	text := RenderFeedback(s)

	// exact labels, in order
	wantOrder := []string{"Skills:", "Experience:", "Strengths:", "Areas for Growth:", "Overall Fit:"}
	last := -1
	for _, label := range wantOrder {
		i := strings.Index(text, label)
		require.GreaterOrEqual(t, i, 0, "missing label %q", label)
		assert.Greater(t, i, last, "label %q out of order", label)
		last = i
	}

	assert.Contains(t, text, "Skills: Go, Postgres, Kubernetes")
	assert.Contains(t, text, "Overall Fit: strong match")

	blocks := strings.Split(text, "\n\n")
	assert.Len(t, blocks, 5)
}

func TestRenderFeedback_TrimsSectionValues(t *testing.T) {
	text := RenderFeedback(FeedbackSections{Skills: "  Go  "})
	assert.Contains(t, text, "Skills: Go\n")
}

func TestValidateFeedbackSchema(t *testing.T) {
	schema := BuildFeedbackJSONSchema()

	t.Run("complete document passes", func(t *testing.T) {
		doc := []byte(`{"skills":"Go","experience":"8y","strengths":"systems","growth_areas":"ui","overall_fit":"strong"}`)
		assert.NoError(t, ValidateJSONAgainstSchema(schema, doc))
	})

	t.Run("missing section fails", func(t *testing.T) {
		doc := []byte(`{"skills":"Go","experience":"8y","strengths":"systems","growth_areas":"ui"}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, doc))
	})

	t.Run("empty section fails", func(t *testing.T) {
		doc := []byte(`{"skills":"","experience":"8y","strengths":"systems","growth_areas":"ui","overall_fit":"strong"}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, doc))
	})

	t.Run("extra keys fail", func(t *testing.T) {
		doc := []byte(`{"skills":"Go","experience":"8y","strengths":"systems","growth_areas":"ui","overall_fit":"strong","reasoning":"..."}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, doc))
	})
}
