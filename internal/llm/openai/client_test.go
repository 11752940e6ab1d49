package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-screener/internal/llm"
)

func completionResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newStubClient(t *testing.T, handler http.HandlerFunc, lenient bool) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "gpt-4o-mini",
		LenientJSON: lenient,
	}, nil)
	return c, srv
}

func TestEvaluate_OK(t *testing.T) {
	var gotBody map[string]any
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(completionResponse(
			`{"skills":"Go","experience":"8 years","strengths":"systems","growth_areas":"frontend","overall_fit":"strong"}`)))
	}, false)

	fb, err := c.Evaluate(context.Background(), llm.EvaluationRequest{
		ResumeText: "Jane Doe, 8 years of Go",
		Job:        llm.JobContext{Description: "Go backend role"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", fb.Model)
	assert.Equal(t, "Go", fb.Sections.Skills)
	assert.Contains(t, fb.Text, "Skills: Go")
	assert.Contains(t, fb.Text, "Overall Fit: strong")

	// request shape
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	rf, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", rf["type"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
}

func TestEvaluate_ServerErrorIsUnavailable(t *testing.T) {
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusInternalServerError)
	}, false)

	_, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrOracleUnavailable)
	assert.NotErrorIs(t, err, llm.ErrOracleRejected)
}

func TestEvaluate_UnreachableHostIsUnavailable(t *testing.T) {
	c := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrOracleUnavailable)
}

func TestEvaluate_EmptyCompletionIsRejected(t *testing.T) {
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse("")))
	}, false)

	_, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.ErrorIs(t, err, llm.ErrOracleRejected)
}

func TestEvaluate_NoChoicesIsRejected(t *testing.T) {
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, false)

	_, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.ErrorIs(t, err, llm.ErrOracleRejected)
}

func TestEvaluate_SchemaViolationStrictMode(t *testing.T) {
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse(`{"skills":["Go","SQL"]}`)))
	}, false)

	_, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.ErrorIs(t, err, llm.ErrOracleRejected)
}

func TestEvaluate_LenientModeRepairsCompletion(t *testing.T) {
	content := `{
		"key_skills": ["Go", "Postgres"],
		"experience": 8,
		"strengths": "distributed systems",
		"areas_for_growth": "frontend",
		"fit": "strong",
		"reasoning": "because"
	}`
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse(content)))
	}, true)

	fb, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Go; Postgres", fb.Sections.Skills)
	assert.Equal(t, "8", fb.Sections.Experience)
	assert.Equal(t, "strong", fb.Sections.OverallFit)
}

func TestEvaluate_LenientModeStillRejectsHopelessOutput(t *testing.T) {
	c, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse(`{"apology":"I cannot assess this resume"}`)))
	}, true)

	_, err := c.Evaluate(context.Background(), llm.EvaluationRequest{ResumeText: "x"})
	require.ErrorIs(t, err, llm.ErrOracleRejected)
}
