package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-copilot/internal/schemas"
	"github.com/jonathan/job-copilot/internal/types"
)

// fakeClient returns canned responses for extraction tests.
type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (c *fakeClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	return c.GenerateJSON(context.Background(), prompt)
}

func (c *fakeClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func (c *fakeClient) Close() error { return nil }

const validPosting = `{
	"title": "Backend Engineer",
	"company": "Acme",
	"description": "Build services",
	"requirements": ["Go", "SQL"],
	"nice_to_have": ["Kubernetes"],
	"salary_range": null,
	"location": "Remote"
}`

func TestExtract_Success(t *testing.T) {
	client := &fakeClient{response: validPosting}
	ex := New(client)

	var posting types.JobPosting
	err := ex.Extract(context.Background(), "parse", "parse-job-posting",
		map[string]string{"JobPostingRaw": "We are hiring a backend engineer"},
		schemas.JobPosting, &posting)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", posting.Title)
	assert.Equal(t, "Acme", posting.Company)
	assert.Equal(t, []string{"Go", "SQL"}, posting.Requirements)

	// The rendered prompt carries the substituted variable.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "We are hiring a backend engineer")
	assert.NotContains(t, client.prompts[0], "{{.JobPostingRaw}}")
}

func TestExtract_StripsCodeFences(t *testing.T) {
	client := &fakeClient{response: "```json\n" + validPosting + "\n```"}
	ex := New(client)

	var posting types.JobPosting
	err := ex.Extract(context.Background(), "parse", "parse-job-posting",
		map[string]string{"JobPostingRaw": "posting"}, schemas.JobPosting, &posting)
	require.NoError(t, err)
	assert.Equal(t, "Acme", posting.Company)
}

func TestExtract_InvalidJSON(t *testing.T) {
	client := &fakeClient{response: "this is not JSON at all"}
	ex := New(client)

	var posting types.JobPosting
	err := ex.Extract(context.Background(), "parse", "parse-job-posting",
		map[string]string{"JobPostingRaw": "posting"}, schemas.JobPosting, &posting)
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "parse", exErr.Step)
	assert.Equal(t, "response is not valid JSON", exErr.Message)
	assert.Equal(t, "this is not JSON at all", exErr.RawResponse)
}

func TestExtract_SchemaViolation(t *testing.T) {
	// Score above 1 violates the analysis schema.
	client := &fakeClient{response: `{
		"matched_skills": ["Go"],
		"missing_skills": [],
		"nice_to_have_matches": [],
		"experience_match": "strong",
		"experience_score": 0.8,
		"skills_score": 0.9,
		"overall_fit_score": 1.5,
		"strengths": [],
		"weaknesses": [],
		"recommendations": []
	}`}
	ex := New(client)

	var analysis types.ResumeAnalysis
	err := ex.Extract(context.Background(), "analyze", "analyze-resume",
		map[string]string{}, schemas.ResumeAnalysis, &analysis)
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "response violates output schema", exErr.Message)

	var valErr *schemas.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestExtract_ModelError(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	ex := New(client)

	var posting types.JobPosting
	err := ex.Extract(context.Background(), "parse", "parse-job-posting",
		map[string]string{}, schemas.JobPosting, &posting)
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "model call failed", exErr.Message)
	assert.ErrorContains(t, err, "rate limited")
}

func TestExtract_UnknownPromptKey(t *testing.T) {
	ex := New(&fakeClient{})

	var posting types.JobPosting
	err := ex.Extract(context.Background(), "parse", "no-such-prompt",
		map[string]string{}, schemas.JobPosting, &posting)
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "prompt template missing", exErr.Message)
}
