package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateString_ValidPosting(t *testing.T) {
	doc := `{
		"title": "Backend Engineer",
		"company": "Acme",
		"description": "Build services",
		"requirements": ["Go"],
		"nice_to_have": [],
		"salary_range": null,
		"location": "Remote"
	}`
	assert.NoError(t, ValidateString(JobPosting, doc))
}

func TestValidateString_MissingRequiredField(t *testing.T) {
	doc := `{"title": "Backend Engineer"}`
	err := ValidateString(JobPosting, doc)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.NotEmpty(t, valErr.Errors)
}

func TestValidateString_ScoreBounds(t *testing.T) {
	analysis := func(score string) string {
		return `{
			"matched_skills": [], "missing_skills": [], "nice_to_have_matches": [],
			"experience_match": "ok", "experience_score": 0.5, "skills_score": 0.5,
			"overall_fit_score": ` + score + `,
			"strengths": [], "weaknesses": [], "recommendations": []
		}`
	}

	assert.NoError(t, ValidateString(ResumeAnalysis, analysis("0")))
	assert.NoError(t, ValidateString(ResumeAnalysis, analysis("1")))
	assert.Error(t, ValidateString(ResumeAnalysis, analysis("1.5")))
	assert.Error(t, ValidateString(ResumeAnalysis, analysis("-0.1")))
}

func TestValidateString_CoverLetterContent(t *testing.T) {
	valid := `{"content": "Dear...", "tone": "professional", "highlighted_skills": [], "key_achievements": []}`
	assert.NoError(t, ValidateString(CoverLetter, valid))

	empty := `{"content": "", "tone": "professional", "highlighted_skills": [], "key_achievements": []}`
	assert.Error(t, ValidateString(CoverLetter, empty), "empty content violates minLength")
}

func TestValidateString_UnparseableDocument(t *testing.T) {
	err := ValidateString(JobPosting, "not json")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
