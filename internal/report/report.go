// Package report shapes workflow results for clients: a clean export record,
// a human-oriented summary, input validation, and cover letter formatting.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-copilot/internal/workflow"
)

// minInputLength is the minimum accepted length for the job posting and
// resume inputs, counted in runes.
const minInputLength = 50

// maxSummaryItems caps the strengths and recommendations lists in a Summary.
const maxSummaryItems = 3

// ExportRecord is the flattened, serialization-ready view of a workflow
// result. All sections are present even when the corresponding step never
// ran; their fields are then zero or null.
type ExportRecord struct {
	JobPosting  ExportJobPosting  `json:"job_posting"`
	Analysis    ExportAnalysis    `json:"analysis"`
	CoverLetter ExportCoverLetter `json:"cover_letter"`
	Metadata    ExportMetadata    `json:"metadata"`
}

type ExportJobPosting struct {
	Title             string `json:"title"`
	Company           string `json:"company"`
	Location          string `json:"location"`
	SalaryRange       string `json:"salary_range"`
	RequirementsCount int    `json:"requirements_count"`
}

type ExportAnalysis struct {
	OverallFitScore    *float64 `json:"overall_fit_score"`
	MatchedSkillsCount int      `json:"matched_skills_count"`
	MissingSkillsCount int      `json:"missing_skills_count"`
	ExperienceScore    float64  `json:"experience_score"`
	SkillsScore        float64  `json:"skills_score"`
}

type ExportCoverLetter struct {
	Content                string `json:"content"`
	Tone                   string `json:"tone"`
	HighlightedSkillsCount int    `json:"highlighted_skills_count"`
}

type ExportMetadata struct {
	StepsCompleted []string `json:"steps_completed"`
	Error          string   `json:"error,omitempty"`
}

// Export builds an ExportRecord from a workflow state. Safe on partial
// states: missing step outputs produce zero-valued sections.
func Export(st *workflow.State) ExportRecord {
	var rec ExportRecord
	if st == nil {
		return rec
	}

	if st.JobPosting != nil {
		rec.JobPosting = ExportJobPosting{
			Title:             st.JobPosting.Title,
			Company:           st.JobPosting.Company,
			Location:          st.JobPosting.Location,
			SalaryRange:       st.JobPosting.SalaryRange,
			RequirementsCount: len(st.JobPosting.Requirements),
		}
	}
	if st.ResumeAnalysis != nil {
		rec.Analysis = ExportAnalysis{
			OverallFitScore:    st.MatchingScore,
			MatchedSkillsCount: len(st.ResumeAnalysis.MatchedSkills),
			MissingSkillsCount: len(st.ResumeAnalysis.MissingSkills),
			ExperienceScore:    st.ResumeAnalysis.ExperienceScore,
			SkillsScore:        st.ResumeAnalysis.SkillsScore,
		}
	}
	if st.CoverLetter != nil {
		rec.CoverLetter = ExportCoverLetter{
			Content:                st.CoverLetter.Content,
			Tone:                   st.CoverLetter.Tone,
			HighlightedSkillsCount: len(st.CoverLetter.HighlightedSkills),
		}
	}
	rec.Metadata = ExportMetadata{
		StepsCompleted: st.StepsCompleted,
		Error:          st.Error,
	}
	return rec
}

// Summary is the condensed human-oriented view of a completed analysis.
// Scores are percentage strings with one decimal place, e.g. "85.0%".
type Summary struct {
	Job             SummaryJob    `json:"job"`
	FitAssessment   FitAssessment `json:"fit_assessment"`
	MatchedSkills   []string      `json:"matched_skills"`
	MissingSkills   []string      `json:"missing_skills"`
	KeyStrengths    []string      `json:"key_strengths"`
	Recommendations []string      `json:"recommendations"`
	CoverLetterOK   bool          `json:"cover_letter_ready"`
}

type SummaryJob struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

type FitAssessment struct {
	OverallScore        string `json:"overall_score"`
	SkillsAlignment     string `json:"skills_alignment"`
	ExperienceAlignment string `json:"experience_alignment"`
}

// Summarize builds a Summary from a workflow state. Safe on partial states.
func Summarize(st *workflow.State) Summary {
	var sum Summary
	if st == nil {
		sum.FitAssessment = FitAssessment{
			OverallScore:        percent(0),
			SkillsAlignment:     percent(0),
			ExperienceAlignment: percent(0),
		}
		return sum
	}

	if st.JobPosting != nil {
		sum.Job = SummaryJob{Title: st.JobPosting.Title, Company: st.JobPosting.Company}
	}

	overall := 0.0
	if st.MatchingScore != nil {
		overall = *st.MatchingScore
	}
	skills, experience := 0.0, 0.0
	if st.ResumeAnalysis != nil {
		skills = st.ResumeAnalysis.SkillsScore
		experience = st.ResumeAnalysis.ExperienceScore
		sum.MatchedSkills = st.ResumeAnalysis.MatchedSkills
		sum.MissingSkills = st.ResumeAnalysis.MissingSkills
		sum.KeyStrengths = truncate(st.ResumeAnalysis.Strengths, maxSummaryItems)
		sum.Recommendations = truncate(st.ResumeAnalysis.Recommendations, maxSummaryItems)
	}
	sum.FitAssessment = FitAssessment{
		OverallScore:        percent(overall),
		SkillsAlignment:     percent(skills),
		ExperienceAlignment: percent(experience),
	}
	sum.CoverLetterOK = st.CoverLetter != nil
	return sum
}

// ValidateInputs checks the raw workflow inputs before execution. Job
// posting checks run before resume checks, and presence checks run before
// length checks, so the returned message always names the first problem.
func ValidateInputs(jobPosting, resume string) (bool, string) {
	if jobPosting == "" {
		return false, "Job posting is required"
	}
	if resume == "" {
		return false, "Resume is required"
	}
	if utf8.RuneCountInString(jobPosting) < minInputLength {
		return false, fmt.Sprintf("Job posting must be at least %d characters", minInputLength)
	}
	if utf8.RuneCountInString(resume) < minInputLength {
		return false, fmt.Sprintf("Resume must be at least %d characters", minInputLength)
	}
	return true, ""
}

// FormatCoverLetter returns the letter body ready for display or export.
// Returns "" when no letter was generated.
func FormatCoverLetter(st *workflow.State) string {
	if st == nil || st.CoverLetter == nil {
		return ""
	}
	return strings.TrimSpace(st.CoverLetter.Content)
}

// percent renders a [0,1] score as a percentage with one decimal place.
func percent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

func truncate(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
