package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/job-copilot/internal/extract"
	"github.com/jonathan/job-copilot/internal/schemas"
	"github.com/jonathan/job-copilot/internal/types"
)

// Step identifiers, in execution order. These are the entries appended to
// State.StepsCompleted.
const (
	StepParse    = "parse"
	StepAnalyze  = "analyze"
	StepGenerate = "generate"
)

// A step checks its own preconditions, runs its extraction, and records
// either its output or an error into the state. Steps never panic and never
// return an error across their boundary.
type step struct {
	name string
	run  func(ctx context.Context, ex *extract.Extractor, st *State)
}

func allSteps() []step {
	return []step{
		{name: StepParse, run: parsePosting},
		{name: StepAnalyze, run: analyzeResume},
		{name: StepGenerate, run: generateLetter},
	}
}

// parsePosting extracts a structured JobPosting from the raw posting text.
func parsePosting(ctx context.Context, ex *extract.Extractor, st *State) {
	if strings.TrimSpace(st.JobPostingRaw) == "" {
		st.fail("no job posting provided")
		return
	}

	var posting types.JobPosting
	err := ex.Extract(ctx, StepParse, "parse-job-posting", map[string]string{
		"JobPostingRaw": st.JobPostingRaw,
	}, schemas.JobPosting, &posting)
	if err != nil {
		st.fail(err.Error())
		return
	}

	posting.RawText = st.JobPostingRaw
	st.JobPosting = &posting
	st.markCompleted(StepParse)
}

// analyzeResume matches the resume against the parsed posting and derives
// the matching score and skill gaps from the analysis.
func analyzeResume(ctx context.Context, ex *extract.Extractor, st *State) {
	if st.JobPosting == nil {
		st.fail("job posting must be parsed first")
		return
	}
	if strings.TrimSpace(st.ResumeRaw) == "" {
		st.fail("no resume provided")
		return
	}

	var analysis types.ResumeAnalysis
	err := ex.Extract(ctx, StepAnalyze, "analyze-resume", map[string]string{
		"JobTitle":     st.JobPosting.Title,
		"Company":      st.JobPosting.Company,
		"Requirements": strings.Join(st.JobPosting.Requirements, ", "),
		"NiceToHave":   strings.Join(st.JobPosting.NiceToHave, ", "),
		"ResumeRaw":    st.ResumeRaw,
	}, schemas.ResumeAnalysis, &analysis)
	if err != nil {
		st.fail(err.Error())
		return
	}

	st.ResumeAnalysis = &analysis
	score := analysis.OverallFitScore
	st.MatchingScore = &score
	st.SkillGaps = append([]string(nil), analysis.MissingSkills...)
	st.markCompleted(StepAnalyze)
}

// generateLetter produces the cover letter from the parsed posting and the
// resume analysis.
func generateLetter(ctx context.Context, ex *extract.Extractor, st *State) {
	if st.JobPosting == nil {
		st.fail("job posting must be parsed first")
		return
	}
	if strings.TrimSpace(st.ResumeRaw) == "" {
		st.fail("no resume provided")
		return
	}
	if st.ResumeAnalysis == nil {
		st.fail("resume analysis must be completed first")
		return
	}

	var letter types.CoverLetter
	err := ex.Extract(ctx, StepGenerate, "generate-cover-letter", map[string]string{
		"ResumeRaw":       st.ResumeRaw,
		"JobTitle":        st.JobPosting.Title,
		"Company":         st.JobPosting.Company,
		"JobDescription":  st.JobPosting.Description,
		"Requirements":    strings.Join(st.JobPosting.Requirements, ", "),
		"MatchedSkills":   strings.Join(st.ResumeAnalysis.MatchedSkills, ", "),
		"MissingSkills":   strings.Join(st.ResumeAnalysis.MissingSkills, ", "),
		"Strengths":       strings.Join(st.ResumeAnalysis.Strengths, ", "),
		"OverallFitScore": fmt.Sprintf("%d", int(st.ResumeAnalysis.OverallFitScore*100)),
	}, schemas.CoverLetter, &letter)
	if err != nil {
		st.fail(err.Error())
		return
	}

	if letter.Tone == "" {
		letter.Tone = "professional"
	}
	st.CoverLetter = &letter
	st.markCompleted(StepGenerate)
}
