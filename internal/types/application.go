// Package types defines the structured records produced by the job copilot
// workflow: the parsed job posting, the resume analysis, and the generated
// cover letter.
package types

// JobPosting is the structured form of a raw job posting, extracted by the
// parse step. RawText retains the original posting verbatim for later steps.
type JobPosting struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	NiceToHave   []string `json:"nice_to_have"`
	SalaryRange  string   `json:"salary_range,omitempty"`
	Location     string   `json:"location,omitempty"`
	RawText      string   `json:"raw_text"`
}

// ResumeAnalysis is the result of matching a resume against a parsed job
// posting. All three scores are in [0,1].
type ResumeAnalysis struct {
	MatchedSkills     []string `json:"matched_skills"`
	MissingSkills     []string `json:"missing_skills"`
	NiceToHaveMatches []string `json:"nice_to_have_matches"`
	ExperienceMatch   string   `json:"experience_match"`
	ExperienceScore   float64  `json:"experience_score"`
	SkillsScore       float64  `json:"skills_score"`
	OverallFitScore   float64  `json:"overall_fit_score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Recommendations   []string `json:"recommendations"`
}

// CoverLetter is the generated cover letter. Tone is a free-text label
// (e.g. "professional"), not a closed set.
type CoverLetter struct {
	Content           string   `json:"content"`
	Tone              string   `json:"tone"`
	HighlightedSkills []string `json:"highlighted_skills"`
	KeyAchievements   []string `json:"key_achievements"`
}
