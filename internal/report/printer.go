package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-copilot/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose CLI mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobPosting outputs a human-readable summary of the parsed posting.
func (p *Printer) PrintJobPosting(posting *types.JobPosting) {
	if posting == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Company:  %s\n", posting.Company))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", posting.Title))
	if posting.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", posting.Location))
	}
	if posting.SalaryRange != "" {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", posting.SalaryRange))
	}
	sb.WriteString("\n")

	if len(posting.Requirements) > 0 {
		sb.WriteString("Requirements:\n")
		count := min(len(posting.Requirements), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", posting.Requirements[i]))
		}
		if len(posting.Requirements) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(posting.Requirements)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(posting.NiceToHave) > 0 {
		sb.WriteString("Nice-to-haves:\n")
		count := min(len(posting.NiceToHave), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", posting.NiceToHave[i]))
		}
		if len(posting.NiceToHave) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(posting.NiceToHave)-3))
		}
	}

	p.printBox("PARSED JOB POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the resume analysis with scores and skill matches.
func (p *Printer) PrintAnalysis(analysis *types.ResumeAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall fit:     %.0f%%\n", analysis.OverallFitScore*100))
	sb.WriteString(fmt.Sprintf("Skills score:    %.0f%%\n", analysis.SkillsScore*100))
	sb.WriteString(fmt.Sprintf("Experience:      %.0f%%\n", analysis.ExperienceScore*100))
	sb.WriteString("\n")

	if len(analysis.MatchedSkills) > 0 {
		skills := strings.Join(analysis.MatchedSkills, ", ")
		if len(skills) > 45 {
			skills = skills[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Matched: %s\n", skills))
	}
	if len(analysis.MissingSkills) > 0 {
		skills := strings.Join(analysis.MissingSkills, ", ")
		if len(skills) > 45 {
			skills = skills[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Missing: %s\n", skills))
	}

	if len(analysis.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		count := min(len(analysis.Strengths), 3)
		for i := 0; i < count; i++ {
			s := analysis.Strengths[i]
			if len(s) > 50 {
				s = s[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}

	p.printBox("RESUME ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCoverLetter outputs the generated cover letter with its metadata.
func (p *Printer) PrintCoverLetter(letter *types.CoverLetter) {
	if letter == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tone: %s\n", letter.Tone))
	if len(letter.HighlightedSkills) > 0 {
		skills := strings.Join(letter.HighlightedSkills, ", ")
		if len(skills) > 45 {
			skills = skills[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Highlights: %s\n", skills))
	}
	sb.WriteString("\n")
	sb.WriteString(letter.Content)

	p.printBox("COVER LETTER", strings.TrimSuffix(sb.String(), "\n"))
}
