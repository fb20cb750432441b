package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-copilot/internal/ingest"
	"github.com/jonathan/job-copilot/internal/llm"
	"github.com/jonathan/job-copilot/internal/report"
	"github.com/jonathan/job-copilot/internal/workflow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a job application and generate a cover letter",
	Long:  "Run the full workflow against a job posting and resume: parse the posting, analyze the resume, and generate a tailored cover letter.",
	RunE:  runAnalyze,
}

var (
	analyzeJobFile    string
	analyzeJobURL     string
	analyzeResumeFile string
	analyzeJSON       bool
	analyzeVerbose    bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJobFile, "job", "", "Path to job posting text file")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL to fetch the job posting from (alternative to --job)")
	analyzeCmd.Flags().StringVar(&analyzeResumeFile, "resume", "", "Path to resume text file (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the full export record as JSON")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print step outputs as they complete")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	if analyzeJobFile == "" && analyzeJobURL == "" {
		return fmt.Errorf("either --job or --job-url is required")
	}
	if analyzeJobFile != "" && analyzeJobURL != "" {
		return fmt.Errorf("cannot use --job with --job-url")
	}
	if analyzeResumeFile == "" {
		return fmt.Errorf("--resume is required")
	}

	ctx := context.Background()

	var jobPosting string
	if analyzeJobFile != "" {
		content, err := os.ReadFile(analyzeJobFile)
		if err != nil {
			return fmt.Errorf("failed to read job posting file: %w", err)
		}
		jobPosting = string(content)
	} else {
		text, err := ingest.FromURL(ctx, analyzeJobURL, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch job posting: %w", err)
		}
		jobPosting = text
	}

	resumeContent, err := os.ReadFile(analyzeResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	resume := string(resumeContent)

	if ok, msg := report.ValidateInputs(jobPosting, resume); !ok {
		return fmt.Errorf("%s", msg)
	}

	gateway := llm.NewGateway()
	defer func() { _ = gateway.Close() }()
	graph := workflow.New(gateway)

	st := runWithProgress(ctx, graph, jobPosting, resume)
	if st.Failed() {
		return fmt.Errorf("workflow failed: %s", st.Error)
	}

	if analyzeJSON {
		out, err := json.MarshalIndent(report.Export(st), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printer := report.NewPrinter(os.Stdout)
	printer.PrintJobPosting(st.JobPosting)
	printer.PrintAnalysis(st.ResumeAnalysis)
	printer.PrintCoverLetter(st.CoverLetter)
	return nil
}

// runWithProgress executes the workflow, streaming step boundaries to
// stderr in verbose mode.
func runWithProgress(ctx context.Context, graph *workflow.Graph, jobPosting, resume string) *workflow.State {
	if !analyzeVerbose {
		return graph.Execute(ctx, jobPosting, resume)
	}

	var final *workflow.State
	for ev := range graph.Stream(ctx, jobPosting, resume) {
		switch ev.Type {
		case workflow.EventStepStart:
			fmt.Fprintf(os.Stderr, "▶ %s...\n", ev.Step)
		case workflow.EventStepEnd:
			if ev.Error != "" {
				fmt.Fprintf(os.Stderr, "✗ %s: %s\n", ev.Step, ev.Error)
			} else {
				fmt.Fprintf(os.Stderr, "✓ %s\n", ev.Step)
			}
		case workflow.EventDone:
			final = ev.State
		}
	}
	return final
}
