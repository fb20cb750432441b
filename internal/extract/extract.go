// Package extract turns free-text model responses into validated structured
// records. Each workflow step pairs a prompt template with an expected JSON
// Schema; Extract renders the prompt, invokes the model, and parses the
// response, failing with an ExtractionError on any violation.
package extract

import (
	"context"
	"encoding/json"

	"github.com/jonathan/job-copilot/internal/llm"
	"github.com/jonathan/job-copilot/internal/prompts"
	"github.com/jonathan/job-copilot/internal/schemas"
)

// PromptFile is the embedded prompt file holding the workflow templates.
const PromptFile = "workflow.json"

// Extractor performs structured extraction through a single chat client.
// It does no retries and no backoff; retrying a failed step is the job of
// whoever runs the whole workflow.
type Extractor struct {
	client llm.Client
}

// New returns an Extractor bound to the given client.
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract renders the prompt template identified by promptKey with vars,
// sends it through the client, validates the JSON response against schema,
// and unmarshals it into out. The step name only labels errors.
func (e *Extractor) Extract(ctx context.Context, step, promptKey string, vars map[string]string, schema string, out any) error {
	tmpl, err := prompts.Get(PromptFile, promptKey)
	if err != nil {
		return &ExtractionError{Step: step, Message: "prompt template missing", Cause: err}
	}
	prompt := prompts.Format(tmpl, vars)

	raw, err := e.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return &ExtractionError{Step: step, Message: "model call failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if !json.Valid([]byte(cleaned)) {
		return &ExtractionError{Step: step, Message: "response is not valid JSON", RawResponse: raw}
	}
	if err := schemas.ValidateString(schema, cleaned); err != nil {
		return &ExtractionError{Step: step, Message: "response violates output schema", RawResponse: raw, Cause: err}
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &ExtractionError{Step: step, Message: "failed to decode response", RawResponse: raw, Cause: err}
	}
	return nil
}
