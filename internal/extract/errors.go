package extract

import "fmt"

// ExtractionError reports a failed structured extraction: the model call
// itself failed, the response was not JSON, or the response violated the
// step's output schema. RawResponse carries the unmodified model output for
// diagnostics.
type ExtractionError struct {
	Step        string
	Message     string
	RawResponse string
	Cause       error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed in step %s: %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed in step %s: %s", e.Step, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
