package workflow

import (
	"context"

	"github.com/jonathan/job-copilot/internal/extract"
	"github.com/jonathan/job-copilot/internal/llm"
)

// Graph drives the fixed step sequence against a shared State. The gateway
// handle is injected at construction; the graph holds no other state, so
// one Graph can serve any number of concurrent executions.
type Graph struct {
	gateway *llm.Gateway
}

// New returns a Graph bound to the given gateway.
func New(gateway *llm.Gateway) *Graph {
	return &Graph{gateway: gateway}
}

// Execute runs all steps in order and returns the terminal state. Execution
// stops at the first step that records an error, so the surfaced Error is
// always the first failure; steps after it would only have failed their own
// precondition checks with a less informative message. A gateway failure
// before any step runs returns a state carrying only the error.
func (g *Graph) Execute(ctx context.Context, jobPostingRaw, resumeRaw string) *State {
	st := NewState(jobPostingRaw, resumeRaw)

	client, err := g.gateway.Client(ctx)
	if err != nil {
		st.fail(err.Error())
		return st
	}
	ex := extract.New(client)

	for _, s := range allSteps() {
		s.run(ctx, ex, st)
		if st.Failed() {
			break
		}
	}
	return st
}

// EventType labels the progress events emitted by Stream.
type EventType string

// Stream event types, emitted in strict step order.
const (
	EventStepStart EventType = "step_start"
	EventStepEnd   EventType = "step_end"
	EventDone      EventType = "done"
)

// Event is one progress notification from a streaming execution. The
// terminal done event carries the final state.
type Event struct {
	Type  EventType `json:"type"`
	Step  string    `json:"step,omitempty"`
	Error string    `json:"error,omitempty"`
	State *State    `json:"state,omitempty"`
}

// Stream runs the same execution as Execute but emits one event per
// step boundary plus a terminal done event. The sequence is finite, single
// consumer, and strictly ordered: steps never overlap because each depends
// on the previous one's output. The channel is closed after the done event;
// if ctx is cancelled the producer abandons the run and closes early.
func (g *Graph) Stream(ctx context.Context, jobPostingRaw, resumeRaw string) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		emit := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		st := NewState(jobPostingRaw, resumeRaw)

		client, err := g.gateway.Client(ctx)
		if err != nil {
			st.fail(err.Error())
			emit(Event{Type: EventDone, Error: st.Error, State: st})
			return
		}
		ex := extract.New(client)

		for _, s := range allSteps() {
			if !emit(Event{Type: EventStepStart, Step: s.name}) {
				return
			}
			s.run(ctx, ex, st)
			if !emit(Event{Type: EventStepEnd, Step: s.name, Error: st.Error}) {
				return
			}
			if st.Failed() {
				break
			}
		}
		emit(Event{Type: EventDone, Error: st.Error, State: st})
	}()

	return events
}

// Edge is one directed edge in the workflow graph description.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Structure describes the fixed workflow graph for documentation and
// debugging endpoints.
type Structure struct {
	Nodes       []string `json:"nodes"`
	Edges       []Edge   `json:"edges"`
	Description string   `json:"description"`
}

// Describe returns the static node and edge list. Pure; no side effects.
func Describe() Structure {
	return Structure{
		Nodes: []string{StepParse, StepAnalyze, StepGenerate},
		Edges: []Edge{
			{From: "START", To: StepParse},
			{From: StepParse, To: StepAnalyze},
			{From: StepAnalyze, To: StepGenerate},
			{From: StepGenerate, To: "END"},
		},
		Description: "Linear workflow: parse job posting -> analyze resume -> generate cover letter",
	}
}
