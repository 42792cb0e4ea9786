package trace

import (
	"fmt"
	"strings"
	"time"
)

// ToolCallTrace captures one tool invocation. Exactly one of Result / Error
// is meaningful: success implies Error is empty, failure implies Result
// reflects the error state surfaced to the model.
type ToolCallTrace struct {
	ToolName   string         `json:"tool_name"`
	Arguments  map[string]any `json:"arguments"`
	Result     string         `json:"result"`
	DurationMS float64        `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
}

// AgentTrace captures one agent activation: opened when the agent becomes
// active, closed when it hands off or produces a terminal answer. An agent
// visited twice produces two records.
type AgentTrace struct {
	AgentName  string          `json:"agent_name"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	DurationMS float64         `json:"duration_ms"`
	Iterations int             `json:"iterations"`
	ToolCalls  []ToolCallTrace `json:"tool_calls"`
	// HandoffTo names the agent control transferred to, empty when the
	// activation ended with a terminal answer.
	HandoffTo string `json:"handoff_to,omitempty"`
	// FinalOutput is nil when the activation ended via handoff rather than
	// a terminal answer.
	FinalOutput *string `json:"final_output"`
	// Truncated marks activations cut short by an iteration or handoff
	// limit rather than a natural conclusion.
	Truncated bool `json:"truncated,omitempty"`
}

// Recorder assembles the ordered list of AgentTrace records for one run. It
// is owned by a single runner invocation and is not safe for concurrent use;
// the run loop is single-threaded by design.
type Recorder struct {
	traces  []AgentTrace
	current *AgentTrace
}

// NewRecorder creates an empty per-run recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// StartAgent opens a trace record for a new agent activation.
func (r *Recorder) StartAgent(agentName string) {
	r.current = &AgentTrace{
		AgentName: agentName,
		StartTime: time.Now(),
	}
}

// SetIterations updates the model-call count of the open activation.
func (r *Recorder) SetIterations(n int) {
	if r.current != nil {
		r.current.Iterations = n
	}
}

// RecordToolCall appends a tool invocation to the open activation. Failed
// calls are recorded with the same fidelity as successful ones.
func (r *Recorder) RecordToolCall(tc ToolCallTrace) {
	if r.current == nil {
		return
	}
	if tc.Timestamp.IsZero() {
		tc.Timestamp = time.Now()
	}
	r.current.ToolCalls = append(r.current.ToolCalls, tc)
}

// EndAgent closes the open activation with a terminal answer.
func (r *Recorder) EndAgent(finalOutput string) {
	r.close(func(t *AgentTrace) {
		t.FinalOutput = &finalOutput
	})
}

// EndAgentHandoff closes the open activation with a handoff to target. The
// final output stays nil: the answer belongs to a later activation.
func (r *Recorder) EndAgentHandoff(target string) {
	r.close(func(t *AgentTrace) {
		t.HandoffTo = target
	})
}

// EndAgentTruncated closes the open activation as limit-exceeded, keeping
// the best available partial output.
func (r *Recorder) EndAgentTruncated(partialOutput string) {
	r.close(func(t *AgentTrace) {
		t.Truncated = true
		if partialOutput != "" {
			t.FinalOutput = &partialOutput
		}
	})
}

func (r *Recorder) close(finish func(*AgentTrace)) {
	if r.current == nil {
		return
	}
	now := time.Now()
	r.current.EndTime = now
	r.current.DurationMS = float64(now.Sub(r.current.StartTime).Microseconds()) / 1000.0
	finish(r.current)
	r.traces = append(r.traces, *r.current)
	r.current = nil
}

// Traces returns the closed activation records in order.
func (r *Recorder) Traces() []AgentTrace {
	out := make([]AgentTrace, len(r.traces))
	copy(out, r.traces)
	return out
}

// Summary renders a human-readable digest of the run for logs and CLIs.
func (r *Recorder) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 80)
	b.WriteString("\n" + line + "\nEXECUTION SUMMARY\n" + line + "\n")

	for i, t := range r.traces {
		fmt.Fprintf(&b, "\nAgent %d: %s\n", i+1, t.AgentName)
		fmt.Fprintf(&b, "  Duration: %.2fms\n", t.DurationMS)
		fmt.Fprintf(&b, "  Iterations: %d\n", t.Iterations)
		fmt.Fprintf(&b, "  Tool Calls: %d\n", len(t.ToolCalls))

		if len(t.ToolCalls) > 0 {
			b.WriteString("  Tools Used:\n")
			for _, tc := range t.ToolCalls {
				status := "ok"
				if !tc.Success {
					status = "failed"
				}
				fmt.Fprintf(&b, "    [%s] %s (%.2fms)\n", status, tc.ToolName, tc.DurationMS)
			}
		}
		if t.HandoffTo != "" {
			fmt.Fprintf(&b, "  Handoff: -> %s\n", t.HandoffTo)
		}
		if t.Truncated {
			b.WriteString("  Truncated: limit exceeded\n")
		}
	}

	b.WriteString("\n" + line + "\n")
	return b.String()
}
