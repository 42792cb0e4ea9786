package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/safetymesh/safetymesh/agent"
	"github.com/safetymesh/safetymesh/core"
	"github.com/safetymesh/safetymesh/logging"
	"github.com/safetymesh/safetymesh/model"
	"github.com/safetymesh/safetymesh/tool"
	"github.com/safetymesh/safetymesh/trace"
)

// Limits and timeouts applied when options leave them unset.
const (
	DefaultMaxIterations  = 10
	DefaultMaxHandoffs    = 5
	DefaultMaxRetries     = 2
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultModelTimeout   = 60 * time.Second
	DefaultToolTimeout    = 15 * time.Second
)

// Options configures a Runner.
type Options struct {
	// MaxIterations bounds model calls per agent activation. Each handoff
	// resets the counter for the newly active agent.
	MaxIterations int
	// MaxHandoffs bounds agent transitions across the whole run, cumulative
	// over revisits.
	MaxHandoffs int
	// MaxRetries is the number of model-call retries after the first
	// attempt. Retries back off exponentially from RetryBaseDelay.
	MaxRetries int
	// RetryBaseDelay is the delay before the first retry; it doubles per
	// subsequent retry.
	RetryBaseDelay time.Duration
	// ModelTimeout bounds each individual model call.
	ModelTimeout time.Duration
	// ToolTimeout bounds each individual tool execution.
	ToolTimeout time.Duration
	// Logger receives structured run events. Defaults to a no-op logger.
	Logger logging.Logger
}

// Runner drives agents against a model: it owns the call-interpret-execute
// loop, the handoff orchestration and the retry policy. A Runner is immutable
// after construction and safe for concurrent Run invocations; every run gets
// its own Context and trace Recorder.
type Runner struct {
	model model.Model
	opts  Options
}

// New constructs a Runner for the given model.
func New(m model.Model, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxIterations:  DefaultMaxIterations,
		MaxHandoffs:    DefaultMaxHandoffs,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		ModelTimeout:   DefaultModelTimeout,
		ToolTimeout:    DefaultToolTimeout,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runner{model: m, opts: opts}
}

// Result is the outcome of a run.
type Result struct {
	// Output is the final answer, or the best available partial output when
	// Truncated is set.
	Output string `json:"output"`
	// AgentName is the agent that was active when the run ended.
	AgentName string `json:"agent_name"`
	// Truncated marks runs ended by an iteration or handoff limit rather
	// than a terminal answer. A truncated run is a designed outcome, not an
	// error.
	Truncated bool `json:"truncated,omitempty"`
	// Context is the full conversation the run produced, a valid replayable
	// history including tool calls and their results.
	Context *core.Context `json:"-"`
	// Traces lists the agent activations in execution order.
	Traces []trace.AgentTrace `json:"traces"`
}

// HandoffError reports a transfer request that named no agent in the active
// agent's handoff set. It never fails the run: the runner feeds it back to
// the model as a failed tool result.
type HandoffError struct {
	Agent    string
	ToolName string
}

func (e *HandoffError) Error() string {
	return fmt.Sprintf("handoff target for '%s' not found in agent '%s'", e.ToolName, e.Agent)
}

type outcomeKind int

const (
	outcomeAnswered outcomeKind = iota
	outcomeIterationLimit
	outcomeHandoff
	outcomeFatal
)

type loopOutcome struct {
	kind   outcomeKind
	output string
	target *agent.Agent
	err    error
}

// Run executes a single agent without handoffs until it answers or hits the
// iteration limit. Transfer requests, should the model hallucinate one, are
// fed back as tool-not-found errors.
//
// conv may be nil for a fresh conversation; a non-nil conv is cloned so the
// caller's history is never mutated.
func (r *Runner) Run(ctx context.Context, ag *agent.Agent, input string, conv *core.Context) (*Result, error) {
	conv = prepare(conv)
	rec := trace.NewRecorder()

	out := r.runLoop(ctx, ag, input, conv, rec, false)
	switch out.kind {
	case outcomeFatal:
		return &Result{AgentName: ag.Name(), Context: conv, Traces: rec.Traces()}, out.err
	case outcomeIterationLimit:
		return &Result{Output: out.output, AgentName: ag.Name(), Truncated: true, Context: conv, Traces: rec.Traces()}, nil
	default:
		return &Result{Output: out.output, AgentName: ag.Name(), Context: conv, Traces: rec.Traces()}, nil
	}
}

// RunWithHandoffs executes an agent graph starting at entry. Control follows
// resolved transfer requests from agent to agent until one of them answers,
// an activation exhausts its iteration budget, or the cumulative handoff
// count reaches MaxHandoffs.
func (r *Runner) RunWithHandoffs(ctx context.Context, entry *agent.Agent, input string, conv *core.Context) (*Result, error) {
	conv = prepare(conv)
	rec := trace.NewRecorder()

	current := entry
	handoffs := 0
	for {
		out := r.runLoop(ctx, current, input, conv, rec, true)
		switch out.kind {
		case outcomeFatal:
			return &Result{AgentName: current.Name(), Context: conv, Traces: rec.Traces()}, out.err

		case outcomeAnswered:
			return &Result{Output: out.output, AgentName: current.Name(), Context: conv, Traces: rec.Traces()}, nil

		case outcomeIterationLimit:
			return &Result{Output: out.output, AgentName: current.Name(), Truncated: true, Context: conv, Traces: rec.Traces()}, nil

		case outcomeHandoff:
			if handoffs >= r.opts.MaxHandoffs {
				r.opts.Logger.Warn("runner.handoff.limit", "agent", current.Name(), "max_handoffs", r.opts.MaxHandoffs)
				partial := conv.LastAssistantText()
				rec.EndAgentTruncated(partial)
				return &Result{Output: partial, AgentName: current.Name(), Truncated: true, Context: conv, Traces: rec.Traces()}, nil
			}
			handoffs++
			rec.EndAgentHandoff(out.target.Name())
			r.opts.Logger.Info("runner.handoff", "from", current.Name(), "to", out.target.Name(), "count", handoffs)
			input = fmt.Sprintf("[Continuing from %s]", current.Name())
			current = out.target
		}
	}
}

func prepare(conv *core.Context) *core.Context {
	if conv == nil {
		return core.NewContext()
	}
	return conv.Clone()
}

// runLoop drives one agent activation. It opens a trace record and closes it
// on every path except a handoff, where the closing decision (transition or
// handoff limit) belongs to the orchestrating caller.
func (r *Runner) runLoop(ctx context.Context, ag *agent.Agent, input string, conv *core.Context, rec *trace.Recorder, withHandoffs bool) loopOutcome {
	rec.StartAgent(ag.Name())
	r.opts.Logger.Info("runner.agent.start", "agent", ag.Name(), "handoffs_enabled", withHandoffs)

	if !conv.LeadsWithSystem() {
		conv.AddSystem(ag.Instructions())
	}
	conv.AddUser(input)

	defs := ag.ToolDefinitions(withHandoffs)

	for iteration := 1; iteration <= r.opts.MaxIterations; iteration++ {
		rec.SetIterations(iteration)

		resp, err := r.callModel(ctx, ag, conv, defs)
		if err != nil {
			r.opts.Logger.Error("runner.model.failed", "agent", ag.Name(), "error", err)
			rec.EndAgentTruncated(conv.LastAssistantText())
			return loopOutcome{kind: outcomeFatal, err: err}
		}

		if !resp.HasToolCalls() {
			conv.AddAssistant(resp.Content)
			rec.EndAgent(resp.Content)
			r.opts.Logger.Info("runner.agent.done", "agent", ag.Name(), "iterations", iteration)
			return loopOutcome{kind: outcomeAnswered, output: resp.Content}
		}

		conv.AddAssistantToolCalls(resp.Content, resp.ToolCalls)

		// Ordinary tools execute in the order the model listed them; a
		// resolved transfer defers the transition until the whole turn is
		// processed so their results land in the history first.
		var target *agent.Agent
		for _, call := range resp.ToolCalls {
			if withHandoffs && tool.IsTransferToolName(call.Name) {
				if t, ok := ag.HandoffByToolName(call.Name); ok {
					if target == nil {
						target = t
					}
					conv.AddToolResult(call.ID, call.Name, transferAck(t.Name(), call.Arguments))
					continue
				}
				r.recordHandoffFailure(ag, call, conv, rec)
				continue
			}
			r.executeToolCall(ctx, ag, call, conv, rec)
		}

		if target != nil {
			return loopOutcome{kind: outcomeHandoff, target: target}
		}
	}

	r.opts.Logger.Warn("runner.iteration.limit", "agent", ag.Name(), "max_iterations", r.opts.MaxIterations)
	partial := conv.LastAssistantText()
	rec.EndAgentTruncated(partial)
	return loopOutcome{kind: outcomeIterationLimit, output: partial}
}

// callModel issues one model call with bounded retries and exponential
// backoff. Exhausting the budget is fatal for the run.
func (r *Runner) callModel(ctx context.Context, ag *agent.Agent, conv *core.Context, defs []model.ToolDefinition) (*model.Response, error) {
	req := model.Request{
		Model:       ag.Model(),
		Messages:    conv.Messages(),
		Tools:       defs,
		Temperature: ag.Temperature(),
		MaxTokens:   ag.MaxTokens(),
	}

	var lastErr error
	delay := r.opts.RetryBaseDelay
	attempts := 0
	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			r.opts.Logger.Warn("runner.model.retry", "agent", ag.Name(), "attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, &model.CallError{Provider: r.model.Info().Provider, Attempts: attempts, Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, r.opts.ModelTimeout)
		resp, err := r.model.Generate(callCtx, req)
		cancel()
		attempts++
		if err == nil {
			r.opts.Logger.Debug("runner.model.call", "agent", ag.Name(), "messages", len(req.Messages), "finish", resp.FinishReason)
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &model.CallError{Provider: r.model.Info().Provider, Attempts: attempts, Err: lastErr}
}

// executeToolCall runs one ordinary tool call, records it, and appends its
// result (or error text) to the conversation. Failures never stop the run.
func (r *Runner) executeToolCall(ctx context.Context, ag *agent.Agent, call core.ToolCall, conv *core.Context, rec *trace.Recorder) {
	args := parseArguments(call.Arguments)
	start := time.Now()

	var resultText, errText string
	success := false
	if t, ok := ag.Tool(call.Name); ok {
		toolCtx, cancel := context.WithTimeout(ctx, r.opts.ToolTimeout)
		result, err := t.Call(toolCtx, args)
		cancel()
		if err != nil {
			errText = err.Error()
			resultText = "Error: " + errText
		} else {
			resultText = tool.ResultText(result)
			success = true
		}
	} else {
		errText = fmt.Sprintf("tool '%s' not found", call.Name)
		resultText = "Error: " + errText
	}

	durationMS := float64(time.Since(start).Microseconds()) / 1000.0
	rec.RecordToolCall(trace.ToolCallTrace{
		ToolName:   call.Name,
		Arguments:  args,
		Result:     resultText,
		DurationMS: durationMS,
		Timestamp:  start,
		Success:    success,
		Error:      errText,
	})
	conv.AddToolResult(call.ID, call.Name, resultText)

	if success {
		r.opts.Logger.Info("runner.tool.success", "agent", ag.Name(), "tool", call.Name, "duration_ms", durationMS)
	} else {
		r.opts.Logger.Warn("runner.tool.failed", "agent", ag.Name(), "tool", call.Name, "error", errText)
	}
}

// recordHandoffFailure handles a transfer request that resolves to no handoff
// target: recorded as a failed tool call and fed back to the model so it can
// pick a valid target or answer directly.
func (r *Runner) recordHandoffFailure(ag *agent.Agent, call core.ToolCall, conv *core.Context, rec *trace.Recorder) {
	herr := &HandoffError{Agent: ag.Name(), ToolName: call.Name}
	r.opts.Logger.Warn("runner.handoff.unresolved", "agent", ag.Name(), "tool", call.Name)

	rec.RecordToolCall(trace.ToolCallTrace{
		ToolName:  call.Name,
		Arguments: parseArguments(call.Arguments),
		Result:    "Error: " + herr.Error(),
		Timestamp: time.Now(),
		Success:   false,
		Error:     herr.Error(),
	})
	conv.AddToolResult(call.ID, call.Name, "Error: "+herr.Error())
}

// transferAck is the tool-result text acknowledging a resolved transfer. It
// keeps the history a valid replayable conversation; the transition itself is
// carried by the trace, not by this message.
func transferAck(targetName, rawArgs string) string {
	args := parseArguments(rawArgs)
	if reason, _ := args["reason"].(string); reason != "" {
		return fmt.Sprintf("Transferring to %s: %s", targetName, reason)
	}
	return fmt.Sprintf("Transferring to %s", targetName)
}

// parseArguments decodes the model's raw JSON argument string. Malformed JSON
// degrades to an empty argument map so required-field validation produces the
// recoverable error the model can react to.
func parseArguments(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	_ = json.Unmarshal([]byte(raw), &args)
	return args
}
