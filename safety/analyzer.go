package safety

import (
	"context"
	"fmt"

	"github.com/safetymesh/safetymesh/logging"
	"github.com/safetymesh/safetymesh/runner"
	"github.com/safetymesh/safetymesh/session"
	"github.com/safetymesh/safetymesh/trace"
)

// Analysis is the envelope returned for one analyzed event, shaped for
// direct JSON serialization to API clients.
type Analysis struct {
	Status      string             `json:"status"` // "success" or "error"
	VideoID     string             `json:"video_id"`
	Event       *Event             `json:"event,omitempty"`
	AgentOutput string             `json:"agent_output,omitempty"`
	Truncated   bool               `json:"truncated,omitempty"`
	Trace       []trace.AgentTrace `json:"trace"`
	Error       string             `json:"error,omitempty"`
}

// AnalyzerOptions configures an Analyzer.
type AnalyzerOptions struct {
	// Store keeps finished runs for follow-up questions. Defaults to a
	// fresh in-memory store.
	Store *session.Store
	// Logger receives analyzer events.
	Logger logging.Logger
}

// Analyzer runs safety events through the agent graph and keeps the
// resulting conversations for follow-up questions keyed by video id.
type Analyzer struct {
	runner *runner.Runner
	graph  *AgentGraph
	store  *session.Store
	logger logging.Logger
}

// NewAnalyzer constructs an Analyzer on an existing runner and agent graph.
func NewAnalyzer(r *runner.Runner, graph *AgentGraph, optFns ...func(o *AnalyzerOptions)) *Analyzer {
	opts := AnalyzerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = session.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Analyzer{runner: r, graph: graph, store: opts.Store, logger: opts.Logger}
}

// Analyze routes one event through the safety agent graph, starting at the
// router. Agent-level failures are reported inside the Analysis envelope,
// never as a Go error: callers serve the envelope either way.
func (a *Analyzer) Analyze(ctx context.Context, event *Event) *Analysis {
	a.logger.Info("safety.analyze.start", "video_id", event.VideoID, "hazards", len(event.Hazards))

	prompt := fmt.Sprintf("Analyze this construction site scenario for safety hazards:\n\n%s", event.JSON())
	res, err := a.runner.RunWithHandoffs(ctx, a.graph.Router, prompt, nil)
	if err != nil {
		a.logger.Error("safety.analyze.failed", "video_id", event.VideoID, "error", err)
		out := &Analysis{
			Status:  "error",
			VideoID: event.VideoID,
			Event:   event,
			Error:   fmt.Sprintf("Analysis failed: %v", err),
		}
		if res != nil {
			out.Trace = res.Traces
		}
		return out
	}

	a.store.Put(event.VideoID, res.AgentName, res.Context, res.Traces)
	a.logger.Info("safety.analyze.done", "video_id", event.VideoID, "agent", res.AgentName, "truncated", res.Truncated)

	return &Analysis{
		Status:      "success",
		VideoID:     event.VideoID,
		Event:       event,
		AgentOutput: res.Output,
		Truncated:   res.Truncated,
		Trace:       res.Traces,
	}
}

// FollowUp continues a stored analysis conversation with a further question.
// The question goes to the agent that produced the original answer, with the
// full prior conversation as context. The stored session advances to include
// the new turn.
//
// Returns session.ErrNotFound when no analysis exists for the video id.
func (a *Analyzer) FollowUp(ctx context.Context, videoID, question string) (*Analysis, error) {
	sess, err := a.store.Get(videoID)
	if err != nil {
		return nil, err
	}

	ag := a.graph.Agent(sess.AgentName)
	res, err := a.runner.Run(ctx, ag, question, sess.Context)
	if err != nil {
		return &Analysis{
			Status:  "error",
			VideoID: videoID,
			Error:   fmt.Sprintf("Follow-up failed: %v", err),
			Trace:   res.Traces,
		}, nil
	}

	a.store.Put(videoID, res.AgentName, res.Context, append(sess.Traces, res.Traces...))

	return &Analysis{
		Status:      "success",
		VideoID:     videoID,
		AgentOutput: res.Output,
		Truncated:   res.Truncated,
		Trace:       res.Traces,
	}, nil
}
