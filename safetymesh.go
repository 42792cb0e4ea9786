// Package safetymesh provides a high-level façade over the agent runtime:
// the runner loop, model adapters, session store and structured logging.
// Most applications interact with this package by:
//  1. Creating a SafetyMesh via New() from a Config (or defaults)
//  2. Running a single agent (Run) or an agent graph with handoffs
//     (RunWithHandoffs)
//  3. Or, for the safety domain, creating an Analyzer via NewSafetyAnalyzer
//
// All defaults are safe for local development and testing; production
// deployments supply a real model backend and a structured logger.
package safetymesh

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/safetymesh/safetymesh/agent"
	"github.com/safetymesh/safetymesh/config"
	"github.com/safetymesh/safetymesh/core"
	"github.com/safetymesh/safetymesh/logging"
	"github.com/safetymesh/safetymesh/model"
	"github.com/safetymesh/safetymesh/model/anthropic"
	"github.com/safetymesh/safetymesh/model/openai"
	"github.com/safetymesh/safetymesh/runner"
	"github.com/safetymesh/safetymesh/safety"
	"github.com/safetymesh/safetymesh/session"
)

// Options configures the SafetyMesh instance.
type Options struct {
	// Config drives model selection, runner limits and logging. Defaults to
	// config.Default().
	Config *config.Config
	// Model overrides the backend built from Config. Useful for tests and
	// for providers outside the built-in set.
	Model model.Model
	// Logger overrides the logger built from Config.
	Logger logging.Logger
	// SessionStore keeps finished runs for continuation. Defaults to a
	// fresh in-memory store.
	SessionStore *session.Store
}

// SafetyMesh aggregates the configured runner and its services.
type SafetyMesh struct {
	cfg      *config.Config
	model    model.Model
	runner   *runner.Runner
	logger   logging.Logger
	sessions *session.Store
}

// New creates a SafetyMesh instance with optional overrides. Any unset
// service is built from the configuration.
func New(optFns ...func(o *Options)) (*SafetyMesh, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	cfg := opts.Config

	logger := opts.Logger
	if logger == nil {
		if cfg.Logging.Format == "json" {
			logger = logging.NewJSONLogger(nil, cfg.Logging.SlogLevel())
		} else {
			logger = logging.NewTextLogger(nil, cfg.Logging.SlogLevel())
		}
	}

	backend := opts.Model
	if backend == nil {
		var err error
		backend, err = buildModel(cfg.Model)
		if err != nil {
			return nil, err
		}
	}

	store := opts.SessionStore
	if store == nil {
		store = session.NewStore()
	}

	r := runner.New(backend, func(o *runner.Options) {
		o.MaxIterations = cfg.Runner.MaxIterations
		o.MaxHandoffs = cfg.Runner.MaxHandoffs
		o.MaxRetries = cfg.Runner.MaxRetries
		o.ModelTimeout = cfg.Runner.ModelTimeout.Std()
		o.ToolTimeout = cfg.Runner.ToolTimeout.Std()
		o.Logger = logger
	})

	return &SafetyMesh{
		cfg:      cfg,
		model:    backend,
		runner:   r,
		logger:   logger,
		sessions: store,
	}, nil
}

func buildModel(mc config.ModelConfig) (model.Model, error) {
	switch mc.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.Temperature = mc.Temperature
			if mc.MaxTokens > 0 {
				o.MaxCompletionTokens = mc.MaxTokens
			}
			o.BaseURL = mc.BaseURL
			o.APIKey = mc.APIKey()
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if mc.Name != "" {
				o.Model = anthropicsdk.Model(mc.Name)
			}
			o.Temperature = mc.Temperature
			if mc.MaxTokens > 0 {
				o.MaxTokens = mc.MaxTokens
			}
			o.APIKey = mc.APIKey()
		}), nil
	case "mock":
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("safetymesh: unknown model provider %q", mc.Provider)
	}
}

// Runner exposes the configured runner for callers composing their own
// orchestration.
func (m *SafetyMesh) Runner() *runner.Runner { return m.runner }

// Model exposes the configured model backend.
func (m *SafetyMesh) Model() model.Model { return m.model }

// Logger exposes the configured logger.
func (m *SafetyMesh) Logger() logging.Logger { return m.logger }

// Sessions exposes the continuation store.
func (m *SafetyMesh) Sessions() *session.Store { return m.sessions }

// Run executes a single agent without handoffs.
func (m *SafetyMesh) Run(ctx context.Context, ag *agent.Agent, input string, conv *core.Context) (*runner.Result, error) {
	return m.runner.Run(ctx, ag, input, conv)
}

// RunWithHandoffs executes an agent graph starting at entry.
func (m *SafetyMesh) RunWithHandoffs(ctx context.Context, entry *agent.Agent, input string, conv *core.Context) (*runner.Result, error) {
	return m.runner.RunWithHandoffs(ctx, entry, input, conv)
}

// NewSafetyAnalyzer wires the construction-safety agent graph onto this
// instance: mock emergency services, the router and specialist agents, and
// an Analyzer sharing the instance's session store and logger.
func (m *SafetyMesh) NewSafetyAnalyzer() *safety.Analyzer {
	graph := safety.NewAgentGraph(safety.NewMockServices(), func(o *safety.GraphOptions) {
		o.Model = m.cfg.Model.Name
	})
	return safety.NewAnalyzer(m.runner, graph, func(o *safety.AnalyzerOptions) {
		o.Store = m.sessions
		o.Logger = m.logger
	})
}
