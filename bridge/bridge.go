// Package bridge implements the command protocol between the ModuMentor
// backend and the agent: one command per process, one JSON result per
// command. It contains the dispatcher, the per-process agent lifecycle and
// the Result wire type.
package bridge

import (
	"context"

	"github.com/modumentor/bridge/bridge/task"
	"github.com/modumentor/bridge/memory"
	"github.com/modumentor/bridge/report"
	"github.com/modumentor/bridge/tools"
)

// DefaultUserID is the sentinel identity used when the caller supplies no
// user id. Every handler shares it, so two invocations without an explicit
// id address the same conversation.
const DefaultUserID = "web-user"

// agentUnavailable is the user-facing fallback when the agent could not be
// constructed.
const agentUnavailable = "I'm sorry, but I'm having trouble connecting to my AI brain right now. Please try again later."

// Invocation is one command-line execution of the bridge: a command name
// and its positional arguments, built once from argv.
type Invocation struct {
	Command string
	Args    []string
}

// Result is the single JSON document the bridge emits per invocation.
// Success is a pointer so the wire can express present-true, present-false
// and absent, matching the per-command shapes the backend parses.
type Result struct {
	Response    string                       `json:"response,omitempty"`
	Error       string                       `json:"error,omitempty"`
	Success     *bool                        `json:"success,omitempty"`
	TestResults map[string]tools.ProbeResult `json:"test_results,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// Agent is what the dispatcher needs from the conversational agent. The
// concrete implementation lives in the agent package; tests substitute
// fakes.
type Agent interface {
	ProcessMessage(ctx context.Context, message, userID string) (string, error)
	ClearConversation(userID string) (string, error)
	HelpMessage(ctx context.Context) (string, error)
	AnalyzeConversation(userID string) (memory.Analysis, error)
	ProbeTools(ctx context.Context) map[string]tools.ProbeResult
}

// Dispatcher routes one Invocation to its handler and converts every
// handler-level fault into an error Result. Nothing below Dispatch is
// allowed to terminate the process.
type Dispatcher struct {
	lifecycle *Manager
	runner    *task.Runner
	logf      func(format string, a ...interface{})
}

// NewDispatcher wires the dispatcher to the process's lifecycle manager and
// task runner. logf receives diagnostic lines and must write to the
// secondary stream only; it may be nil.
func NewDispatcher(lifecycle *Manager, runner *task.Runner, logf func(format string, a ...interface{})) *Dispatcher {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Dispatcher{lifecycle: lifecycle, runner: runner, logf: logf}
}

// Dispatch selects the handler for the invocation's command. Unknown
// commands yield an error Result, never a crash.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Result {
	switch inv.Command {
	case "process_message":
		return d.processMessage(ctx, inv.Args)
	case "clear_conversation":
		return d.clearConversation(inv.Args)
	case "get_help":
		return d.getHelp(ctx)
	case "test_tools":
		return d.testTools(ctx)
	case "analyze_conversation":
		return d.analyzeConversation(ctx, inv.Args)
	default:
		return Result{Error: "Unknown command: " + inv.Command}
	}
}

func (d *Dispatcher) processMessage(ctx context.Context, args []string) Result {
	if len(args) < 1 {
		return Result{Error: "Message required for process_message command"}
	}
	message := args[0]
	userID := DefaultUserID
	if len(args) > 1 {
		userID = args[1]
	}

	ag, err := d.lifecycle.Ensure()
	if err != nil {
		return Result{
			Error:    "Failed to initialize intelligent agent",
			Response: agentUnavailable,
		}
	}

	d.logf("Processing message for user %s", userID)
	response, err := task.Run(ctx, d.runner, func(ctx context.Context) (string, error) {
		return ag.ProcessMessage(ctx, message, userID)
	})
	if err != nil {
		d.logf("Error processing message: %v", err)
		return Result{
			Error:    err.Error(),
			Response: "I encountered an error while processing your message: " + err.Error(),
		}
	}

	return Result{Response: response, Success: boolPtr(true)}
}

func (d *Dispatcher) clearConversation(args []string) Result {
	userID := DefaultUserID
	if len(args) > 0 {
		userID = args[0]
	}

	ag, err := d.lifecycle.Ensure()
	if err != nil {
		return Result{
			Error:   "Failed to initialize intelligent agent",
			Success: boolPtr(false),
		}
	}

	response, err := ag.ClearConversation(userID)
	if err != nil {
		d.logf("Error clearing conversation: %v", err)
		return Result{Error: err.Error(), Success: boolPtr(false)}
	}
	return Result{Response: response, Success: boolPtr(true)}
}

func (d *Dispatcher) getHelp(ctx context.Context) Result {
	ag, err := d.lifecycle.Ensure()
	if err != nil {
		return Result{
			Error:    "Failed to initialize intelligent agent",
			Response: agentUnavailable,
		}
	}

	response, err := task.Run(ctx, d.runner, func(ctx context.Context) (string, error) {
		return ag.HelpMessage(ctx)
	})
	if err != nil {
		d.logf("Error getting help: %v", err)
		return Result{
			Error:    err.Error(),
			Response: "I encountered an error while getting help: " + err.Error(),
		}
	}
	return Result{Response: response, Success: boolPtr(true)}
}

func (d *Dispatcher) analyzeConversation(ctx context.Context, args []string) Result {
	userID := DefaultUserID
	if len(args) > 0 {
		userID = args[0]
	}

	ag, err := d.lifecycle.Ensure()
	if err != nil {
		return Result{
			Error:    "Failed to initialize intelligent agent",
			Response: agentUnavailable,
		}
	}

	analysis, err := task.Run(ctx, d.runner, func(ctx context.Context) (memory.Analysis, error) {
		return ag.AnalyzeConversation(userID)
	})
	if err != nil {
		d.logf("Error analyzing conversation: %v", err)
		return Result{
			Error:    err.Error(),
			Response: "I encountered an error while analyzing our conversation: " + err.Error(),
		}
	}

	return Result{Response: report.Render(analysis), Success: boolPtr(true)}
}

func (d *Dispatcher) testTools(ctx context.Context) Result {
	ag, err := d.lifecycle.Ensure()
	if err != nil {
		return Result{
			Error:   "Failed to initialize intelligent agent",
			Success: boolPtr(false),
		}
	}

	results, err := task.Run(ctx, d.runner, func(ctx context.Context) (map[string]tools.ProbeResult, error) {
		return ag.ProbeTools(ctx), nil
	})
	if err != nil {
		d.logf("Error testing tools: %v", err)
		return Result{Error: err.Error(), Success: boolPtr(false)}
	}
	return Result{TestResults: results, Success: boolPtr(true)}
}
