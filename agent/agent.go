package agent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modumentor/bridge/config"
	"github.com/modumentor/bridge/errors"
	"github.com/modumentor/bridge/llm"
	"github.com/modumentor/bridge/memory"
	"github.com/modumentor/bridge/tools"
)

// maxToolIterations bounds the LLM -> tool -> LLM loop for one message so a
// model that keeps requesting tools cannot spin the process forever.
const maxToolIterations = 8

const systemPrompt = "You are ModuMentor, a helpful personal assistant. " +
	"Answer concisely. Use the available tools when a question needs live " +
	"data (weather, definitions, web search, email, spreadsheets)."

// Agent ties together the language model, the conversation store and the
// active tools. One Agent is constructed per bridge process and reused for
// every command that process dispatches.
type Agent struct {
	Config         *config.Config
	Store          *memory.Store
	Client         llm.Client
	AvailableTools []tools.Tool
}

// New creates an agent from configuration. The toolset named "default" (or
// all registered tools, if no toolsets are configured) is activated.
func New(cfg *config.Config, store *memory.Store, client llm.Client) (*Agent, error) {
	ts, err := cfg.GetToolset("default")
	if err != nil {
		return nil, err
	}

	registry := tools.NewToolRegistry(cfg)
	activeTools, err := registry.GetActiveTools(ts)
	if err != nil {
		return nil, err
	}

	return &Agent{
		Config:         cfg,
		Store:          store,
		Client:         client,
		AvailableTools: activeTools,
	}, nil
}

// ProcessMessage runs one conversational turn for userID: the message is
// appended to the stored conversation, the LLM is consulted (executing any
// tool calls it requests), and the final assistant text is returned. The
// updated conversation is persisted before returning.
func (a *Agent) ProcessMessage(ctx context.Context, message, userID string) (string, error) {
	conv, err := a.Store.Load(userID)
	if err != nil {
		return "", err
	}
	conv.Add("user", message)

	for i := 0; i < maxToolIterations; i++ {
		history := append([]memory.Message{{Role: "system", Content: systemPrompt}}, conv.Messages...)
		response, err := a.Client.Chat(ctx, history, a.AvailableTools)
		if err != nil {
			return "", errors.Wrapf(err, "LLM chat failed")
		}
		conv.AddMessage(*response)

		if len(response.ToolCalls) == 0 {
			if err := a.Store.Save(conv); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save conversation for '%s': %v\n", userID, err)
			}
			return response.Content, nil
		}

		for _, tc := range response.ToolCalls {
			conv.AddMessage(memory.Message{
				Role:      "tool",
				Content:   a.executeToolCall(ctx, tc),
				ToolCalls: []memory.ToolCall{tc},
			})
		}
	}

	return "", errors.New("tool loop exceeded %d iterations without a final answer", maxToolIterations)
}

// executeToolCall runs one requested tool. Failures are reported back to the
// model as text rather than aborting the turn.
func (a *Agent) executeToolCall(ctx context.Context, tc memory.ToolCall) string {
	for _, t := range a.AvailableTools {
		if t.Name() != tc.Name {
			continue
		}
		result, err := t.Execute(ctx, tc.Args)
		if err != nil {
			return fmt.Sprintf("Tool '%s' failed: %v", tc.Name, err)
		}
		return result
	}
	return fmt.Sprintf("Tool '%s' is not available", tc.Name)
}

// ClearConversation drops the stored history for userID.
func (a *Agent) ClearConversation(userID string) (string, error) {
	existed, err := a.Store.Clear(userID)
	if err != nil {
		return "", err
	}
	if !existed {
		return "There was no conversation history to clear. We're starting fresh!", nil
	}
	return "Conversation history cleared. We're starting fresh!", nil
}

// HelpMessage describes what the assistant can do, including the active
// tools.
func (a *Agent) HelpMessage(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("👋 I'm ModuMentor, your personal assistant. You can ask me anything in plain language.\n\n")
	b.WriteString("Things I can help with:\n")
	b.WriteString("• Answering questions and explaining concepts\n")
	b.WriteString("• Remembering our conversation and summarizing it on request\n")

	if len(a.AvailableTools) > 0 {
		b.WriteString("\nTools I can use:\n")
		for _, t := range a.AvailableTools {
			desc := t.Description()
			if idx := strings.IndexByte(desc, '\n'); idx >= 0 {
				desc = desc[:idx]
			}
			fmt.Fprintf(&b, "• %s — %s\n", t.Name(), desc)
		}
	}

	b.WriteString("\nSay \"analyze our conversation\" for a summary of what we've discussed.")
	return b.String(), nil
}

// AnalyzeConversation returns the structured analysis of the user's stored
// conversation.
func (a *Agent) AnalyzeConversation(userID string) (memory.Analysis, error) {
	return a.Store.Analyze(userID)
}

// ProbeTools runs the availability probe of every active tool.
func (a *Agent) ProbeTools(ctx context.Context) map[string]tools.ProbeResult {
	return tools.ProbeAll(ctx, a.AvailableTools)
}
