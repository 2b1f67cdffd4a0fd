// Package llm provides clients for the language-model providers the agent
// can be configured with, behind a single Client interface. Provider
// selection happens in the lifecycle manager from the `llm` config key.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/modumentor/bridge/memory"
	"github.com/modumentor/bridge/tools"
)

// Client is the interface for interacting with a Large Language Model.
type Client interface {
	Chat(ctx context.Context, messages []memory.Message, availableTools []tools.Tool) (*memory.Message, error)
}

// MockClient is a stand-in used in tests and when no provider is
// configured. It never writes to stdout: in the bridge, stdout belongs to
// the JSON protocol.
type MockClient struct{}

func (m *MockClient) Chat(ctx context.Context, messages []memory.Message, availableTools []tools.Tool) (*memory.Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("mock client called with no messages")
	}
	fmt.Fprintf(os.Stderr, "mock llm: %d message(s), %d tool(s) available\n", len(messages), len(availableTools))

	lastUserMessage := messages[len(messages)-1].Content
	return &memory.Message{
		Role:    "assistant",
		Content: fmt.Sprintf("I am a mock assistant. You said: '%s'.", lastUserMessage),
	}, nil
}
