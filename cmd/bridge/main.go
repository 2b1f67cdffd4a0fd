// Command bridge connects the ModuMentor backend to the intelligent agent.
// The backend spawns one bridge process per request:
//
//	bridge <command> [args...]
//
// and parses the single JSON document the process writes to stdout. All
// diagnostics go to stderr. Exit code 0 means a result was emitted (even a
// handled error); exit code 1 means a top-level fault reported on stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/modumentor/bridge/agent"
	"github.com/modumentor/bridge/bridge"
	"github.com/modumentor/bridge/bridge/task"
	"github.com/modumentor/bridge/config"
	"github.com/modumentor/bridge/llm"
	"github.com/modumentor/bridge/memory"
	"github.com/modumentor/bridge/protocol"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	codec := protocol.NewCodec(stdout, stderr)

	if len(argv) < 1 {
		codec.Fatal("No command provided")
		return 1
	}
	inv := bridge.Invocation{Command: argv[0], Args: argv[1:]}

	cfg, err := config.LoadConfig()
	if err != nil {
		codec.Fatal(fmt.Sprintf("Error loading configuration: %v", err))
		return 1
	}

	lifecycle := bridge.NewManager(func() (bridge.Agent, error) {
		return buildAgent(cfg, codec)
	})
	runner := &task.Runner{Timeout: time.Duration(cfg.Bridge.TimeoutSeconds) * time.Second}
	dispatcher := bridge.NewDispatcher(lifecycle, runner, codec.Logf)

	result := dispatcher.Dispatch(context.Background(), inv)

	if err := codec.Emit(result); err != nil {
		codec.Fatal(fmt.Sprintf("Error emitting result: %v", err))
		return 1
	}
	return 0
}

// buildAgent constructs the process's agent: conversation store, LLM client
// per the configured provider, and the active tools.
func buildAgent(cfg *config.Config, codec *protocol.Codec) (bridge.Agent, error) {
	store, err := memory.NewStore(cfg.Bridge.DataDir)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	var client llm.Client
	switch cfg.LLMClient {
	case "gemini":
		client, err = llm.NewGeminiClient(ctx, cfg.Model)
	case "openai":
		client, err = llm.NewOpenAIClient(ctx, cfg.Model)
	case "bedrock":
		client, err = llm.NewBedrockClient(ctx, cfg.Model)
	case "anthropic":
		client, err = llm.NewAnthropicClient(ctx, cfg.Model)
	default:
		client = &llm.MockClient{}
	}
	if err != nil {
		return nil, err
	}

	ag, err := agent.New(cfg, store, client)
	if err != nil {
		return nil, err
	}
	codec.Logf("Intelligent agent initialized with %d tool(s)", len(ag.AvailableTools))
	return ag, nil
}
