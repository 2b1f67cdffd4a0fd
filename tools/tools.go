// Package tools defines the actions the agent can take on behalf of a user
// and the registry that resolves a configured toolset into live tool
// instances. It also implements the self-test probes behind the bridge's
// test_tools command.
package tools

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/modumentor/bridge/config"
)

// Tool defines the interface for any action the agent can take.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// Prober is implemented by tools that can verify their own availability
// without side effects. ProbeQuery describes what the probe exercises;
// Probe performs the check.
type Prober interface {
	ProbeQuery() string
	Probe(ctx context.Context) (string, error)
}

// ProbeResult is the outcome of probing one tool.
type ProbeResult struct {
	Status   string `json:"status"`
	Query    string `json:"query"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProbeAll runs the availability probe of every tool that supports one.
// Tools without a probe are reported as errors rather than silently
// claimed healthy.
func ProbeAll(ctx context.Context, active []Tool) map[string]ProbeResult {
	results := make(map[string]ProbeResult, len(active))
	for _, t := range active {
		p, ok := t.(Prober)
		if !ok {
			results[t.Name()] = ProbeResult{
				Status: "error",
				Query:  "availability check",
				Error:  fmt.Sprintf("tool '%s' does not support self-testing", t.Name()),
			}
			continue
		}
		resp, err := p.Probe(ctx)
		if err != nil {
			results[t.Name()] = ProbeResult{Status: "error", Query: p.ProbeQuery(), Error: err.Error()}
			continue
		}
		results[t.Name()] = ProbeResult{Status: "success", Query: p.ProbeQuery(), Response: resp}
	}
	return results
}

// ToolRegistry holds all available tools.
type ToolRegistry struct {
	tools map[string]Tool
}

func NewToolRegistry(cfg *config.Config) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]Tool)}

	r.Register(&ReadFileTool{fsAccess: &cfg.FilesystemAccess})
	r.Register(&WriteFileTool{fsAccess: &cfg.FilesystemAccess})
	r.Register(&ExecuteCommandTool{allowedCommands: cfg.AllowedCommands})
	r.Register(NewDictionaryTool())
	r.Register(NewWeatherTool())
	r.Register(NewWebSearchTool())
	r.Register(&GmailTool{})
	r.Register(&SheetsTool{})

	// MCP servers contribute tools under their own names. A server that
	// fails to start is reported on stderr and skipped so a broken MCP
	// config never takes the whole bridge down.
	for _, mcpServer := range cfg.AdditionalMCPServers {
		client, err := NewMCPClient(mcpServer.Name, mcpServer.Command, mcpServer.Args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: MCP server '%s' unavailable: %v\n", mcpServer.Name, err)
			continue
		}
		for _, t := range client.Tools() {
			r.Register(t)
		}
	}

	return r
}

func (r *ToolRegistry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *ToolRegistry) GetTool(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// GetActiveTools returns the tool instances for a given toolset. An empty
// toolset activates every registered tool, which is the bridge's default:
// the backend has no way to pick toolsets per request.
func (r *ToolRegistry) GetActiveTools(ts *config.Toolset) ([]Tool, error) {
	if len(ts.Tools) == 0 {
		active := make([]Tool, 0, len(r.tools))
		for _, t := range r.tools {
			active = append(active, t)
		}
		return active, nil
	}

	var activeTools []Tool
	for _, toolName := range ts.Tools {
		if t, ok := r.GetTool(toolName); ok {
			activeTools = append(activeTools, t)
		} else {
			return nil, fmt.Errorf("tool '%s' from toolset '%s' is not registered", toolName, ts.Name)
		}
	}
	return activeTools, nil
}

// isPathRestricted checks if a path matches any of the glob patterns.
func isPathRestricted(path string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		match, err := doublestar.PathMatch(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// isCommandAllowed checks if a command is in the allowlist (with regex support).
func isCommandAllowed(command string, allowed []string) (bool, error) {
	cmdParts := strings.Fields(command)
	if len(cmdParts) == 0 {
		return false, nil
	}

	for _, pattern := range allowed {
		re, err := regexp.Compile(pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid regex in allowed_commands '%s': %v\n", pattern, err)
			// Fallback to simple string comparison if regex is invalid
			if command == pattern {
				return true, nil
			}
			continue
		}
		if re.MatchString(command) {
			return true, nil
		}
	}
	return false, nil
}
