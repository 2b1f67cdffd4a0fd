// Package agent implements the conversational assistant behind the bridge
// commands.
//
// An Agent ties together three collaborators:
//
//   - an llm.Client for the configured model provider (or the mock client
//     when none is configured)
//   - a memory.Store that persists one conversation per user under the
//     bridge data directory
//   - the active tools resolved from configuration, which the model may
//     invoke during a turn
//
// ProcessMessage runs one conversational turn: it loads the user's history,
// appends the new message, consults the model, executes any tool calls it
// requests and persists the result. The remaining methods back the other
// bridge commands: ClearConversation, HelpMessage, AnalyzeConversation and
// ProbeTools.
//
// The agent never writes to stdout. In a bridge process stdout carries
// exactly one JSON document, so all diagnostics go to stderr.
package agent
