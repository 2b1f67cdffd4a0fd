package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/modumentor/bridge/bridge/task"
	"github.com/modumentor/bridge/memory"
	"github.com/modumentor/bridge/report"
	"github.com/modumentor/bridge/tools"
)

// fakeAgent records the calls the dispatcher makes and returns scripted
// results.
type fakeAgent struct {
	lastMessage string
	lastUserID  string

	processErr error
	analysis   memory.Analysis
	analyzeErr error
	clearErr   error
	helpErr    error
}

func (f *fakeAgent) ProcessMessage(ctx context.Context, message, userID string) (string, error) {
	f.lastMessage = message
	f.lastUserID = userID
	if f.processErr != nil {
		return "", f.processErr
	}
	return "echo: " + message, nil
}

func (f *fakeAgent) ClearConversation(userID string) (string, error) {
	f.lastUserID = userID
	if f.clearErr != nil {
		return "", f.clearErr
	}
	return "cleared", nil
}

func (f *fakeAgent) HelpMessage(ctx context.Context) (string, error) {
	if f.helpErr != nil {
		return "", f.helpErr
	}
	return "help text", nil
}

func (f *fakeAgent) AnalyzeConversation(userID string) (memory.Analysis, error) {
	f.lastUserID = userID
	return f.analysis, f.analyzeErr
}

func (f *fakeAgent) ProbeTools(ctx context.Context) map[string]tools.ProbeResult {
	return map[string]tools.ProbeResult{
		"dictionary": {Status: "success", Query: "test", Response: "ok"},
	}
}

func newTestDispatcher(ag Agent) (*Dispatcher, *fakeAgent) {
	fake, _ := ag.(*fakeAgent)
	lifecycle := NewManager(func() (Agent, error) { return ag, nil })
	return NewDispatcher(lifecycle, &task.Runner{}, nil), fake
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(&fakeAgent{})

	result := d.Dispatch(context.Background(), Invocation{Command: "foo_bar"})
	if result.Error != "Unknown command: foo_bar" {
		t.Errorf("Expected unknown-command error, got '%s'", result.Error)
	}
	if result.Success != nil {
		t.Errorf("Expected no success field, got %v", *result.Success)
	}
}

func TestProcessMessageRequiresArgument(t *testing.T) {
	d, _ := newTestDispatcher(&fakeAgent{})

	result := d.Dispatch(context.Background(), Invocation{Command: "process_message"})
	if result.Error != "Message required for process_message command" {
		t.Errorf("Expected missing-message error, got '%s'", result.Error)
	}
}

func TestProcessMessageDefaultsUserID(t *testing.T) {
	d, fake := newTestDispatcher(&fakeAgent{})

	result := d.Dispatch(context.Background(), Invocation{
		Command: "process_message",
		Args:    []string{"hello"},
	})
	if result.Error != "" {
		t.Fatalf("Unexpected error: %s", result.Error)
	}
	if fake.lastUserID != DefaultUserID {
		t.Errorf("Expected default user id '%s', got '%s'", DefaultUserID, fake.lastUserID)
	}
	if result.Response != "echo: hello" {
		t.Errorf("Unexpected response: %s", result.Response)
	}
	if result.Success == nil || !*result.Success {
		t.Error("Expected success: true")
	}

	// An explicit user id equal to the sentinel must behave identically.
	d2, fake2 := newTestDispatcher(&fakeAgent{})
	d2.Dispatch(context.Background(), Invocation{
		Command: "process_message",
		Args:    []string{"hello", DefaultUserID},
	})
	if fake2.lastUserID != fake.lastUserID {
		t.Errorf("Explicit sentinel id diverged: '%s' vs '%s'", fake2.lastUserID, fake.lastUserID)
	}
}

func TestProcessMessageOperationFault(t *testing.T) {
	d, _ := newTestDispatcher(&fakeAgent{processErr: context.DeadlineExceeded})

	result := d.Dispatch(context.Background(), Invocation{
		Command: "process_message",
		Args:    []string{"hello"},
	})
	if result.Error == "" {
		t.Fatal("Expected an error field")
	}
	if !strings.Contains(result.Response, "I encountered an error while processing your message") {
		t.Errorf("Expected apologetic response, got '%s'", result.Response)
	}
	if !strings.Contains(result.Response, result.Error) {
		t.Error("Response should embed the fault description")
	}
}

func TestHandlersReportAgentInitFailure(t *testing.T) {
	lifecycle := NewManager(func() (Agent, error) {
		return nil, context.DeadlineExceeded
	})
	d := NewDispatcher(lifecycle, &task.Runner{}, nil)

	for _, cmd := range []Invocation{
		{Command: "process_message", Args: []string{"hi"}},
		{Command: "analyze_conversation"},
		{Command: "get_help"},
	} {
		result := d.Dispatch(context.Background(), cmd)
		if result.Error != "Failed to initialize intelligent agent" {
			t.Errorf("%s: expected init-failure error, got '%s'", cmd.Command, result.Error)
		}
		if result.Response == "" {
			t.Errorf("%s: expected a user-facing fallback response", cmd.Command)
		}
	}

	result := d.Dispatch(context.Background(), Invocation{Command: "clear_conversation"})
	if result.Error != "Failed to initialize intelligent agent" {
		t.Errorf("clear_conversation: expected init-failure error, got '%s'", result.Error)
	}
	if result.Success == nil || *result.Success {
		t.Error("clear_conversation: expected success: false")
	}
}

func TestClearConversation(t *testing.T) {
	d, fake := newTestDispatcher(&fakeAgent{})

	result := d.Dispatch(context.Background(), Invocation{
		Command: "clear_conversation",
		Args:    []string{"alice"},
	})
	if fake.lastUserID != "alice" {
		t.Errorf("Expected user id 'alice', got '%s'", fake.lastUserID)
	}
	if result.Response != "cleared" || result.Success == nil || !*result.Success {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestAnalyzeConversationNoHistory(t *testing.T) {
	d, _ := newTestDispatcher(&fakeAgent{analysis: memory.Analysis{HasConversation: false}})

	result := d.Dispatch(context.Background(), Invocation{Command: "analyze_conversation"})
	if result.Response != report.FirstContactGreeting {
		t.Errorf("Expected first-contact greeting, got '%s'", result.Response)
	}
	if result.Success == nil || !*result.Success {
		t.Error("Expected success: true")
	}
}

func TestTestTools(t *testing.T) {
	d, _ := newTestDispatcher(&fakeAgent{})

	result := d.Dispatch(context.Background(), Invocation{Command: "test_tools"})
	if result.Success == nil || !*result.Success {
		t.Fatalf("Expected success, got %+v", result)
	}
	probe, ok := result.TestResults["dictionary"]
	if !ok {
		t.Fatal("Expected a probe result for 'dictionary'")
	}
	if probe.Status != "success" || probe.Query != "test" {
		t.Errorf("Unexpected probe result: %+v", probe)
	}
}

func TestGetHelp(t *testing.T) {
	d, _ := newTestDispatcher(&fakeAgent{})

	result := d.Dispatch(context.Background(), Invocation{Command: "get_help"})
	if result.Response != "help text" {
		t.Errorf("Unexpected response: %s", result.Response)
	}
	if result.Success == nil || !*result.Success {
		t.Error("Expected success: true")
	}
}
