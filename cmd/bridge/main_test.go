package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// setupDir points HOME and the working directory at scratch space so each
// test gets its own config and conversation store.
func setupDir(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func runBridge(t *testing.T, argv ...string) (int, map[string]any, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(argv, &stdout, &stderr)

	var result map[string]any
	if stdout.Len() > 0 {
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatalf("stdout is not one JSON document: %v\n%s", err, stdout.String())
		}
	}
	return code, result, stderr.String()
}

func TestMissingCommandIsFatal(t *testing.T) {
	setupDir(t)

	code, result, stderr := runBridge(t)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if result != nil {
		t.Errorf("Expected no result on stdout, got %v", result)
	}

	var doc map[string]string
	if err := json.Unmarshal([]byte(stderr), &doc); err != nil {
		t.Fatalf("stderr does not carry a JSON error document: %v\n%s", err, stderr)
	}
	if doc["error"] != "No command provided" {
		t.Errorf("Unexpected error document: %v", doc)
	}
}

func TestUnknownCommandIsHandled(t *testing.T) {
	setupDir(t)

	code, result, _ := runBridge(t, "foo_bar")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if result["error"] != "Unknown command: foo_bar" {
		t.Errorf("Unexpected result: %v", result)
	}
}

func TestProcessMessageWithoutArguments(t *testing.T) {
	setupDir(t)

	code, result, _ := runBridge(t, "process_message")
	if code != 0 {
		t.Errorf("Expected exit code 0 for a handled error, got %d", code)
	}
	if result["error"] != "Message required for process_message command" {
		t.Errorf("Unexpected result: %v", result)
	}
}

func TestProcessMessageEndToEnd(t *testing.T) {
	setupDir(t)

	// No config file means the mock LLM client.
	code, result, _ := runBridge(t, "process_message", "hello there")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if result["success"] != true {
		t.Fatalf("Expected success, got %v", result)
	}
	response, _ := result["response"].(string)
	if !strings.Contains(response, "hello there") {
		t.Errorf("Mock response should echo the message, got %q", response)
	}
}

func TestAnalyzeConversationFreshUser(t *testing.T) {
	setupDir(t)

	code, result, _ := runBridge(t, "analyze_conversation")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if result["success"] != true {
		t.Fatalf("Expected success, got %v", result)
	}
	response, _ := result["response"].(string)
	if !strings.Contains(response, "first interaction") {
		t.Errorf("Expected the first-contact greeting, got %q", response)
	}
	if strings.Contains(response, "Conversation Statistics") {
		t.Error("Greeting must not include report sections")
	}
}

func TestAnalyzeConversationAfterMessages(t *testing.T) {
	setupDir(t)

	// Two invocations in the same directory share the conversation store,
	// exactly like two spawned bridge processes would.
	if code, _, _ := runBridge(t, "process_message", "what's the weather like?"); code != 0 {
		t.Fatal("process_message failed")
	}

	_, result, _ := runBridge(t, "analyze_conversation")
	if result["success"] != true {
		t.Fatalf("Expected success, got %v", result)
	}
	response, _ := result["response"].(string)
	for _, section := range []string{
		"Conversation Statistics",
		"Topics Discussed",
		"Sentiment Analysis",
		"Key Insights",
		"Recent Messages",
		"Analysis Summary",
	} {
		if !strings.Contains(response, section) {
			t.Errorf("Report missing section %q", section)
		}
	}
}

func TestClearConversationEndToEnd(t *testing.T) {
	setupDir(t)

	if code, _, _ := runBridge(t, "process_message", "remember this"); code != 0 {
		t.Fatal("process_message failed")
	}

	_, result, _ := runBridge(t, "clear_conversation")
	if result["success"] != true {
		t.Fatalf("Expected success, got %v", result)
	}

	// The next analysis sees a fresh session.
	_, result, _ = runBridge(t, "analyze_conversation")
	response, _ := result["response"].(string)
	if !strings.Contains(response, "first interaction") {
		t.Errorf("Conversation survived clear_conversation: %q", response)
	}
}

func TestGetHelpEndToEnd(t *testing.T) {
	setupDir(t)

	code, result, _ := runBridge(t, "get_help")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if result["success"] != true {
		t.Fatalf("Expected success, got %v", result)
	}
	response, _ := result["response"].(string)
	if !strings.Contains(response, "ModuMentor") {
		t.Errorf("Unexpected help text: %q", response)
	}
}

func TestEveryCommandEmitsOneDocument(t *testing.T) {
	for _, cmd := range []string{"process_message", "clear_conversation", "get_help", "analyze_conversation"} {
		t.Run(cmd, func(t *testing.T) {
			setupDir(t)
			args := []string{cmd}
			if cmd == "process_message" {
				args = append(args, "ping")
			}
			var stdout, stderr bytes.Buffer
			if code := run(args, &stdout, &stderr); code != 0 {
				t.Fatalf("Exit code %d", code)
			}
			dec := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
			var first map[string]any
			if err := dec.Decode(&first); err != nil {
				t.Fatalf("No JSON document on stdout: %v", err)
			}
			if dec.More() {
				t.Error("More than one JSON document on stdout")
			}
			if _, ok := first["success"]; !ok {
				t.Errorf("Result missing 'success' field: %v", first)
			}
		})
	}
}
