package bridge

import (
	"context"
	"testing"

	"github.com/modumentor/bridge/errors"
	"github.com/modumentor/bridge/memory"
	"github.com/modumentor/bridge/tools"
)

type countingAgent struct{}

func (countingAgent) ProcessMessage(ctx context.Context, message, userID string) (string, error) {
	return "", nil
}
func (countingAgent) ClearConversation(userID string) (string, error) { return "", nil }
func (countingAgent) HelpMessage(ctx context.Context) (string, error) { return "", nil }
func (countingAgent) AnalyzeConversation(userID string) (memory.Analysis, error) {
	return memory.Analysis{}, nil
}
func (countingAgent) ProbeTools(ctx context.Context) map[string]tools.ProbeResult { return nil }

func TestManagerConstructsOnce(t *testing.T) {
	calls := 0
	m := NewManager(func() (Agent, error) {
		calls++
		return countingAgent{}, nil
	})

	for i := 0; i < 3; i++ {
		ag, err := m.Ensure()
		if err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		if ag == nil {
			t.Fatal("Ensure returned nil agent")
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 construction, got %d", calls)
	}
}

func TestManagerCachesFailure(t *testing.T) {
	calls := 0
	m := NewManager(func() (Agent, error) {
		calls++
		return nil, errors.New("no brain today")
	})

	_, err1 := m.Ensure()
	_, err2 := m.Ensure()
	if err1 == nil || err2 == nil {
		t.Fatal("Expected construction failure")
	}
	if calls != 1 {
		t.Errorf("Expected exactly one construction attempt, got %d", calls)
	}
}

func TestManagerRecoversConstructorPanic(t *testing.T) {
	m := NewManager(func() (Agent, error) {
		panic("boom")
	})

	_, err := m.Ensure()
	if err == nil {
		t.Fatal("Expected an error from a panicking constructor")
	}

	// The cached failure is stable.
	_, err2 := m.Ensure()
	if err2 == nil {
		t.Fatal("Expected the cached failure on the second call")
	}
}
