package report

import (
	"strings"
	"testing"

	"github.com/modumentor/bridge/memory"
)

func sampleAnalysis() memory.Analysis {
	return memory.Analysis{
		HasConversation: true,
		Summary: memory.Summary{
			TotalMessages:             6,
			UserMessages:              3,
			AssistantMessages:         3,
			ConversationDurationHours: 0.5,
			ConversationStart:         "2026-08-23 09:00",
			LastActivity:              "2026-08-23 09:30",
		},
		Topics: []string{"weather", "programming"},
		Sentiment: memory.Sentiment{
			OverallSentiment: "positive",
			EngagementLevel:  "moderate",
			QuestionCount:    2,
		},
		Insights: []string{"first insight", "second insight"},
		RecentMessages: []memory.RecentMessage{
			{Role: "user", Timestamp: "2026-08-23 09:29", Content: "how's the weather?"},
			{Role: "assistant", Timestamp: "2026-08-23 09:30", Content: "Sunny."},
		},
	}
}

func TestRenderFirstContact(t *testing.T) {
	got := Render(memory.Analysis{HasConversation: false})
	if got != FirstContactGreeting {
		t.Errorf("Expected first-contact greeting, got '%s'", got)
	}
	if strings.Contains(got, "Statistics") {
		t.Error("Greeting must not contain report sections")
	}
}

func TestRenderSectionOrder(t *testing.T) {
	got := Render(sampleAnalysis())

	headers := []string{
		"🧠 **Conversation Analysis Report** 📊",
		"📈 **Conversation Statistics:**",
		"🎯 **Topics Discussed:**",
		"😊 **Sentiment Analysis:**",
		"💡 **Key Insights:**",
		"🔄 **Recent Messages:**",
		"💭 **Analysis Summary:**",
	}
	pos := -1
	for _, h := range headers {
		idx := strings.Index(got, h)
		if idx < 0 {
			t.Fatalf("Missing section header '%s'", h)
		}
		if idx <= pos {
			t.Errorf("Section '%s' out of order", h)
		}
		pos = idx
	}
}

func TestRenderContent(t *testing.T) {
	got := Render(sampleAnalysis())

	for _, want := range []string{
		"• **Total Messages:** 6",
		"• **Your Messages:** 3",
		"• **My Responses:** 3",
		"• **Duration:** 0.5 hours",
		"• weather, programming",
		"• **Overall Tone:** Positive",
		"• **Engagement Level:** Moderate",
		"• **Questions Asked:** 2",
		"• first insight",
		"• second insight",
		"👤 **User** (2026-08-23 09:29): how's the weather?",
		"🤖 **Assistant** (2026-08-23 09:30): Sunny.",
		"This conversation shows moderate engagement with a positive tone.",
		"We've covered 2 main topics over 0.5 hours.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestRenderInsightOrderPreserved(t *testing.T) {
	got := Render(sampleAnalysis())
	if strings.Index(got, "first insight") > strings.Index(got, "second insight") {
		t.Error("Insights were reordered")
	}
}

func TestRenderTopicPluralization(t *testing.T) {
	a := sampleAnalysis()

	a.Topics = []string{"weather"}
	if got := Render(a); !strings.Contains(got, "1 main topic over") {
		t.Errorf("Expected singular 'topic' for one topic, got: %s", got)
	}

	a.Topics = []string{"weather", "email", "programming"}
	if got := Render(a); !strings.Contains(got, "3 main topics over") {
		t.Errorf("Expected plural 'topics' for three topics, got: %s", got)
	}
}
