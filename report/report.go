// Package report renders a conversation analysis as the multi-section
// markdown report the backend shows to users. Sections are built
// declaratively and always appear in the same order: statistics, topics,
// sentiment, insights, recent messages, closing summary.
package report

import (
	"fmt"
	"strings"

	"github.com/modumentor/bridge/memory"
)

// FirstContactGreeting is returned instead of a report when the user has no
// stored conversation.
const FirstContactGreeting = "We haven't had any previous conversations in this session. This is our first interaction! 😊"

// section appends its lines for one part of the report.
type section func(a memory.Analysis, lines *[]string)

// sections is the fixed rendering order. No section may be reordered or
// skipped when its backing data is present.
var sections = []section{
	statisticsSection,
	topicsSection,
	sentimentSection,
	insightsSection,
	recentMessagesSection,
	summarySection,
}

// Render produces the full report for an analysis, or the first-contact
// greeting when there is no conversation to analyze.
func Render(a memory.Analysis) string {
	if !a.HasConversation {
		return FirstContactGreeting
	}

	lines := []string{"🧠 **Conversation Analysis Report** 📊"}
	for _, s := range sections {
		lines = append(lines, "")
		s(a, &lines)
	}
	return strings.Join(lines, "\n")
}

func statisticsSection(a memory.Analysis, lines *[]string) {
	s := a.Summary
	*lines = append(*lines,
		"📈 **Conversation Statistics:**",
		fmt.Sprintf("• **Total Messages:** %d", s.TotalMessages),
		fmt.Sprintf("• **Your Messages:** %d", s.UserMessages),
		fmt.Sprintf("• **My Responses:** %d", s.AssistantMessages),
		fmt.Sprintf("• **Duration:** %v hours", s.ConversationDurationHours),
		fmt.Sprintf("• **Started:** %s", s.ConversationStart),
		fmt.Sprintf("• **Last Activity:** %s", s.LastActivity),
	)
}

func topicsSection(a memory.Analysis, lines *[]string) {
	*lines = append(*lines,
		"🎯 **Topics Discussed:**",
		fmt.Sprintf("• %s", strings.Join(a.Topics, ", ")),
	)
}

func sentimentSection(a memory.Analysis, lines *[]string) {
	s := a.Sentiment
	*lines = append(*lines,
		"😊 **Sentiment Analysis:**",
		fmt.Sprintf("• **Overall Tone:** %s", titleCase(s.OverallSentiment)),
		fmt.Sprintf("• **Engagement Level:** %s", titleCase(s.EngagementLevel)),
		fmt.Sprintf("• **Questions Asked:** %d", s.QuestionCount),
	)
}

func insightsSection(a memory.Analysis, lines *[]string) {
	*lines = append(*lines, "💡 **Key Insights:**")
	for _, insight := range a.Insights {
		*lines = append(*lines, fmt.Sprintf("• %s", insight))
	}
}

func recentMessagesSection(a memory.Analysis, lines *[]string) {
	*lines = append(*lines, "🔄 **Recent Messages:**")
	for _, msg := range a.RecentMessages {
		marker := "🤖"
		if msg.Role == "user" {
			marker = "👤"
		}
		*lines = append(*lines, fmt.Sprintf("%s **%s** (%s): %s", marker, titleCase(msg.Role), msg.Timestamp, msg.Content))
	}
}

func summarySection(a memory.Analysis, lines *[]string) {
	plural := "s"
	if len(a.Topics) == 1 {
		plural = ""
	}
	*lines = append(*lines,
		"💭 **Analysis Summary:**",
		fmt.Sprintf("This conversation shows %s engagement with a %s tone. ", a.Sentiment.EngagementLevel, a.Sentiment.OverallSentiment),
		fmt.Sprintf("We've covered %d main topic%s over %v hours. ", len(a.Topics), plural, a.Summary.ConversationDurationHours),
		"I'm here to continue helping you with any questions or tasks! 🚀",
	)
}

// titleCase uppercases the first letter of each space-separated word, the
// way the source reports tone and engagement values.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
