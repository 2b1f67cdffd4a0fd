package memory

import (
	"fmt"
	"math"
	"strings"
)

// Summary holds the message statistics section of an analysis.
type Summary struct {
	TotalMessages             int     `json:"total_messages"`
	UserMessages              int     `json:"user_messages"`
	AssistantMessages         int     `json:"assistant_messages"`
	ConversationDurationHours float64 `json:"conversation_duration_hours"`
	ConversationStart         string  `json:"conversation_start"`
	LastActivity              string  `json:"last_activity"`
}

// Sentiment holds the tone and engagement assessment of a conversation.
type Sentiment struct {
	OverallSentiment string `json:"overall_sentiment"`
	EngagementLevel  string `json:"engagement_level"`
	QuestionCount    int    `json:"question_count"`
}

// RecentMessage is one line of the recent-messages excerpt.
type RecentMessage struct {
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
}

// Analysis is the full structured result of analyzing one user's
// conversation. When HasConversation is false no other field is populated.
type Analysis struct {
	HasConversation bool            `json:"has_conversation"`
	Summary         Summary         `json:"summary"`
	Topics          []string        `json:"topics"`
	Sentiment       Sentiment       `json:"sentiment"`
	Insights        []string        `json:"insights"`
	RecentMessages  []RecentMessage `json:"recent_messages"`
}

const (
	timestampLayout  = "2006-01-02 15:04"
	recentMessageMax = 5
	excerptMax       = 120
)

// topicKeywords maps a reported topic to the keywords that indicate it.
// Matching is case-insensitive over user messages only.
var topicKeywords = map[string][]string{
	"weather":       {"weather", "temperature", "forecast", "rain", "sunny"},
	"programming":   {"code", "program", "bug", "function", "compile", "golang", "python"},
	"email":         {"email", "gmail", "inbox", "send a message"},
	"spreadsheets":  {"sheet", "spreadsheet", "csv", "table"},
	"definitions":   {"define", "definition", "meaning", "what does", "dictionary"},
	"web research":  {"search", "look up", "find out", "news", "article"},
	"scheduling":    {"schedule", "calendar", "meeting", "remind"},
	"general help":  {"help", "how do i", "how to", "can you"},
	"small talk":    {"hello", "hi there", "thanks", "thank you", "good morning"},
	"troubleshoot":  {"error", "broken", "not working", "fails", "crash"},
}

var positiveWords = []string{
	"thanks", "thank you", "great", "awesome", "perfect", "good", "love",
	"excellent", "helpful", "nice", "wonderful",
}

var negativeWords = []string{
	"bad", "wrong", "terrible", "hate", "awful", "frustrated", "annoying",
	"useless", "broken", "angry",
}

// Analyze loads the user's conversation and derives statistics, topics,
// sentiment and insights from it. A user with no stored history yields
// Analysis{HasConversation: false}.
func (s *Store) Analyze(userID string) (Analysis, error) {
	conv, err := s.Load(userID)
	if err != nil {
		return Analysis{}, err
	}
	return AnalyzeConversation(conv), nil
}

// AnalyzeConversation derives an Analysis from an in-memory conversation.
func AnalyzeConversation(conv *Conversation) Analysis {
	if conv == nil || len(conv.Messages) == 0 {
		return Analysis{HasConversation: false}
	}

	a := Analysis{HasConversation: true}
	a.Summary = summarize(conv.Messages)
	a.Topics = detectTopics(conv.Messages)
	a.Sentiment = assessSentiment(conv.Messages)
	a.Insights = deriveInsights(a.Summary, a.Topics, a.Sentiment)
	a.RecentMessages = recentMessages(conv.Messages)
	return a
}

func summarize(messages []Message) Summary {
	sum := Summary{TotalMessages: len(messages)}
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			sum.UserMessages++
		case "assistant":
			sum.AssistantMessages++
		}
	}

	first := messages[0].Timestamp
	last := messages[len(messages)-1].Timestamp
	hours := last.Sub(first).Hours()
	// Two decimal places, matching the reported "X.XX hours" figure.
	sum.ConversationDurationHours = math.Round(hours*100) / 100
	sum.ConversationStart = first.Format(timestampLayout)
	sum.LastActivity = last.Format(timestampLayout)
	return sum
}

func detectTopics(messages []Message) []string {
	// Fixed iteration order so repeated analyses report topics stably.
	ordered := []string{
		"weather", "programming", "email", "spreadsheets", "definitions",
		"web research", "scheduling", "general help", "small talk", "troubleshoot",
	}

	var text strings.Builder
	for _, msg := range messages {
		if msg.Role == "user" {
			text.WriteString(strings.ToLower(msg.Content))
			text.WriteString("\n")
		}
	}
	haystack := text.String()

	var topics []string
	for _, topic := range ordered {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(haystack, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}
	if len(topics) == 0 {
		topics = []string{"general conversation"}
	}
	return topics
}

func assessSentiment(messages []Message) Sentiment {
	var positive, negative, questions, userCount int
	for _, msg := range messages {
		if msg.Role != "user" {
			continue
		}
		userCount++
		lower := strings.ToLower(msg.Content)
		for _, w := range positiveWords {
			positive += strings.Count(lower, w)
		}
		for _, w := range negativeWords {
			negative += strings.Count(lower, w)
		}
		questions += strings.Count(msg.Content, "?")
	}

	tone := "neutral"
	if positive > negative {
		tone = "positive"
	} else if negative > positive {
		tone = "negative"
	}

	engagement := "low"
	switch {
	case userCount >= 10:
		engagement = "high"
	case userCount >= 4:
		engagement = "moderate"
	}

	return Sentiment{
		OverallSentiment: tone,
		EngagementLevel:  engagement,
		QuestionCount:    questions,
	}
}

func deriveInsights(sum Summary, topics []string, sent Sentiment) []string {
	var insights []string

	if sent.QuestionCount > 0 && sum.UserMessages > 0 {
		ratio := float64(sent.QuestionCount) / float64(sum.UserMessages)
		if ratio >= 0.5 {
			insights = append(insights, "You ask a lot of questions - curiosity drives this conversation")
		}
	}
	if len(topics) >= 3 {
		insights = append(insights, fmt.Sprintf("The conversation ranges across %d different topics", len(topics)))
	} else if len(topics) == 1 {
		insights = append(insights, fmt.Sprintf("The conversation stays focused on %s", topics[0]))
	}
	if sent.EngagementLevel == "high" {
		insights = append(insights, "This is a highly active session with frequent back-and-forth")
	}
	if sum.ConversationDurationHours >= 1 {
		insights = append(insights, fmt.Sprintf("We've been talking for over %d hour(s)", int(sum.ConversationDurationHours)))
	}
	if sent.OverallSentiment == "positive" {
		insights = append(insights, "The overall mood of the conversation is upbeat")
	}
	if len(insights) == 0 {
		insights = append(insights, "The conversation is just getting started")
	}
	return insights
}

func recentMessages(messages []Message) []RecentMessage {
	start := len(messages) - recentMessageMax
	if start < 0 {
		start = 0
	}

	var recent []RecentMessage
	for _, msg := range messages[start:] {
		content := msg.Content
		if runes := []rune(content); len(runes) > excerptMax {
			content = string(runes[:excerptMax]) + "..."
		}
		recent = append(recent, RecentMessage{
			Role:      msg.Role,
			Timestamp: msg.Timestamp.Format(timestampLayout),
			Content:   content,
		})
	}
	return recent
}
