// Package memory persists per-user conversation history and derives the
// conversation analysis (statistics, topics, sentiment, insights) that the
// analyze_conversation command reports on.
//
// Conversations are stored as one JSON file per user under the bridge data
// directory. Because every bridge invocation is a fresh short-lived process,
// the files are the only thing that makes two invocations with the same user
// id address the same conversation.
package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modumentor/bridge/errors"
)

// ToolCall records a tool invocation requested by the model, kept in history
// so follow-up turns can see what was called and with which arguments.
type ToolCall struct {
	ToolCallID string                 `json:"tool_call_id"`
	Name       string                 `json:"name"`
	Args       map[string]interface{} `json:"args"`
}

// Message is one turn of a conversation. Role is "user", "assistant",
// "system" or "tool".
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Conversation is the stored history for one user.
type Conversation struct {
	UserID   string    `json:"user_id"`
	Messages []Message `json:"messages"`

	path string
}

// Add appends a message with the current time.
func (c *Conversation) Add(role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: time.Now()})
}

// AddMessage appends a fully formed message, e.g. a tool result that carries
// the originating ToolCall.
func (c *Conversation) AddMessage(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	c.Messages = append(c.Messages, msg)
}

// Store reads and writes conversations under <dataDir>/conversations.
type Store struct {
	dir string
}

// NewStore creates the conversation directory if needed.
func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "conversations")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create conversation directory")
	}
	return &Store{dir: dir}, nil
}

// Load returns the stored conversation for userID, or an empty one if the
// user has no history yet.
func (s *Store) Load(userID string) (*Conversation, error) {
	path := s.pathFor(userID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Conversation{UserID: userID, path: path}, nil
		}
		return nil, errors.Wrapf(err, "could not read conversation for user '%s'", userID)
	}

	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "could not parse conversation for user '%s'", userID)
	}
	c.path = path
	return &c, nil
}

// Save writes the conversation back to disk.
func (s *Store) Save(c *Conversation) error {
	if c.path == "" {
		c.path = s.pathFor(c.UserID)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to serialize conversation")
	}
	return os.WriteFile(c.path, data, 0644)
}

// Clear removes the stored conversation for userID. Returns whether there
// was anything to remove.
func (s *Store) Clear(userID string) (bool, error) {
	err := os.Remove(s.pathFor(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "could not clear conversation for user '%s'", userID)
	}
	return true, nil
}

func (s *Store) pathFor(userID string) string {
	return filepath.Join(s.dir, sanitizeUserID(userID)+".json")
}

// sanitizeUserID maps an arbitrary user id to a safe file name. Anything
// outside [A-Za-z0-9._-] becomes an underscore.
func sanitizeUserID(userID string) string {
	if userID == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
