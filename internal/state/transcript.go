package state

import (
	"time"

	"github.com/google/uuid"

	"graphchat/internal/viz"
)

// MessageType identifies who authored a chat message.
type MessageType string

const (
	MessageUser MessageType = "user"
	MessageBot  MessageType = "bot"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID            string             `json:"id"`
	Type          MessageType        `json:"type"`
	Content       string             `json:"content"`
	Visualization *viz.Visualization `json:"visualization,omitempty"`
	Timestamp     string             `json:"timestamp"`
}

// IDFunc generates an identifier with the given prefix.
type IDFunc func(prefix string) string

// Clock returns the current time.
type Clock func() time.Time

// NewID returns prefix-<uuid>.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Transcript is an append-only, insertion-ordered message log.
type Transcript struct {
	messages []ChatMessage
	newID    IDFunc
	now      Clock
}

// NewTranscript returns an empty transcript.
func NewTranscript(newID IDFunc, now Clock) *Transcript {
	if newID == nil {
		newID = NewID
	}
	if now == nil {
		now = time.Now
	}
	return &Transcript{newID: newID, now: now}
}

// AppendUser appends a user message.
func (t *Transcript) AppendUser(text string) ChatMessage {
	return t.append(MessageUser, text, nil)
}

// AppendBot appends a bot message, optionally carrying a visualization.
func (t *Transcript) AppendBot(content string, v *viz.Visualization) ChatMessage {
	return t.append(MessageBot, content, v)
}

func (t *Transcript) append(kind MessageType, content string, v *viz.Visualization) ChatMessage {
	msg := ChatMessage{
		ID:        t.newID(string(kind)),
		Type:      kind,
		Content:   content,
		Timestamp: t.now().UTC().Format(time.RFC3339),
	}
	if v != nil {
		c := v.Clone()
		msg.Visualization = &c
	}
	t.messages = append(t.messages, msg)
	return copyMessage(msg)
}

// Messages returns a copy of the log in insertion order.
func (t *Transcript) Messages() []ChatMessage {
	out := make([]ChatMessage, len(t.messages))
	for i, m := range t.messages {
		out[i] = copyMessage(m)
	}
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

func copyMessage(m ChatMessage) ChatMessage {
	if m.Visualization != nil {
		c := m.Visualization.Clone()
		m.Visualization = &c
	}
	return m
}
