package types

import "context"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// Message represents a user utterance or an assistant reply.
type Message struct {
	ID        string
	Content   string
	Role      string // "user", "assistant", "system"
	ChannelID string // Source channel identifier (e.g., "telegram", "cli")
	UserID    string
	ChatID    string // Where the reply should be delivered
	RequestID string
	Meta      map[string]interface{}
}

// Agent represents the core reasoning entity.
type Agent interface {
	Process(ctx context.Context, msg Message) (Message, error)
	Name() string
}

// Channel represents an input/output interface (Telegram, CLI).
type Channel interface {
	Start(ctx context.Context, handler func(Message)) error
	Send(ctx context.Context, msg Message) error
	ID() string
}

// Gateway orchestrates channels and the agent.
type Gateway interface {
	RegisterChannel(c Channel)
	Start(ctx context.Context) error
}
