// Package message models chat transcript entries and their persistence.
package message

import (
	"context"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	Assistant Role = "assistant"
	User      Role = "user"
	System    Role = "system"
	Tool      Role = "tool"
)

type Message struct {
	ID        string
	SessionID string
	Role      Role
	Parts     []ContentPart
	CreatedAt int64
	UpdatedAt int64
}

func NewUser(text string) Message {
	now := time.Now().Unix()
	return Message{Role: User, Parts: []ContentPart{TextContent{Text: text}}, CreatedAt: now, UpdatedAt: now}
}

func NewAssistant(text string) Message {
	now := time.Now().Unix()
	return Message{Role: Assistant, Parts: []ContentPart{TextContent{Text: text}}, CreatedAt: now, UpdatedAt: now}
}

// CreateMessageParams are used for storing messages.
type CreateMessageParams struct {
	Role  Role
	Parts []ContentPart
}

// Service provides multi-turn transcript storage.
type Service interface {
	Create(ctx context.Context, sessionID string, params CreateMessageParams) (Message, error)
	List(ctx context.Context, sessionID string) ([]Message, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
