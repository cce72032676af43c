package message

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryService keeps messages in a map, for tests and ephemeral runs.
type InMemoryService struct {
	mu   sync.Mutex
	seq  int64
	data map[string][]Message
}

func NewInMemoryService() *InMemoryService {
	return &InMemoryService{data: map[string][]Message{}}
}

func (s *InMemoryService) Create(ctx context.Context, sessionID string, params CreateMessageParams) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := time.Now().Unix()
	m := Message{
		ID:        fmt.Sprintf("m-%d", s.seq),
		SessionID: sessionID,
		Role:      params.Role,
		Parts:     params.Parts,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data[sessionID] = append(s.data[sessionID], m)
	return m, nil
}

func (s *InMemoryService) List(ctx context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.data[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *InMemoryService) DeleteBySession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}
