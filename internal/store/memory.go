package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/odds-chat/internal/model"
)

// MemoryStore keeps everything in process. Used for the stateless HTTP mode
// and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	messages  map[string][]model.ChatMessage
	sports    []model.Sport
	fetchedAt time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]model.ChatMessage)}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) AppendMessage(_ context.Context, msg *model.ChatMessage) error {
	if err := prepareMessage(msg, uuid.New().String()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.UserID] = append(s.messages[msg.UserID], *msg)
	return nil
}

func (s *MemoryStore) History(_ context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(model.TrimHistory(s.messages[userID], limit)), nil
}

func (s *MemoryStore) ClearHistory(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, userID)
	return nil
}

func (s *MemoryStore) SaveCatalog(_ context.Context, sports []model.Sport, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sports = slices.Clone(sports)
	s.fetchedAt = fetchedAt
	return nil
}

func (s *MemoryStore) LoadCatalog(context.Context) ([]model.Sport, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sports), s.fetchedAt, nil
}
