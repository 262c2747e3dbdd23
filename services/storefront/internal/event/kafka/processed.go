package kafka

import (
	"context"
	"sync"
	"time"
)

// ProcessedEvents помнит id обработанных событий: при at-least-once доставке
// повторно прочитанное событие не обрабатывается второй раз.
type ProcessedEvents interface {
	// MarkProcessed сохраняет eventID как обработанный на ttl
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error
	// IsProcessed возвращает true, если eventID уже обработан и ttl не истёк
	IsProcessed(ctx context.Context, eventID string) (bool, error)
}

// MemoryProcessedEvents - ProcessedEvents в памяти процесса
type MemoryProcessedEvents struct {
	mu     sync.Mutex
	events map[string]time.Time // eventID -> expiresAt
	now    func() time.Time
}

func NewMemoryProcessedEvents() *MemoryProcessedEvents {
	return &MemoryProcessedEvents{
		events: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryProcessedEvents) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupExpiredLocked()
	s.events[eventID] = s.now().Add(ttl)
	return nil
}

func (s *MemoryProcessedEvents) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.events[eventID]
	if !ok {
		return false, nil
	}
	if s.now().After(expiresAt) {
		delete(s.events, eventID)
		return false, nil
	}
	return true, nil
}

// cleanupExpiredLocked вызывается под s.mu
func (s *MemoryProcessedEvents) cleanupExpiredLocked() {
	now := s.now()
	for id, expiresAt := range s.events {
		if now.After(expiresAt) {
			delete(s.events, id)
		}
	}
}
