package store

import (
	"sort"

	"github.com/google/uuid"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (s *Store) listMessagesLocked(runID int) []domain.Message {
	out := []domain.Message{}
	for _, m := range s.messages {
		if m.TaskRunID == runID {
			out = append(out, *m)
		}
	}
	// Creation-time order; ids are monotonic so they break timestamp ties in
	// insertion order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListMessages returns a run's messages in creation-time order regardless of
// storage order.
func (s *Store) ListMessages(runID int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findRun(runID); err != nil {
		return nil, err
	}
	return s.listMessagesLocked(runID), nil
}

// AddMessage appends a message to a run. Messages are never mutated after
// creation; the uuid serves as an external correlation id.
func (s *Store) AddMessage(runID int, role, content string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.findRun(runID)
	if err != nil {
		return domain.Message{}, err
	}
	m := &domain.Message{
		ID:        s.nextMessageID(),
		TaskRunID: r.ID,
		Role:      role,
		Content:   content,
		CreatedAt: now(),
		UUID:      uuid.NewString(),
	}
	s.messages = append(s.messages, m)
	return *m, nil
}
