package store

import (
	"sync"
	"time"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// Store owns every workspace record. It is volatile by design: all
// collections live in process memory and vanish with it. Every exported
// method takes the single mutex for its whole body so cross-entity
// invariants (cascades, group/task mirroring) are never observed
// half-applied by a concurrent caller.
type Store struct {
	mu sync.Mutex

	// maxPreviewChars bounds dataset_preview excerpts stored on fine-tune
	// records; zero or negative means unbounded.
	maxPreviewChars int

	projectSeq int
	taskSeq    int
	groupSeq   int
	runSeq     int
	messageSeq int

	projects  []*domain.Project
	tasks     []*domain.Task
	groups    []*domain.Group
	runs      []*domain.Run
	messages  []*domain.Message
	fineTunes []*domain.FineTune
}

// New returns an empty store. maxPreviewChars is the configured bound for
// stored dataset previews. Use NewSeeded for a store pre-populated with the
// demo workspace.
func New(maxPreviewChars int) *Store {
	return &Store{
		maxPreviewChars: maxPreviewChars,
		projectSeq:      1,
		taskSeq:         1,
		groupSeq:        1,
		runSeq:          1,
		messageSeq:      1,
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func (s *Store) nextProjectID() int {
	id := s.projectSeq
	s.projectSeq++
	return id
}

func (s *Store) nextTaskID() int {
	id := s.taskSeq
	s.taskSeq++
	return id
}

func (s *Store) nextGroupID() int {
	id := s.groupSeq
	s.groupSeq++
	return id
}

func (s *Store) nextRunID() int {
	id := s.runSeq
	s.runSeq++
	return id
}

func (s *Store) nextMessageID() int {
	id := s.messageSeq
	s.messageSeq++
	return id
}

func strPtr(s string) *string { return &s }

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeInt(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
