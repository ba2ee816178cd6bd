package store

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// clipRunes bounds s to at most limit bytes without splitting a multibyte
// rune; limit <= 0 means no bound.
func clipRunes(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func (s *Store) findFineTune(fineTuneID string) (*domain.FineTune, error) {
	for _, ft := range s.fineTunes {
		if ft.ID == fineTuneID {
			return ft, nil
		}
	}
	return nil, fmt.Errorf("fine-tune %s: %w", fineTuneID, domain.ErrNotFound)
}

func (s *Store) findFineTuneForTask(projectID, taskID int, fineTuneID string) (*domain.FineTune, error) {
	ft, err := s.findFineTune(fineTuneID)
	if err != nil {
		return nil, err
	}
	if ft.ProjectID != projectID || ft.TaskID != taskID {
		return nil, fmt.Errorf("fine-tune %s for project %d task %d: %w",
			fineTuneID, projectID, taskID, domain.ErrNotFound)
	}
	return ft, nil
}

func cloneFineTune(ft *domain.FineTune) domain.FineTune {
	out := *ft
	out.Logs = append([]domain.FineTuneLog(nil), ft.Logs...)
	return out
}

// CreateFineTune records a new job in the queued state. The id is a random
// uuid because it is handed out as an external correlation token.
func (s *Store) CreateFineTune(projectID, taskID int, req domain.CreateFineTuneRequest) (domain.FineTune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findTask(taskID)
	if err != nil {
		return domain.FineTune{}, err
	}
	if t.ProjectID != projectID {
		return domain.FineTune{}, fmt.Errorf("task %d in project %d: %w", taskID, projectID, domain.ErrNotFound)
	}

	ts := now()
	ft := &domain.FineTune{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		TaskID:           t.ID,
		BaseModel:        req.BaseModel,
		TargetModel:      req.TargetModel,
		DatasetName:      "Training dataset",
		DatasetReference: req.ReferenceURL,
		Status:           domain.FineTuneStatusQueued,
		CreatedAt:        ts,
		UpdatedAt:        ts,
		Logs:             []domain.FineTuneLog{},
	}
	if req.DatasetName != nil {
		ft.DatasetName = *req.DatasetName
	}
	if req.DatasetPreview != nil {
		preview := clipRunes(*req.DatasetPreview, s.maxPreviewChars)
		ft.DatasetPreview = &preview
	}
	s.fineTunes = append(s.fineTunes, ft)
	return cloneFineTune(ft), nil
}

// AppendFineTuneLog adds one stage-tagged log line and refreshes updated_at.
// Logs are append-only and kept in arrival order.
func (s *Store) AppendFineTuneLog(fineTuneID, stage, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ft, err := s.findFineTune(fineTuneID)
	if err != nil {
		return err
	}
	ft.Logs = append(ft.Logs, domain.FineTuneLog{
		ID:      uuid.NewString(),
		At:      now(),
		Stage:   stage,
		Message: message,
	})
	ft.UpdatedAt = now()
	return nil
}

// UpdateFineTune patches job status/result/error metadata.
func (s *Store) UpdateFineTune(fineTuneID string, patch domain.FineTunePatch) (domain.FineTune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ft, err := s.findFineTune(fineTuneID)
	if err != nil {
		return domain.FineTune{}, err
	}
	if patch.Status != nil {
		ft.Status = *patch.Status
	}
	if patch.ResultModel != nil {
		ft.ResultModel = patch.ResultModel
	}
	if patch.ErrorMessage != nil {
		ft.ErrorMessage = patch.ErrorMessage
	}
	ft.UpdatedAt = now()
	return cloneFineTune(ft), nil
}

// ListFineTunes returns a task's jobs, newest first.
func (s *Store) ListFineTunes(projectID, taskID int) ([]domain.FineTune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findTask(taskID); err != nil {
		return nil, err
	}
	out := []domain.FineTune{}
	for _, ft := range s.fineTunes {
		if ft.ProjectID == projectID && ft.TaskID == taskID {
			out = append(out, cloneFineTune(ft))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetFineTune returns a job scoped to its project/task tuple.
func (s *Store) GetFineTune(projectID, taskID int, fineTuneID string) (domain.FineTune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ft, err := s.findFineTuneForTask(projectID, taskID, fineTuneID)
	if err != nil {
		return domain.FineTune{}, err
	}
	return cloneFineTune(ft), nil
}
