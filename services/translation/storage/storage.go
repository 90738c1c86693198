package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/xilidan/s2t-translator/services/translation/entity"
)

// Storage keeps completed runs for the lifetime of the process.
type Storage interface {
	SaveRun(ctx context.Context, run *entity.Run) error
	GetRun(ctx context.Context, id string) (*entity.Run, error)
	ListRuns(ctx context.Context) ([]*entity.Run, error)
}

type storage struct {
	mu   sync.RWMutex
	runs map[string]*entity.Run
}

func New() Storage {
	return &storage{
		runs: make(map[string]*entity.Run),
	}
}

func (s *storage) SaveRun(ctx context.Context, run *entity.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *run
	s.runs[run.ID] = &stored
	return nil
}

func (s *storage) GetRun(ctx context.Context, id string) (*entity.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, entity.ErrRunNotFound
	}
	out := *run
	return &out, nil
}

// ListRuns returns runs oldest first.
func (s *storage) ListRuns(ctx context.Context) ([]*entity.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*entity.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out := *run
		runs = append(runs, &out)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}
