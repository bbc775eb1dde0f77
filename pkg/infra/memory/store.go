package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
)

type store struct {
	mu    sync.RWMutex
	marks map[string]int64
}

// New creates an in-memory watermark store. State is lost on restart; it
// serves tests and deployments that accept re-notification after restart.
func New() interfaces.WatermarkStore {
	return &store{
		marks: make(map[string]int64),
	}
}

func (s *store) Get(_ context.Context, repo string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.marks[repo]
	return id, ok, nil
}

func (s *store) Set(_ context.Context, repo string, releaseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[repo] = releaseID
	return nil
}

func (s *store) Close() error {
	return nil
}
