package memory

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/viant/jobrunner/model/descriptor"
	"github.com/viant/jobrunner/service/dao"
	ddao "github.com/viant/jobrunner/service/dao/descriptor"
)

// Service implements an in-memory, thread-safe descriptor store. It keeps
// copies so that callers cannot mutate stored bytes.
type Service struct {
	descriptors map[string][]byte
	mux         sync.RWMutex
}

var _ ddao.Service = (*Service)(nil)

// Location returns the descriptor key for dir.
func (s *Service) Location(dir string) string {
	return path.Join(dir, descriptor.FileName)
}

// Load returns a copy of the descriptor stored for dir.
func (s *Service) Load(_ context.Context, dir string) ([]byte, error) {
	if dir == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	data, ok := s.descriptors[dir]
	s.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, s.Location(dir))
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data for dir.
func (s *Service) Save(_ context.Context, dir string, data []byte) error {
	if dir == "" {
		return dao.ErrInvalidID
	}
	if data == nil {
		return dao.ErrNilEntity
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.descriptors[dir] = append([]byte(nil), data...)
	return nil
}

// New creates an empty in-memory descriptor store.
func New() *Service {
	return &Service{descriptors: make(map[string][]byte)}
}
