package fs

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/jobrunner/model/descriptor"
	"github.com/viant/jobrunner/service/dao"
	ddao "github.com/viant/jobrunner/service/dao/descriptor"
)

// Service implements a filesystem-based descriptor storage
type Service struct {
	fileName string
	fs       afs.Service
}

// Ensure Service implements descriptor.Service
var _ ddao.Service = (*Service)(nil)

// Location returns the descriptor path inside dir.
func (s *Service) Location(dir string) string {
	return filepath.Join(dir, s.fileName)
}

// Load reads the descriptor from dir.
func (s *Service) Load(ctx context.Context, dir string) ([]byte, error) {
	if dir == "" {
		return nil, dao.ErrInvalidID
	}
	location := s.Location(dir)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check if descriptor exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, location)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", location, err)
	}
	return data, nil
}

// Save writes data as the descriptor of dir.
func (s *Service) Save(ctx context.Context, dir string, data []byte) error {
	if dir == "" {
		return dao.ErrInvalidID
	}
	if data == nil {
		return dao.ErrNilEntity
	}
	location := s.Location(dir)
	if err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save descriptor to file %s: %w", location, err)
	}
	return nil
}

// New creates a filesystem descriptor storage. An empty fileName selects
// descriptor.FileName.
func New(fileName string) *Service {
	if fileName == "" {
		fileName = descriptor.FileName
	}
	return &Service{fileName: fileName, fs: afs.New()}
}
