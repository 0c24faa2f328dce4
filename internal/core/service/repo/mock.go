package repo

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type MockRepositoryService struct {
	mock.Mock
}

func NewMockRepositoryService() *MockRepositoryService {
	return &MockRepositoryService{}
}

func (m *MockRepositoryService) FileExists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositoryService) List(ctx context.Context, path string) ([]string, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepositoryService) ListFiles(ctx context.Context, path string) ([]domain.Record, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRepositoryService) TreeList(ctx context.Context, path string) (map[string]domain.Record, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Record), args.Error(1)
}

func (m *MockRepositoryService) Register(ctx context.Context, path, mimetype string) (*domain.Record, error) {
	args := m.Called(ctx, path, mimetype)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRepositoryService) MakeDir(ctx context.Context, path string, parents bool) error {
	args := m.Called(ctx, path, parents)
	return args.Error(0)
}

func (m *MockRepositoryService) DeletePaths(ctx context.Context, paths []string, recursive, force bool) (uuid.UUID, error) {
	args := m.Called(ctx, paths, recursive, force)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepositoryService) Mimetype(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockRepositoryService) File(ctx context.Context, path string) (port.RawFileHandle, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.RawFileHandle), args.Error(1)
}

func (m *MockRepositoryService) FileByID(ctx context.Context, id int64) (port.RawFileHandle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.RawFileHandle), args.Error(1)
}

func (m *MockRepositoryService) WriteFile(ctx context.Context, path string, content io.Reader) (*domain.Record, error) {
	args := m.Called(ctx, path, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRepositoryService) ExecCommand(ctx context.Context, cmdArgs []string) (string, error) {
	args := m.Called(ctx, cmdArgs)
	return args.String(0), args.Error(1)
}
