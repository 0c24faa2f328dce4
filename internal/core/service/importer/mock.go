package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type MockImportService struct {
	mock.Mock
}

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) ImportFileset(ctx context.Context, declared []string, settings domain.ImportSettings, ectx domain.ExpansionContext) (port.ImportProcess, error) {
	args := m.Called(ctx, declared, settings, ectx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.ImportProcess), args.Error(1)
}

func (m *MockImportService) Process(id uuid.UUID) (port.ImportProcess, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.ImportProcess), args.Error(1)
}

func (m *MockImportService) ListProcesses(groups ...string) []port.ImportProcess {
	args := m.Called(groups)
	return args.Get(0).([]port.ImportProcess)
}

func (m *MockImportService) PingAll() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockImportService) ShutdownAll() int {
	args := m.Called()
	return args.Int(0)
}

type MockImportProcess struct {
	mock.Mock
}

func NewMockImportProcess() *MockImportProcess {
	return &MockImportProcess{}
}

func (m *MockImportProcess) ID() uuid.UUID {
	args := m.Called()
	return args.Get(0).(uuid.UUID)
}

func (m *MockImportProcess) Group() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockImportProcess) Location() domain.ImportLocation {
	args := m.Called()
	return args.Get(0).(domain.ImportLocation)
}

func (m *MockImportProcess) Uploader(index int) (port.FileWriteHandle, error) {
	args := m.Called(index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.FileWriteHandle), args.Error(1)
}

func (m *MockImportProcess) UploadOffset(index int) int64 {
	args := m.Called(index)
	return args.Get(0).(int64)
}

func (m *MockImportProcess) CloseUploader(index int) error {
	args := m.Called(index)
	return args.Error(0)
}

func (m *MockImportProcess) VerifyUpload(ctx context.Context, hashes []string) (uuid.UUID, map[int]string, error) {
	args := m.Called(ctx, hashes)
	var failures map[int]string
	if args.Get(1) != nil {
		failures = args.Get(1).(map[int]string)
	}
	return args.Get(0).(uuid.UUID), failures, args.Error(2)
}

func (m *MockImportProcess) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockImportProcess) Close() error {
	args := m.Called()
	return args.Error(0)
}
