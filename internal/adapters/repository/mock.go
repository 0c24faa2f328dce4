package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type MockRecordRepository struct {
	mock.Mock
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{}
}

func (m *MockRecordRepository) Register(ctx context.Context, rec domain.Record) (*domain.Record, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordRepository) FindRecord(ctx context.Context, repo uuid.UUID, parentPath, name string) (*domain.Record, error) {
	args := m.Called(ctx, repo, parentPath, name)
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id int64) (*domain.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordRepository) ListChildren(ctx context.Context, repo uuid.UUID, dirPath string) ([]domain.Record, error) {
	args := m.Called(ctx, repo, dirPath)
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) Exists(ctx context.Context, repo uuid.UUID, parentPath, name string) (bool, error) {
	args := m.Called(ctx, repo, parentPath, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateSize(ctx context.Context, id int64, size int64, mtime time.Time) error {
	args := m.Called(ctx, id, size, mtime)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateHash(ctx context.Context, id int64, hash string, hasher domain.ChecksumAlgo) error {
	args := m.Called(ctx, id, hash, hasher)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateMimetype(ctx context.Context, id int64, mimetype string) error {
	args := m.Called(ctx, id, mimetype)
	return args.Error(0)
}

func (m *MockRecordRepository) TreeList(ctx context.Context, repo uuid.UUID, dirPath string) ([]domain.Record, error) {
	args := m.Called(ctx, repo, dirPath)
	return args.Get(0).([]domain.Record), args.Error(1)
}

type MockImageRepository struct {
	mock.Mock
}

func NewMockImageRepository() *MockImageRepository {
	return &MockImageRepository{}
}

func (m *MockImageRepository) Create(ctx context.Context, img domain.Image) (*domain.Image, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(*domain.Image), args.Error(1)
}

func (m *MockImageRepository) FindByFileset(ctx context.Context, fileset uuid.UUID) ([]domain.Image, error) {
	args := m.Called(ctx, fileset)
	return args.Get(0).([]domain.Image), args.Error(1)
}

type MockPixelsRepository struct {
	mock.Mock
}

func NewMockPixelsRepository() *MockPixelsRepository {
	return &MockPixelsRepository{}
}

func (m *MockPixelsRepository) Create(ctx context.Context, px domain.Pixels) (*domain.Pixels, error) {
	args := m.Called(ctx, px)
	return args.Get(0).(*domain.Pixels), args.Error(1)
}

func (m *MockPixelsRepository) UpdateHash(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockPixelsRepository) UpdateStatistics(ctx context.Context, id int64, min, max float64) error {
	args := m.Called(ctx, id, min, max)
	return args.Error(0)
}

func (m *MockPixelsRepository) FindByImage(ctx context.Context, imageID int64) ([]domain.Pixels, error) {
	args := m.Called(ctx, imageID)
	return args.Get(0).([]domain.Pixels), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	recordRepo *MockRecordRepository
	imageRepo  *MockImageRepository
	pixelsRepo *MockPixelsRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		recordRepo: &MockRecordRepository{},
		imageRepo:  &MockImageRepository{},
		pixelsRepo: &MockPixelsRepository{},
	}
}

func (m *MockUnitOfWork) Records() port.RecordRepository {
	return m.recordRepo
}

func (m *MockUnitOfWork) Images() port.ImageRepository {
	return m.imageRepo
}

func (m *MockUnitOfWork) Pixels() port.PixelsRepository {
	return m.pixelsRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetRecordRepoMock() *MockRecordRepository {
	return m.recordRepo
}

func (m *MockUnitOfWork) GetImageRepoMock() *MockImageRepository {
	return m.imageRepo
}

func (m *MockUnitOfWork) GetPixelsRepoMock() *MockPixelsRepository {
	return m.pixelsRepo
}
