package metastore

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type MockMetadataStore struct {
	mock.Mock
}

func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{}
}

func (m *MockMetadataStore) SetOverrides(ctx context.Context, settings domain.ImportSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockMetadataStore) SaveAll(ctx context.Context, fileset domain.Fileset, series []port.SeriesInfo) (*port.ObjectMap, error) {
	args := m.Called(ctx, fileset, series)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ObjectMap), args.Error(1)
}

func (m *MockMetadataStore) PopulateStatistics(ctx context.Context, pixelsID int64, min, max float64) error {
	args := m.Called(ctx, pixelsID, min, max)
	return args.Error(0)
}

func (m *MockMetadataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
