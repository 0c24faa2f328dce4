package decoder

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type MockFormatDecoder struct {
	mock.Mock
}

func NewMockFormatDecoder() *MockFormatDecoder {
	return &MockFormatDecoder{}
}

func (m *MockFormatDecoder) Open(ctx context.Context, absPath string) (port.ReaderHandle, error) {
	args := m.Called(ctx, absPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.ReaderHandle), args.Error(1)
}

func (m *MockFormatDecoder) RequiredDirectoryDepth(paths []string) (int, bool) {
	args := m.Called(paths)
	return args.Int(0), args.Bool(1)
}

type MockReaderHandle struct {
	mock.Mock
}

func NewMockReaderHandle() *MockReaderHandle {
	return &MockReaderHandle{}
}

func (m *MockReaderHandle) Format() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockReaderHandle) UsedFiles() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockReaderHandle) SeriesCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockReaderHandle) Series(i int) port.SeriesInfo {
	args := m.Called(i)
	return args.Get(0).(port.SeriesInfo)
}

func (m *MockReaderHandle) PlaneCount(series int) int {
	args := m.Called(series)
	return args.Int(0)
}

func (m *MockReaderHandle) ReadPlane(ctx context.Context, series, plane int) ([]byte, error) {
	args := m.Called(ctx, series, plane)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReaderHandle) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOverlayReaderHandle adds the overlay extraction capability on top of a
// plain reader mock, for exercising the capability check in the pipeline.
type MockOverlayReaderHandle struct {
	MockReaderHandle
}

func NewMockOverlayReaderHandle() *MockOverlayReaderHandle {
	return &MockOverlayReaderHandle{}
}

func (m *MockOverlayReaderHandle) ExtractOverlays(ctx context.Context) ([][]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}
