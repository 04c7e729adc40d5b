package mocks

import (
	"context"
	"io"

	"routeplanner/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64) (*service.DatasetUploadResult, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DatasetUploadResult), args.Error(1)
}

func (m *MockDatasetService) SourceURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDatasetService) ListRetailers(ctx context.Context, limit, offset int) (*service.RetailerListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RetailerListResult), args.Error(1)
}
