package app

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/table"
)

type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	return m.Called(ctx, ds).Error(0)
}

func (m *MockDatasetRepository) GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	if ds, ok := args.Get(0).(*dataset.Dataset); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*dataset.Dataset)
	return list, args.Error(1)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, id core.ID) error {
	return m.Called(ctx, id).Error(0)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Store(ctx context.Context, ownerID, originalFilename string, src io.Reader) (*dataset.Dataset, error) {
	args := m.Called(ctx, ownerID, originalFilename, src)
	if ds, ok := args.Get(0).(*dataset.Dataset); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileStore) Remove(path string) error {
	return m.Called(path).Error(0)
}

type MockTableParser struct {
	mock.Mock
}

func (m *MockTableParser) ReadFile(path string, ft dataset.FileType) (*table.Table, error) {
	args := m.Called(path, ft)
	if t, ok := args.Get(0).(*table.Table); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
