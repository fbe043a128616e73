package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/dto"
	"docvault/internal/model"
	"docvault/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, req service.UploadRequest) (*model.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Search(ctx context.Context, filters dto.SearchFilters, page, size int) (*dto.SearchResponse, error) {
	args := m.Called(ctx, filters, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SearchResponse), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, id string) (*dto.DownloadURLResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DownloadURLResponse), args.Error(1)
}

func (m *MockDocumentService) ReconcileOrphans(ctx context.Context, opts service.ReconcileOptions) (*service.ReconcileReport, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileReport), args.Error(1)
}
