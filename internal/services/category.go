package services

import (
	"context"

	"github.com/mediavault/apiserver/types"
)

// CategoryRepository defines read operations for categories.
type CategoryRepository interface {
	List(ctx context.Context, assetType string) ([]types.Category, error)
	Get(ctx context.Context, id int) (types.Category, error)
}

// CategoryService exposes the read-only category catalog.
type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, assetType string) ([]types.Category, error) {
	return s.repo.List(ctx, assetType)
}

func (s *CategoryService) Get(ctx context.Context, id int) (types.Category, error) {
	return s.repo.Get(ctx, id)
}
