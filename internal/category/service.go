package category

import (
	"context"
	"strings"
)

type Service interface {
	List(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrCategoryNotFound
	}
	return s.repo.GetBySlug(ctx, slug)
}
