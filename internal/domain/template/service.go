package template

import (
	"context"
	"strings"

	"github.com/hemato/consult/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, t *Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return apperr.Validation("name", "name is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		return apperr.Validation("content", "content is required")
	}
	if t.Category == "" {
		t.Category = "geral"
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) GetByID(ctx context.Context, id int) (*Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Template, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int, upd *Template) (*Template, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != "" {
		t.Name = upd.Name
	}
	if upd.Category != "" {
		t.Category = upd.Category
	}
	if upd.Content != "" {
		t.Content = upd.Content
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
