package template

import "context"

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id int) (*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*Template, error)
}
