package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context) ([]*Patient, error)
	ListActive(ctx context.Context) ([]*Patient, error)
	Search(ctx context.Context, params SearchParams) ([]*Patient, error)
}
