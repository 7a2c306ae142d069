package culture

import "context"

type Repository interface {
	Create(ctx context.Context, c *Culture) error
	GetByID(ctx context.Context, id int) (*Culture, error)
	Update(ctx context.Context, c *Culture) error
	ListByPatient(ctx context.Context, patientID int) ([]*Culture, error)
	ListPending(ctx context.Context) ([]*PendingCulture, error)
}
