package evolution

import "context"

type Repository interface {
	Create(ctx context.Context, e *Evolution) error
	GetByID(ctx context.Context, id int) (*Evolution, error)
	ListByPatient(ctx context.Context, patientID int) ([]*Evolution, error)
	Latest(ctx context.Context, patientID int) (*Evolution, error)
}
