package antibiotic

import "context"

type Repository interface {
	Create(ctx context.Context, a *Antibiotic) error
	GetByID(ctx context.Context, id int) (*Antibiotic, error)
	Update(ctx context.Context, a *Antibiotic) error
	ListByPatient(ctx context.Context, patientID int) ([]*Antibiotic, error)
	ListActive(ctx context.Context) ([]*ActiveCourse, error)
}
