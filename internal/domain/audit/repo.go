package audit

import "context"

type Repository interface {
	Insert(ctx context.Context, l *Log) error
	List(ctx context.Context, limit, offset int) ([]*Log, error)
	ListByPatient(ctx context.Context, patientID int, limit int) ([]*Log, error)
	ListByUser(ctx context.Context, userID int, limit int) ([]*Log, error)
}
