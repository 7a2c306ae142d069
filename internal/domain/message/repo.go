package message

import "context"

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListByPatient(ctx context.Context, patientID int) ([]*Message, error)
}
