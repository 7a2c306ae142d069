package alert

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id int) (*Alert, error)
	Update(ctx context.Context, a *Alert) error
	List(ctx context.Context, limit int) ([]*Alert, error)
	ListByPatient(ctx context.Context, patientID int) ([]*Alert, error)
	// ListUnread returns unread, unresolved alerts ordered by priority rank
	// (critical first) then newest first.
	ListUnread(ctx context.Context) ([]*Alert, error)
	ListUnresolvedByAntibiotic(ctx context.Context, antibioticID int) ([]*Alert, error)
	ListUnresolvedByCulture(ctx context.Context, cultureID int) ([]*Alert, error)
	CountDueBetween(ctx context.Context, alertType string, from, to time.Time) (int, error)
}
