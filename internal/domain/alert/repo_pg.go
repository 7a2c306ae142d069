package alert

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const alertCols = `id, patient_id, type, priority, title, message, due_date,
	related_antibiotic_id, related_culture_id,
	is_read, is_resolved, resolved_at, resolved_by, created_at`

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO alerts (
			patient_id, type, priority, title, message, due_date,
			related_antibiotic_id, related_culture_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`,
		a.PatientID, a.Type, a.Priority, a.Title, a.Message, a.DueDate,
		a.RelatedAntibioticID, a.RelatedCultureID,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Alert, error) {
	a, err := scanAlert(r.conn(ctx).QueryRow(ctx,
		`SELECT `+alertCols+` FROM alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("alert", id)
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Alert) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE alerts SET
			is_read=$2, is_resolved=$3, resolved_at=$4, resolved_by=$5
		WHERE id = $1`,
		a.ID, a.IsRead, a.IsResolved, a.ResolvedAt, a.ResolvedBy,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit int) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alertCols+` FROM alerts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alertCols+` FROM alerts WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *repoPG) ListUnread(ctx context.Context) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+alertCols+` FROM alerts
		WHERE is_read = false AND is_resolved = false
		ORDER BY
			CASE priority
				WHEN 'critical' THEN 1
				WHEN 'high' THEN 2
				WHEN 'medium' THEN 3
				ELSE 4
			END,
			created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *repoPG) ListUnresolvedByAntibiotic(ctx context.Context, antibioticID int) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alertCols+` FROM alerts
		WHERE related_antibiotic_id = $1 AND is_resolved = false`,
		antibioticID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *repoPG) ListUnresolvedByCulture(ctx context.Context, cultureID int) ([]*Alert, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alertCols+` FROM alerts
		WHERE related_culture_id = $1 AND is_resolved = false`,
		cultureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *repoPG) CountDueBetween(ctx context.Context, alertType string, from, to time.Time) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE type = $1 AND is_resolved = false
		  AND due_date >= $2 AND due_date <= $3`,
		alertType, from, to,
	).Scan(&count)
	return count, err
}

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.PatientID, &a.Type, &a.Priority, &a.Title, &a.Message, &a.DueDate,
		&a.RelatedAntibioticID, &a.RelatedCultureID,
		&a.IsRead, &a.IsResolved, &a.ResolvedAt, &a.ResolvedBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAlerts(rows pgx.Rows) ([]*Alert, error) {
	var result []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
