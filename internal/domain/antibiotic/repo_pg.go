package antibiotic

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

const antibioticCols = `id, patient_id, name, dose, frequency, route, indication,
	start_date, end_date, status, suspension_reason, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Antibiotic) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO antibiotics (
			patient_id, name, dose, frequency, route, indication,
			start_date, end_date, status, suspension_reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.Name, a.Dose, a.Frequency, a.Route, a.Indication,
		a.StartDate, a.EndDate, a.Status, a.SuspensionReason,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Antibiotic, error) {
	a, err := scanAntibiotic(r.conn(ctx).QueryRow(ctx,
		`SELECT `+antibioticCols+` FROM antibiotics WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("antibiotic", id)
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Antibiotic) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE antibiotics SET
			name=$2, dose=$3, frequency=$4, route=$5, indication=$6,
			start_date=$7, end_date=$8, status=$9, suspension_reason=$10,
			updated_at=now()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Name, a.Dose, a.Frequency, a.Route, a.Indication,
		a.StartDate, a.EndDate, a.Status, a.SuspensionReason,
	).Scan(&a.UpdatedAt)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int) ([]*Antibiotic, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+antibioticCols+` FROM antibiotics
		WHERE patient_id = $1 ORDER BY start_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Antibiotic
	for rows.Next() {
		a, err := scanAntibiotic(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *repoPG) ListActive(ctx context.Context) ([]*ActiveCourse, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.patient_id, a.name, a.dose, a.frequency, a.route, a.indication,
		       a.start_date, a.end_date, a.status, a.suspension_reason,
		       a.created_at, a.updated_at,
		       p.name, COALESCE(p.leito, '')
		FROM antibiotics a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.status = 'active' AND p.is_active = true
		ORDER BY a.start_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var result []*ActiveCourse
	for rows.Next() {
		var c ActiveCourse
		if err := rows.Scan(
			&c.ID, &c.PatientID, &c.Name, &c.Dose, &c.Frequency, &c.Route, &c.Indication,
			&c.StartDate, &c.EndDate, &c.Status, &c.SuspensionReason,
			&c.CreatedAt, &c.UpdatedAt,
			&c.PatientName, &c.Leito,
		); err != nil {
			return nil, err
		}
		c.CurrentDay = c.Antibiotic.CurrentDay(now)
		result = append(result, &c)
	}
	return result, rows.Err()
}

func scanAntibiotic(row pgx.Row) (*Antibiotic, error) {
	var a Antibiotic
	err := row.Scan(
		&a.ID, &a.PatientID, &a.Name, &a.Dose, &a.Frequency, &a.Route, &a.Indication,
		&a.StartDate, &a.EndDate, &a.Status, &a.SuspensionReason,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
