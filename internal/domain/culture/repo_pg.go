package culture

import (
	"context"
	"errors"

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

const cultureCols = `id, patient_id, type, site, collection_date, result_date,
	status, organism, antibiogram, time_to_positivity, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, c *Culture) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO cultures (
			patient_id, type, site, collection_date, result_date,
			status, organism, antibiogram, time_to_positivity
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		c.PatientID, c.Type, c.Site, c.CollectionDate, c.ResultDate,
		c.Status, c.Organism, c.Antibiogram, c.TimeToPositivity,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Culture, error) {
	c, err := scanCulture(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cultureCols+` FROM cultures WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("culture", id)
	}
	return c, err
}

func (r *repoPG) Update(ctx context.Context, c *Culture) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE cultures SET
			type=$2, site=$3, collection_date=$4, result_date=$5,
			status=$6, organism=$7, antibiogram=$8, time_to_positivity=$9,
			updated_at=now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Type, c.Site, c.CollectionDate, c.ResultDate,
		c.Status, c.Organism, c.Antibiogram, c.TimeToPositivity,
	).Scan(&c.UpdatedAt)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int) ([]*Culture, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cultureCols+` FROM cultures
		WHERE patient_id = $1 ORDER BY collection_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Culture
	for rows.Next() {
		c, err := scanCulture(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repoPG) ListPending(ctx context.Context) ([]*PendingCulture, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT c.id, c.patient_id, c.type, c.site, c.collection_date, c.result_date,
		       c.status, c.organism, c.antibiogram, c.time_to_positivity,
		       c.created_at, c.updated_at,
		       p.name, COALESCE(p.leito, '')
		FROM cultures c
		JOIN patients p ON p.id = c.patient_id
		WHERE c.status = 'pending' AND p.is_active = true
		ORDER BY c.collection_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*PendingCulture
	for rows.Next() {
		var pc PendingCulture
		if err := rows.Scan(
			&pc.ID, &pc.PatientID, &pc.Type, &pc.Site, &pc.CollectionDate, &pc.ResultDate,
			&pc.Status, &pc.Organism, &pc.Antibiogram, &pc.TimeToPositivity,
			&pc.CreatedAt, &pc.UpdatedAt,
			&pc.PatientName, &pc.Leito,
		); err != nil {
			return nil, err
		}
		result = append(result, &pc)
	}
	return result, rows.Err()
}

func scanCulture(row pgx.Row) (*Culture, error) {
	var c Culture
	err := row.Scan(
		&c.ID, &c.PatientID, &c.Type, &c.Site, &c.CollectionDate, &c.ResultDate,
		&c.Status, &c.Organism, &c.Antibiogram, &c.TimeToPositivity,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
