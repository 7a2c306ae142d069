package evolution

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

const evolutionCols = `id, patient_id, date, content, impression,
	hd_infecto, hd_resolvidos, atb_atuais, atb_previos,
	labs, devices, exams, images, cultures, pendencies, conducts,
	reading_suggestions, missing_data_alerts, preceptor_name, is_draft, created_at`

func (r *repoPG) Create(ctx context.Context, e *Evolution) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO evolutions (
			patient_id, date, content, impression,
			hd_infecto, hd_resolvidos, atb_atuais, atb_previos,
			labs, devices, exams, images, cultures, pendencies, conducts,
			reading_suggestions, missing_data_alerts, preceptor_name, is_draft
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id, created_at`,
		e.PatientID, e.Date, e.Content, e.Impression,
		e.HDInfecto, e.HDResolvidos, e.ATBAtuais, e.ATBPrevios,
		e.Labs, e.Devices, e.Exams, e.Images, e.Cultures, e.Pendencies, e.Conducts,
		e.ReadingSuggestions, e.MissingDataAlerts, e.PreceptorName, e.IsDraft,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Evolution, error) {
	e, err := scanEvolution(r.conn(ctx).QueryRow(ctx,
		`SELECT `+evolutionCols+` FROM evolutions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("evolution", id)
	}
	return e, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int) ([]*Evolution, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+evolutionCols+` FROM evolutions
		WHERE patient_id = $1 ORDER BY date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Evolution
	for rows.Next() {
		e, err := scanEvolution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Latest returns the most recent evolution for a patient, or nil when the
// patient has none.
func (r *repoPG) Latest(ctx context.Context, patientID int) (*Evolution, error) {
	e, err := scanEvolution(r.conn(ctx).QueryRow(ctx,
		`SELECT `+evolutionCols+` FROM evolutions
		WHERE patient_id = $1 ORDER BY date DESC LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func scanEvolution(row pgx.Row) (*Evolution, error) {
	var e Evolution
	err := row.Scan(
		&e.ID, &e.PatientID, &e.Date, &e.Content, &e.Impression,
		&e.HDInfecto, &e.HDResolvidos, &e.ATBAtuais, &e.ATBPrevios,
		&e.Labs, &e.Devices, &e.Exams, &e.Images, &e.Cultures, &e.Pendencies, &e.Conducts,
		&e.ReadingSuggestions, &e.MissingDataAlerts, &e.PreceptorName, &e.IsDraft, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
