package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const auditCols = `id, user_id, username, action, resource, resource_id, patient_id,
	before_data, after_data,
	method, path, ip_address, user_agent, request_id, status_code, created_at`

func (r *repoPG) Insert(ctx context.Context, l *Log) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO audit_logs (
			user_id, username, action, resource, resource_id, patient_id,
			before_data, after_data,
			method, path, ip_address, user_agent, request_id, status_code
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at`,
		l.UserID, l.Username, l.Action, l.Resource, l.ResourceID, l.PatientID,
		l.BeforeData, l.AfterData,
		l.Method, l.Path, l.IPAddress, l.UserAgent, l.RequestID, l.StatusCode,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Log, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+auditCols+` FROM audit_logs
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int, limit int) ([]*Log, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+auditCols+` FROM audit_logs
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func (r *repoPG) ListByUser(ctx context.Context, userID int, limit int) ([]*Log, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+auditCols+` FROM audit_logs
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func collectLogs(rows pgx.Rows) ([]*Log, error) {
	var result []*Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Username, &l.Action, &l.Resource, &l.ResourceID, &l.PatientID,
			&l.BeforeData, &l.AfterData,
			&l.Method, &l.Path, &l.IPAddress, &l.UserAgent, &l.RequestID, &l.StatusCode, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &l)
	}
	return result, rows.Err()
}
