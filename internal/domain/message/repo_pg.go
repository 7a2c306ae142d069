package message

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

const messageCols = `id, patient_id, role, content, message_type, evolution_id, created_at`

func (r *repoPG) Create(ctx context.Context, m *Message) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_messages (patient_id, role, content, message_type, evolution_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		m.PatientID, m.Role, m.Content, m.MessageType, m.EvolutionID,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+messageCols+` FROM patient_messages
		WHERE patient_id = $1 ORDER BY created_at ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Role, &m.Content, &m.MessageType, &m.EvolutionID, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}
