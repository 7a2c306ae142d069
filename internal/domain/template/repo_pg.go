package template

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

const templateCols = `id, name, category, content, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, t *Template) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO templates (name, category, content)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Category, t.Content,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Template, error) {
	var t Template
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Category, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("template", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) Update(ctx context.Context, t *Template) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE templates SET name=$2, category=$3, content=$4, updated_at=now()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.Name, t.Category, t.Content,
	).Scan(&t.UpdatedAt)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("template", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Template, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+templateCols+` FROM templates ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}
