package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const patientCols = `id, name, age, city, state, leito, unidade, dih,
	hematological_diagnosis, hematological_diagnosis_date,
	current_protocol, previous_protocols, tcth,
	colonization, colonization_date,
	comorbidities, antecedents,
	eco_tt, carenciais, serologias, ivermectina,
	prophylaxis, muc, default_preceptor,
	is_active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (
			name, age, city, state, leito, unidade, dih,
			hematological_diagnosis, hematological_diagnosis_date,
			current_protocol, previous_protocols, tcth,
			colonization, colonization_date,
			comorbidities, antecedents,
			eco_tt, carenciais, serologias, ivermectina,
			prophylaxis, muc, default_preceptor, is_active
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24
		) RETURNING id, created_at, updated_at`,
		p.Name, p.Age, p.City, p.State, p.Leito, p.Unidade, p.DIH,
		p.HematologicalDiagnosis, p.HematologicalDiagnosisDate,
		p.CurrentProtocol, p.PreviousProtocols, p.TCTH,
		p.Colonization, p.ColonizationDate,
		p.Comorbidities, p.Antecedents,
		p.EcoTT, p.Carenciais, p.Serologias, p.Ivermectina,
		p.Prophylaxis, p.MUC, p.DefaultPreceptor, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient", id)
	}
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			name=$2, age=$3, city=$4, state=$5, leito=$6, unidade=$7, dih=$8,
			hematological_diagnosis=$9, hematological_diagnosis_date=$10,
			current_protocol=$11, previous_protocols=$12, tcth=$13,
			colonization=$14, colonization_date=$15,
			comorbidities=$16, antecedents=$17,
			eco_tt=$18, carenciais=$19, serologias=$20, ivermectina=$21,
			prophylaxis=$22, muc=$23, default_preceptor=$24,
			is_active=$25, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.City, p.State, p.Leito, p.Unidade, p.DIH,
		p.HematologicalDiagnosis, p.HematologicalDiagnosisDate,
		p.CurrentProtocol, p.PreviousProtocols, p.TCTH,
		p.Colonization, p.ColonizationDate,
		p.Comorbidities, p.Antecedents,
		p.EcoTT, p.Carenciais, p.Serologias, p.Ivermectina,
		p.Prophylaxis, p.MUC, p.DefaultPreceptor,
		p.IsActive,
	)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func (r *repoPG) ListActive(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients WHERE is_active = true ORDER BY leito, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

// sortColumns whitelists the columns the advanced search may order by.
var sortColumns = map[string]string{
	"name":      "name",
	"age":       "age",
	"leito":     "leito",
	"dih":       "dih",
	"unidade":   "unidade",
	"createdAt": "created_at",
}

func (r *repoPG) Search(ctx context.Context, params SearchParams) ([]*Patient, error) {
	var (
		where = []string{"is_active = true"}
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Query != "" {
		term := "%" + params.Query + "%"
		ph := arg(term)
		where = append(where, fmt.Sprintf(
			"(name ILIKE %s OR hematological_diagnosis ILIKE %s OR COALESCE(leito, '') ILIKE %s)",
			ph, ph, ph))
	}

	if len(params.Colonization) > 0 {
		var ors []string
		for _, col := range params.Colonization {
			ors = append(ors, fmt.Sprintf("COALESCE(colonization, '') ILIKE %s", arg("%"+col+"%")))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	if len(params.Units) > 0 {
		where = append(where, fmt.Sprintf("unidade = ANY(%s)", arg(params.Units)))
	}

	if params.DateFrom != nil {
		where = append(where, fmt.Sprintf("dih >= %s", arg(*params.DateFrom)))
	}
	if params.DateTo != nil {
		where = append(where, fmt.Sprintf("dih <= %s", arg(*params.DateTo)))
	}

	if params.HasActiveATB {
		where = append(where,
			"EXISTS (SELECT 1 FROM antibiotics a WHERE a.patient_id = patients.id AND a.status = 'active')")
	}
	if params.HasPendingCultures {
		where = append(where,
			"EXISTS (SELECT 1 FROM cultures c WHERE c.patient_id = patients.id AND c.status = 'pending')")
	}

	orderBy := "name"
	if col, ok := sortColumns[params.SortBy]; ok {
		orderBy = col
	}
	dir := "ASC"
	if strings.EqualFold(params.SortOrder, "desc") {
		dir = "DESC"
	}

	query := `SELECT ` + patientCols + ` FROM patients WHERE ` +
		strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY %s %s", orderBy, dir)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Age, &p.City, &p.State, &p.Leito, &p.Unidade, &p.DIH,
		&p.HematologicalDiagnosis, &p.HematologicalDiagnosisDate,
		&p.CurrentProtocol, &p.PreviousProtocols, &p.TCTH,
		&p.Colonization, &p.ColonizationDate,
		&p.Comorbidities, &p.Antecedents,
		&p.EcoTT, &p.Carenciais, &p.Serologias, &p.Ivermectina,
		&p.Prophylaxis, &p.MUC, &p.DefaultPreceptor,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var result []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
