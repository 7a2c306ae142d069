package patient

import (
	"strings"
	"time"
)

// Patient maps to the patients table. Optional clinical fields are pointers
// so an absent value is distinguishable from an empty string.
type Patient struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Age   int    `db:"age" json:"age"`
	City  string `db:"city" json:"city"`
	State string `db:"state" json:"state"`

	// Bed and ward, e.g. "CMM A0307" / "Hematologia"
	Leito   *string `db:"leito" json:"leito,omitempty"`
	Unidade *string `db:"unidade" json:"unidade,omitempty"`

	// Hospital admission date
	DIH time.Time `db:"dih" json:"dih"`

	HematologicalDiagnosis     string     `db:"hematological_diagnosis" json:"hematologicalDiagnosis"`
	HematologicalDiagnosisDate *time.Time `db:"hematological_diagnosis_date" json:"hematologicalDiagnosisDate,omitempty"`

	CurrentProtocol   *string `db:"current_protocol" json:"currentProtocol,omitempty"`
	PreviousProtocols *string `db:"previous_protocols" json:"previousProtocols,omitempty"`
	TCTH              *string `db:"tcth" json:"tcth,omitempty"`

	// Surveillance swab result, e.g. "KPC", "KPC + NDM"
	Colonization     *string    `db:"colonization" json:"colonization,omitempty"`
	ColonizationDate *time.Time `db:"colonization_date" json:"colonizationDate,omitempty"`

	Comorbidities *string `db:"comorbidities" json:"comorbidities,omitempty"`
	Antecedents   *string `db:"antecedents" json:"antecedents,omitempty"`

	// Pre-chemo checklist
	EcoTT       *string `db:"eco_tt" json:"ecoTT,omitempty"`
	Carenciais  *string `db:"carenciais" json:"carenciais,omitempty"`
	Serologias  *string `db:"serologias" json:"serologias,omitempty"`
	Ivermectina *string `db:"ivermectina" json:"ivermectina,omitempty"`

	Prophylaxis *string `db:"prophylaxis" json:"prophylaxis,omitempty"`

	// Continuous-use medications
	MUC *string `db:"muc" json:"muc,omitempty"`

	DefaultPreceptor *string `db:"default_preceptor" json:"defaultPreceptor,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Codes returns the individual colonization codes, split on "," and "+",
// trimmed and uppercased. A patient colonized "kpc + ndm" carries both KPC
// and NDM; each code is evaluated independently downstream.
func (p *Patient) Codes() []string {
	if p.Colonization == nil {
		return nil
	}
	raw := strings.FieldsFunc(*p.Colonization, func(r rune) bool {
		return r == ',' || r == '+'
	})
	var codes []string
	for _, c := range raw {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// SearchParams holds the advanced search filters. Zero values mean
// "no filter".
type SearchParams struct {
	Query              string     `json:"query"`
	Colonization       []string   `json:"colonization"`
	Units              []string   `json:"unit"`
	HasActiveATB       bool       `json:"hasActiveATB"`
	HasPendingCultures bool       `json:"hasPendingCultures"`
	DateFrom           *time.Time `json:"dateFrom"`
	DateTo             *time.Time `json:"dateTo"`
	SortBy             string     `json:"sortBy"`
	SortOrder          string     `json:"sortOrder"`
}

// UpdateRequest carries a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Name                       *string    `json:"name"`
	Age                        *int       `json:"age"`
	City                       *string    `json:"city"`
	State                      *string    `json:"state"`
	Leito                      *string    `json:"leito"`
	Unidade                    *string    `json:"unidade"`
	DIH                        *time.Time `json:"dih"`
	HematologicalDiagnosis     *string    `json:"hematologicalDiagnosis"`
	HematologicalDiagnosisDate *time.Time `json:"hematologicalDiagnosisDate"`
	CurrentProtocol            *string    `json:"currentProtocol"`
	PreviousProtocols          *string    `json:"previousProtocols"`
	TCTH                       *string    `json:"tcth"`
	Colonization               *string    `json:"colonization"`
	ColonizationDate           *time.Time `json:"colonizationDate"`
	Comorbidities              *string    `json:"comorbidities"`
	Antecedents                *string    `json:"antecedents"`
	EcoTT                      *string    `json:"ecoTT"`
	Carenciais                 *string    `json:"carenciais"`
	Serologias                 *string    `json:"serologias"`
	Ivermectina                *string    `json:"ivermectina"`
	Prophylaxis                *string    `json:"prophylaxis"`
	MUC                        *string    `json:"muc"`
	DefaultPreceptor           *string    `json:"defaultPreceptor"`
	IsActive                   *bool      `json:"isActive"`
}
