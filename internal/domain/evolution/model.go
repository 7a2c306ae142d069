package evolution

import (
	"encoding/json"
	"time"
)

// Evolution maps to the evolutions table. Content holds the full consult
// note; the structured fields are extracted or supplied alongside it.
type Evolution struct {
	ID        int       `db:"id" json:"id"`
	PatientID int       `db:"patient_id" json:"patientId"`
	Date      time.Time `db:"date" json:"date"`
	Content   string    `db:"content" json:"content"`

	Impression *string `db:"impression" json:"impression,omitempty"`

	// Structured reference blocks supplied by the client alongside the
	// note. Stored opaque; the server never interprets them.
	HDInfecto    json.RawMessage `db:"hd_infecto" json:"hdInfecto,omitempty"`
	HDResolvidos json.RawMessage `db:"hd_resolvidos" json:"hdResolvidos,omitempty"`
	ATBAtuais    json.RawMessage `db:"atb_atuais" json:"atbAtuais,omitempty"`
	ATBPrevios   json.RawMessage `db:"atb_previos" json:"atbPrevios,omitempty"`
	Labs         json.RawMessage `db:"labs" json:"labs,omitempty"`
	Devices      json.RawMessage `db:"devices" json:"devices,omitempty"`
	Exams        json.RawMessage `db:"exams" json:"exams,omitempty"`
	Images       json.RawMessage `db:"images" json:"images,omitempty"`
	Cultures     json.RawMessage `db:"cultures" json:"cultures,omitempty"`
	Pendencies   json.RawMessage `db:"pendencies" json:"pendencies,omitempty"`
	Conducts     json.RawMessage `db:"conducts" json:"conducts,omitempty"`

	ReadingSuggestions []ReadingSuggestion `db:"reading_suggestions" json:"readingSuggestions,omitempty"`
	MissingDataAlerts  []string            `db:"missing_data_alerts" json:"missingDataAlerts,omitempty"`

	PreceptorName *string `db:"preceptor_name" json:"preceptorName,omitempty"`
	IsDraft       bool    `db:"is_draft" json:"isDraft"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ReadingSuggestion is one literature pointer returned by the suggestion
// sub-call.
type ReadingSuggestion struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Summary string `json:"summary"`
}

// GenerateRequest drives a note generation round.
type GenerateRequest struct {
	PatientID          int    `json:"patientId"`
	RawInput           string `json:"rawInput"`
	IncludeImpression  bool   `json:"includeImpression"`
	IncludeSuggestions bool   `json:"includeSuggestions"`
}

// GenerateResponse is the generation result. Nothing is persisted; the
// caller decides whether to save the note as an evolution.
type GenerateResponse struct {
	Content            string              `json:"content"`
	Impression         string              `json:"impression,omitempty"`
	MissingDataAlerts  []string            `json:"missingDataAlerts,omitempty"`
	ReadingSuggestions []ReadingSuggestion `json:"readingSuggestions,omitempty"`
}
