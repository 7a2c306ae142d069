package culture

import "time"

// Culture statuses.
const (
	StatusPending      = "pending"
	StatusNegative     = "negative"
	StatusPositive     = "positive"
	StatusContaminated = "contaminated"
)

var validStatuses = map[string]bool{
	StatusPending:      true,
	StatusNegative:     true,
	StatusPositive:     true,
	StatusContaminated: true,
}

// Culture maps to the cultures table. Antibiogram is a free-form map of
// antimicrobial name to susceptibility (S/I/R), stored as JSONB.
type Culture struct {
	ID        int    `db:"id" json:"id"`
	PatientID int    `db:"patient_id" json:"patientId"`
	Type      string `db:"type" json:"type"`
	Site      string `db:"site" json:"site,omitempty"`

	CollectionDate time.Time  `db:"collection_date" json:"collectionDate"`
	ResultDate     *time.Time `db:"result_date" json:"resultDate,omitempty"`

	Status      string            `db:"status" json:"status"`
	Organism    *string           `db:"organism" json:"organism,omitempty"`
	Antibiogram map[string]string `db:"antibiogram" json:"antibiogram,omitempty"`

	// Hours from collection to growth, when the lab reports it.
	TimeToPositivity *int `db:"time_to_positivity" json:"timeToPositivity,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PendingCulture pairs an awaiting-result culture with its patient.
type PendingCulture struct {
	Culture
	PatientName string `json:"patientName"`
	Leito       string `json:"leito,omitempty"`
}
