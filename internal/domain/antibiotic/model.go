package antibiotic

import (
	"math"
	"time"
)

// Antibiotic statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusSuspended = "suspended"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusSuspended: true,
}

// Antibiotic maps to the antibiotics table. One row per course of therapy.
type Antibiotic struct {
	ID         int    `db:"id" json:"id"`
	PatientID  int    `db:"patient_id" json:"patientId"`
	Name       string `db:"name" json:"name"`
	Dose       string `db:"dose" json:"dose,omitempty"`
	Frequency  string `db:"frequency" json:"frequency,omitempty"`
	Route      string `db:"route" json:"route,omitempty"`
	Indication string `db:"indication" json:"indication,omitempty"`

	StartDate time.Time  `db:"start_date" json:"startDate"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`

	Status           string  `db:"status" json:"status"`
	SuspensionReason *string `db:"suspension_reason" json:"suspensionReason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CurrentDay returns the day of therapy at the given instant. The start day
// counts as D1, each elapsed 24h block advances one day.
func (a *Antibiotic) CurrentDay(at time.Time) int {
	elapsed := at.Sub(a.StartDate)
	day := int(math.Ceil(elapsed.Hours() / 24))
	if day < 1 {
		day = 1
	}
	return day
}

// ActiveCourse pairs an active antibiotic with its patient for the
// service-wide timeline view.
type ActiveCourse struct {
	Antibiotic
	PatientName string `json:"patientName"`
	Leito       string `json:"leito,omitempty"`
	CurrentDay  int    `json:"currentDay"`
}
