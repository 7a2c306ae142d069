package alert

import "time"

// Alert types.
const (
	TypeCulturePending = "culture_pending"
	TypeATBReview      = "atb_review"
	TypeLabCritical    = "lab_critical"
	TypeProphylaxis    = "prophylaxis"
	TypeCustom         = "custom"
)

// Alert priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var validTypes = map[string]bool{
	TypeCulturePending: true,
	TypeATBReview:      true,
	TypeLabCritical:    true,
	TypeProphylaxis:    true,
	TypeCustom:         true,
}

var validPriorities = map[string]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

// PriorityRank orders priorities for display: critical first, then high,
// medium, low.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	default:
		return 4
	}
}

// Alert maps to the alerts table. An alert moves created → read → resolved;
// reading may be skipped, resolution is terminal.
type Alert struct {
	ID        int        `db:"id" json:"id"`
	PatientID int        `db:"patient_id" json:"patientId"`
	Type      string     `db:"type" json:"type"`
	Priority  string     `db:"priority" json:"priority"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	DueDate   *time.Time `db:"due_date" json:"dueDate,omitempty"`

	RelatedAntibioticID *int `db:"related_antibiotic_id" json:"relatedAntibioticId,omitempty"`
	RelatedCultureID    *int `db:"related_culture_id" json:"relatedCultureId,omitempty"`

	IsRead     bool       `db:"is_read" json:"isRead"`
	IsResolved bool       `db:"is_resolved" json:"isResolved"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
	ResolvedBy *int       `db:"resolved_by" json:"resolvedBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
