package audit

import (
	"encoding/json"
	"time"
)

// Log is one append-only audit trail row. Rows are never updated or
// deleted.
type Log struct {
	ID         int    `db:"id" json:"id"`
	UserID     *int   `db:"user_id" json:"userId,omitempty"`
	Username   string `db:"username" json:"username,omitempty"`
	Action     string `db:"action" json:"action"`
	Resource   string `db:"resource" json:"resource"`
	ResourceID *int   `db:"resource_id" json:"resourceId,omitempty"`
	PatientID  *int   `db:"patient_id" json:"patientId,omitempty"`

	// Entity snapshots around a mutation, stored opaque.
	BeforeData json.RawMessage `db:"before_data" json:"before,omitempty"`
	AfterData  json.RawMessage `db:"after_data" json:"after,omitempty"`

	Method     string `db:"method" json:"method,omitempty"`
	Path       string `db:"path" json:"path,omitempty"`
	IPAddress  string `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent  string `db:"user_agent" json:"userAgent,omitempty"`
	RequestID  string `db:"request_id" json:"requestId,omitempty"`
	StatusCode int    `db:"status_code" json:"statusCode,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
