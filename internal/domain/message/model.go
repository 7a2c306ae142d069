package message

import (
	"time"

	"github.com/hemato/consult/internal/domain/evolution"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message types.
const (
	TypeChat      = "chat"
	TypeEvolution = "evolution"
	TypeAlert     = "alert"
	TypeSummary   = "summary"
)

// Message maps to the patient_messages table: the per-patient chat log.
type Message struct {
	ID          int    `db:"id" json:"id"`
	PatientID   int    `db:"patient_id" json:"patientId"`
	Role        string `db:"role" json:"role"`
	Content     string `db:"content" json:"content"`
	MessageType string `db:"message_type" json:"messageType"`

	// Set when an assistant reply was also saved as a draft evolution.
	EvolutionID *int `db:"evolution_id" json:"evolutionId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SendResponse bundles what one chat round produced.
type SendResponse struct {
	UserMessage      *Message             `json:"userMessage"`
	AssistantMessage *Message             `json:"assistantMessage"`
	Evolution        *evolution.Evolution `json:"evolution,omitempty"`
}
