package message

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/domain/evolution"
	"github.com/hemato/consult/internal/domain/patient"
	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/llm"
)

// Phrases in a user message that mean "write today's note". Frozen: the
// frontend and the residents' habits depend on exactly these triggers.
var evolutionTriggers = []string{"evolução", "evoluç", "gera", "update"}

// historyWindow bounds how many prior messages go to the model.
const historyWindow = 10

// PatientSource resolves the patient a chat belongs to.
type PatientSource interface {
	GetPatient(ctx context.Context, id int) (*patient.Patient, error)
}

// EvolutionStore is the slice of the evolution service the chat needs:
// saving a generated note as a draft and dating the last one.
type EvolutionStore interface {
	Create(ctx context.Context, e *evolution.Evolution) error
	Latest(ctx context.Context, patientID int) (*evolution.Evolution, error)
}

type Service struct {
	repo       Repository
	patients   PatientSource
	evolutions EvolutionStore
	gen        llm.Generator
	noteSystem string
	log        zerolog.Logger
}

// NewService wires the chat. noteSystem is the full note-template system
// prompt, swapped in when the user asks for an evolution.
func NewService(repo Repository, patients PatientSource, evolutions EvolutionStore, gen llm.Generator, noteSystem string, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		evolutions: evolutions,
		gen:        gen,
		noteSystem: noteSystem,
		log:        log.With().Str("component", "message").Logger(),
	}
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Message, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Send runs one chat round: persist the user message, answer with the model
// over a bounded history window, persist the reply. When the message asks
// for an evolution and the reply carries the consult template, the reply is
// additionally saved as a draft evolution.
func (s *Service) Send(ctx context.Context, patientID int, content string) (*SendResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content", "content is required")
	}
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	userMsg := &Message{PatientID: patientID, Role: RoleUser, Content: content, MessageType: TypeChat}
	if err := s.repo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	isEvolutionRequest := wantsEvolution(content)

	systemMsg, err := s.buildSystemMessage(ctx, p, isEvolutionRequest)
	if err != nil {
		return nil, err
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemMsg})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.gen.Complete(ctx, msgs)
	if err != nil {
		return nil, apperr.Generation("failed to process message", err)
	}

	msgType := TypeChat
	if isEvolutionRequest {
		msgType = TypeEvolution
	}
	assistantMsg := &Message{PatientID: patientID, Role: RoleAssistant, Content: reply, MessageType: msgType}

	resp := &SendResponse{UserMessage: userMsg}

	if isEvolutionRequest && strings.Contains(reply, "INTERCONSULTA") {
		e := &evolution.Evolution{PatientID: patientID, Date: time.Now(), Content: reply, IsDraft: true}
		if err := s.evolutions.Create(ctx, e); err != nil {
			return nil, err
		}
		assistantMsg.EvolutionID = &e.ID
		resp.Evolution = e
	}

	if err := s.repo.Create(ctx, assistantMsg); err != nil {
		return nil, err
	}
	resp.AssistantMessage = assistantMsg

	s.log.Info().Int("patientId", patientID).Bool("evolution", isEvolutionRequest).Msg("chat round completed")
	return resp, nil
}

// wantsEvolution applies the frozen trigger-word heuristic.
func wantsEvolution(content string) bool {
	lower := strings.ToLower(content)
	for _, t := range evolutionTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func (s *Service) buildSystemMessage(ctx context.Context, p *patient.Patient, isEvolutionRequest bool) (string, error) {
	leito := "?"
	if p.Leito != nil && *p.Leito != "" {
		leito = *p.Leito
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Paciente: %s, %da, Leito: %s\n", p.Name, p.Age, leito)
	fmt.Fprintf(&b, "HD Hemato: %s\n", p.HematologicalDiagnosis)
	if p.Colonization != nil && *p.Colonization != "" {
		fmt.Fprintf(&b, "Colonização: %s\n", *p.Colonization)
	}

	latest, err := s.evolutions.Latest(ctx, p.ID)
	if err != nil {
		return "", err
	}
	if latest != nil {
		fmt.Fprintf(&b, "Última evolução: %s\n", latest.Date.Format("02/01/2006"))
	}

	systemMsg := fmt.Sprintf("Você é o assistente de hematoinfectologia do Dr. Ricardo Razera. Contexto do paciente:\n%s\n\n", b.String())
	if isEvolutionRequest {
		systemMsg += s.noteSystem
	} else {
		systemMsg += "Responda de forma concisa e útil. Se o usuário pedir evolução, labs formatados, ou Word, use o template padronizado. Se fizer perguntas gerais sobre o caso, responda com base no contexto."
	}
	return systemMsg, nil
}
