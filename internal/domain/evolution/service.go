package evolution

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/llm"
)

// impressionRe captures the IMPRESSÃO section up to the next separator or
// the CONDUTA heading.
var impressionRe = regexp.MustCompile(`IMPRESSÃO:\n([\s\S]*?)(?:───────|CONDUTA:|$)`)

type Service struct {
	repo        Repository
	patients    PatientSource
	antibiotics AntibioticSource
	cultures    CultureSource
	gen         llm.Generator
	log         zerolog.Logger
}

func NewService(repo Repository, patients PatientSource, antibiotics AntibioticSource, cultures CultureSource, gen llm.Generator, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		antibiotics: antibiotics,
		cultures:    cultures,
		gen:         gen,
		log:         log.With().Str("component", "evolution").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, e *Evolution) error {
	if e.PatientID <= 0 {
		return apperr.Validation("patientId", "patientId is required")
	}
	if e.Content == "" {
		return apperr.Validation("content", "content is required")
	}
	if _, err := s.patients.GetPatient(ctx, e.PatientID); err != nil {
		return err
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetByID(ctx context.Context, id int) (*Evolution, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Evolution, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) Latest(ctx context.Context, patientID int) (*Evolution, error) {
	return s.repo.Latest(ctx, patientID)
}

// Generate produces a full consult note for the patient from the day's raw
// input. Nothing is persisted here: the caller decides whether to save the
// note as an evolution.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.PatientID <= 0 {
		return nil, apperr.Validation("patientId", "patientId is required")
	}
	if strings.TrimSpace(req.RawInput) == "" {
		return nil, apperr.Validation("rawInput", "rawInput is required")
	}

	p, err := s.patients.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	patientContext, err := s.BuildContext(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	userMsg := fmt.Sprintf("%s\n\n────────────────────────────────────────\nDADOS DE HOJE / INPUT DO USUÁRIO:\n%s\n\nGere a evolução completa no template padronizado. A data de hoje é %s.",
		patientContext, req.RawInput, time.Now().Format("02/01/2006"))
	if req.IncludeImpression {
		userMsg += "\n\nInclua a seção IMPRESSÃO com um resumo do caso."
	}

	content, err := s.gen.Complete(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMsg},
	})
	if err != nil {
		return nil, apperr.Generation("failed to generate evolution", err)
	}

	resp := &GenerateResponse{Content: content}

	if m := impressionRe.FindStringSubmatch(content); m != nil {
		resp.Impression = strings.TrimSpace(m[1])
	}

	resp.MissingDataAlerts = missingData(p.Colonization, p.Prophylaxis, p.DefaultPreceptor, req.RawInput)

	if req.IncludeSuggestions {
		resp.ReadingSuggestions = s.suggestReadings(ctx, p.HematologicalDiagnosis, req.RawInput)
	}

	s.log.Info().Int("patientId", req.PatientID).Int("contentLen", len(content)).Msg("evolution generated")
	return resp, nil
}

// missingData runs the independent registration checks. Each missing item
// produces one fixed alert string.
func missingData(colonization, prophylaxis, preceptor *string, rawInput string) []string {
	var alerts []string
	if colonization == nil || *colonization == "" {
		alerts = append(alerts, "Swab de vigilância não cadastrado")
	}
	if prophylaxis == nil || *prophylaxis == "" {
		alerts = append(alerts, "Profilaxias não cadastradas")
	}
	if preceptor == nil || *preceptor == "" {
		alerts = append(alerts, "Preceptor não cadastrado")
	}
	lower := strings.ToLower(rawInput)
	if !strings.Contains(lower, "labs") && !strings.Contains(lower, "hb") && !strings.Contains(lower, "leuco") {
		alerts = append(alerts, "Labs do dia não informados")
	}
	return alerts
}

// suggestReadings makes the optional literature sub-call. Failures here
// never fail the generation: a broken or unparseable response just means no
// suggestions.
func (s *Service) suggestReadings(ctx context.Context, diagnosis, rawInput string) []ReadingSuggestion {
	// Cap the excerpt by runes, not bytes: clinical notes are Portuguese
	// and a byte cut can split an accented character.
	if r := []rune(rawInput); len(r) > 500 {
		rawInput = string(r[:500])
	}
	raw, err := s.gen.CompleteJSON(ctx, []llm.Message{
		{Role: "system", Content: suggestionPrompt},
		{Role: "user", Content: fmt.Sprintf("Caso: %s. HD Infecto mencionados no input: %s", diagnosis, rawInput)},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("reading suggestions call failed")
		return nil
	}

	var parsed struct {
		Suggestions []ReadingSuggestion `json:"suggestions"`
		Readings    []ReadingSuggestion `json:"readings"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.log.Warn().Err(err).Msg("reading suggestions unparseable")
		return nil
	}
	if len(parsed.Suggestions) > 0 {
		return parsed.Suggestions
	}
	return parsed.Readings
}
