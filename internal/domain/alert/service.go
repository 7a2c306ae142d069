package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/apperr"
)

// Antibiotic review checkpoints, in days of therapy. D3 gets a high
// priority alert, later checkpoints medium.
var reviewDays = []int{3, 7, 14}

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "alert").Logger()}
}

func (s *Service) Create(ctx context.Context, a *Alert) error {
	if a.PatientID <= 0 {
		return apperr.Validation("patientId", "patientId is required")
	}
	if !validTypes[a.Type] {
		return apperr.Validation("type", fmt.Sprintf("unknown alert type %q", a.Type))
	}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	if !validPriorities[a.Priority] {
		return apperr.Validation("priority", fmt.Sprintf("unknown priority %q", a.Priority))
	}
	if a.Title == "" {
		return apperr.Validation("title", "title is required")
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) GetByID(ctx context.Context, id int) (*Alert, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Alert, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListUnread returns pending alerts ordered by priority, most urgent first.
func (s *Service) ListUnread(ctx context.Context) ([]*Alert, error) {
	return s.repo.ListUnread(ctx)
}

// MarkRead flags an alert as seen. Resolved alerts are left untouched.
func (s *Service) MarkRead(ctx context.Context, id int) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.IsResolved || a.IsRead {
		return a, nil
	}
	a.IsRead = true
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Resolve closes an alert. Resolution is terminal and idempotent: resolving
// an already resolved alert returns it unchanged.
func (s *Service) Resolve(ctx context.Context, id, userID int) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.IsResolved {
		return a, nil
	}
	now := time.Now()
	a.IsResolved = true
	a.ResolvedAt = &now
	if userID > 0 {
		a.ResolvedBy = &userID
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ScheduleAntibioticReviews creates the D3/D7/D14 reassessment alerts for a
// newly started antibiotic. Due dates count the start day as day one.
func (s *Service) ScheduleAntibioticReviews(ctx context.Context, patientID, antibioticID int, name, indication string, startDate time.Time) error {
	if indication == "" {
		indication = "Indicação não especificada"
	}
	for _, day := range reviewDays {
		priority := PriorityMedium
		if day == 3 {
			priority = PriorityHigh
		}
		due := startDate.AddDate(0, 0, day-1)
		a := &Alert{
			PatientID:           patientID,
			Type:                TypeATBReview,
			Priority:            priority,
			Title:               fmt.Sprintf("Reavaliação ATB D%d: %s", day, name),
			Message:             fmt.Sprintf("Reavaliar necessidade de %s (%s)", name, indication),
			DueDate:             &due,
			RelatedAntibioticID: &antibioticID,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return fmt.Errorf("schedule D%d review: %w", day, err)
		}
	}
	s.log.Info().Int("patientId", patientID).Int("antibioticId", antibioticID).
		Str("antibiotic", name).Msg("antibiotic review alerts scheduled")
	return nil
}

// ResolveForAntibiotic closes every pending alert tied to an antibiotic.
// Called when therapy ends.
func (s *Service) ResolveForAntibiotic(ctx context.Context, antibioticID, userID int) error {
	pending, err := s.repo.ListUnresolvedByAntibiotic(ctx, antibioticID)
	if err != nil {
		return err
	}
	return s.resolveAll(ctx, pending, userID)
}

// SchedulePendingCulture raises the awaiting-result alert for a freshly
// collected culture.
func (s *Service) SchedulePendingCulture(ctx context.Context, patientID, cultureID int, cultureType string, collectionDate time.Time) error {
	a := &Alert{
		PatientID:        patientID,
		Type:             TypeCulturePending,
		Priority:         PriorityMedium,
		Title:            fmt.Sprintf("Cultura pendente: %s", cultureType),
		Message:          fmt.Sprintf("%s coletada em %s aguardando resultado", cultureType, collectionDate.Format("02/01/2006")),
		RelatedCultureID: &cultureID,
	}
	return s.repo.Create(ctx, a)
}

// ResolveForCulture closes pending alerts for a culture once its result
// comes in.
func (s *Service) ResolveForCulture(ctx context.Context, cultureID, userID int) error {
	pending, err := s.repo.ListUnresolvedByCulture(ctx, cultureID)
	if err != nil {
		return err
	}
	return s.resolveAll(ctx, pending, userID)
}

// NotifyPositiveCulture raises a high priority alert for a positive result.
func (s *Service) NotifyPositiveCulture(ctx context.Context, patientID, cultureID int, cultureType, organism string) error {
	if organism == "" {
		organism = "Organismo"
	}
	a := &Alert{
		PatientID:        patientID,
		Type:             TypeCulturePending,
		Priority:         PriorityHigh,
		Title:            fmt.Sprintf("Cultura POSITIVA: %s", cultureType),
		Message:          fmt.Sprintf("%s isolado em %s. Verificar antibiograma e ajustar terapia.", organism, cultureType),
		RelatedCultureID: &cultureID,
	}
	return s.repo.Create(ctx, a)
}

// CountReviewsDueToday counts open antibiotic review alerts due today.
func (s *Service) CountReviewsDueToday(ctx context.Context) (int, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)
	return s.repo.CountDueBetween(ctx, TypeATBReview, from, to)
}

func (s *Service) resolveAll(ctx context.Context, alerts []*Alert, userID int) error {
	now := time.Now()
	for _, a := range alerts {
		a.IsResolved = true
		a.ResolvedAt = &now
		if userID > 0 {
			a.ResolvedBy = &userID
		}
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
