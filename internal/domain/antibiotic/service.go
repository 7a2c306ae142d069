package antibiotic

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/apperr"
)

// Alerter is the slice of the alert service a course of therapy needs:
// scheduling reassessment alerts on start and clearing them on stop.
type Alerter interface {
	ScheduleAntibioticReviews(ctx context.Context, patientID, antibioticID int, name, indication string, startDate time.Time) error
	ResolveForAntibiotic(ctx context.Context, antibioticID, userID int) error
}

type Service struct {
	repo    Repository
	alerter Alerter
	log     zerolog.Logger
}

func NewService(repo Repository, alerter Alerter, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		alerter: alerter,
		log:     log.With().Str("component", "antibiotic").Logger(),
	}
}

// Create starts a course of therapy and schedules its review alerts.
func (s *Service) Create(ctx context.Context, a *Antibiotic) error {
	if a.PatientID <= 0 {
		return apperr.Validation("patientId", "patientId is required")
	}
	if a.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if a.StartDate.IsZero() {
		a.StartDate = time.Now()
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if !validStatuses[a.Status] {
		return apperr.Validation("status", fmt.Sprintf("unknown status %q", a.Status))
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	if a.Status == StatusActive {
		if err := s.alerter.ScheduleAntibioticReviews(ctx, a.PatientID, a.ID, a.Name, a.Indication, a.StartDate); err != nil {
			return err
		}
	}
	s.log.Info().Int("patientId", a.PatientID).Str("name", a.Name).Msg("antibiotic started")
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*Antibiotic, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Antibiotic, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListActive returns every running course across the service, joined with
// the patient and the current day of therapy.
func (s *Service) ListActive(ctx context.Context) ([]*ActiveCourse, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Update(ctx context.Context, id int, upd *Antibiotic) (*Antibiotic, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != "" {
		a.Name = upd.Name
	}
	if upd.Dose != "" {
		a.Dose = upd.Dose
	}
	if upd.Frequency != "" {
		a.Frequency = upd.Frequency
	}
	if upd.Route != "" {
		a.Route = upd.Route
	}
	if upd.Indication != "" {
		a.Indication = upd.Indication
	}
	if !upd.StartDate.IsZero() {
		a.StartDate = upd.StartDate
	}
	if upd.EndDate != nil {
		a.EndDate = upd.EndDate
	}
	if upd.Status != "" {
		if !validStatuses[upd.Status] {
			return nil, apperr.Validation("status", fmt.Sprintf("unknown status %q", upd.Status))
		}
		a.Status = upd.Status
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Stop ends a course of therapy: status goes to completed, the end date is
// stamped and every open reassessment alert for the course is resolved.
func (s *Service) Stop(ctx context.Context, id int, reason string, userID int) (*Antibiotic, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.EndDate = &now
	if reason != "" {
		a.SuspensionReason = &reason
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if err := s.alerter.ResolveForAntibiotic(ctx, a.ID, userID); err != nil {
		return nil, err
	}
	s.log.Info().Int("antibioticId", a.ID).Str("name", a.Name).Msg("antibiotic stopped")
	return a, nil
}
