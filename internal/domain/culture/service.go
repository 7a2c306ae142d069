package culture

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/apperr"
)

// Alerter is the slice of the alert service a culture needs: a pending
// alert on collection, resolution plus a positive notice when the result
// comes in.
type Alerter interface {
	SchedulePendingCulture(ctx context.Context, patientID, cultureID int, cultureType string, collectionDate time.Time) error
	ResolveForCulture(ctx context.Context, cultureID, userID int) error
	NotifyPositiveCulture(ctx context.Context, patientID, cultureID int, cultureType, organism string) error
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
		log:     log.With().Str("component", "culture").Logger(),
	}
}

// Create registers a collected culture and raises its pending alert.
func (s *Service) Create(ctx context.Context, c *Culture) error {
	if c.PatientID <= 0 {
		return apperr.Validation("patientId", "patientId is required")
	}
	if c.Type == "" {
		return apperr.Validation("type", "type is required")
	}
	if c.CollectionDate.IsZero() {
		c.CollectionDate = time.Now()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if !validStatuses[c.Status] {
		return apperr.Validation("status", fmt.Sprintf("unknown status %q", c.Status))
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	if c.Status == StatusPending {
		if err := s.alerter.SchedulePendingCulture(ctx, c.PatientID, c.ID, c.Type, c.CollectionDate); err != nil {
			return err
		}
	}
	s.log.Info().Int("patientId", c.PatientID).Str("type", c.Type).Msg("culture registered")
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*Culture, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Culture, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListPending returns every culture still awaiting a result, with the
// patient it belongs to.
func (s *Service) ListPending(ctx context.Context) ([]*PendingCulture, error) {
	return s.repo.ListPending(ctx)
}

func (s *Service) Update(ctx context.Context, id int, upd *Culture) (*Culture, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Type != "" {
		c.Type = upd.Type
	}
	if upd.Site != "" {
		c.Site = upd.Site
	}
	if !upd.CollectionDate.IsZero() {
		c.CollectionDate = upd.CollectionDate
	}
	if upd.TimeToPositivity != nil {
		c.TimeToPositivity = upd.TimeToPositivity
	}
	if upd.Antibiogram != nil {
		c.Antibiogram = upd.Antibiogram
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ResultInput carries a lab result for a pending culture.
type ResultInput struct {
	Status           string            `json:"status"`
	Organism         string            `json:"organism,omitempty"`
	Antibiogram      map[string]string `json:"antibiogram,omitempty"`
	TimeToPositivity *int              `json:"timeToPositivity,omitempty"`
}

// SetResult records a terminal status on a culture. Pending alerts for the
// culture are resolved; a positive result additionally raises a high
// priority alert naming the organism.
func (s *Service) SetResult(ctx context.Context, id int, in ResultInput, userID int) (*Culture, error) {
	if in.Status == "" || in.Status == StatusPending {
		return nil, apperr.Validation("status", "a terminal status is required")
	}
	if !validStatuses[in.Status] {
		return nil, apperr.Validation("status", fmt.Sprintf("unknown status %q", in.Status))
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c.Status = in.Status
	c.ResultDate = &now
	if in.Organism != "" {
		c.Organism = &in.Organism
	}
	if in.Antibiogram != nil {
		c.Antibiogram = in.Antibiogram
	}
	if in.TimeToPositivity != nil {
		c.TimeToPositivity = in.TimeToPositivity
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.alerter.ResolveForCulture(ctx, c.ID, userID); err != nil {
		return nil, err
	}
	if c.Status == StatusPositive {
		if err := s.alerter.NotifyPositiveCulture(ctx, c.PatientID, c.ID, c.Type, in.Organism); err != nil {
			return nil, err
		}
	}
	s.log.Info().Int("cultureId", c.ID).Str("status", c.Status).Msg("culture result recorded")
	return c, nil
}
