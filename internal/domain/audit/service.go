package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/platform/middleware"
)

// Service persists the audit trail. Every write is fire-and-forget: audit
// failures are logged and swallowed, they never surface to the caller.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "audit").Logger()}
}

// RecordAccess implements middleware.AuditRecorder.
func (s *Service) RecordAccess(entry middleware.AuditEntry) {
	l := &Log{
		Username:   entry.Username,
		Action:     entry.Action,
		Resource:   entry.Resource,
		Method:     entry.Method,
		Path:       entry.Path,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		RequestID:  entry.RequestID,
		StatusCode: entry.StatusCode,
	}
	if entry.UserID > 0 {
		l.UserID = &entry.UserID
	}
	if entry.ResourceID > 0 {
		l.ResourceID = &entry.ResourceID
	}
	if entry.PatientID > 0 {
		l.PatientID = &entry.PatientID
	}

	// Bounded so a slow insert cannot hold a request goroutine hostage.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Insert(ctx, l); err != nil {
		s.log.Error().Err(err).Str("path", entry.Path).Msg("audit insert failed")
	}
}

// RecordAuthEvent notes a login or logout.
func (s *Service) RecordAuthEvent(ctx context.Context, userID int, username, action string) {
	l := &Log{
		Username: username,
		Action:   action,
		Resource: "auth",
	}
	if userID > 0 {
		l.UserID = &userID
	}
	if err := s.repo.Insert(ctx, l); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("auth audit insert failed")
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Log, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Log, error) {
	return s.repo.ListByPatient(ctx, patientID, 200)
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]*Log, error) {
	return s.repo.ListByUser(ctx, userID, 200)
}
