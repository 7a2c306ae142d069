package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/domain/alert"
	"github.com/hemato/consult/internal/domain/antibiotic"
	"github.com/hemato/consult/internal/domain/culture"
	"github.com/hemato/consult/internal/domain/patient"
)

// PatientSource feeds the patient counters and histograms.
type PatientSource interface {
	ListPatients(ctx context.Context) ([]*patient.Patient, error)
	ListActivePatients(ctx context.Context) ([]*patient.Patient, error)
}

// AntibioticSource lists running courses for the counters and the timeline.
type AntibioticSource interface {
	ListActive(ctx context.Context) ([]*antibiotic.ActiveCourse, error)
}

// CultureSource counts cultures still awaiting results.
type CultureSource interface {
	ListPending(ctx context.Context) ([]*culture.PendingCulture, error)
}

// AlertSource feeds the recent-alerts panel and the reviews-due counter.
type AlertSource interface {
	ListUnread(ctx context.Context) ([]*alert.Alert, error)
	CountReviewsDueToday(ctx context.Context) (int, error)
}

// Stats is the dashboard summary.
type Stats struct {
	TotalPatients     int            `json:"totalPatients"`
	ActivePatients    int            `json:"activePatients"`
	ColonizedPatients int            `json:"colonizedPatients"`
	PendingCultures   int            `json:"pendingCultures"`
	ActiveAntibiotics int            `json:"activeAntibiotics"`
	ATBReviewsToday   int            `json:"atbReviewsToday"`
	ByUnit            map[string]int `json:"byUnit"`
	ByColonization    map[string]int `json:"byColonization"`
	RecentAlerts      []*alert.Alert `json:"recentAlerts"`
}

// ReviewMarker is one D3/D7/D14 checkpoint on a timeline entry.
type ReviewMarker struct {
	Day    int       `json:"day"`
	Date   time.Time `json:"date"`
	IsPast bool      `json:"isPast"`
}

// TimelineEntry is one active course with its review checkpoints.
type TimelineEntry struct {
	antibiotic.ActiveCourse
	Reviews []ReviewMarker `json:"reviews"`
}

var reviewDays = []int{3, 7, 14}

type Service struct {
	patients    PatientSource
	antibiotics AntibioticSource
	cultures    CultureSource
	alerts      AlertSource
	log         zerolog.Logger
}

func NewService(patients PatientSource, antibiotics AntibioticSource, cultures CultureSource, alerts AlertSource, log zerolog.Logger) *Service {
	return &Service{
		patients:    patients,
		antibiotics: antibiotics,
		cultures:    cultures,
		alerts:      alerts,
		log:         log.With().Str("component", "dashboard").Logger(),
	}
}

// Stats assembles the service-wide summary.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.patients.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.patients.ListActivePatients(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.cultures.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.antibiotics.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	reviewsToday, err := s.alerts.CountReviewsDueToday(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.alerts.ListUnread(ctx)
	if err != nil {
		return nil, err
	}
	if len(unread) > 10 {
		unread = unread[:10]
	}
	if unread == nil {
		unread = []*alert.Alert{}
	}

	stats := &Stats{
		TotalPatients:     len(all),
		ActivePatients:    len(active),
		PendingCultures:   len(pending),
		ActiveAntibiotics: len(courses),
		ATBReviewsToday:   reviewsToday,
		ByUnit:            map[string]int{},
		ByColonization:    map[string]int{},
		RecentAlerts:      unread,
	}

	for _, p := range active {
		unit := "Outros"
		if p.Unidade != nil && *p.Unidade != "" {
			unit = *p.Unidade
		}
		stats.ByUnit[unit]++

		if p.Colonization != nil && *p.Colonization != "" {
			stats.ColonizedPatients++
			for _, code := range p.Codes() {
				stats.ByColonization[code]++
			}
		}
	}
	return stats, nil
}

// Timeline returns every active course annotated with its D3/D7/D14
// checkpoints. Marker dates follow the alert schedule: start counts as D1.
func (s *Service) Timeline(ctx context.Context) ([]*TimelineEntry, error) {
	courses, err := s.antibiotics.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	entries := make([]*TimelineEntry, 0, len(courses))
	for _, c := range courses {
		entry := &TimelineEntry{ActiveCourse: *c}
		for _, day := range reviewDays {
			date := c.StartDate.AddDate(0, 0, day-1)
			entry.Reviews = append(entry.Reviews, ReviewMarker{
				Day:    day,
				Date:   date,
				IsPast: date.Before(now),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
