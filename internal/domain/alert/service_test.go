package alert

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type mockRepo struct {
	alerts map[int]*Alert
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{alerts: make(map[int]*Alert), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, a *Alert) error {
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	m.nextID++
	cp := *a
	m.alerts[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Alert) error {
	cp := *a
	m.alerts[a.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, limit int) ([]*Alert, error) {
	var out []*Alert
	for _, a := range m.alerts {
		if len(out) == limit {
			break
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int) ([]*Alert, error) {
	var out []*Alert
	for _, a := range m.alerts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListUnread(_ context.Context) ([]*Alert, error) {
	var out []*Alert
	for _, a := range m.alerts {
		if !a.IsRead && !a.IsResolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListUnresolvedByAntibiotic(_ context.Context, antibioticID int) ([]*Alert, error) {
	var out []*Alert
	for _, a := range m.alerts {
		if a.RelatedAntibioticID != nil && *a.RelatedAntibioticID == antibioticID && !a.IsResolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListUnresolvedByCulture(_ context.Context, cultureID int) ([]*Alert, error) {
	var out []*Alert
	for _, a := range m.alerts {
		if a.RelatedCultureID != nil && *a.RelatedCultureID == cultureID && !a.IsResolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) CountDueBetween(_ context.Context, alertType string, from, to time.Time) (int, error) {
	count := 0
	for _, a := range m.alerts {
		if a.Type != alertType || a.IsResolved || a.DueDate == nil {
			continue
		}
		if !a.DueDate.Before(from) && !a.DueDate.After(to) {
			count++
		}
	}
	return count, nil
}

var errNotFound = &notFoundErr{}

type notFoundErr struct{}

func (*notFoundErr) Error() string { return "not found" }

func newTestService(repo Repository) *Service {
	return NewService(repo, zerolog.Nop())
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMockRepo())

	cases := []struct {
		name  string
		alert Alert
	}{
		{"missing patient", Alert{Type: TypeCustom, Title: "t"}},
		{"bad type", Alert{PatientID: 1, Type: "bogus", Title: "t"}},
		{"bad priority", Alert{PatientID: 1, Type: TypeCustom, Priority: "urgent", Title: "t"}},
		{"missing title", Alert{PatientID: 1, Type: TypeCustom}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), &tc.alert); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateDefaultsPriority(t *testing.T) {
	svc := newTestService(newMockRepo())
	a := &Alert{PatientID: 1, Type: TypeCustom, Title: "Revisar profilaxia"}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Priority != PriorityMedium {
		t.Fatalf("priority = %q, want %q", a.Priority, PriorityMedium)
	}
}

func TestScheduleAntibioticReviews(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	err := svc.ScheduleAntibioticReviews(context.Background(), 5, 42, "Meropenem", "Neutropenia febril", start)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(repo.alerts) != 3 {
		t.Fatalf("got %d alerts, want 3", len(repo.alerts))
	}

	byDay := map[string]*Alert{}
	for _, a := range repo.alerts {
		byDay[a.Title] = a
	}

	d3, ok := byDay["Reavaliação ATB D3: Meropenem"]
	if !ok {
		t.Fatal("missing D3 alert")
	}
	if d3.Priority != PriorityHigh {
		t.Errorf("D3 priority = %q, want high", d3.Priority)
	}
	wantDue := start.AddDate(0, 0, 2)
	if d3.DueDate == nil || !d3.DueDate.Equal(wantDue) {
		t.Errorf("D3 due = %v, want %v", d3.DueDate, wantDue)
	}
	if !strings.Contains(d3.Message, "Neutropenia febril") {
		t.Errorf("message %q should carry the indication", d3.Message)
	}

	for _, day := range []string{"Reavaliação ATB D7: Meropenem", "Reavaliação ATB D14: Meropenem"} {
		a, ok := byDay[day]
		if !ok {
			t.Fatalf("missing alert %q", day)
		}
		if a.Priority != PriorityMedium {
			t.Errorf("%s priority = %q, want medium", day, a.Priority)
		}
		if a.RelatedAntibioticID == nil || *a.RelatedAntibioticID != 42 {
			t.Errorf("%s not tied to antibiotic 42", day)
		}
	}
}

func TestScheduleReviewsWithoutIndication(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	start := time.Now()
	if err := svc.ScheduleAntibioticReviews(context.Background(), 1, 7, "Cefepime", "", start); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	for _, a := range repo.alerts {
		if !strings.Contains(a.Message, "Indicação não especificada") {
			t.Fatalf("message %q missing fallback indication", a.Message)
		}
	}
}

func TestResolveForAntibiotic(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	start := time.Now()
	if err := svc.ScheduleAntibioticReviews(context.Background(), 1, 9, "Vancomicina", "MRSA", start); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	other := &Alert{PatientID: 1, Type: TypeCustom, Title: "outro"}
	if err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.ResolveForAntibiotic(context.Background(), 9, 3); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for _, a := range repo.alerts {
		tied := a.RelatedAntibioticID != nil && *a.RelatedAntibioticID == 9
		if tied && !a.IsResolved {
			t.Errorf("alert %d should be resolved", a.ID)
		}
		if tied && (a.ResolvedBy == nil || *a.ResolvedBy != 3) {
			t.Errorf("alert %d missing resolver", a.ID)
		}
		if !tied && a.IsResolved {
			t.Errorf("alert %d should be untouched", a.ID)
		}
	}
}

func TestPendingCultureAlert(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	collected := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)
	if err := svc.SchedulePendingCulture(context.Background(), 2, 11, "Hemocultura", collected); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	a := repo.alerts[1]
	if a.Title != "Cultura pendente: Hemocultura" {
		t.Errorf("title = %q", a.Title)
	}
	if a.Message != "Hemocultura coletada em 05/01/2026 aguardando resultado" {
		t.Errorf("message = %q", a.Message)
	}
	if a.Priority != PriorityMedium {
		t.Errorf("priority = %q, want medium", a.Priority)
	}
}

func TestNotifyPositiveCulture(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if err := svc.NotifyPositiveCulture(context.Background(), 2, 11, "Hemocultura", "Klebsiella pneumoniae"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	a := repo.alerts[1]
	if a.Title != "Cultura POSITIVA: Hemocultura" {
		t.Errorf("title = %q", a.Title)
	}
	if a.Message != "Klebsiella pneumoniae isolado em Hemocultura. Verificar antibiograma e ajustar terapia." {
		t.Errorf("message = %q", a.Message)
	}
	if a.Priority != PriorityHigh {
		t.Errorf("priority = %q, want high", a.Priority)
	}

	if err := svc.NotifyPositiveCulture(context.Background(), 2, 12, "Urocultura", ""); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := repo.alerts[2].Message; !strings.HasPrefix(got, "Organismo isolado") {
		t.Errorf("message = %q, want Organismo fallback", got)
	}
}

func TestMarkReadAndResolve(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	a := &Alert{PatientID: 1, Type: TypeCustom, Title: "checar swab"}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}

	read, err := svc.MarkRead(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.IsRead {
		t.Fatal("alert not marked read")
	}

	resolved, err := svc.Resolve(context.Background(), a.ID, 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.IsResolved || resolved.ResolvedAt == nil {
		t.Fatal("alert not resolved")
	}
	if resolved.ResolvedBy == nil || *resolved.ResolvedBy != 7 {
		t.Fatal("resolver not recorded")
	}

	// Resolution is terminal: a second resolve is a no-op.
	again, err := svc.Resolve(context.Background(), a.ID, 99)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if *again.ResolvedBy != 7 {
		t.Fatal("second resolve must not change the resolver")
	}

	// Marking a resolved alert read leaves it alone.
	after, err := svc.MarkRead(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("mark read after resolve: %v", err)
	}
	if !after.IsResolved {
		t.Fatal("resolved state lost")
	}
}

func TestCountReviewsDueToday(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	now := time.Now()
	today := now
	tomorrow := now.AddDate(0, 0, 2)
	mkAlert := func(due time.Time, resolved bool) {
		a := &Alert{PatientID: 1, Type: TypeATBReview, Priority: PriorityHigh,
			Title: "Reavaliação ATB D3: X", DueDate: &due, IsResolved: resolved}
		if err := repo.Create(context.Background(), a); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if resolved {
			repo.alerts[a.ID].IsResolved = true
		}
	}
	mkAlert(today, false)
	mkAlert(today, true)
	mkAlert(tomorrow, false)

	count, err := svc.CountReviewsDueToday(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
