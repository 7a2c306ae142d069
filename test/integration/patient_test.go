package integration

import (
	"context"
	"testing"
	"time"

	"github.com/hemato/consult/internal/domain/patient"
	"github.com/hemato/consult/internal/platform/apperr"
)

func TestPatientLifecycle(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)

	svc := patient.NewService(patient.NewRepo(globalDB.Pool))

	p := &patient.Patient{
		Name:                   "João Pereira",
		Age:                    61,
		City:                   "Campinas",
		State:                  "SP",
		Leito:                  ptrStr("CMM A0312"),
		Unidade:                ptrStr("Hematologia"),
		DIH:                    time.Now().AddDate(0, 0, -3),
		HematologicalDiagnosis: "LLA",
		Colonization:           ptrStr("KPC"),
	}
	if err := svc.CreatePatient(ctx, p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected generated id")
	}
	if !p.IsActive {
		t.Error("new patient should be active")
	}

	got, err := svc.GetPatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("get patient: %v", err)
	}
	if got.Name != "João Pereira" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Colonization == nil || *got.Colonization != "KPC" {
		t.Errorf("colonization = %v", got.Colonization)
	}

	active, err := svc.ListActivePatients(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active patients = %d, want 1", len(active))
	}

	// Soft delete keeps the row but drops it from the active census.
	if _, err := svc.DeactivatePatient(ctx, p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, err = svc.ListActivePatients(ctx)
	if err != nil {
		t.Fatalf("list active after deactivate: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active patients after deactivate = %d, want 0", len(active))
	}
	all, err := svc.ListPatients(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("total patients = %d, want 1", len(all))
	}
}

func TestPatientGetMissing(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)

	svc := patient.NewService(patient.NewRepo(globalDB.Pool))
	_, err := svc.GetPatient(ctx, 9999)
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}
