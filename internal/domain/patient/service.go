package patient

import (
	"context"

	"github.com/hemato/consult/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if p.Age <= 0 {
		return apperr.Validation("age", "age must be positive")
	}
	if p.City == "" {
		return apperr.Validation("city", "city is required")
	}
	if p.State == "" {
		return apperr.Validation("state", "state is required")
	}
	if p.HematologicalDiagnosis == "" {
		return apperr.Validation("hematologicalDiagnosis", "hematological diagnosis is required")
	}
	if p.DIH.IsZero() {
		return apperr.Validation("dih", "admission date is required")
	}
	p.IsActive = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListActivePatients(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListActive(ctx)
}

// UpdatePatient applies a partial update; nil fields are left as stored.
func (s *Service) UpdatePatient(ctx context.Context, id int, req *UpdateRequest) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.Validation("name", "name must not be empty")
		}
		p.Name = *req.Name
	}
	if req.Age != nil {
		if *req.Age <= 0 {
			return nil, apperr.Validation("age", "age must be positive")
		}
		p.Age = *req.Age
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.Leito != nil {
		p.Leito = req.Leito
	}
	if req.Unidade != nil {
		p.Unidade = req.Unidade
	}
	if req.DIH != nil {
		p.DIH = *req.DIH
	}
	if req.HematologicalDiagnosis != nil {
		p.HematologicalDiagnosis = *req.HematologicalDiagnosis
	}
	if req.HematologicalDiagnosisDate != nil {
		p.HematologicalDiagnosisDate = req.HematologicalDiagnosisDate
	}
	if req.CurrentProtocol != nil {
		p.CurrentProtocol = req.CurrentProtocol
	}
	if req.PreviousProtocols != nil {
		p.PreviousProtocols = req.PreviousProtocols
	}
	if req.TCTH != nil {
		p.TCTH = req.TCTH
	}
	if req.Colonization != nil {
		p.Colonization = req.Colonization
	}
	if req.ColonizationDate != nil {
		p.ColonizationDate = req.ColonizationDate
	}
	if req.Comorbidities != nil {
		p.Comorbidities = req.Comorbidities
	}
	if req.Antecedents != nil {
		p.Antecedents = req.Antecedents
	}
	if req.EcoTT != nil {
		p.EcoTT = req.EcoTT
	}
	if req.Carenciais != nil {
		p.Carenciais = req.Carenciais
	}
	if req.Serologias != nil {
		p.Serologias = req.Serologias
	}
	if req.Ivermectina != nil {
		p.Ivermectina = req.Ivermectina
	}
	if req.Prophylaxis != nil {
		p.Prophylaxis = req.Prophylaxis
	}
	if req.MUC != nil {
		p.MUC = req.MUC
	}
	if req.DefaultPreceptor != nil {
		p.DefaultPreceptor = req.DefaultPreceptor
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeactivatePatient soft-deletes a patient. The record and its history stay
// queryable; only listings of active patients drop it.
func (s *Service) DeactivatePatient(ctx context.Context, id int) (*Patient, error) {
	inactive := false
	return s.UpdatePatient(ctx, id, &UpdateRequest{IsActive: &inactive})
}

func (s *Service) Search(ctx context.Context, params SearchParams) ([]*Patient, error) {
	return s.repo.Search(ctx, params)
}
