package evolution

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hemato/consult/internal/domain/antibiotic"
	"github.com/hemato/consult/internal/domain/culture"
	"github.com/hemato/consult/internal/domain/patient"
)

// PatientSource is the slice of the patient service used during context
// assembly and generation.
type PatientSource interface {
	GetPatient(ctx context.Context, id int) (*patient.Patient, error)
}

// AntibioticSource lists a patient's antibiotics.
type AntibioticSource interface {
	ListByPatient(ctx context.Context, patientID int) ([]*antibiotic.Antibiotic, error)
}

// CultureSource lists a patient's cultures.
type CultureSource interface {
	ListByPatient(ctx context.Context, patientID int) ([]*culture.Culture, error)
}

// BuildContext assembles the deterministic patient-state block that precedes
// every generation: registered facts first, then active antibiotics with the
// current day of therapy, pending cultures, and the latest prior note
// verbatim. Optional fields absent from the record are omitted, never
// filled with placeholders.
func (s *Service) BuildContext(ctx context.Context, patientID int) (string, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	now := time.Now()

	b.WriteString("DADOS DO PACIENTE CADASTRADO:\n")
	fmt.Fprintf(&b, "Nome: %s\n", p.Name)
	fmt.Fprintf(&b, "Idade: %d anos\n", p.Age)
	fmt.Fprintf(&b, "Cidade/UF: %s - %s\n", p.City, p.State)
	writeOpt(&b, "Leito", p.Leito)
	writeOpt(&b, "Unidade", p.Unidade)
	fmt.Fprintf(&b, "DIH: %s\n", p.DIH.Format("02/01/2006"))
	fmt.Fprintf(&b, "HD Hemato: %s\n", p.HematologicalDiagnosis)
	if p.HematologicalDiagnosisDate != nil {
		fmt.Fprintf(&b, "Data Dx Hemato: %s\n", p.HematologicalDiagnosisDate.Format("02/01/2006"))
	}
	writeOpt(&b, "Protocolo Atual", p.CurrentProtocol)
	writeOpt(&b, "Protocolos Prévios", p.PreviousProtocols)
	writeOpt(&b, "TCTH", p.TCTH)
	writeOpt(&b, "Colonização", p.Colonization)
	writeOpt(&b, "Comorbidades", p.Comorbidities)
	writeOpt(&b, "Antecedentes", p.Antecedents)
	writeOpt(&b, "ECO TT", p.EcoTT)
	writeOpt(&b, "Carenciais", p.Carenciais)
	writeOpt(&b, "Sorologias", p.Serologias)
	writeOpt(&b, "Ivermectina", p.Ivermectina)
	writeOpt(&b, "Profilaxias", p.Prophylaxis)
	writeOpt(&b, "MUC", p.MUC)
	writeOpt(&b, "Preceptor", p.DefaultPreceptor)

	atbs, err := s.antibiotics.ListByPatient(ctx, patientID)
	if err != nil {
		return "", err
	}
	var active []*antibiotic.Antibiotic
	for _, a := range atbs {
		if a.Status == antibiotic.StatusActive {
			active = append(active, a)
		}
	}
	if len(active) > 0 {
		b.WriteString("\nATB EM USO:\n")
		for _, a := range active {
			fmt.Fprintf(&b, "- %s", a.Name)
			if a.Dose != "" {
				fmt.Fprintf(&b, " %s", a.Dose)
			}
			if a.Frequency != "" {
				fmt.Fprintf(&b, " %s", a.Frequency)
			}
			fmt.Fprintf(&b, " D%d", a.CurrentDay(now))
			if a.Indication != "" {
				fmt.Fprintf(&b, " (%s)", a.Indication)
			}
			b.WriteString("\n")
		}
	}

	cults, err := s.cultures.ListByPatient(ctx, patientID)
	if err != nil {
		return "", err
	}
	var pending []*culture.Culture
	for _, c := range cults {
		if c.Status == culture.StatusPending {
			pending = append(pending, c)
		}
	}
	if len(pending) > 0 {
		b.WriteString("\nCULTURAS PENDENTES:\n")
		for _, c := range pending {
			days := int(now.Sub(c.CollectionDate).Hours() / 24)
			fmt.Fprintf(&b, "- %s", c.Type)
			if c.Site != "" {
				fmt.Fprintf(&b, " (%s)", c.Site)
			}
			fmt.Fprintf(&b, " coletada há %d dia(s)\n", days)
		}
	}

	prev, err := s.repo.Latest(ctx, patientID)
	if err != nil {
		return "", err
	}
	if prev != nil {
		fmt.Fprintf(&b, "\n────────────────────────────────────────\nEVOLUÇÃO ANTERIOR (%s):\n%s\n",
			prev.Date.Format("02/01/2006"), prev.Content)
	}

	return b.String(), nil
}

func writeOpt(b *strings.Builder, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(b, "%s: %s\n", label, *v)
	}
}
