package evolution

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hemato/consult/internal/domain/antibiotic"
	"github.com/hemato/consult/internal/domain/culture"
	"github.com/hemato/consult/internal/domain/patient"
	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/llm"
)

type mockRepo struct {
	evolutions map[int]*Evolution
	nextID     int
}

func newMockRepo() *mockRepo {
	return &mockRepo{evolutions: make(map[int]*Evolution), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, e *Evolution) error {
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	m.nextID++
	cp := *e
	m.evolutions[e.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Evolution, error) {
	e, ok := m.evolutions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int) ([]*Evolution, error) {
	var out []*Evolution
	for _, e := range m.evolutions {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) Latest(_ context.Context, patientID int) (*Evolution, error) {
	var latest *Evolution
	for _, e := range m.evolutions {
		if e.PatientID != patientID {
			continue
		}
		if latest == nil || e.Date.After(latest.Date) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

type mockPatients struct {
	patients map[int]*patient.Patient
}

func (m *mockPatients) GetPatient(_ context.Context, id int) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient", id)
	}
	return p, nil
}

type mockAntibiotics struct {
	byPatient map[int][]*antibiotic.Antibiotic
}

func (m *mockAntibiotics) ListByPatient(_ context.Context, patientID int) ([]*antibiotic.Antibiotic, error) {
	return m.byPatient[patientID], nil
}

type mockCultures struct {
	byPatient map[int][]*culture.Culture
}

func (m *mockCultures) ListByPatient(_ context.Context, patientID int) ([]*culture.Culture, error) {
	return m.byPatient[patientID], nil
}

type mockGenerator struct {
	completeResp string
	completeErr  error
	jsonResp     string
	jsonErr      error
	lastMessages []llm.Message
	lastJSONMsgs []llm.Message
	jsonCalls    int
}

func (m *mockGenerator) Complete(_ context.Context, messages []llm.Message) (string, error) {
	m.lastMessages = messages
	return m.completeResp, m.completeErr
}

func (m *mockGenerator) CompleteJSON(_ context.Context, messages []llm.Message) (string, error) {
	m.jsonCalls++
	m.lastJSONMsgs = messages
	return m.jsonResp, m.jsonErr
}

func str(s string) *string { return &s }

func testPatient() *patient.Patient {
	return &patient.Patient{
		ID:                     1,
		Name:                   "Maria Souza",
		Age:                    54,
		City:                   "São Paulo",
		State:                  "SP",
		Leito:                  str("CMM A0312"),
		DIH:                    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		HematologicalDiagnosis: "LMA",
		Colonization:           str("KPC"),
		Prophylaxis:            str("Aciclovir 400mg 8/8h"),
		DefaultPreceptor:       str("Dr. Ponzio"),
		IsActive:               true,
	}
}

func newTestService(repo Repository, p *patient.Patient, gen llm.Generator) *Service {
	patients := &mockPatients{patients: map[int]*patient.Patient{}}
	if p != nil {
		patients.patients[p.ID] = p
	}
	return NewService(repo, patients,
		&mockAntibiotics{byPatient: map[int][]*antibiotic.Antibiotic{}},
		&mockCultures{byPatient: map[int][]*culture.Culture{}},
		gen, zerolog.Nop())
}

func TestBuildContextOmitsEmptyFields(t *testing.T) {
	p := testPatient()
	p.Colonization = nil
	p.TCTH = nil
	svc := newTestService(newMockRepo(), p, &mockGenerator{})

	ctx, err := svc.BuildContext(context.Background(), 1)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if !strings.Contains(ctx, "Nome: Maria Souza") {
		t.Error("missing name")
	}
	if !strings.Contains(ctx, "Leito: CMM A0312") {
		t.Error("missing bed")
	}
	if strings.Contains(ctx, "Colonização") || strings.Contains(ctx, "TCTH") {
		t.Error("empty optional fields must be omitted, not placeholdered")
	}
	if strings.Contains(ctx, "Não informado") {
		t.Error("context must not contain placeholders")
	}
}

func TestBuildContextIncludesActiveATBAndPendingCultures(t *testing.T) {
	p := testPatient()
	repo := newMockRepo()
	patients := &mockPatients{patients: map[int]*patient.Patient{1: p}}
	start := time.Now().Add(-50 * time.Hour)
	atbs := &mockAntibiotics{byPatient: map[int][]*antibiotic.Antibiotic{
		1: {
			{ID: 1, PatientID: 1, Name: "Meropenem", Dose: "1g", Frequency: "8/8h", Indication: "NF", StartDate: start, Status: antibiotic.StatusActive},
			{ID: 2, PatientID: 1, Name: "Vancomicina", StartDate: start, Status: antibiotic.StatusCompleted},
		},
	}}
	cults := &mockCultures{byPatient: map[int][]*culture.Culture{
		1: {
			{ID: 1, PatientID: 1, Type: "Hemocultura", Site: "CVC", CollectionDate: time.Now().Add(-30 * time.Hour), Status: culture.StatusPending},
			{ID: 2, PatientID: 1, Type: "Urocultura", CollectionDate: time.Now(), Status: culture.StatusNegative},
		},
	}}
	svc := NewService(repo, patients, atbs, cults, &mockGenerator{}, zerolog.Nop())

	ctx, err := svc.BuildContext(context.Background(), 1)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if !strings.Contains(ctx, "Meropenem 1g 8/8h D3 (NF)") {
		t.Errorf("active antibiotic line missing or wrong:\n%s", ctx)
	}
	if strings.Contains(ctx, "Vancomicina") {
		t.Error("completed antibiotics must be excluded")
	}
	if !strings.Contains(ctx, "Hemocultura (CVC) coletada há 1 dia(s)") {
		t.Errorf("pending culture line missing or wrong:\n%s", ctx)
	}
	if strings.Contains(ctx, "Urocultura") {
		t.Error("resulted cultures must be excluded")
	}
}

func TestBuildContextAppendsPreviousEvolution(t *testing.T) {
	p := testPatient()
	repo := newMockRepo()
	svc := newTestService(repo, p, &mockGenerator{})

	prev := &Evolution{PatientID: 1, Date: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), Content: "INTERCONSULTA — nota anterior"}
	if err := repo.Create(context.Background(), prev); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, err := svc.BuildContext(context.Background(), 1)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if !strings.Contains(ctx, "EVOLUÇÃO ANTERIOR (10/02/2026):") {
		t.Error("previous evolution header missing")
	}
	if !strings.Contains(ctx, "INTERCONSULTA — nota anterior") {
		t.Error("previous evolution content missing")
	}
}

func TestBuildContextUnknownPatient(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, &mockGenerator{})
	if _, err := svc.BuildContext(context.Background(), 99); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), testPatient(), &mockGenerator{})

	if _, err := svc.Generate(context.Background(), GenerateRequest{RawInput: "x"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing patientId: err = %v", err)
	}
	if _, err := svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "   "}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("blank input: err = %v", err)
	}
	if _, err := svc.Generate(context.Background(), GenerateRequest{PatientID: 9, RawInput: "x"}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown patient: err = %v", err)
	}
}

func TestGenerateExtractsImpression(t *testing.T) {
	note := "INTERCONSULTA — SERVIÇO DE HEMATOINFECTOLOGIA\n───────────────────────────────────\nIMPRESSÃO:\nPaciente estável, afebril há 48h.\n───────────────────────────────────\nCONDUTA:\n- Manter ATB"
	gen := &mockGenerator{completeResp: note}
	svc := newTestService(newMockRepo(), testPatient(), gen)

	resp, err := svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "labs do dia: Hb 8,2", IncludeImpression: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Impression != "Paciente estável, afebril há 48h." {
		t.Errorf("impression = %q", resp.Impression)
	}
	if resp.Content != note {
		t.Error("content must be returned verbatim")
	}
	if len(gen.lastMessages) != 2 || gen.lastMessages[0].Role != "system" {
		t.Fatal("expected system + user messages")
	}
	if !strings.Contains(gen.lastMessages[1].Content, "DADOS DE HOJE / INPUT DO USUÁRIO:") {
		t.Error("user message missing raw input section")
	}
	if !strings.Contains(gen.lastMessages[1].Content, "Inclua a seção IMPRESSÃO") {
		t.Error("impression instruction missing")
	}
}

func TestGenerateMissingDataAlerts(t *testing.T) {
	p := testPatient()
	p.Colonization = nil
	p.Prophylaxis = nil
	p.DefaultPreceptor = nil
	gen := &mockGenerator{completeResp: "nota"}
	svc := newTestService(newMockRepo(), p, gen)

	resp, err := svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "febre persistente"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []string{
		"Swab de vigilância não cadastrado",
		"Profilaxias não cadastradas",
		"Preceptor não cadastrado",
		"Labs do dia não informados",
	}
	if len(resp.MissingDataAlerts) != len(want) {
		t.Fatalf("alerts = %v", resp.MissingDataAlerts)
	}
	for i, w := range want {
		if resp.MissingDataAlerts[i] != w {
			t.Errorf("alert[%d] = %q, want %q", i, resp.MissingDataAlerts[i], w)
		}
	}

	// Mentioning labs in the input clears the labs alert.
	resp, err = svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "Hb 7,9 | Leuco 320"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, a := range resp.MissingDataAlerts {
		if a == "Labs do dia não informados" {
			t.Error("labs alert must not fire when labs are present")
		}
	}
}

func TestGenerateSuggestions(t *testing.T) {
	gen := &mockGenerator{
		completeResp: "nota",
		jsonResp:     `{"suggestions":[{"title":"IDSA Febrile Neutropenia","source":"CID 2011","summary":"Guideline de NF."}]}`,
	}
	svc := newTestService(newMockRepo(), testPatient(), gen)

	resp, err := svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "labs ok", IncludeSuggestions: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(resp.ReadingSuggestions) != 1 || resp.ReadingSuggestions[0].Title != "IDSA Febrile Neutropenia" {
		t.Errorf("suggestions = %v", resp.ReadingSuggestions)
	}

	// A broken sub-call is swallowed.
	gen.jsonResp = "not json"
	resp, err = svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "labs ok", IncludeSuggestions: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.ReadingSuggestions != nil {
		t.Error("unparseable suggestions must yield none")
	}

	gen.jsonErr = errors.New("api down")
	if _, err = svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "labs ok", IncludeSuggestions: true}); err != nil {
		t.Fatalf("suggestion failure must not fail generation: %v", err)
	}

	// Not requested: no sub-call at all.
	before := gen.jsonCalls
	if _, err = svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "labs ok"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.jsonCalls != before {
		t.Error("suggestion call made without being requested")
	}
}

func TestSuggestionExcerptKeepsRunesIntact(t *testing.T) {
	gen := &mockGenerator{jsonResp: `{"suggestions":[]}`}
	svc := newTestService(newMockRepo(), testPatient(), gen)

	// 600 runes of accented Portuguese: a byte-based cut at 500 would land
	// mid-character.
	long := strings.Repeat("infecção", 75)
	svc.suggestReadings(context.Background(), "LMA", long)

	if len(gen.lastJSONMsgs) != 2 {
		t.Fatalf("messages = %d, want system + user", len(gen.lastJSONMsgs))
	}
	user := gen.lastJSONMsgs[1].Content
	if !utf8.ValidString(user) {
		t.Error("excerpt contains a split multi-byte character")
	}
	// 500 runes into the repeated word lands after "infe".
	if !strings.HasSuffix(user, "infe") {
		t.Errorf("excerpt not cut at 500 runes: ends %q", user[len(user)-12:])
	}
}

func TestGenerateFailure(t *testing.T) {
	gen := &mockGenerator{completeErr: errors.New("rate limited")}
	svc := newTestService(newMockRepo(), testPatient(), gen)

	_, err := svc.Generate(context.Background(), GenerateRequest{PatientID: 1, RawInput: "labs"})
	if apperr.KindOf(err) != apperr.KindGeneration {
		t.Fatalf("err = %v, want generation error", err)
	}
}

func TestCreateEvolution(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, testPatient(), &mockGenerator{})

	e := &Evolution{PatientID: 1, Content: "nota do dia"}
	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Date.IsZero() {
		t.Error("date not defaulted")
	}

	if err := svc.Create(context.Background(), &Evolution{PatientID: 1}); err == nil {
		t.Error("expected error for empty content")
	}
	if err := svc.Create(context.Background(), &Evolution{PatientID: 42, Content: "x"}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown patient: err = %v", err)
	}
}
