package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hemato/consult/internal/platform/llm"
)

type mockTranscriber struct {
	text     string
	filename string
}

func (m *mockTranscriber) Transcribe(_ context.Context, filename string, _ io.Reader) (string, error) {
	m.filename = filename
	return m.text, nil
}

type mockSynthesizer struct{}

func (m *mockSynthesizer) Synthesize(_ context.Context, text string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("AUDIO:" + text)), nil
}

type mockVision struct {
	prompt string
	mime   string
}

func (m *mockVision) AnalyzeImage(_ context.Context, prompt, mimeType string, _ []byte) (string, error) {
	m.prompt = prompt
	m.mime = mimeType
	return "Hb 8,1 | Leuco 420", nil
}

type mockGenerator struct {
	jsonReply string
	jsonErr   error
}

func (m *mockGenerator) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return "", nil
}

func (m *mockGenerator) CompleteJSON(_ context.Context, _ []llm.Message) (string, error) {
	if m.jsonErr != nil {
		return "", m.jsonErr
	}
	if m.jsonReply == "" {
		return "{}", nil
	}
	return m.jsonReply, nil
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestTranscribe(t *testing.T) {
	tr := &mockTranscriber{text: "paciente afebril, aceita dieta"}
	h := NewHandler(tr, &mockSynthesizer{}, &mockVision{}, &mockGenerator{})

	body, contentType := multipartBody(t, "audio", "ditado.webm", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/voice/transcribe", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.transcribe(c); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "paciente afebril") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if tr.filename != "ditado.webm" {
		t.Errorf("filename = %q, extension drives format detection", tr.filename)
	}
}

func TestTranscribeRequiresFile(t *testing.T) {
	h := NewHandler(&mockTranscriber{}, &mockSynthesizer{}, &mockVision{}, &mockGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/voice/transcribe", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := h.transcribe(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestSynthesize(t *testing.T) {
	h := NewHandler(&mockTranscriber{}, &mockSynthesizer{}, &mockVision{}, &mockGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/voice/synthesize", strings.NewReader(`{"text":"ler evolução"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.synthesize(c); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got := rec.Body.String(); got != "AUDIO:ler evolução" {
		t.Errorf("body = %q", got)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
}

func TestSynthesizeRequiresText(t *testing.T) {
	h := NewHandler(&mockTranscriber{}, &mockSynthesizer{}, &mockVision{}, &mockGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/voice/synthesize", strings.NewReader(`{"text":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := h.synthesize(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestAnalyze(t *testing.T) {
	vision := &mockVision{}
	gen := &mockGenerator{jsonReply: `{"Hb":"8,1 g/dL","Leuco":"420/mm³"}`}
	h := NewHandler(&mockTranscriber{}, &mockSynthesizer{}, vision, gen)

	body, contentType := multipartBody(t, "image", "labs.jpg", []byte("fake image"))
	req := httptest.NewRequest(http.MethodPost, "/ocr/analyze", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.analyze(c); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(vision.prompt, "exames laboratoriais") {
		t.Error("OCR prompt not passed through")
	}

	var resp struct {
		Text       string            `json:"text"`
		Labs       map[string]string `json:"labs"`
		Structured bool              `json:"structured"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(resp.Text, "Hb 8,1") {
		t.Errorf("text = %q", resp.Text)
	}
	if !resp.Structured {
		t.Error("expected structured labs")
	}
	if resp.Labs["Hb"] != "8,1 g/dL" {
		t.Errorf("labs = %v", resp.Labs)
	}
}

func TestAnalyzeStructuringFailureDegrades(t *testing.T) {
	gen := &mockGenerator{jsonErr: errors.New("model unavailable")}
	h := NewHandler(&mockTranscriber{}, &mockSynthesizer{}, &mockVision{}, gen)

	body, contentType := multipartBody(t, "image", "labs.jpg", []byte("fake image"))
	req := httptest.NewRequest(http.MethodPost, "/ocr/analyze", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	// The OCR text already came back; a failed structuring pass must not
	// turn the whole call into an error.
	if err := h.analyze(c); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var resp struct {
		Text       string            `json:"text"`
		Labs       map[string]string `json:"labs"`
		Structured bool              `json:"structured"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Structured {
		t.Error("structured should be false when extraction fails")
	}
	if resp.Labs != nil {
		t.Errorf("labs = %v, want omitted", resp.Labs)
	}
}
