// Package media exposes the speech and image endpoints: dictation in,
// synthesized audio out, and OCR over photographed lab sheets.
package media

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hemato/consult/internal/platform/apperr"
	"github.com/hemato/consult/internal/platform/llm"
)

// ocrPrompt asks the vision model for a faithful transcription of the
// photographed document, lab values included.
const ocrPrompt = `Extraia todo o texto desta imagem de documento médico (planilha de labs, receita ou evolução). Transcreva os valores de exames laboratoriais exatamente como aparecem, preservando unidades e datas. Responda apenas com o texto extraído.`

// labExtractionPrompt turns the transcription into name→value pairs.
const labExtractionPrompt = `Extraia os exames laboratoriais do texto abaixo como um objeto JSON plano, com o nome do exame como chave e o valor com unidade como valor. Responda apenas com o objeto JSON. Se não houver exames no texto, responda {}.`

// maxUploadBytes bounds a single audio or image upload (20 MiB).
const maxUploadBytes = 20 << 20

type Handler struct {
	transcriber llm.Transcriber
	synthesizer llm.Synthesizer
	vision      llm.VisionAnalyzer
	generator   llm.Generator
}

func NewHandler(transcriber llm.Transcriber, synthesizer llm.Synthesizer, vision llm.VisionAnalyzer, generator llm.Generator) *Handler {
	return &Handler{transcriber: transcriber, synthesizer: synthesizer, vision: vision, generator: generator}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/voice/transcribe", h.transcribe)
	api.POST("/voice/synthesize", h.synthesize)
	api.POST("/ocr/analyze", h.analyze)
}

func (h *Handler) transcribe(c echo.Context) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("audio", "audio file is required"))
	}
	if file.Size > maxUploadBytes {
		return apperr.ToHTTP(apperr.Validation("audio", "audio file too large"))
	}

	src, err := file.Open()
	if err != nil {
		return apperr.ToHTTP(apperr.Internal("open upload", err))
	}
	defer src.Close()

	text, err := h.transcriber.Transcribe(c.Request().Context(), file.Filename, src)
	if err != nil {
		return apperr.ToHTTP(apperr.Generation("transcription failed", err))
	}
	return c.JSON(http.StatusOK, map[string]string{"text": text})
}

func (h *Handler) synthesize(c echo.Context) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTP(apperr.Validation("body", "invalid request body"))
	}
	if strings.TrimSpace(body.Text) == "" {
		return apperr.ToHTTP(apperr.Validation("text", "text is required"))
	}

	audio, err := h.synthesizer.Synthesize(c.Request().Context(), body.Text)
	if err != nil {
		return apperr.ToHTTP(apperr.Generation("speech synthesis failed", err))
	}
	defer audio.Close()

	return c.Stream(http.StatusOK, "audio/mpeg", audio)
}

func (h *Handler) analyze(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperr.ToHTTP(apperr.Validation("image", "image file is required"))
	}
	if file.Size > maxUploadBytes {
		return apperr.ToHTTP(apperr.Validation("image", "image file too large"))
	}

	src, err := file.Open()
	if err != nil {
		return apperr.ToHTTP(apperr.Internal("open upload", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return apperr.ToHTTP(apperr.Internal("read upload", err))
	}

	text, err := h.vision.AnalyzeImage(c.Request().Context(), ocrPrompt, file.Header.Get("Content-Type"), data)
	if err != nil {
		return apperr.ToHTTP(apperr.Generation("image analysis failed", err))
	}

	resp := analyzeResponse{Text: text}
	resp.Labs, resp.Structured = h.extractLabs(c, text)
	return c.JSON(http.StatusOK, resp)
}

type analyzeResponse struct {
	Text       string                 `json:"text"`
	Labs       map[string]interface{} `json:"labs,omitempty"`
	Structured bool                   `json:"structured"`
}

// extractLabs attempts a second pass that structures the transcription into
// lab name→value pairs. The transcription already succeeded, so any failure
// here degrades to an unstructured response instead of an error.
func (h *Handler) extractLabs(c echo.Context, text string) (map[string]interface{}, bool) {
	raw, err := h.generator.CompleteJSON(c.Request().Context(), []llm.Message{
		{Role: "system", Content: labExtractionPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return nil, false
	}
	var labs map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &labs); err != nil || len(labs) == 0 {
		return nil, false
	}
	return labs, true
}
