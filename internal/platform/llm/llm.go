// Package llm wraps the OpenAI API behind small interfaces so services can be
// tested without network access.
package llm

import (
	"context"
	"io"
)

// Message is a minimal chat message. Role must be one of: "system", "user",
// or "assistant".
type Message struct {
	Role    string
	Content string
}

// Generator produces chat completions from a message history (system + prior
// turns + latest user). CompleteJSON constrains the response to a JSON
// object, for calls whose output is parsed rather than shown.
type Generator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	CompleteJSON(ctx context.Context, messages []Message) (string, error)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Synthesizer converts text into spoken audio. The caller owns the returned
// reader and must close it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// VisionAnalyzer extracts text from an image, typically a photographed lab
// report or prescription.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}
