package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Per-call response budgets. Chat replies and consult notes get the full
// window; JSON sub-calls return small objects and are capped tighter.
const (
	completionMaxTokens = 4096
	jsonMaxTokens       = 1024
)

// OpenAIClient calls the OpenAI API for chat completions, transcription,
// speech synthesis and image analysis.
type OpenAIClient struct {
	client     *openai.Client
	chatModel  string
	audioModel string
}

// NewOpenAIClient constructs an OpenAI-backed client. Model names fall back
// to sensible defaults when empty.
func NewOpenAIClient(apiKey, chatModel, audioModel string) *OpenAIClient {
	if chatModel == "" {
		chatModel = "gpt-4o"
	}
	if audioModel == "" {
		audioModel = string(openai.Whisper1)
	}
	return &OpenAIClient{
		client:     openai.NewClient(apiKey),
		chatModel:  chatModel,
		audioModel: audioModel,
	}
}

// Complete sends the message history to the chat completion API and returns
// the assistant's response.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	// Convert to OpenAI message type
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    oaMsgs,
		Temperature: 0.2,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON is Complete with the response constrained to a JSON object.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          c.chatModel,
		Messages:       oaMsgs,
		Temperature:    0.2,
		MaxTokens:      jsonMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends audio to the transcription API and returns the text.
// The filename matters: OpenAI infers the container format from its extension.
func (c *OpenAIClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.audioModel,
		FilePath: filename,
		Reader:   audio,
		Language: "pt",
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Synthesize converts text to speech and returns the audio stream.
func (c *OpenAIClient) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.VoiceAlloy,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AnalyzeImage sends an image with an instruction prompt to the vision model
// and returns the extracted text.
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
