package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const DefaultChatModelName = "gemini-1.5-flash-latest"

// CompletionRequest is one single-shot generation call.
type CompletionRequest struct {
	SystemInstruction string
	Prompt            string
	MaxOutputTokens   int32
	Temperature       float32
}

// Generator produces text for a prompt. An empty string with a nil error
// means the model answered with nothing usable.
type Generator interface {
	Generate(ctx context.Context, req CompletionRequest) (string, error)
}

type LLMService struct {
	client    *genai.Client
	modelName string
	logger    zerolog.Logger
}

func NewLLMService(ctx context.Context, apiKey, modelName string, logger zerolog.Logger) (*LLMService, error) {
	if modelName == "" {
		modelName = DefaultChatModelName
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &LLMService{
		client:    client,
		modelName: modelName,
		logger:    logger.With().Str("component", "llm").Str("model", modelName).Logger(),
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing GenAI client")
		} else {
			s.logger.Debug().Msg("GenAI client closed")
		}
	}
}

func (s *LLMService) Generate(ctx context.Context, req CompletionRequest) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	configureModel(model, req)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		s.logger.Warn().Msg("Gemini response was empty or had no text parts")
	}
	return text, nil
}

func configureModel(model *genai.GenerativeModel, req CompletionRequest) {
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}
	model.SetMaxOutputTokens(req.MaxOutputTokens)
	model.SetTemperature(req.Temperature)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
