package directory

import (
	"context"
	"fmt"

	"beleads_backend/platform/ai/moonshot"
	"beleads_backend/platform/config"
	"beleads_backend/platform/logger"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// NewModel selects the generative backend configured for the directory.
func NewModel(ctx context.Context, cfg config.DirectoryConfig) (model.LLM, error) {
	switch cfg.GetDirectoryProvider() {
	case "moonshot":
		return moonshot.NewModel(moonshot.Config{
			APIKey:   cfg.GetMoonshotAPIKey(),
			Model:    cfg.GetDirectoryModel(),
			JSONMode: true,
		}), nil
	case "gemini":
		name := cfg.GetDirectoryModel()
		if name == "" {
			name = defaultGeminiModel
		}
		llm, err := gemini.NewModel(ctx, name, &genai.ClientConfig{
			APIKey:  cfg.GetGeminiAPIKey(),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini model: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown directory provider %q", cfg.GetDirectoryProvider())
	}
}

// New builds the production source: the model-backed lookup behind a shared
// rate limit, with retries outermost so every attempt pays for a token.
func New(ctx context.Context, cfg config.DirectoryConfig, log *logger.Logger) (Source, error) {
	llm, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	src, err := NewLLMSource(llm)
	if err != nil {
		return nil, err
	}
	limited := NewRateLimited(src, cfg.GetDirectoryRatePerSecond(), 1)
	return NewRetrying(limited, cfg.GetDirectoryRetries(), cfg.GetDirectoryRetryBackoff(), log), nil
}
