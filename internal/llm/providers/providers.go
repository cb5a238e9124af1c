// Package providers builds the configured extraction service client.
package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
	"github.com/joseph-ayodele/resume-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/resume-extractor/internal/llm/langchain"
)

// Default models per provider when LLM_MODEL is unset.
var defaultModels = map[string]string{
	common.ProviderGemini:    "gemini-2.5-flash",
	common.ProviderOpenAI:    "gpt-4o-mini",
	common.ProviderAnthropic: "claude-3-5-haiku-latest",
	common.ProviderOllama:    "llama3.1",
}

// New returns a client for cfg.Provider. A missing credential yields an error
// wrapping common.ErrClientNotInitialized.
func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	model := ModelFor(cfg)

	switch cfg.Provider {
	case common.ProviderGemini, "":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       model,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			TopK:        cfg.TopK,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case common.ProviderOpenAI, common.ProviderAnthropic, common.ProviderOllama:
		lc := langchain.Config{
			Provider:    cfg.Provider,
			Model:       model,
			BaseURL:     cfg.OllamaHost,
			Temperature: float64(cfg.Temperature),
			Timeout:     cfg.Timeout,
		}
		switch cfg.Provider {
		case common.ProviderOpenAI:
			lc.APIKey = cfg.OpenAIAPIKey
		case common.ProviderAnthropic:
			lc.APIKey = cfg.AnthropicAPIKey
		}
		c, err := langchain.NewClient(lc, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, common.NewAppError(common.CodeConfig,
			fmt.Sprintf("unsupported LLM provider %q", cfg.Provider), common.ErrValidation)
	}
}

// ModelFor returns the configured model or the provider default.
func ModelFor(cfg common.LLMConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if m, ok := defaultModels[cfg.Provider]; ok {
		return m
	}
	return defaultModels[common.ProviderGemini]
}
