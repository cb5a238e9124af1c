package langchain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

// Config selects a langchaingo backend.
type Config struct {
	Provider    string // openai, anthropic or ollama
	Model       string
	APIKey      string
	BaseURL     string // ollama server url
	Temperature float64
	Timeout     time.Duration
}

// Client implements llm.Client over any langchaingo model in JSON mode.
type Client struct {
	cfg    Config
	llm    llms.Model
	logger *slog.Logger
}

var _ llm.Client = (*Client)(nil)

// stop reasons reported by backends when output is withheld
var refusalStops = map[string]bool{
	"content_filter": true,
	"refusal":        true,
	"safety":         true,
}

// NewClient builds the backend named by cfg.Provider.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := newModel(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithModel(cfg, m, logger), nil
}

// NewWithModel wraps an already-built model.
func NewWithModel(cfg Config, m llms.Model, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, llm: m, logger: logger}
}

func newModel(cfg Config) (llms.Model, error) {
	switch cfg.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, llm.NotInitialized(cfg.Provider, err)
		}
		return m, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, llm.NotInitialized(cfg.Provider, nil)
		}
		m, err := openai.New(openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model))
		if err != nil {
			return nil, llm.NotInitialized(cfg.Provider, err)
		}
		return m, nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, llm.NotInitialized(cfg.Provider, nil)
		}
		m, err := anthropic.New(anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model))
		if err != nil {
			return nil, llm.NotInitialized(cfg.Provider, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

func (c *Client) Model() string { return c.cfg.Model }

// Generate sends the prompt as a single human message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"provider", c.cfg.Provider,
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
	)

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	resp, err := c.llm.GenerateContent(ctx, msgs,
		llms.WithTemperature(c.cfg.Temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		c.logger.Error("llm.generate.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%s generate: %w", c.cfg.Provider, err)
	}

	text, err := ChoiceText(resp)
	if err != nil {
		c.logger.Warn("llm.generate.rejected",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"reply_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// ChoiceText returns the first choice's content, mapping refusals and empty replies to llm errors.
func ChoiceText(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", llm.EmptyResponse("no choices")
	}
	ch := resp.Choices[0]
	if stop := strings.ToLower(ch.StopReason); refusalStops[stop] {
		return "", &llm.BlockedError{Reason: strings.ToUpper(stop)}
	}
	if strings.TrimSpace(ch.Content) == "" {
		return "", llm.MalformedResponse("choice has no content")
	}
	return ch.Content, nil
}
