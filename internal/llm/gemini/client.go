package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

const provider = "gemini"

// Client implements llm.Client on the Gemini generateContent API with JSON output.
type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

var _ llm.Client = (*Client)(nil)

// NewClient fails with an error wrapping common.ErrClientNotInitialized when no API key is available.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, llm.NotInitialized(provider, nil)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, llm.NotInitialized(provider, err)
	}
	return &Client{cfg: cfg, client: cl, logger: logger}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Generate sends one prompt and returns the concatenated text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"provider", provider,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	m := c.client.GenerativeModel(c.cfg.Model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(c.cfg.Temperature)
	m.SetTopP(c.cfg.TopP)
	m.SetTopK(c.cfg.TopK)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			reason := BlockReason(blocked)
			c.logger.Warn("llm.generate.blocked",
				"req_id", rid, "reason", reason,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return "", &llm.BlockedError{Reason: reason}
		}
		c.logger.Error("llm.generate.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text, err := ResponseText(resp)
	if err != nil {
		c.logger.Error("llm.generate.bad_response",
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

// BlockReason names why Gemini refused: the prompt block reason when present,
// else the candidate's finish reason.
func BlockReason(be *genai.BlockedError) string {
	switch {
	case be == nil:
		return "unknown reason"
	case be.PromptFeedback != nil:
		return be.PromptFeedback.BlockReason.String()
	case be.Candidate != nil:
		return be.Candidate.FinishReason.String()
	}
	return "unknown reason"
}

// ResponseText extracts the text of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", llm.EmptyResponse("no candidates")
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", llm.MalformedResponse("candidate has no content parts")
	}

	var b strings.Builder
	found := false
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
			found = true
		}
	}
	if !found {
		return "", llm.MalformedResponse("candidate has no text parts")
	}
	return b.String(), nil
}
