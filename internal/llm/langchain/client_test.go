package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

type fakeModel struct {
	resp    *llms.ContentResponse
	err     error
	prompts []string
	calls   int
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	for _, m := range msgs {
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tp.Text)
			}
		}
	}
	var co llms.CallOptions
	for _, o := range opts {
		o(&co)
	}
	if !co.JSONMode {
		return nil, errors.New("json mode not requested")
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, opts...)
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	fm := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{
		{Content: `{"Full Name":"Jane"}`, StopReason: "stop"},
		{Content: "ignored"},
	}}}
	c := NewWithModel(Config{Provider: "openai", Model: "gpt-4o-mini"}, fm, nil)

	got, err := c.Generate(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"Full Name":"Jane"}`, got)
	assert.Equal(t, []string{"extract this"}, fm.prompts)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}

func TestGenerate_PropagatesTransportError(t *testing.T) {
	fm := &fakeModel{err: errors.New("connection refused")}
	c := NewWithModel(Config{Provider: "ollama"}, fm, nil)

	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestChoiceText(t *testing.T) {
	tests := []struct {
		name   string
		resp   *llms.ContentResponse
		target error
	}{
		{"nil response", nil, common.ErrEmptyResponse},
		{"no choices", &llms.ContentResponse{}, common.ErrEmptyResponse},
		{"blank content", &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  "}}}, common.ErrMalformedResponseShape},
		{"content filter", &llms.ContentResponse{Choices: []*llms.ContentChoice{{StopReason: "content_filter"}}}, common.ErrServiceBlocked},
		{"refusal", &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "no", StopReason: "refusal"}}}, common.ErrServiceBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChoiceText(tt.resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	var blocked *llm.BlockedError
	_, err := ChoiceText(&llms.ContentResponse{Choices: []*llms.ContentChoice{{StopReason: "content_filter"}}})
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "CONTENT_FILTER", blocked.Reason)
}

func TestNewClient_MissingKey(t *testing.T) {
	for _, p := range []string{"openai", "anthropic"} {
		_, err := NewClient(Config{Provider: p, Model: "m"}, nil)
		require.Error(t, err, p)
		assert.ErrorIs(t, err, common.ErrClientNotInitialized, p)
	}

	_, err := NewClient(Config{Provider: "mystery"}, nil)
	require.Error(t, err)
}
