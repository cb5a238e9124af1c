package llm

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

// Client is the external extraction service: one prompt in, raw reply text out.
// Implementations return *BlockedError when the service refuses the request,
// and errors wrapping common.ErrEmptyResponse or common.ErrMalformedResponseShape
// for structurally unusable replies.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// BlockedError is a refusal by the service, usually a safety filter.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("AI processing failed: %s. This may be due to safety filters on the input or output.", e.Reason)
}

func (e *BlockedError) Is(target error) bool {
	return target == common.ErrServiceBlocked
}

// EmptyResponse reports a reply without any candidate or choice.
func EmptyResponse(detail string) error {
	return common.NewAppError(common.CodeService,
		"AI response was empty or malformed (no content parts).",
		fmt.Errorf("%w: %s", common.ErrEmptyResponse, detail))
}

// MalformedResponse reports a reply whose candidate carries no text.
func MalformedResponse(detail string) error {
	return common.NewAppError(common.CodeService,
		"AI response was empty or malformed (no content parts).",
		fmt.Errorf("%w: %s", common.ErrMalformedResponseShape, detail))
}

// NotInitialized reports a client that could not be built, typically a missing credential.
func NotInitialized(provider string, cause error) error {
	msg := fmt.Sprintf("AI client (%s) is not initialized. Please ensure the API key is configured.", provider)
	if cause != nil {
		return common.NewAppError(common.CodeConfig, msg, fmt.Errorf("%w: %v", common.ErrClientNotInitialized, cause))
	}
	return common.NewAppError(common.CodeConfig, msg, common.ErrClientNotInitialized)
}
