package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/llm"
)

// Matcher scores resume text against a job description.
type Matcher struct {
	client llm.Client
	logger *slog.Logger
}

func NewMatcher(client llm.Client, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{client: client, logger: logger}
}

// Score returns a 0..100 match score. A reply without an integer scores 0.
func (m *Matcher) Score(ctx context.Context, resumeText, jobDescription string) (int, error) {
	reply, err := m.ask(ctx, resumeText, jobDescription, false)
	if err != nil {
		return 0, err
	}
	return llm.ParseATSScore(reply), nil
}

// Detailed returns the score with matched and missing keywords and a summary.
func (m *Matcher) Detailed(ctx context.Context, resumeText, jobDescription string) (entity.ATSMatch, error) {
	reply, err := m.ask(ctx, resumeText, jobDescription, true)
	if err != nil {
		return entity.ATSMatch{}, err
	}
	return llm.ParseATSMatch(reply), nil
}

func (m *Matcher) ask(ctx context.Context, resumeText, jobDescription string, detailed bool) (string, error) {
	v := common.NewValidator()
	v.Field("resume_text", resumeText, common.Required)
	v.Field("job_description", jobDescription, common.Required)
	if err := v.Err(); err != nil {
		return "", err
	}
	if m.client == nil {
		return "", llm.NotInitialized("extraction service", nil)
	}

	start := time.Now()
	reply, err := m.client.Generate(ctx, llm.BuildATSMatchPrompt(resumeText, jobDescription, detailed))
	if err != nil {
		m.logger.Error("ats.match.failed", "detailed", detailed, "error", err)
		return "", err
	}
	m.logger.Info("ats.match.ok",
		"detailed", detailed,
		"reply_len", len(reply),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}
