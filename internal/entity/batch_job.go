package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-extractor/constants"
)

// BatchJob is the externally visible snapshot of a queued or running batch.
type BatchJob struct {
	ID         uuid.UUID          `json:"id"`
	SourceName string             `json:"source_name"`
	State      constants.RunState `json:"state"`
	Progress   *ProcessProgress   `json:"progress,omitempty"`
	Result     *BatchResult       `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
	ModelName  string             `json:"model_name,omitempty"`
	QueuedAt   time.Time          `json:"queued_at"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j BatchJob) Done() bool {
	return j.State.Terminal()
}
