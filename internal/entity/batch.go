package entity

import (
	"fmt"
	"sort"

	"github.com/joseph-ayodele/resume-extractor/constants"
)

// BatchResult is the aggregate of one orchestrator run.
// len(Records)+len(Failures) always equals Attempted.
type BatchResult struct {
	Records   []ExtractionRecord `json:"records"`
	Failures  map[string]string  `json:"failures"`
	Attempted int                `json:"attempted"`
}

// NewBatchResult returns an empty aggregate ready for folding.
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Records:  []ExtractionRecord{},
		Failures: map[string]string{},
	}
}

// AddRecord appends a successful document.
func (b *BatchResult) AddRecord(rec ExtractionRecord) {
	b.Records = append(b.Records, rec)
	b.Attempted++
}

// AddFailure records a failed document and returns the key used. Names are not
// guaranteed unique inside an archive, so a repeated name gets a " (n)" suffix
// instead of overwriting the earlier failure.
func (b *BatchResult) AddFailure(name, message string) string {
	key := name
	for n := 2; ; n++ {
		if _, taken := b.Failures[key]; !taken {
			break
		}
		key = fmt.Sprintf("%s (%d)", name, n)
	}
	b.Failures[key] = message
	b.Attempted++
	return key
}

// FailedNames returns the failure keys in sorted order.
func (b *BatchResult) FailedNames() []string {
	names := make([]string, 0, len(b.Failures))
	for name := range b.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProcessProgress is the transient per-document progress of a running batch.
type ProcessProgress struct {
	CurrentDocument string          `json:"current_document"`
	Stage           constants.Stage `json:"stage,omitempty"`
	Processed       int             `json:"processed"`
	Total           int             `json:"total"`
}
