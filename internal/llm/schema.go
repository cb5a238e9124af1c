package llm

import (
	"sync"

	"github.com/joseph-ayodele/resume-extractor/constants"
)

// BuildResumeJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the extraction reply.
// It documents the expected shape; the normalizer tolerates deviations, so a
// mismatch is logged and never fails a document.
func BuildResumeJSONSchema() map[string]any {
	entryProps := map[string]any{}
	for _, k := range constants.ExperienceKeys {
		entryProps[k] = map[string]any{"type": "string"}
	}
	entryProps[constants.KeySkills] = map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			constants.KeyFullName:    nullableString(),
			constants.KeyEmail:       nullableString(),
			constants.KeyPhoneNumber: nullableString(),
			constants.KeyATSScore:    map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			constants.KeyWorkExperience: map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": entryProps,
				},
			},
		},
		"required": []string{constants.KeyWorkExperience},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

var (
	resumeSchemaOnce sync.Once
	resumeSchema     *CompiledSchema
	resumeSchemaErr  error
)

// ValidateRecordShape checks a decoded reply against BuildResumeJSONSchema.
func ValidateRecordShape(v any) error {
	resumeSchemaOnce.Do(func() {
		resumeSchema, resumeSchemaErr = CompileSchema(BuildResumeJSONSchema())
	})
	if resumeSchemaErr != nil {
		return resumeSchemaErr
	}
	return resumeSchema.Validate(v)
}
