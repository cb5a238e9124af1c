package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
)

const msgNotObject = "AI response was parsed, but it is not a valid JSON object."

// Normalize maps a decoded service reply onto an ExtractionRecord. The only
// error is common.ErrInvalidShape for a non-object value; every field-level
// problem is defaulted and described in the returned warnings.
func Normalize(v any) (entity.ExtractionRecord, []string, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return entity.ExtractionRecord{}, nil,
			common.NewAppError(common.CodeResponse, msgNotObject, fmt.Errorf("%w: got %s", common.ErrInvalidShape, jsonKind(v)))
	}

	var warnings []string
	rec := entity.ExtractionRecord{
		FullName:       optionalText(obj, constants.KeyFullName),
		Email:          optionalText(obj, constants.KeyEmail),
		PhoneNumber:    optionalText(obj, constants.KeyPhoneNumber),
		ATSScore:       score(obj[constants.KeyATSScore]),
		WorkExperience: []entity.ExperienceEntry{},
	}
	if raw, present := obj[constants.KeyATSScore]; present && raw != nil {
		if _, isNum := raw.(float64); !isNum {
			warnings = append(warnings, fmt.Sprintf("%q is %s, defaulted to 0", constants.KeyATSScore, jsonKind(raw)))
		}
	}

	switch exp := obj[constants.KeyWorkExperience].(type) {
	case []any:
		for i, item := range exp {
			entryObj, ok := item.(map[string]any)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("work experience entry %d is %s, dropped", i, jsonKind(item)))
				continue
			}
			rec.WorkExperience = append(rec.WorkExperience, normalizeEntry(entryObj))
		}
	case nil:
	default:
		warnings = append(warnings, fmt.Sprintf("%q is %s, treated as empty", constants.KeyWorkExperience, jsonKind(exp)))
	}
	return rec, warnings, nil
}

func normalizeEntry(obj map[string]any) entity.ExperienceEntry {
	return entity.ExperienceEntry{
		CompanyName:    textOrNotSpecified(obj[constants.KeyCompanyName]),
		CustomerName:   textOrNotSpecified(obj[constants.KeyCustomerName]),
		Role:           textOrNotSpecified(obj[constants.KeyRole]),
		Duration:       textOrNotSpecified(obj[constants.KeyDuration]),
		Skills:         skills(obj[constants.KeySkills]),
		IndustryDomain: textOrNotSpecified(obj[constants.KeyIndustryDomain]),
		Location:       textOrNotSpecified(obj[constants.KeyLocation]),
	}
}

// optionalText returns nil for a missing key or JSON null.
func optionalText(obj map[string]any, key string) *string {
	v, present := obj[key]
	if !present || v == nil {
		return nil
	}
	s := toText(v)
	return &s
}

func textOrNotSpecified(v any) string {
	if falsy(v) {
		return constants.NotSpecified
	}
	return toText(v)
}

func skills(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s := "null"
		if item != nil {
			s = toText(item)
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func score(v any) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(math.Round(f))
}

// falsy follows JSON-truthiness: null, "", 0 and false.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}
